package catalog_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/kyleolivo/fogandfern/internal/catalog"
)

func TestSizeClassBoundaries(t *testing.T) {
	cases := []struct {
		acreage float64
		want    catalog.SizeClass
	}{
		{0, catalog.SizePocket},
		{0.99, catalog.SizePocket},
		{1.0, catalog.SizeSmall},
		{4.99, catalog.SizeSmall},
		{5.0, catalog.SizeMedium},
		{19.99, catalog.SizeMedium},
		{20.0, catalog.SizeLarge},
		{99.99, catalog.SizeLarge},
		{100.0, catalog.SizeMassive},
		{1017.0, catalog.SizeMassive},
	}

	for _, tc := range cases {
		if got := catalog.SizeClassFor(tc.acreage); got != tc.want {
			t.Errorf("SizeClassFor(%v) = %s, want %s", tc.acreage, got, tc.want)
		}
	}
}

func TestParseCategory(t *testing.T) {
	for _, valid := range []string{"destination", "neighborhood", "mini", "plaza", "garden", "scenic", "recreational", "historic", "waterfront"} {
		if _, err := catalog.ParseCategory(valid); err != nil {
			t.Errorf("ParseCategory(%q) returned error: %v", valid, err)
		}
	}

	_, err := catalog.ParseCategory("themepark")
	if err == nil {
		t.Fatal("ParseCategory accepted an unknown category")
	}
	var catErr *catalog.Error
	if !errors.As(err, &catErr) || catErr.Kind != catalog.KindInvalidCategory {
		t.Errorf("ParseCategory error = %v, want kind invalid_category", err)
	}
}

func TestParkRefID(t *testing.T) {
	ext := "INT123"
	park := catalog.Park{
		ID:         uuid.New(),
		ExternalID: &ext,
		City:       &catalog.City{MachineName: "sf"},
	}
	if got := park.RefID(); got != "sf:INT123" {
		t.Errorf("RefID() = %q, want sf:INT123", got)
	}

	// No city: falls back to the unknown segment.
	park.City = nil
	if got := park.RefID(); got != "unknown:INT123" {
		t.Errorf("RefID() without city = %q, want unknown:INT123", got)
	}

	// No external id: falls back to the park's own identity.
	park.ExternalID = nil
	if got := park.RefID(); got != "unknown:"+park.ID.String() {
		t.Errorf("RefID() without external id = %q, want unknown:%s", got, park.ID)
	}
}

func TestMachineName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"San Francisco", "sanfrancisco"},
		{"ST. LOUIS", "stlouis"},
		{"São Paulo", "saopaulo"},
		{"Washington, D.C.", "washingtondc"},
	}
	for _, tc := range cases {
		if got := catalog.MachineName(tc.in); got != tc.want {
			t.Errorf("MachineName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
