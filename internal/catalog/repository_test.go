package catalog_test

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/kyleolivo/fogandfern/internal/catalog"
	"github.com/kyleolivo/fogandfern/internal/db"
)

func newTestRepo(t *testing.T, gdb *gorm.DB, parks []catalog.ParkRecord) *catalog.Repository {
	t.Helper()
	loader := catalog.NewLoader(gdb, writeDataset(t, catalog.Dataset{Version: "1.0.0", Parks: parks}))
	return catalog.NewRepository(gdb, loader, map[string]catalog.CityDefaults{
		"sanfrancisco": sfDefaults(),
	})
}

func TestGetAllSelfHealsEmptyCatalog(t *testing.T) {
	gdb := setupTestDB(t)
	repo := newTestRepo(t, gdb, sampleParks())
	ctx := context.Background()

	// Empty store: the first read triggers the loader and returns its
	// result instead of an empty list.
	parks, err := repo.GetAll(ctx, "sanfrancisco")
	if err != nil {
		t.Fatalf("GetAll on empty store: %v", err)
	}
	if len(parks) != 3 {
		t.Fatalf("GetAll returned %d parks, want 3", len(parks))
	}

	// Sorted by name.
	if parks[0].Name != "Corner Green" || parks[1].Name != "Featured Park" || parks[2].Name != "Harbor Plaza" {
		t.Errorf("parks not sorted by name: %s, %s, %s", parks[0].Name, parks[1].Name, parks[2].Name)
	}

	marker, err := db.GetSetting(ctx, gdb, db.KeyDatasetVersion)
	if err != nil {
		t.Fatalf("reading marker: %v", err)
	}
	if marker != "1.0.0" {
		t.Errorf("version marker = %q, want 1.0.0 after self-heal", marker)
	}
}

func TestGetAllUnsupportedCity(t *testing.T) {
	gdb := setupTestDB(t)
	repo := newTestRepo(t, gdb, sampleParks())

	_, err := repo.GetAll(context.Background(), "atlantis")
	var catErr *catalog.Error
	if !errors.As(err, &catErr) || catErr.Kind != catalog.KindUnsupportedCity {
		t.Errorf("GetAll(atlantis) error = %v, want kind unsupported_city", err)
	}
}

func TestGetNearExcludesZeroCoordinate(t *testing.T) {
	gdb := setupTestDB(t)
	parks := sampleParks()
	// (0,0) means "no coordinate", not a place in the Gulf of Guinea.
	parks[1].Latitude = 0
	parks[1].Longitude = 0
	repo := newTestRepo(t, gdb, parks)
	ctx := context.Background()

	// Radius covering the entire planet still must not include it.
	near, err := repo.GetNear(ctx, "sanfrancisco", 37.77, -122.45, 50_000_000)
	if err != nil {
		t.Fatalf("GetNear: %v", err)
	}
	for _, p := range near {
		if p.Name == "Corner Green" {
			t.Error("park at (0,0) included in GetNear results")
		}
	}
	if len(near) != 2 {
		t.Errorf("GetNear returned %d parks, want 2", len(near))
	}
}

func TestGetNearSortsByDistance(t *testing.T) {
	gdb := setupTestDB(t)
	repo := newTestRepo(t, gdb, sampleParks())

	// Query point sits on Featured Park; Harbor Plaza is several km away.
	near, err := repo.GetNear(context.Background(), "sanfrancisco", 37.7694, -122.4862, 100_000)
	if err != nil {
		t.Fatalf("GetNear: %v", err)
	}
	if len(near) < 2 {
		t.Fatalf("GetNear returned %d parks, want at least 2", len(near))
	}
	if near[0].Name != "Featured Park" {
		t.Errorf("nearest park = %q, want Featured Park", near[0].Name)
	}
}

func TestSearchValidation(t *testing.T) {
	gdb := setupTestDB(t)
	repo := newTestRepo(t, gdb, sampleParks())
	ctx := context.Background()

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := repo.Search(ctx, "sanfrancisco", q)
		var catErr *catalog.Error
		if !errors.As(err, &catErr) || catErr.Kind != catalog.KindInvalidInput {
			t.Errorf("Search(%q) error = %v, want kind invalid_input", q, err)
		}
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	gdb := setupTestDB(t)
	repo := newTestRepo(t, gdb, sampleParks())
	ctx := context.Background()

	// Populate via self-heal first.
	if _, err := repo.GetAll(ctx, "sanfrancisco"); err != nil {
		t.Fatalf("GetAll: %v", err)
	}

	results, err := repo.Search(ctx, "sanfrancisco", "FEATURED")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Featured Park" {
		t.Errorf("Search(FEATURED) = %v, want [Featured Park]", names(results))
	}

	// Neighborhood text is searched too.
	results, err = repo.Search(ctx, "sanfrancisco", "westside")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Search(westside) returned %d parks, want 1", len(results))
	}
}

func TestGetBySizeOrdering(t *testing.T) {
	gdb := setupTestDB(t)
	parks := sampleParks()
	parks = append(parks, catalog.ParkRecord{
		Name:               "Big Meadow",
		Category:           "destination",
		Latitude:           37.75,
		Longitude:          -122.44,
		Acreage:            450,
		ExternalPropertyID: strPtr("INT999"),
	})
	repo := newTestRepo(t, gdb, parks)
	ctx := context.Background()

	if _, err := repo.GetAll(ctx, "sanfrancisco"); err != nil {
		t.Fatalf("GetAll: %v", err)
	}

	massive, err := repo.GetBySize(ctx, "sanfrancisco", catalog.SizeMassive)
	if err != nil {
		t.Fatalf("GetBySize: %v", err)
	}
	if len(massive) != 2 {
		t.Fatalf("massive parks = %d, want 2", len(massive))
	}
	// Descending acreage.
	if massive[0].Name != "Big Meadow" || massive[1].Name != "Featured Park" {
		t.Errorf("size ordering wrong: %v", names(massive))
	}

	pocket, err := repo.GetBySize(ctx, "sanfrancisco", catalog.SizePocket)
	if err != nil {
		t.Fatalf("GetBySize: %v", err)
	}
	if len(pocket) != 1 || pocket[0].Name != "Corner Green" {
		t.Errorf("pocket parks = %v, want [Corner Green]", names(pocket))
	}
}

func TestGetByCategory(t *testing.T) {
	gdb := setupTestDB(t)
	repo := newTestRepo(t, gdb, sampleParks())
	ctx := context.Background()

	if _, err := repo.GetAll(ctx, "sanfrancisco"); err != nil {
		t.Fatalf("GetAll: %v", err)
	}

	plazas, err := repo.GetByCategory(ctx, "sanfrancisco", catalog.CategoryPlaza)
	if err != nil {
		t.Fatalf("GetByCategory: %v", err)
	}
	if len(plazas) != 1 || plazas[0].Name != "Harbor Plaza" {
		t.Errorf("plazas = %v, want [Harbor Plaza]", names(plazas))
	}
}

func TestStatistics(t *testing.T) {
	gdb := setupTestDB(t)
	repo := newTestRepo(t, gdb, sampleParks())

	stats, err := repo.Statistics(context.Background(), "sanfrancisco")
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.ParkCount != 3 {
		t.Errorf("park count = %d, want 3", stats.ParkCount)
	}
	if got := stats.TotalAcreage; got < 122.8 || got > 123.0 {
		t.Errorf("total acreage = %v, want ~122.9", got)
	}
	if stats.ByCategory[catalog.CategoryMini] != 1 {
		t.Errorf("mini count = %d, want 1", stats.ByCategory[catalog.CategoryMini])
	}
	if stats.BySize[catalog.SizeMassive] != 1 {
		t.Errorf("massive count = %d, want 1", stats.BySize[catalog.SizeMassive])
	}
}

func TestFindParkByRef(t *testing.T) {
	gdb := setupTestDB(t)
	repo := newTestRepo(t, gdb, sampleParks())
	ctx := context.Background()

	if _, err := repo.GetAll(ctx, "sanfrancisco"); err != nil {
		t.Fatalf("GetAll: %v", err)
	}

	park, err := repo.FindParkByRef(ctx, "sanfrancisco:INT123")
	if err != nil {
		t.Fatalf("FindParkByRef: %v", err)
	}
	if park.Name != "Featured Park" {
		t.Errorf("resolved park = %q, want Featured Park", park.Name)
	}

	// A reference to a park the catalog hasn't loaded is an ordinary
	// not-found, never a crash.
	_, err = repo.FindParkByRef(ctx, "sanfrancisco:MISSING")
	var catErr *catalog.Error
	if !errors.As(err, &catErr) || catErr.Kind != catalog.KindNotFound {
		t.Errorf("unresolvable ref error = %v, want kind not_found", err)
	}

	_, err = repo.FindParkByRef(ctx, "a:b:c")
	if !errors.As(err, &catErr) || catErr.Kind != catalog.KindInvalidInput {
		t.Errorf("malformed ref error = %v, want kind invalid_input", err)
	}
}

func names(parks []catalog.Park) []string {
	out := make([]string, len(parks))
	for i, p := range parks {
		out[i] = p.Name
	}
	return out
}
