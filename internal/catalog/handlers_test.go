package catalog_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kyleolivo/fogandfern/internal/catalog"
	"github.com/kyleolivo/fogandfern/internal/location"
)

func newTestServer(t *testing.T, loc location.Provider) *httptest.Server {
	t.Helper()
	gdb := setupTestDB(t)
	repo := newTestRepo(t, gdb, sampleParks())
	srv := httptest.NewServer(catalog.SetupRoutes(repo, loc))
	t.Cleanup(srv.Close)
	return srv
}

func TestNearbyParksUsesDeviceLocation(t *testing.T) {
	loc := location.Static{
		State:  location.AuthorizationForeground,
		Sample: &location.Coordinate{Latitude: 37.7694, Longitude: -122.4862},
	}
	srv := newTestServer(t, loc)

	resp, err := http.Get(srv.URL + "/parks/near?radius=100000&city=sanfrancisco")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var parks []catalog.Park
	if err := json.NewDecoder(resp.Body).Decode(&parks); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(parks) == 0 {
		t.Fatal("no parks returned")
	}
	// The provider sample sits on Featured Park, so it sorts first.
	if parks[0].Name != "Featured Park" {
		t.Errorf("nearest park = %q, want Featured Park", parks[0].Name)
	}
}

func TestNearbyParksLocationNotAuthorized(t *testing.T) {
	srv := newTestServer(t, location.Static{State: location.AuthorizationDenied})

	resp, err := http.Get(srv.URL + "/parks/near?radius=1000&city=sanfrancisco")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPreconditionFailed {
		t.Fatalf("status = %d, want 412", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body["kind"] != string(catalog.KindMissingLocationData) {
		t.Errorf("error kind = %q, want missing_location_data", body["kind"])
	}
}

func TestNearbyParksExplicitPointBypassesProvider(t *testing.T) {
	// Explicit lat/lng never consult the provider, authorized or not.
	srv := newTestServer(t, location.Static{State: location.AuthorizationDenied})

	resp, err := http.Get(srv.URL + "/parks/near?lat=37.7694&lng=-122.4862&radius=100000&city=sanfrancisco")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestNearbyParksBadRadius(t *testing.T) {
	srv := newTestServer(t, location.Static{})

	resp, err := http.Get(srv.URL + "/parks/near?radius=huge&city=sanfrancisco")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
