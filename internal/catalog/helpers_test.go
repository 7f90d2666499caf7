package catalog_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kyleolivo/fogandfern/internal/catalog"
	"github.com/kyleolivo/fogandfern/internal/db"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Setting{}, &catalog.City{}, &catalog.Park{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func sfDefaults() catalog.CityDefaults {
	return catalog.CityDefaults{
		DisplayName:     "San Francisco",
		CenterLatitude:  37.7749,
		CenterLongitude: -122.4194,
		DefaultZoom:     12,
	}
}

func strPtr(s string) *string { return &s }

func newUUID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

// writeDataset writes a dataset file into a temp dir and returns its path.
func writeDataset(t *testing.T, ds catalog.Dataset) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parks.json")
	writeDatasetAt(t, path, ds)
	return path
}

func writeDatasetAt(t *testing.T, path string, ds catalog.Dataset) {
	t.Helper()
	raw, err := json.Marshal(ds)
	if err != nil {
		t.Fatalf("encoding dataset: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("writing dataset: %v", err)
	}
}

func sampleParks() []catalog.ParkRecord {
	return []catalog.ParkRecord{
		{
			Name:               "Featured Park",
			ShortDescription:   "A park worth featuring.",
			FullDescription:    "The long story of Featured Park.",
			Category:           "destination",
			Latitude:           37.7694,
			Longitude:          -122.4862,
			Address:            "1 Featured Way",
			Neighborhood:       strPtr("Westside"),
			Acreage:            120,
			ExternalPropertyID: strPtr("INT123"),
		},
		{
			Name:               "Corner Green",
			ShortDescription:   "A tiny corner lot.",
			FullDescription:    "Just a bench and a tree.",
			Category:           "mini",
			Latitude:           37.76,
			Longitude:          -122.42,
			Address:            "2 Corner St",
			Acreage:            0.4,
			ExternalPropertyID: strPtr("INT456"),
		},
		{
			Name:               "Harbor Plaza",
			ShortDescription:   "Granite plaza by the water.",
			FullDescription:    "Open space with seating near the ferry docks.",
			Category:           "plaza",
			Latitude:           37.795,
			Longitude:          -122.394,
			Address:            "3 Harbor Sq",
			Acreage:            2.5,
			ExternalPropertyID: strPtr("INT789"),
		},
	}
}
