package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kyleolivo/fogandfern/internal/db"
)

// Dataset is the bundled reference dataset file layout.
type Dataset struct {
	Version       string       `json:"version"`
	GeneratedDate string       `json:"generatedDate"`
	Parks         []ParkRecord `json:"parks"`
}

// ParkRecord is one incoming park in the bundled dataset.
type ParkRecord struct {
	Name               string  `json:"name"`
	ShortDescription   string  `json:"shortDescription"`
	FullDescription    string  `json:"fullDescription"`
	Category           string  `json:"category"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	Address            string  `json:"address"`
	Neighborhood       *string `json:"neighborhood"`
	Acreage            float64 `json:"acreage"`
	ExternalPropertyID *string `json:"externalPropertyID"`
}

// CityDefaults seeds a City row the first time a catalog loads for a city
// that doesn't exist locally yet.
type CityDefaults struct {
	DisplayName     string
	CenterLatitude  float64
	CenterLongitude float64
	MinLatitude     float64
	MinLongitude    float64
	MaxLatitude     float64
	MaxLongitude    float64
	DefaultZoom     float64
	DatasetID       string
}

// LoadReport summarizes one loader invocation.
type LoadReport struct {
	Version         string
	UpToDate        bool // version gate hit, nothing done
	Inserted        int
	Updated         int
	SkippedNoID     int      // records with no external id cannot be reconciled safely
	SkippedCategory []string // unknown category values, one bad record never blocks the load
	Deduplicated    int
}

// Loader reconciles the bundled dataset into the local store, gated by the
// persisted "last applied version" marker.
type Loader struct {
	db   *gorm.DB
	path string
}

func NewLoader(gdb *gorm.DB, datasetPath string) *Loader {
	return &Loader{db: gdb, path: datasetPath}
}

// LoadCatalog applies the bundled dataset. The version gate runs on every
// invocation, not just when the catalog is empty, because content edits
// can ship under the same record set with a bumped version. Safe to invoke
// concurrently: the gate is re-checked inside the transaction and every
// per-record upsert is idempotent.
func (l *Loader) LoadCatalog(ctx context.Context, defaults CityDefaults) (*LoadReport, error) {
	return l.load(ctx, defaults, false)
}

// ForceReload reapplies the dataset even when the version marker already
// matches. Operator tooling only; the app always goes through the gate.
func (l *Loader) ForceReload(ctx context.Context, defaults CityDefaults) (*LoadReport, error) {
	return l.load(ctx, defaults, true)
}

func (l *Loader) load(ctx context.Context, defaults CityDefaults, force bool) (*LoadReport, error) {
	ds, err := l.readDataset()
	if err != nil {
		return nil, err
	}

	report := &LoadReport{Version: ds.Version}

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := db.GetSetting(ctx, tx, db.KeyDatasetVersion)
		if err != nil {
			return wrapf(KindSyncFailure, err, "reading dataset version marker")
		}
		if applied == ds.Version && !force {
			report.UpToDate = true
			return nil
		}

		city, err := l.ensureCity(tx, defaults)
		if err != nil {
			return err
		}

		for i := range ds.Parks {
			if err := l.reconcile(tx, city, &ds.Parks[i], report); err != nil {
				return err
			}
		}

		if err := l.dedup(tx, city, report); err != nil {
			return err
		}

		if err := db.PutSetting(ctx, tx, db.KeyDatasetVersion, ds.Version); err != nil {
			return wrapf(KindSyncFailure, err, "persisting dataset version %s", ds.Version)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !report.UpToDate {
		log.Printf("Catalog dataset %s applied: %d inserted, %d updated, %d skipped (no id), %d bad category, %d deduplicated",
			report.Version, report.Inserted, report.Updated, report.SkippedNoID, len(report.SkippedCategory), report.Deduplicated)
	}
	return report, nil
}

func (l *Loader) readDataset() (*Dataset, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Distinct from a generic I/O error so callers can choose to
			// proceed with an empty catalog.
			return nil, wrapf(KindDatasetNotFound, err, "bundled dataset %s", l.path)
		}
		return nil, wrapf(KindSyncFailure, err, "reading bundled dataset %s", l.path)
	}

	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, wrapf(KindDataCorruption, err, "decoding bundled dataset %s", l.path)
	}
	if ds.Version == "" {
		return nil, wrapf(KindDataCorruption, nil, "bundled dataset %s has no version", l.path)
	}
	return &ds, nil
}

// ensureCity looks the target city up by machine name and creates it from
// the provided defaults when absent. At most one City row per machine name.
func (l *Loader) ensureCity(tx *gorm.DB, defaults CityDefaults) (*City, error) {
	machine := MachineName(defaults.DisplayName)
	if machine == "" {
		return nil, wrapf(KindUnsupportedCity, nil, "city %q has no machine name", defaults.DisplayName)
	}

	var city City
	err := tx.First(&city, "machine_name = ?", machine).Error
	if err == nil {
		return &city, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrapf(KindSyncFailure, err, "looking up city %s", machine)
	}

	city = City{
		ID:              uuid.New(),
		MachineName:     machine,
		DisplayName:     defaults.DisplayName,
		CenterLatitude:  defaults.CenterLatitude,
		CenterLongitude: defaults.CenterLongitude,
		MinLatitude:     defaults.MinLatitude,
		MinLongitude:    defaults.MinLongitude,
		MaxLatitude:     defaults.MaxLatitude,
		MaxLongitude:    defaults.MaxLongitude,
		DefaultZoom:     defaults.DefaultZoom,
		DatasetID:       defaults.DatasetID,
	}
	if err := tx.Create(&city).Error; err != nil {
		return nil, wrapf(KindSyncFailure, err, "creating city %s", machine)
	}
	return &city, nil
}

// reconcile upserts one incoming record. Inserts copy everything; updates
// touch only operational fields and never the curated short/full
// descriptions, which may have been hand-edited locally after load.
func (l *Loader) reconcile(tx *gorm.DB, city *City, rec *ParkRecord, report *LoadReport) error {
	if rec.ExternalPropertyID == nil || *rec.ExternalPropertyID == "" {
		report.SkippedNoID++
		return nil
	}

	category, err := ParseCategory(rec.Category)
	if err != nil {
		report.SkippedCategory = append(report.SkippedCategory, rec.Category)
		return nil
	}

	now := time.Now()
	neighborhood := ""
	if rec.Neighborhood != nil {
		neighborhood = *rec.Neighborhood
	}

	var existing Park
	err = tx.First(&existing, "city_id = ? AND external_id = ?", city.ID, *rec.ExternalPropertyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		park := Park{
			ID:               uuid.New(),
			Name:             normalizeName(rec.Name),
			ShortDescription: rec.ShortDescription,
			FullDescription:  rec.FullDescription,
			Category:         category,
			Latitude:         rec.Latitude,
			Longitude:        rec.Longitude,
			Address:          rec.Address,
			Neighborhood:     neighborhood,
			Acreage:          rec.Acreage,
			ExternalID:       rec.ExternalPropertyID,
			IsActive:         true,
			CityID:           &city.ID,
			UpdatedAt:        now,
			LastSyncedAt:     now,
		}
		if err := tx.Create(&park).Error; err != nil {
			return wrapf(KindSyncFailure, err, "inserting park %q", rec.Name)
		}
		report.Inserted++
		return nil
	}
	if err != nil {
		return wrapf(KindSyncFailure, err, "looking up park %q", rec.Name)
	}

	updates := map[string]any{
		"name":           normalizeName(rec.Name),
		"category":       category,
		"latitude":       rec.Latitude,
		"longitude":      rec.Longitude,
		"address":        rec.Address,
		"neighborhood":   neighborhood,
		"acreage":        rec.Acreage,
		"updated_at":     now,
		"last_synced_at": now,
	}
	// Every loader write leaves updated_at == last_synced_at. A row whose
	// updated_at has moved past last_synced_at was hand-edited locally, and
	// local curation always wins over upstream description churn.
	if !existing.UpdatedAt.After(existing.LastSyncedAt) {
		updates["short_description"] = rec.ShortDescription
		updates["full_description"] = rec.FullDescription
	}
	if err := tx.Model(&existing).Updates(updates).Error; err != nil {
		return wrapf(KindSyncFailure, err, "updating park %q", rec.Name)
	}
	report.Updated++
	return nil
}

// dedup keeps the most-recently-updated row per (city, external id) and
// deletes the rest. Collisions can only come from a prior buggy load, but
// once present they would make ref resolution ambiguous.
func (l *Loader) dedup(tx *gorm.DB, city *City, report *LoadReport) error {
	var parks []Park
	if err := tx.Where("city_id = ? AND external_id IS NOT NULL", city.ID).
		Order("updated_at DESC").Find(&parks).Error; err != nil {
		return wrapf(KindSyncFailure, err, "listing parks for dedup in %s", city.MachineName)
	}

	seen := make(map[string]bool, len(parks))
	for i := range parks {
		ext := *parks[i].ExternalID
		if !seen[ext] {
			seen[ext] = true
			continue
		}
		if err := tx.Delete(&parks[i]).Error; err != nil {
			return wrapf(KindSyncFailure, err, "deleting duplicate park %q", parks[i].Name)
		}
		report.Deduplicated++
	}
	return nil
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
