package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kyleolivo/fogandfern/internal/parkref"
)

// Statistics aggregates the active catalog for one city.
type Statistics struct {
	ParkCount    int               `json:"park_count"`
	TotalAcreage float64           `json:"total_acreage"`
	ByCategory   map[Category]int  `json:"by_category"`
	BySize       map[SizeClass]int `json:"by_size"`
}

// Repository is the query surface over the park catalog. Every operation is
// scoped to a city machine name, takes a context, and wraps storage errors
// into the catalog error family.
type Repository struct {
	db     *gorm.DB
	loader *Loader

	// Seed defaults per supported city machine name; a lookup outside this
	// set is an unsupported-city error, not a silent empty result.
	cities map[string]CityDefaults
}

func NewRepository(gdb *gorm.DB, loader *Loader, cities map[string]CityDefaults) *Repository {
	return &Repository{db: gdb, loader: loader, cities: cities}
}

func (r *Repository) cityDefaults(machine string) (CityDefaults, error) {
	d, ok := r.cities[machine]
	if !ok {
		return CityDefaults{}, &Error{Kind: KindUnsupportedCity, Context: machine}
	}
	return d, nil
}

// City resolves a city row by machine name.
func (r *Repository) City(ctx context.Context, machine string) (*City, error) {
	var city City
	err := r.db.WithContext(ctx).First(&city, "machine_name = ?", machine).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &Error{Kind: KindNotFound, Context: "city " + machine}
	}
	if err != nil {
		return nil, wrapf(KindSyncFailure, err, "looking up city %s", machine)
	}
	return &city, nil
}

// GetAll returns the active parks of a city sorted by name. An empty catalog
// self-heals: the first read triggers the dataset loader and returns its
// result, so a fresh install never shows an empty list just because nothing
// loaded yet.
func (r *Repository) GetAll(ctx context.Context, cityMachine string) ([]Park, error) {
	defaults, err := r.cityDefaults(cityMachine)
	if err != nil {
		return nil, err
	}

	parks, err := r.activeParks(ctx, cityMachine)
	if err != nil {
		return nil, err
	}
	if len(parks) > 0 {
		return parks, nil
	}

	if _, err := r.loader.LoadCatalog(ctx, defaults); err != nil {
		return nil, err
	}
	return r.activeParks(ctx, cityMachine)
}

func (r *Repository) activeParks(ctx context.Context, cityMachine string) ([]Park, error) {
	var parks []Park
	err := r.db.WithContext(ctx).
		Joins("JOIN cities ON cities.id = parks.city_id").
		Where("cities.machine_name = ? AND parks.is_active = ?", cityMachine, true).
		Order("parks.name ASC").
		Find(&parks).Error
	if err != nil {
		return nil, wrapf(KindSyncFailure, err, "listing parks for %s", cityMachine)
	}
	return parks, nil
}

// GetNear filters GetAll to parks within radiusMeters of the given point,
// sorted ascending by distance. Parks at exactly (0,0) carry no coordinate
// and are excluded regardless of radius.
func (r *Repository) GetNear(ctx context.Context, cityMachine string, lat, lng, radiusMeters float64) ([]Park, error) {
	parks, err := r.GetAll(ctx, cityMachine)
	if err != nil {
		return nil, err
	}

	type withDistance struct {
		park     Park
		distance float64
	}
	var near []withDistance
	for _, p := range parks {
		if !p.HasCoordinate() {
			continue
		}
		d := distanceMeters(lat, lng, p.Latitude, p.Longitude)
		if d <= radiusMeters {
			near = append(near, withDistance{park: p, distance: d})
		}
	}

	sort.Slice(near, func(i, j int) bool { return near[i].distance < near[j].distance })

	out := make([]Park, len(near))
	for i, n := range near {
		out[i] = n.park
	}
	return out, nil
}

// GetByCategory returns the active parks of a city with the given category,
// sorted by name.
func (r *Repository) GetByCategory(ctx context.Context, cityMachine string, category Category) ([]Park, error) {
	if _, err := ParseCategory(string(category)); err != nil {
		return nil, err
	}

	var parks []Park
	err := r.db.WithContext(ctx).
		Joins("JOIN cities ON cities.id = parks.city_id").
		Where("cities.machine_name = ? AND parks.is_active = ? AND parks.category = ?", cityMachine, true, category).
		Order("parks.name ASC").
		Find(&parks).Error
	if err != nil {
		return nil, wrapf(KindSyncFailure, err, "listing %s parks for %s", category, cityMachine)
	}
	return parks, nil
}

// GetBySize returns the active parks in a size class, largest first then by
// name. Size class is derived from acreage, so this runs as an acreage range
// query rather than reading a stored class column that could drift.
func (r *Repository) GetBySize(ctx context.Context, cityMachine string, size SizeClass) ([]Park, error) {
	min, max, ok := acreageRange(size)
	if !ok {
		return nil, &Error{Kind: KindInvalidInput, Context: "size class " + string(size)}
	}

	q := r.db.WithContext(ctx).
		Joins("JOIN cities ON cities.id = parks.city_id").
		Where("cities.machine_name = ? AND parks.is_active = ? AND parks.acreage >= ?", cityMachine, true, min)
	if max >= 0 {
		q = q.Where("parks.acreage < ?", max)
	}

	var parks []Park
	if err := q.Order("parks.acreage DESC, parks.name ASC").Find(&parks).Error; err != nil {
		return nil, wrapf(KindSyncFailure, err, "listing %s parks for %s", size, cityMachine)
	}
	return parks, nil
}

// Search matches query case-insensitively against name, short description
// and neighborhood. A blank query is rejected up front: silently returning
// everything (or nothing) for whitespace input hides caller bugs.
func (r *Repository) Search(ctx context.Context, cityMachine, query string) ([]Park, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, &Error{Kind: KindInvalidInput, Context: "search query is empty"}
	}

	pattern := "%" + strings.ToLower(trimmed) + "%"
	var parks []Park
	err := r.db.WithContext(ctx).
		Joins("JOIN cities ON cities.id = parks.city_id").
		Where("cities.machine_name = ? AND parks.is_active = ?", cityMachine, true).
		Where("LOWER(parks.name) LIKE ? OR LOWER(parks.short_description) LIKE ? OR LOWER(parks.neighborhood) LIKE ?",
			pattern, pattern, pattern).
		Order("parks.name ASC").
		Find(&parks).Error
	if err != nil {
		return nil, wrapf(KindSyncFailure, err, "searching %q in %s", trimmed, cityMachine)
	}
	return parks, nil
}

// Refresh explicitly re-invokes the dataset loader for user-initiated
// refresh actions. The version gate still applies: an unchanged dataset
// version is a fast no-op.
func (r *Repository) Refresh(ctx context.Context, cityMachine string) (*LoadReport, error) {
	defaults, err := r.cityDefaults(cityMachine)
	if err != nil {
		return nil, err
	}
	return r.loader.LoadCatalog(ctx, defaults)
}

// SyncFromRemote is the remote-sync entry point. The catalog is local-only,
// so "remote" here is the bundled dataset; the name mirrors the app-facing
// action.
func (r *Repository) SyncFromRemote(ctx context.Context, cityMachine string) (*LoadReport, error) {
	return r.Refresh(ctx, cityMachine)
}

// Statistics aggregates count, acreage and category/size histograms over
// the active catalog.
func (r *Repository) Statistics(ctx context.Context, cityMachine string) (*Statistics, error) {
	parks, err := r.GetAll(ctx, cityMachine)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		ByCategory: make(map[Category]int),
		BySize:     make(map[SizeClass]int),
	}
	for _, p := range parks {
		stats.ParkCount++
		stats.TotalAcreage += p.Acreage
		stats.ByCategory[p.Category]++
		stats.BySize[p.SizeClass()]++
	}
	return stats, nil
}

// FindParkByRef resolves a composite visit reference to a local park. The
// referenced park may simply not have loaded on this device yet, so a miss
// is an ordinary not-found result, never a crash.
func (r *Repository) FindParkByRef(ctx context.Context, ref string) (*Park, error) {
	cityMachine, ext, err := parkref.Parse(ref)
	if err != nil {
		return nil, &Error{Kind: KindInvalidInput, Context: "park reference", Err: err}
	}

	q := r.db.WithContext(ctx).Model(&Park{})
	if cityMachine == parkref.UnknownCity {
		q = q.Where("parks.city_id IS NULL")
	} else {
		q = q.Joins("JOIN cities ON cities.id = parks.city_id").
			Where("cities.machine_name = ?", cityMachine)
	}

	// The reference's second segment is the park's external id when it had
	// one at generation time, otherwise the park's own identity.
	var park Park
	dbErr := q.Where("parks.external_id = ?", ext).First(&park).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		if id, parseErr := uuid.Parse(ext); parseErr == nil {
			dbErr = r.db.WithContext(ctx).First(&park, "id = ?", id).Error
		}
	}
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		return nil, &Error{Kind: KindNotFound, Context: "park reference " + ref}
	}
	if dbErr != nil {
		return nil, wrapf(KindSyncFailure, dbErr, "resolving park reference %s", ref)
	}
	return &park, nil
}
