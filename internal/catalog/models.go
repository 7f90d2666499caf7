package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kyleolivo/fogandfern/internal/parkref"
)

// Category is the closed set of park categories. The legacy values were
// shipped in older dataset versions and stay decodable so existing rows keep
// loading, but they are never surfaced or written by new loads.
type Category string

const (
	CategoryDestination  Category = "destination"
	CategoryNeighborhood Category = "neighborhood"
	CategoryMini         Category = "mini"
	CategoryPlaza        Category = "plaza"
	CategoryGarden       Category = "garden"

	// Legacy, decode-only.
	CategoryScenic       Category = "scenic"
	CategoryRecreational Category = "recreational"
	CategoryHistoric     Category = "historic"
	CategoryWaterfront   Category = "waterfront"
)

var validCategories = map[Category]bool{
	CategoryDestination:  true,
	CategoryNeighborhood: true,
	CategoryMini:         true,
	CategoryPlaza:        true,
	CategoryGarden:       true,
	CategoryScenic:       true,
	CategoryRecreational: true,
	CategoryHistoric:     true,
	CategoryWaterfront:   true,
}

// ParseCategory validates a raw category string against the closed set,
// legacy values included.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !validCategories[c] {
		return "", &Error{Kind: KindInvalidCategory, Context: fmt.Sprintf("category %q", s)}
	}
	return c, nil
}

// SizeClass buckets parks by acreage. It is always derived, never stored,
// so it can't drift when acreage changes.
type SizeClass string

const (
	SizePocket  SizeClass = "pocket"
	SizeSmall   SizeClass = "small"
	SizeMedium  SizeClass = "medium"
	SizeLarge   SizeClass = "large"
	SizeMassive SizeClass = "massive"
)

// SizeClassFor maps acreage to its size class: pocket <1, small [1,5),
// medium [5,20), large [20,100), massive >=100.
func SizeClassFor(acreage float64) SizeClass {
	switch {
	case acreage < 1:
		return SizePocket
	case acreage < 5:
		return SizeSmall
	case acreage < 20:
		return SizeMedium
	case acreage < 100:
		return SizeLarge
	default:
		return SizeMassive
	}
}

// acreageRange returns the [min, max) acreage interval for a size class so
// size queries can run as range queries against the stored acreage column.
// Max < 0 means unbounded.
func acreageRange(s SizeClass) (min, max float64, ok bool) {
	switch s {
	case SizePocket:
		return 0, 1, true
	case SizeSmall:
		return 1, 5, true
	case SizeMedium:
		return 5, 20, true
	case SizeLarge:
		return 20, 100, true
	case SizeMassive:
		return 100, -1, true
	default:
		return 0, 0, false
	}
}

// City is a catalog grouping. There is at most one row per machine name; the
// loader looks cities up by machine name and reuses them.
type City struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MachineName string    `gorm:"uniqueIndex" json:"machine_name"`
	DisplayName string    `json:"display_name"`

	CenterLatitude  float64 `json:"center_latitude"`
	CenterLongitude float64 `json:"center_longitude"`
	MinLatitude     float64 `json:"min_latitude"`
	MinLongitude    float64 `json:"min_longitude"`
	MaxLatitude     float64 `json:"max_latitude"`
	MaxLongitude    float64 `json:"max_longitude"`
	DefaultZoom     float64 `json:"default_zoom"`

	// Identifier of the upstream open-data resource this city's parks came
	// from, for provenance.
	DatasetID string `json:"dataset_id"`

	Parks []Park `gorm:"foreignKey:CityID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Park is a catalog entry. Local-only: never synced remotely, so visits
// reference it through the composite parkref rather than a foreign key.
type Park struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string    `json:"name"`
	ShortDescription string    `json:"short_description"`
	FullDescription  string    `json:"full_description"`
	Category         Category  `json:"category"`

	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Address      string  `json:"address"`
	Neighborhood string  `json:"neighborhood"`
	ZipCode      string  `json:"zip_code"`
	Acreage      float64 `json:"acreage"`

	// Stable id from the upstream property dataset. Nullable: not every
	// record in the wild has one.
	ExternalID *string `gorm:"index" json:"external_id"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CityID *uuid.UUID `gorm:"type:uuid;index" json:"city_id"`
	City   *City      `json:"-"`

	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}

// SizeClass derives the park's size class from its acreage.
func (p *Park) SizeClass() SizeClass {
	return SizeClassFor(p.Acreage)
}

// RefID returns the composite reference visits use to point at this park.
// Total: parks without a city generate under "unknown", parks without an
// external id fall back to their own identity.
func (p *Park) RefID() string {
	city := ""
	if p.City != nil {
		city = p.City.MachineName
	}
	ext := ""
	if p.ExternalID != nil {
		ext = *p.ExternalID
	}
	return parkref.Generate(city, ext, p.ID.String())
}

// HasCoordinate reports whether the park carries a real coordinate. (0,0)
// means "no coordinate" in the upstream data, not a point off the coast of
// Africa.
func (p *Park) HasCoordinate() bool {
	return p.Latitude != 0 || p.Longitude != 0
}
