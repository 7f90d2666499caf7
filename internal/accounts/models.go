package accounts

import (
	"time"

	"github.com/google/uuid"
)

// User is a device-local account. Exactly one user per device is treated as
// current (the oldest by creation time), and one is auto-created when none
// exists. Users sync remotely, so they never reference local-only catalog
// rows directly.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LastActiveAt time.Time `json:"last_active_at"`

	// Cumulative counters, maintained by UpdateStats.
	TotalVisits   int `json:"total_visits"`
	UniqueParks   int `json:"unique_parks"`
	JournalCount  int `json:"journal_count"`
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`

	// Preferences.
	DisplayName         string `json:"display_name"`
	Email               string `json:"email"`
	CurrentCity         string `json:"current_city"`
	OnboardingCompleted bool   `json:"onboarding_completed"`

	Visits []Visit `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Visit records one logged park visit. The park is referenced through the
// composite "{city}:{externalID}" string rather than a foreign key, because
// the park row may not exist on every device. The park's name is
// denormalized so history survives catalog removal.
type Visit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Timestamp time.Time `json:"timestamp"`

	JournalEntry string `json:"journal_entry"`

	ParkRef  string `gorm:"index" json:"park_ref"`
	ParkName string `json:"park_name"`

	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User   *User      `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
