package accounts

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kyleolivo/fogandfern/internal/catalog"
)

// Simple pattern match, deliberately not RFC 5322: good enough to catch
// typos before a round trip.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Preferences carries optional profile updates; nil fields are untouched.
type Preferences struct {
	DisplayName *string
	Email       *string
	CurrentCity *string
}

// Stats carries counter updates applied by UpdateStats.
type Stats struct {
	TotalVisits   int
	UniqueParks   int
	JournalCount  int
	CurrentStreak int
}

// Repository owns User and Visit records, including the current-user
// bootstrap the app composition performs once per session.
type Repository struct {
	db *gorm.DB
}

func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

// CurrentUserID returns the device's current user: the oldest by creation
// time, created on the spot when no user exists yet. This is the bootstrap
// entry point, called once per app session and threaded down explicitly.
func (r *Repository) CurrentUserID(ctx context.Context) (uuid.UUID, error) {
	var user User
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&user).Error
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, wrapf(KindAuthFailure, err, "looking up current user")
	}

	user = User{ID: uuid.New(), LastActiveAt: time.Now()}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return uuid.Nil, wrapf(KindAuthFailure, err, "creating initial user")
	}
	return user.ID, nil
}

// CreateUser creates an account with optional display name and email. A
// provided email must pass the pattern check before anything touches
// storage.
func (r *Repository) CreateUser(ctx context.Context, displayName, email string) (*User, error) {
	if email != "" && !emailPattern.MatchString(email) {
		return nil, &Error{Kind: KindInvalidInput, Context: "malformed email " + email}
	}

	user := User{
		ID:           uuid.New(),
		DisplayName:  displayName,
		Email:        email,
		LastActiveAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, wrapf(KindInvalidInput, err, "creating user")
	}
	return &user, nil
}

// Get returns a user by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &Error{Kind: KindNotFound, Context: "user " + id.String()}
	}
	if err != nil {
		return nil, wrapf(KindAuthFailure, err, "looking up user %s", id)
	}
	return &user, nil
}

// UpdatePreferences applies the non-nil preference fields. Fails with
// not-found when the user no longer resolves, e.g. deleted between read and
// write.
func (r *Repository) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs Preferences) (*User, error) {
	if prefs.Email != nil && *prefs.Email != "" && !emailPattern.MatchString(*prefs.Email) {
		return nil, &Error{Kind: KindInvalidInput, Context: "malformed email " + *prefs.Email}
	}

	user, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if prefs.DisplayName != nil {
		updates["display_name"] = *prefs.DisplayName
	}
	if prefs.Email != nil {
		updates["email"] = *prefs.Email
	}
	if prefs.CurrentCity != nil {
		updates["current_city"] = *prefs.CurrentCity
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := r.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, wrapf(KindAuthFailure, err, "updating preferences for %s", id)
	}
	return user, nil
}

// UpdateStats overwrites the user's counters and refreshes last-active. The
// longest streak is a high-water mark and only ever ratchets up.
func (r *Repository) UpdateStats(ctx context.Context, id uuid.UUID, stats Stats) (*User, error) {
	user, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	longest := user.LongestStreak
	if stats.CurrentStreak > longest {
		longest = stats.CurrentStreak
	}

	updates := map[string]any{
		"total_visits":   stats.TotalVisits,
		"unique_parks":   stats.UniqueParks,
		"journal_count":  stats.JournalCount,
		"current_streak": stats.CurrentStreak,
		"longest_streak": longest,
		"last_active_at": time.Now(),
	}
	if err := r.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, wrapf(KindAuthFailure, err, "updating stats for %s", id)
	}
	return user, nil
}

// DeleteUser removes the user; their visits go with them via the cascade
// rule on the association, not manual cleanup.
func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&User{}, "id = ?", id)
	if res.Error != nil {
		return wrapf(KindAuthFailure, res.Error, "deleting user %s", id)
	}
	if res.RowsAffected == 0 {
		return &Error{Kind: KindNotFound, Context: "user " + id.String()}
	}
	return nil
}

// CompleteOnboarding marks onboarding done and records the chosen city.
// Required profile fields must be set first; the error names which are
// missing so the presentation layer can point at them.
func (r *Repository) CompleteOnboarding(ctx context.Context, id uuid.UUID, cityMachine string) (*User, error) {
	user, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var missing []string
	if user.DisplayName == "" {
		missing = append(missing, "display_name")
	}
	if cityMachine == "" {
		missing = append(missing, "city")
	}
	if len(missing) > 0 {
		return nil, &Error{Kind: KindIncompleteProfile, MissingFields: missing}
	}

	updates := map[string]any{
		"onboarding_completed": true,
		"current_city":         cityMachine,
	}
	if err := r.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, wrapf(KindAuthFailure, err, "completing onboarding for %s", id)
	}
	return user, nil
}

// LogVisit records a park visit for a user. This is the only way visits are
// created. The visit stores the park's composite reference and a snapshot of
// its name, so the entry stays meaningful even if the catalog row later
// disappears or was never loaded on another device.
func (r *Repository) LogVisit(ctx context.Context, userID uuid.UUID, park *catalog.Park, when time.Time, journal string) (*Visit, error) {
	if park == nil {
		return nil, &Error{Kind: KindInvalidInput, Context: "visit requires a park"}
	}
	if _, err := r.Get(ctx, userID); err != nil {
		return nil, err
	}
	if when.IsZero() {
		when = time.Now()
	}

	visit := Visit{
		ID:           uuid.New(),
		Timestamp:    when,
		JournalEntry: journal,
		ParkRef:      park.RefID(),
		ParkName:     park.Name,
		UserID:       &userID,
	}
	if err := r.db.WithContext(ctx).Create(&visit).Error; err != nil {
		return nil, wrapf(KindAuthFailure, err, "logging visit to %q", park.Name)
	}
	return &visit, nil
}

// Visits returns a user's visits, most recent first.
func (r *Repository) Visits(ctx context.Context, userID uuid.UUID) ([]Visit, error) {
	var visits []Visit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&visits).Error
	if err != nil {
		return nil, wrapf(KindAuthFailure, err, "listing visits for %s", userID)
	}
	return visits, nil
}
