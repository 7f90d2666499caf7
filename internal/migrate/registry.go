// Package migrate models schema evolution as an ordered list of declared
// versions with explicit (from, to) stages between consecutive ones, instead
// of scattering version checks through business logic. Only remote-synced
// entities (users, visits) are versioned; the local-only catalog is rebuilt
// from the bundled dataset and never migrated.
package migrate

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/kyleolivo/fogandfern/internal/accounts"
	"github.com/kyleolivo/fogandfern/internal/db"
)

// Version declares one released schema version and the synced entity kinds
// it covers.
type Version struct {
	Name     string
	Entities []string
}

// Versions is the ordered release history of the synced schema. Order is
// load-bearing: stores advance strictly version by version.
var Versions = []Version{
	{Name: "1.0", Entities: []string{"User", "Visit"}},
	{Name: "1.1", Entities: []string{"User", "Visit"}}, // journal + streak counters on User
	{Name: "1.2", Entities: []string{"User", "Visit"}}, // denormalized park name on Visit
}

// Stage is one (from, to) unit of a migration plan. WillMigrate is
// inspect-only: it counts the rows the stage touches and must not write;
// any error aborts the stage before a single write happens. DidMigrate
// finalizes the stage inside its transaction; the structural transform
// itself (new columns with defaults) is AutoMigrate's job.
type Stage struct {
	From, To    string
	WillMigrate func(tx *gorm.DB) (RowCounts, error)
	DidMigrate  func(tx *gorm.DB) error
}

// RowCounts is what WillMigrate reports per stage.
type RowCounts struct {
	Users  int64
	Visits int64
}

// Plan is an ordered list of stages. Stages apply strictly in list order;
// there is no version skipping.
type Plan []Stage

// DefaultPlan returns the stages between the released versions.
func DefaultPlan() Plan {
	return Plan{
		{
			From:        "1.0",
			To:          "1.1",
			WillMigrate: countSyncedRows,
			// Backfill the journal counter from existing visits; the new
			// streak columns start at their zero defaults.
			DidMigrate: func(tx *gorm.DB) error {
				return tx.Exec(`
					UPDATE users SET journal_count = (
						SELECT COUNT(*) FROM visits
						WHERE visits.user_id = users.id AND visits.journal_entry <> ''
					)`).Error
			},
		},
		{
			From:        "1.1",
			To:          "1.2",
			WillMigrate: countSyncedRows,
			// Visits created before 1.2 have no park name snapshot; mark
			// them so the history view can render a placeholder instead of
			// an empty string that validation would flag as orphaned.
			DidMigrate: func(tx *gorm.DB) error {
				return tx.Model(&accounts.Visit{}).
					Where("park_name = '' OR park_name IS NULL").
					Update("park_name", "Unknown Park").Error
			},
		},
	}
}

func countSyncedRows(tx *gorm.DB) (RowCounts, error) {
	var c RowCounts
	if err := tx.Model(&accounts.User{}).Count(&c.Users).Error; err != nil {
		return c, err
	}
	if err := tx.Model(&accounts.Visit{}).Count(&c.Visits).Error; err != nil {
		return c, err
	}
	return c, nil
}

func versionIndex(name string) int {
	for i, v := range Versions {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// CurrentVersion reads the store's persisted schema version. A store that
// has never migrated is at the first declared version.
func CurrentVersion(ctx context.Context, gdb *gorm.DB) (string, error) {
	v, err := db.GetSetting(ctx, gdb, db.KeySchemaVersion)
	if err != nil {
		return "", wrapf(KindMigrationFailed, err, "reading schema version")
	}
	if v == "" {
		return Versions[0].Name, nil
	}
	return v, nil
}

// Run applies the plan's stages in order until the store reaches the last
// declared version. A store already at the target is a detected no-op.
// Each stage commits in its own transaction with its marker update, so an
// interrupted run resumes at the next stage.
func Run(ctx context.Context, gdb *gorm.DB, plan Plan) error {
	current, err := CurrentVersion(ctx, gdb)
	if err != nil {
		return err
	}
	if versionIndex(current) < 0 {
		return &Error{Kind: KindMigrationFailed, Context: fmt.Sprintf("store at undeclared version %q", current)}
	}

	for _, stage := range plan {
		ci, fi, ti := versionIndex(current), versionIndex(stage.From), versionIndex(stage.To)
		if fi < 0 || ti < 0 {
			return &Error{Kind: KindMigrationFailed, Context: fmt.Sprintf("stage %s→%s references undeclared version", stage.From, stage.To)}
		}
		if ti != fi+1 {
			return &Error{Kind: KindMigrationFailed, Context: fmt.Sprintf("stage %s→%s skips versions", stage.From, stage.To)}
		}
		if ci >= ti {
			continue // already past this stage
		}
		if ci != fi {
			return &Error{Kind: KindMigrationFailed, Context: fmt.Sprintf("store at %s, next stage starts at %s", current, stage.From)}
		}

		err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			counts, err := stage.WillMigrate(tx)
			if err != nil {
				return wrapf(KindMigrationFailed, err, "inspecting stage %s→%s", stage.From, stage.To)
			}
			log.Printf("Migrating %s→%s (%d users, %d visits)", stage.From, stage.To, counts.Users, counts.Visits)

			if err := stage.DidMigrate(tx); err != nil {
				return wrapf(KindMigrationFailed, err, "committing stage %s→%s", stage.From, stage.To)
			}
			return db.PutSetting(ctx, tx, db.KeySchemaVersion, stage.To)
		})
		if err != nil {
			return err
		}
		current = stage.To
	}

	if current != Versions[len(Versions)-1].Name {
		return &Error{Kind: KindMigrationFailed, Context: fmt.Sprintf("plan ended at %s, latest declared version is %s", current, Versions[len(Versions)-1].Name)}
	}
	return nil
}
