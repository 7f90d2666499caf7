package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kyleolivo/fogandfern/internal/accounts"
	"github.com/kyleolivo/fogandfern/internal/db"
)

// Validate is the post-migration sanity check, independent of any plan: a
// visit whose park reference is empty can never resolve and is flagged as
// orphaned. Advisory diagnostics only; nothing is repaired here.
func Validate(ctx context.Context, gdb *gorm.DB) error {
	var visits []accounts.Visit
	if err := gdb.WithContext(ctx).Find(&visits).Error; err != nil {
		return wrapf(KindValidationFailed, err, "fetching visits")
	}

	var orphaned []string
	for _, v := range visits {
		if v.ParkRef == "" {
			orphaned = append(orphaned, v.ID.String())
		}
	}
	if len(orphaned) > 0 {
		return &Error{
			Kind:    KindValidationFailed,
			Context: fmt.Sprintf("%d orphaned visits: %v", len(orphaned), orphaned),
		}
	}
	return nil
}

// Backup is the pre-migration tripwire record: row counts and a timestamp,
// persisted in the settings store.
type Backup struct {
	Users     int64     `json:"users"`
	Visits    int64     `json:"visits"`
	TakenAt   time.Time `json:"taken_at"`
	AtVersion string    `json:"at_version"`
}

// SnapshotCounts records Visit/User counts before a risky migration. This
// is a cheap tripwire for detecting wholesale data loss, not a restore
// mechanism; no row data is captured.
func SnapshotCounts(ctx context.Context, gdb *gorm.DB) (*Backup, error) {
	counts, err := countSyncedRows(gdb.WithContext(ctx))
	if err != nil {
		return nil, wrapf(KindBackupFailed, err, "counting synced rows")
	}

	version, err := CurrentVersion(ctx, gdb)
	if err != nil {
		return nil, wrapf(KindBackupFailed, err, "reading schema version")
	}

	backup := &Backup{
		Users:     counts.Users,
		Visits:    counts.Visits,
		TakenAt:   time.Now(),
		AtVersion: version,
	}
	raw, err := json.Marshal(backup)
	if err != nil {
		return nil, wrapf(KindBackupFailed, err, "encoding backup record")
	}
	if err := db.PutSetting(ctx, gdb, db.KeyMigrationBackup, string(raw)); err != nil {
		return nil, wrapf(KindBackupFailed, err, "persisting backup record")
	}
	return backup, nil
}

// LastBackup returns the most recent tripwire record, or nil when none was
// ever taken.
func LastBackup(ctx context.Context, gdb *gorm.DB) (*Backup, error) {
	raw, err := db.GetSetting(ctx, gdb, db.KeyMigrationBackup)
	if err != nil {
		return nil, wrapf(KindBackupFailed, err, "reading backup record")
	}
	if raw == "" {
		return nil, nil
	}
	var backup Backup
	if err := json.Unmarshal([]byte(raw), &backup); err != nil {
		return nil, wrapf(KindBackupFailed, err, "decoding backup record")
	}
	return &backup, nil
}
