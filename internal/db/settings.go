package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Setting is a process-wide key-value record. The dataset loader keeps its
// "last applied version" marker here, and the migration runner keeps the
// schema version and its backup tripwire record.
type Setting struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

// Well-known setting keys.
const (
	KeyDatasetVersion  = "catalog.dataset_version"
	KeySchemaVersion   = "schema.version"
	KeyMigrationBackup = "migration.backup"
)

// GetSetting returns the value for key, or "" when the key has never been
// written. Absence is not an error: callers treat a missing marker as
// "nothing applied yet".
func GetSetting(ctx context.Context, db *gorm.DB, key string) (string, error) {
	var s Setting
	err := db.WithContext(ctx).First(&s, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.Value, nil
}

// PutSetting upserts the value for key.
func PutSetting(ctx context.Context, db *gorm.DB, key, value string) error {
	s := Setting{Key: key, Value: value, UpdatedAt: time.Now()}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&s).Error
}
