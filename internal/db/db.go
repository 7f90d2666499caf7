package db

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Backend identifies which store configuration a Connect attempt landed on.
type Backend string

const (
	BackendCloud Backend = "cloud"
	BackendLocal Backend = "local"
)

// Options controls the store bootstrap sequence.
type Options struct {
	// CloudDSN is the Postgres DSN for the cloud-backed configuration.
	// Empty means "no cloud store configured" and is treated as a cloud
	// failure so the local fallback still runs.
	CloudDSN string

	// LocalPath is the SQLite file backing the local-only configuration.
	LocalPath string
}

// Connect runs the store bootstrap state machine: try the cloud-backed
// configuration first, fall back to the local-only durable store, and fail
// only when both are unavailable. Both configurations share the same schema;
// only the backing differs. The ordering matters: skipping straight to local
// hides sync misconfiguration, and skipping the fallback turns a transient
// cloud outage into an unusable app.
func Connect(opts Options) (*gorm.DB, Backend, error) {
	if opts.CloudDSN != "" {
		db, err := connectCloud(opts.CloudDSN)
		if err == nil {
			log.Println("Connected to cloud-backed store")
			return db, BackendCloud, nil
		}
		log.Printf("Cloud store unavailable, falling back to local: %v", err)
	} else {
		log.Println("No cloud store configured, using local store")
	}

	db, err := connectLocal(opts.LocalPath)
	if err != nil {
		return nil, "", err
	}
	log.Printf("Connected to local store at %s", opts.LocalPath)
	return db, BackendLocal, nil
}

func connectCloud(dsn string) (*gorm.DB, error) {
	// Verbose logger to surface slow queries in hosted logs.
	lg := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             100 * time.Millisecond, // log queries > 100ms
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: lg})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	// Reasonable pool defaults for a small hosted Postgres.
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func connectLocal(path string) (*gorm.DB, error) {
	if path == "" {
		path = "fogandfern.db"
	}
	if err := ensureParentDir(path); err != nil {
		return nil, err
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("store path parent is not a directory")
		}
		return nil
	}
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}
	return err
}
