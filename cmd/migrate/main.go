package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/kyleolivo/fogandfern/internal/accounts"
	"github.com/kyleolivo/fogandfern/internal/catalog"
	"github.com/kyleolivo/fogandfern/internal/db"
	"github.com/kyleolivo/fogandfern/internal/migrate"
)

// CLI flags
var (
	dsn          = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (default: env DATABASE_URL; empty = local store)")
	localPath    = flag.String("local", "fogandfern.db", "Local SQLite store path used when --dsn is empty or unreachable")
	validateOnly = flag.Bool("validate-only", false, "Run the orphaned-visit check without migrating")
	skipBackup   = flag.Bool("skip-backup", false, "Skip the pre-migration count snapshot")
)

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Preflight the cloud DSN over plain database/sql before handing it to
	// the ORM, so a bad DSN fails with a clear ping error instead of a
	// half-initialized store.
	if *dsn != "" {
		if err := preflight(ctx, *dsn); err != nil {
			fatalf("cloud store preflight: %v", err)
		}
	}

	gdb, backend, err := db.Connect(db.Options{CloudDSN: *dsn, LocalPath: *localPath})
	if err != nil {
		fatalf("connect: %v", err)
	}
	fmt.Printf("Store backend: %s\n", backend)

	if err := db.InitSchema(gdb); err != nil {
		fatalf("settings schema: %v", err)
	}
	if err := catalog.Init(gdb); err != nil {
		fatalf("catalog schema: %v", err)
	}
	if err := accounts.Init(gdb); err != nil {
		fatalf("accounts schema: %v", err)
	}

	if *validateOnly {
		if err := migrate.Validate(ctx, gdb); err != nil {
			fatalf("validation: %v", err)
		}
		fmt.Println("Validation passed: no orphaned visits.")
		return
	}

	if !*skipBackup {
		backup, err := migrate.SnapshotCounts(ctx, gdb)
		if err != nil {
			fatalf("backup tripwire: %v", err)
		}
		fmt.Printf("Snapshot: %d users, %d visits at version %s\n", backup.Users, backup.Visits, backup.AtVersion)
	}

	if err := migrate.Run(ctx, gdb, migrate.DefaultPlan()); err != nil {
		fatalf("migration: %v", err)
	}

	version, err := migrate.CurrentVersion(ctx, gdb)
	if err != nil {
		fatalf("reading final version: %v", err)
	}
	fmt.Printf("Store is at schema version %s\n", version)

	if err := migrate.Validate(ctx, gdb); err != nil {
		log.Printf("Post-migration validation: %v", err)
	}
}

func preflight(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return sqlDB.PingContext(ctx)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
