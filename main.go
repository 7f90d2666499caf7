package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/kyleolivo/fogandfern/internal/accounts"
	"github.com/kyleolivo/fogandfern/internal/catalog"
	"github.com/kyleolivo/fogandfern/internal/config"
	"github.com/kyleolivo/fogandfern/internal/db"
	"github.com/kyleolivo/fogandfern/internal/location"
	"github.com/kyleolivo/fogandfern/internal/middleware"
	"github.com/kyleolivo/fogandfern/internal/migrate"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	gdb, backend, err := db.Connect(db.Options{
		CloudDSN:  cfg.CloudDSN,
		LocalPath: cfg.LocalStorePath,
	})
	if err != nil {
		log.Fatal("Failed to connect to any store: ", err)
	}
	log.Printf("Store backend: %s", backend)

	if err := db.InitSchema(gdb); err != nil {
		log.Fatal("Failed to init settings schema: ", err)
	}
	if err := catalog.Init(gdb); err != nil {
		log.Fatal("Failed to init catalog schema: ", err)
	}
	if err := accounts.Init(gdb); err != nil {
		log.Fatal("Failed to init accounts schema: ", err)
	}

	ctx := context.Background()

	if err := migrate.Run(ctx, gdb, migrate.DefaultPlan()); err != nil {
		log.Fatal("Schema migration failed: ", err)
	}
	if err := migrate.Validate(ctx, gdb); err != nil {
		log.Printf("Post-migration validation: %v", err)
	}

	loader := catalog.NewLoader(gdb, cfg.DatasetPath)
	parks := catalog.NewRepository(gdb, loader, cfg.CityDefaults())
	users := accounts.NewRepository(gdb)

	// Bootstrap the current user once and thread it down; nothing below
	// reaches for an ambient singleton.
	currentUser, err := users.CurrentUserID(ctx)
	if err != nil {
		log.Fatal("Failed to bootstrap current user: ", err)
	}
	log.Printf("Current user: %s", currentUser)

	// The standalone server has no platform location provider; nearby
	// queries must pass explicit coordinates. App builds inject theirs.
	loc := location.Static{State: location.AuthorizationNotDetermined}

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)
	r.Mount("/catalog", catalog.SetupRoutes(parks, loc))
	r.Mount("/accounts", accounts.SetupRoutes(users, parks))

	log.Printf("Server listening on port :%s...", cfg.Port)
	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
