package catalog

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/kyleolivo/fogandfern/internal/location"
	"github.com/kyleolivo/fogandfern/internal/middleware"
)

// SetupRoutes mounts the catalog surface. Refresh is throttled: the version
// gate already makes repeat calls cheap, the limiter just keeps a stuck
// client from spinning on the dataset file.
func SetupRoutes(repo *Repository, loc location.Provider) http.Handler {
	h := &Handler{Repo: repo, Location: loc}
	r := chi.NewRouter()

	r.Get("/parks", h.ListParks)
	r.Get("/parks/near", h.NearbyParks)
	r.Get("/parks/search", h.SearchParks)
	r.Get("/parks/category/{category}", h.ParksByCategory)
	r.Get("/parks/size/{size}", h.ParksBySize)
	r.Get("/parks/resolve", h.ResolvePark)
	r.Get("/stats", h.CatalogStats)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Throttle(rate.NewLimiter(rate.Every(30*time.Second), 2)))
		r.Post("/refresh", h.RefreshCatalog)
	})

	return r
}
