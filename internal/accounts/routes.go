package accounts

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kyleolivo/fogandfern/internal/catalog"
)

// SetupRoutes mounts the account and visit surface.
func SetupRoutes(repo *Repository, parks *catalog.Repository) http.Handler {
	h := &Handler{Repo: repo, Parks: parks}
	r := chi.NewRouter()

	r.Get("/users/current", h.CurrentUser)
	r.Post("/users", h.CreateUser)
	r.Get("/users/{id}", h.GetUser)
	r.Patch("/users/{id}/preferences", h.UpdatePreferences)
	r.Patch("/users/{id}/stats", h.UpdateStats)
	r.Delete("/users/{id}", h.DeleteUser)
	r.Post("/users/{id}/onboarding", h.CompleteOnboarding)
	r.Get("/users/{id}/visits", h.ListVisits)
	r.Post("/visits", h.LogVisit)

	return r
}
