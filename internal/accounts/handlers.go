package accounts

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kyleolivo/fogandfern/internal/catalog"
)

// Handler exposes the account repository over HTTP. Visit logging resolves
// the park through the catalog repository first, so the handler needs both.
type Handler struct {
	Repo  *Repository
	Parks *catalog.Repository
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var catErr *catalog.Error
	if errors.As(err, &catErr) {
		status := http.StatusBadGateway
		switch catErr.Kind {
		case catalog.KindNotFound:
			status = http.StatusNotFound
		case catalog.KindInvalidInput:
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{
			"kind":       string(catErr.Kind),
			"error":      catErr.Description(),
			"suggestion": catErr.RecoverySuggestion(),
		})
		return
	}

	var domainErr *Error
	if !errors.As(err, &domainErr) {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Kind {
	case KindNotFound:
		status = http.StatusNotFound
	case KindInvalidInput, KindIncompleteProfile:
		status = http.StatusBadRequest
	case KindAuthFailure:
		status = http.StatusInternalServerError
	case KindPermissionDenied:
		status = http.StatusForbidden
	}

	body := map[string]any{
		"kind":       string(domainErr.Kind),
		"error":      domainErr.Description(),
		"suggestion": domainErr.RecoverySuggestion(),
	}
	if len(domainErr.MissingFields) > 0 {
		body["missing_fields"] = domainErr.MissingFields
	}
	writeJSON(w, status, body)
}

func userIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, &Error{Kind: KindInvalidInput, Context: "user id", Err: err}
	}
	return id, nil
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.Repo.CurrentUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &Error{Kind: KindInvalidInput, Context: "request body", Err: err})
		return
	}

	user, err := h.Repo.CreateUser(r.Context(), req.DisplayName, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		DisplayName *string `json:"display_name"`
		Email       *string `json:"email"`
		CurrentCity *string `json:"current_city"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &Error{Kind: KindInvalidInput, Context: "request body", Err: err})
		return
	}

	user, err := h.Repo.UpdatePreferences(r.Context(), id, Preferences(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateStats(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req Stats
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &Error{Kind: KindInvalidInput, Context: "request body", Err: err})
		return
	}

	user, err := h.Repo.UpdateStats(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Repo.DeleteUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		City string `json:"city"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &Error{Kind: KindInvalidInput, Context: "request body", Err: err})
		return
	}

	user, err := h.Repo.CompleteOnboarding(r.Context(), id, req.City)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) LogVisit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       uuid.UUID `json:"user_id"`
		ParkRef      string    `json:"park_ref"`
		Timestamp    time.Time `json:"timestamp"`
		JournalEntry string    `json:"journal_entry"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &Error{Kind: KindInvalidInput, Context: "request body", Err: err})
		return
	}

	park, err := h.Parks.FindParkByRef(r.Context(), req.ParkRef)
	if err != nil {
		writeError(w, err)
		return
	}

	visit, err := h.Repo.LogVisit(r.Context(), req.UserID, park, req.Timestamp, req.JournalEntry)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, visit)
}

func (h *Handler) ListVisits(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	visits, err := h.Repo.Visits(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, visits)
}
