package catalog

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kyleolivo/fogandfern/internal/location"
)

// Handler exposes the repository over HTTP. Handlers only decode, call the
// repository and encode; all domain logic lives below.
type Handler struct {
	Repo *Repository

	// Location supplies the device coordinate for nearby queries that omit
	// lat/lng. Optional; platform glue injects the real provider.
	Location location.Provider
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Kind {
	case KindNotFound:
		status = http.StatusNotFound
	case KindInvalidInput, KindInvalidCategory:
		status = http.StatusBadRequest
	case KindUnsupportedCity:
		status = http.StatusUnprocessableEntity
	case KindMissingLocationData:
		status = http.StatusPreconditionFailed
	case KindDuplicate:
		status = http.StatusConflict
	case KindDatasetNotFound, KindSyncFailure, KindDataCorruption:
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]string{
		"kind":       string(domainErr.Kind),
		"error":      domainErr.Description(),
		"suggestion": domainErr.RecoverySuggestion(),
		"detail":     domainErr.Context,
	})
}

func cityParam(r *http.Request) string {
	return r.URL.Query().Get("city")
}

func (h *Handler) ListParks(w http.ResponseWriter, r *http.Request) {
	parks, err := h.Repo.GetAll(r.Context(), cityParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parks)
}

func (h *Handler) NearbyParks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	radius, radErr := strconv.ParseFloat(q.Get("radius"), 64)
	if radErr != nil {
		writeError(w, &Error{Kind: KindInvalidInput, Context: "radius must be a number"})
		return
	}

	var lat, lng float64
	if q.Get("lat") == "" && q.Get("lng") == "" {
		// No explicit point: fall back to the device location provider.
		coord, err := h.deviceCoordinate()
		if err != nil {
			writeError(w, err)
			return
		}
		lat, lng = coord.Latitude, coord.Longitude
	} else {
		var latErr, lngErr error
		lat, latErr = strconv.ParseFloat(q.Get("lat"), 64)
		lng, lngErr = strconv.ParseFloat(q.Get("lng"), 64)
		if latErr != nil || lngErr != nil {
			writeError(w, &Error{Kind: KindInvalidInput, Context: "lat and lng must be numbers"})
			return
		}
	}

	parks, err := h.Repo.GetNear(r.Context(), cityParam(r), lat, lng, radius)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parks)
}

func (h *Handler) deviceCoordinate() (location.Coordinate, error) {
	if h.Location == nil || !h.Location.Authorization().Authorized() {
		return location.Coordinate{}, &Error{Kind: KindMissingLocationData, Context: "location access not authorized"}
	}
	coord, ok := h.Location.Latest()
	if !ok {
		return location.Coordinate{}, &Error{Kind: KindMissingLocationData, Context: "no location sample yet"}
	}
	return coord, nil
}

func (h *Handler) ParksByCategory(w http.ResponseWriter, r *http.Request) {
	category := Category(chi.URLParam(r, "category"))
	parks, err := h.Repo.GetByCategory(r.Context(), cityParam(r), category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parks)
}

func (h *Handler) ParksBySize(w http.ResponseWriter, r *http.Request) {
	size := SizeClass(chi.URLParam(r, "size"))
	parks, err := h.Repo.GetBySize(r.Context(), cityParam(r), size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parks)
}

func (h *Handler) SearchParks(w http.ResponseWriter, r *http.Request) {
	parks, err := h.Repo.Search(r.Context(), cityParam(r), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parks)
}

func (h *Handler) CatalogStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Repo.Statistics(r.Context(), cityParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	report, err := h.Repo.Refresh(r.Context(), cityParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) ResolvePark(w http.ResponseWriter, r *http.Request) {
	park, err := h.Repo.FindParkByRef(r.Context(), r.URL.Query().Get("ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, park)
}
