package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/settings"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/validation"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps domain errors to a status code. Unexpected errors are logged and hidden.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case validation.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, order.ErrNotFound), errors.Is(err, settings.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrInvalidTransition), errors.Is(err, catalog.ErrDuplicate):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return validation.Errorf("invalid request body")
	}
	return nil
}

// pathParam returns the decoded value of a chi URL parameter.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
