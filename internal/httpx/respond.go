package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nmesfin/mesob/internal/apperror"
)

// WriteJSON writes payload with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteMessage writes a bare error body with the given status code.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]any{"error": message})
}

// WriteError maps the error's kind to an HTTP status. Internal failures are
// logged with their cause and answered with a generic body so storage
// details never leak to clients.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		WriteMessage(w, http.StatusBadRequest, err.Error())
	case apperror.KindAuthorization:
		WriteMessage(w, http.StatusForbidden, err.Error())
	case apperror.KindNotFound:
		WriteMessage(w, http.StatusNotFound, err.Error())
	case apperror.KindInvalidState:
		WriteMessage(w, http.StatusConflict, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		WriteMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
