package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"twonest/internal/core"
	applog "twonest/internal/log"
	"twonest/internal/services"
	"twonest/internal/share"
)

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorBody{Error: msg})
}

// respondServiceError maps domain errors to HTTP status codes.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= 500 {
		slog.ErrorContext(r.Context(), "Request failed",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
		respondError(w, status, "internal error")
		return
	}
	respondError(w, status, err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrTransactionNotFound),
		errors.Is(err, services.ErrGoalNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNothingToSettle):
		return http.StatusConflict
	case errors.Is(err, share.ErrDecode),
		errors.Is(err, services.ErrInvalidImportMode):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidSplit),
		errors.Is(err, core.ErrUnknownUser),
		errors.Is(err, core.ErrUnexpectedSplit),
		errors.Is(err, core.ErrEmptyGoalName),
		errors.Is(err, core.ErrInvalidTarget),
		errors.Is(err, services.ErrInvalidBudget),
		errors.Is(err, services.ErrInvalidSettings):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
