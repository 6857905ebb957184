package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/myrsky/passo/internal/exercise"
	"github.com/myrsky/passo/internal/plan"
	"github.com/myrsky/passo/internal/session"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response",
			slog.Any("error", err))
	}
}

// readJSON decodes the request body into v. Unknown fields are rejected so
// client typos surface as errors instead of silently ignored settings.
func (app *application) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		app.clientError(w, r, http.StatusBadRequest, fmt.Errorf("decode request body: %w", err))
		return false
	}
	return true
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", slog.Any("error", err))
	app.writeJSON(w, r, http.StatusInternalServerError,
		errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, "client error",
		slog.Int("status", status), slog.Any("error", err))
	app.writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

// domainError maps domain failures onto HTTP statuses: conflicting lifecycle
// commands are 409, missing entities 404, everything else a server error.
func (app *application) domainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidTransition), errors.Is(err, session.ErrLastSet):
		app.clientError(w, r, http.StatusConflict, err)
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, plan.ErrNotFound),
		errors.Is(err, exercise.ErrNotFound):
		app.clientError(w, r, http.StatusNotFound, err)
	default:
		app.serverError(w, r, err)
	}
}
