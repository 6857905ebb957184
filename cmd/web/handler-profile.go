package main

import (
	"fmt"
	"net/http"

	"github.com/myrsky/passo/internal/profile"
)

func (app *application) profileGetHandler(w http.ResponseWriter, r *http.Request) {
	p, err := app.profiles.Get(r.Context())
	if err != nil {
		app.serverError(w, r, fmt.Errorf("get profile: %w", err))
		return
	}
	app.writeJSON(w, r, http.StatusOK, p)
}

func (app *application) profilePutHandler(w http.ResponseWriter, r *http.Request) {
	var p profile.Profile
	if !app.readJSON(w, r, &p) {
		return
	}

	// Out-of-range fields fall back to the documented defaults instead of
	// failing the update.
	p = p.Normalized()

	if err := app.profiles.Set(r.Context(), p); err != nil {
		app.serverError(w, r, fmt.Errorf("set profile: %w", err))
		return
	}
	app.writeJSON(w, r, http.StatusOK, p)
}
