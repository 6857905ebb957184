package main

import (
	"net/http"
	"time"

	"github.com/myrsky/passo/internal/stats"
)

func (app *application) statsHandler(w http.ResponseWriter, r *http.Request) {
	period, err := stats.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	walks, err := app.sessions.ListWalks(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	circuits, err := app.sessions.ListCircuits(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, stats.Compute(walks, circuits, period, time.Now()))
}
