package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/myrsky/passo/internal/session"
)

const weatherLookupTimeout = 3 * time.Second

type walkStartRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (app *application) walkStartHandler(w http.ResponseWriter, r *http.Request) {
	var req walkStartRequest
	if r.ContentLength > 0 && !app.readJSON(w, r, &req) {
		return
	}

	if err := app.walk.Start(); err != nil {
		app.domainError(w, r, err)
		return
	}

	// Temperature is decoration on the session. A failed lookup is logged
	// and forgotten, never surfaced to the user.
	if req.Latitude != nil && req.Longitude != nil {
		ctx, cancel := context.WithTimeout(r.Context(), weatherLookupTimeout)
		defer cancel()
		if temperature, err := app.weather.CurrentTemperature(ctx, *req.Latitude, *req.Longitude); err != nil {
			app.logger.LogAttrs(r.Context(), slog.LevelWarn, "weather lookup failed",
				slog.Any("error", err))
		} else {
			app.walk.SetTemperature(temperature)
		}
	}

	app.writeJSON(w, r, http.StatusOK, app.walk.Snapshot())
}

func (app *application) walkPauseHandler(w http.ResponseWriter, r *http.Request) {
	app.walkTransition(w, r, app.walk.Pause)
}

func (app *application) walkResumeHandler(w http.ResponseWriter, r *http.Request) {
	app.walkTransition(w, r, app.walk.Resume)
}

func (app *application) walkStopHandler(w http.ResponseWriter, r *http.Request) {
	app.walkTransition(w, r, app.walk.Stop)
}

func (app *application) walkDiscardHandler(w http.ResponseWriter, r *http.Request) {
	app.walkTransition(w, r, app.walk.Discard)
}

func (app *application) walkTransition(w http.ResponseWriter, r *http.Request, transition func() error) {
	if err := transition(); err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, app.walk.Snapshot())
}

type walkSaveRequest struct {
	Note string `json:"note,omitempty"`
}

func (app *application) walkSaveHandler(w http.ResponseWriter, r *http.Request) {
	var req walkSaveRequest
	if r.ContentLength > 0 && !app.readJSON(w, r, &req) {
		return
	}
	if req.Note != "" {
		app.walk.SetNote(req.Note)
	}

	saved, err := app.walk.Save(r.Context())
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, saved)
}

type gpsSampleRequest struct {
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	Altitude       *float64   `json:"altitude,omitempty"`
	AccuracyMeters float64    `json:"accuracy_m"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
}

func (app *application) walkGPSHandler(w http.ResponseWriter, r *http.Request) {
	var req gpsSampleRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	point := session.GPSPoint{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Altitude:  req.Altitude,
		Timestamp: req.Timestamp,
	}
	if err := app.walk.AddGPSSample(r.Context(), point, req.AccuracyMeters); err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, app.walk.Snapshot())
}

type stepsRequest struct {
	Steps int `json:"steps"`
}

func (app *application) walkStepsHandler(w http.ResponseWriter, r *http.Request) {
	var req stepsRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	if err := app.walk.AddSteps(req.Steps); err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, app.walk.Snapshot())
}

func (app *application) walkSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, app.walk.Snapshot())
}

func (app *application) walkHistoryHandler(w http.ResponseWriter, r *http.Request) {
	walks, err := app.sessions.ListWalks(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if walks == nil {
		walks = []session.Walk{}
	}
	app.writeJSON(w, r, http.StatusOK, walks)
}

func (app *application) walkDetailHandler(w http.ResponseWriter, r *http.Request) {
	walk, err := app.sessions.GetWalk(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, walk)
}
