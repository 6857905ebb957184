package main

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// routes wires up the JSON API consumed by the walking and circuit apps.
func (app *application) routes(corsOrigins string) http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", app.healthHandler).Methods(http.MethodGet)

	api.HandleFunc("/profile", app.profileGetHandler).Methods(http.MethodGet)
	api.HandleFunc("/profile", app.profilePutHandler).Methods(http.MethodPut)

	api.HandleFunc("/exercises", app.exerciseListHandler).Methods(http.MethodGet)
	api.HandleFunc("/exercises", app.exerciseCreateHandler).Methods(http.MethodPost)
	api.HandleFunc("/exercises/{id}/info", app.exerciseInfoHandler).Methods(http.MethodGet)

	api.HandleFunc("/plans", app.planListHandler).Methods(http.MethodGet)
	api.HandleFunc("/plans", app.planCreateHandler).Methods(http.MethodPost)
	api.HandleFunc("/plans/active", app.planActiveHandler).Methods(http.MethodGet)
	api.HandleFunc("/plans/generate", app.planGenerateHandler).Methods(http.MethodPost)
	api.HandleFunc("/plans/{id}/activate", app.planActivateHandler).Methods(http.MethodPost)

	api.HandleFunc("/walk", app.walkSnapshotHandler).Methods(http.MethodGet)
	api.HandleFunc("/walk/start", app.walkStartHandler).Methods(http.MethodPost)
	api.HandleFunc("/walk/pause", app.walkPauseHandler).Methods(http.MethodPost)
	api.HandleFunc("/walk/resume", app.walkResumeHandler).Methods(http.MethodPost)
	api.HandleFunc("/walk/stop", app.walkStopHandler).Methods(http.MethodPost)
	api.HandleFunc("/walk/save", app.walkSaveHandler).Methods(http.MethodPost)
	api.HandleFunc("/walk/discard", app.walkDiscardHandler).Methods(http.MethodPost)
	api.HandleFunc("/walk/gps", app.walkGPSHandler).Methods(http.MethodPost)
	api.HandleFunc("/walk/steps", app.walkStepsHandler).Methods(http.MethodPost)

	api.HandleFunc("/circuit", app.circuitSnapshotHandler).Methods(http.MethodGet)
	api.HandleFunc("/circuit/prepare", app.circuitPrepareHandler).Methods(http.MethodPost)
	api.HandleFunc("/circuit/start", app.circuitStartHandler).Methods(http.MethodPost)
	api.HandleFunc("/circuit/pause", app.circuitPauseHandler).Methods(http.MethodPost)
	api.HandleFunc("/circuit/resume", app.circuitResumeHandler).Methods(http.MethodPost)
	api.HandleFunc("/circuit/stop", app.circuitStopHandler).Methods(http.MethodPost)
	api.HandleFunc("/circuit/save", app.circuitSaveHandler).Methods(http.MethodPost)
	api.HandleFunc("/circuit/discard", app.circuitDiscardHandler).Methods(http.MethodPost)
	api.HandleFunc("/circuit/sets/update", app.circuitUpdateSetHandler).Methods(http.MethodPost)
	api.HandleFunc("/circuit/sets/toggle", app.circuitToggleSetHandler).Methods(http.MethodPost)
	api.HandleFunc("/circuit/sets/append", app.circuitAppendSetHandler).Methods(http.MethodPost)
	api.HandleFunc("/circuit/sets/remove", app.circuitRemoveSetHandler).Methods(http.MethodPost)
	api.HandleFunc("/circuit/swap", app.circuitSwapHandler).Methods(http.MethodPost)

	api.HandleFunc("/stats", app.statsHandler).Methods(http.MethodGet)

	api.HandleFunc("/history/walks", app.walkHistoryHandler).Methods(http.MethodGet)
	api.HandleFunc("/history/walks/{id}", app.walkDetailHandler).Methods(http.MethodGet)
	api.HandleFunc("/history/circuits", app.circuitHistoryHandler).Methods(http.MethodGet)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: strings.Split(corsOrigins, ","),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})

	return app.recoverPanic(app.logRequest(corsMiddleware.Handler(router)))
}
