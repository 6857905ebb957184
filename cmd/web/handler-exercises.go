package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/myrsky/passo/internal/exercise"
)

func (app *application) exerciseListHandler(w http.ResponseWriter, r *http.Request) {
	exercises, err := app.exercises.List(r.Context())
	if err != nil {
		app.serverError(w, r, fmt.Errorf("list exercises: %w", err))
		return
	}
	app.writeJSON(w, r, http.StatusOK, exercises)
}

func (app *application) exerciseCreateHandler(w http.ResponseWriter, r *http.Request) {
	var ex exercise.Exercise
	if !app.readJSON(w, r, &ex) {
		return
	}
	if ex.Name == "" {
		app.clientError(w, r, http.StatusBadRequest, fmt.Errorf("exercise name is required"))
		return
	}

	created, err := app.exercises.Create(r.Context(), ex)
	if err != nil {
		app.serverError(w, r, fmt.Errorf("create exercise: %w", err))
		return
	}
	app.writeJSON(w, r, http.StatusCreated, created)
}

// exerciseInfoHandler returns the exercise with its description rendered to
// HTML for the info page.
func (app *application) exerciseInfoHandler(w http.ResponseWriter, r *http.Request) {
	ex, err := app.exercises.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		app.domainError(w, r, err)
		return
	}

	html, err := exercise.RenderDescriptionHTML(ex)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, struct {
		exercise.Exercise
		DescriptionHTML string `json:"description_html"`
	}{Exercise: ex, DescriptionHTML: html})
}
