package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/myrsky/passo/internal/plan"
)

func (app *application) planListHandler(w http.ResponseWriter, r *http.Request) {
	plans, err := app.plans.List(r.Context())
	if err != nil {
		app.serverError(w, r, fmt.Errorf("list plans: %w", err))
		return
	}
	app.writeJSON(w, r, http.StatusOK, plans)
}

func (app *application) planActiveHandler(w http.ResponseWriter, r *http.Request) {
	p, err := app.plans.GetActive(r.Context())
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, p)
}

// planGenerateHandler derives a fresh weekly plan from the stored profile and
// the exercise catalog, persists it and activates it.
func (app *application) planGenerateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := app.profiles.Get(ctx)
	if err != nil {
		app.serverError(w, r, fmt.Errorf("get profile: %w", err))
		return
	}
	catalog, err := app.exercises.List(ctx)
	if err != nil {
		app.serverError(w, r, fmt.Errorf("list exercises: %w", err))
		return
	}

	generated := plan.Generate(p, catalog)
	saved, err := app.plans.Save(ctx, generated, true)
	if err != nil {
		app.serverError(w, r, fmt.Errorf("save generated plan: %w", err))
		return
	}
	app.writeJSON(w, r, http.StatusCreated, saved)
}

// planCreateHandler stores a hand-built plan. The client controls activation
// through the active flag; days it omits default to rest on read.
func (app *application) planCreateHandler(w http.ResponseWriter, r *http.Request) {
	var p plan.WeeklyPlan
	if !app.readJSON(w, r, &p) {
		return
	}
	for _, day := range p.Days {
		switch day.Kind {
		case plan.KindRest, plan.KindWalk, plan.KindCircuit:
		default:
			app.clientError(w, r, http.StatusBadRequest,
				fmt.Errorf("unknown plan day kind %q", day.Kind))
			return
		}
	}
	if p.Name == "" {
		p.Name = "Piano personalizzato"
	}
	p.Source = plan.SourceCustom

	saved, err := app.plans.Save(r.Context(), p, p.Active)
	if err != nil {
		app.serverError(w, r, fmt.Errorf("save custom plan: %w", err))
		return
	}
	app.writeJSON(w, r, http.StatusCreated, saved)
}

func (app *application) planActivateHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := app.plans.Activate(r.Context(), id); err != nil {
		app.domainError(w, r, err)
		return
	}

	p, err := app.plans.Get(r.Context(), id)
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, p)
}
