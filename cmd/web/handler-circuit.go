package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/myrsky/passo/internal/deviation"
	"github.com/myrsky/passo/internal/plan"
	"github.com/myrsky/passo/internal/session"
)

// prepareCircuit seeds the recorder for today: from the active plan when it
// prescribes a circuit for this weekday, from catalog defaults otherwise.
func (app *application) prepareCircuit(r *http.Request) error {
	ctx := r.Context()

	activePlan, err := app.plans.GetActive(ctx)
	if err == nil {
		day := activePlan.DayFor(time.Now().Weekday())
		if day.Kind == plan.KindCircuit {
			return app.circuit.SeedFromPlan(activePlan.ID, day)
		}
	} else if !errors.Is(err, plan.ErrNotFound) {
		return fmt.Errorf("get active plan: %w", err)
	}

	catalog, err := app.exercises.List(ctx)
	if err != nil {
		return fmt.Errorf("list exercises: %w", err)
	}
	return app.circuit.SeedDefaults(catalog)
}

// circuitView is the snapshot as the API serves it, with the live deviation
// report attached while the session runs against a plan.
type circuitView struct {
	session.CircuitSnapshot
	Deviations *deviation.Report `json:"deviations,omitempty"`
}

// liveDeviations recomputes the report from the in-flight log so the user can
// see drift from plan targets while still exercising.
func (app *application) liveDeviations(snap session.CircuitSnapshot) *deviation.Report {
	if snap.PlanRef == nil {
		return nil
	}
	current := session.Circuit{Exercises: snap.Exercises, PlanRef: snap.PlanRef}
	return deviation.Compute(current, app.circuit.PlannedActivities())
}

func (app *application) writeCircuitSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := app.circuit.Snapshot()
	app.writeJSON(w, r, http.StatusOK, circuitView{
		CircuitSnapshot: snap,
		Deviations:      app.liveDeviations(snap),
	})
}

// circuitPrepareHandler seeds today's circuit without starting the timer,
// giving the user a chance to review targets and swap exercises first.
func (app *application) circuitPrepareHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.prepareCircuit(r); err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeCircuitSnapshot(w, r)
}

func (app *application) circuitStartHandler(w http.ResponseWriter, r *http.Request) {
	snap := app.circuit.Snapshot()
	if snap.Status == session.StatusIdle && len(snap.Exercises) == 0 {
		if err := app.prepareCircuit(r); err != nil {
			app.domainError(w, r, err)
			return
		}
	}

	if err := app.circuit.Start(); err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeCircuitSnapshot(w, r)
}

func (app *application) circuitPauseHandler(w http.ResponseWriter, r *http.Request) {
	app.circuitTransition(w, r, app.circuit.Pause)
}

func (app *application) circuitResumeHandler(w http.ResponseWriter, r *http.Request) {
	app.circuitTransition(w, r, app.circuit.Resume)
}

func (app *application) circuitStopHandler(w http.ResponseWriter, r *http.Request) {
	app.circuitTransition(w, r, app.circuit.Stop)
}

func (app *application) circuitDiscardHandler(w http.ResponseWriter, r *http.Request) {
	app.circuitTransition(w, r, app.circuit.Discard)
}

func (app *application) circuitTransition(w http.ResponseWriter, r *http.Request, transition func() error) {
	if err := transition(); err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeCircuitSnapshot(w, r)
}

type circuitSaveRequest struct {
	Note string `json:"note,omitempty"`
}

type circuitSaveResponse struct {
	Session    session.Circuit   `json:"session"`
	Deviations *deviation.Report `json:"deviations,omitempty"`
}

func (app *application) circuitSaveHandler(w http.ResponseWriter, r *http.Request) {
	var req circuitSaveRequest
	if r.ContentLength > 0 && !app.readJSON(w, r, &req) {
		return
	}
	if req.Note != "" {
		app.circuit.SetNote(req.Note)
	}

	// The planned targets vanish when Save resets the recorder, so capture
	// them first for the deviation report.
	planned := app.circuit.PlannedActivities()

	saved, err := app.circuit.Save(r.Context())
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, circuitSaveResponse{
		Session:    saved,
		Deviations: deviation.Compute(saved, planned),
	})
}

type setEditRequest struct {
	Exercise int     `json:"exercise"`
	Set      int     `json:"set,omitempty"`
	Reps     int     `json:"reps,omitempty"`
	WeightKg float64 `json:"weight_kg,omitempty"`
}

func (app *application) circuitUpdateSetHandler(w http.ResponseWriter, r *http.Request) {
	var req setEditRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	app.circuitEdit(w, r, func() error {
		return app.circuit.UpdateSet(req.Exercise, req.Set, req.Reps, req.WeightKg)
	})
}

func (app *application) circuitToggleSetHandler(w http.ResponseWriter, r *http.Request) {
	var req setEditRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	app.circuitEdit(w, r, func() error {
		return app.circuit.ToggleSet(req.Exercise, req.Set)
	})
}

func (app *application) circuitAppendSetHandler(w http.ResponseWriter, r *http.Request) {
	var req setEditRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	app.circuitEdit(w, r, func() error {
		return app.circuit.AppendSet(req.Exercise)
	})
}

func (app *application) circuitRemoveSetHandler(w http.ResponseWriter, r *http.Request) {
	var req setEditRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	app.circuitEdit(w, r, func() error {
		return app.circuit.RemoveLastSet(req.Exercise)
	})
}

func (app *application) circuitEdit(w http.ResponseWriter, r *http.Request, edit func() error) {
	if err := edit(); err != nil {
		app.domainError(w, r, err)
		return
	}
	app.writeCircuitSnapshot(w, r)
}

type swapRequest struct {
	Exercise   int    `json:"exercise"`
	ExerciseID string `json:"exercise_id"`
}

func (app *application) circuitSwapHandler(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	alt, err := app.exercises.Get(r.Context(), req.ExerciseID)
	if err != nil {
		app.domainError(w, r, err)
		return
	}
	app.circuitEdit(w, r, func() error {
		return app.circuit.SwapExercise(req.Exercise, alt)
	})
}

func (app *application) circuitSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	app.writeCircuitSnapshot(w, r)
}

// circuitHistoryEntry pairs a saved session with the deviation report
// recomputed against the plan it ran on.
type circuitHistoryEntry struct {
	session.Circuit
	Deviations *deviation.Report `json:"deviations,omitempty"`
}

func (app *application) circuitHistoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	circuits, err := app.sessions.ListCircuits(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	entries := make([]circuitHistoryEntry, 0, len(circuits))
	plans := make(map[string]*plan.WeeklyPlan)
	for _, c := range circuits {
		entry := circuitHistoryEntry{Circuit: c}
		if c.PlanRef != nil {
			p, err := app.historyPlan(ctx, plans, c.PlanRef.PlanID)
			if err != nil {
				app.serverError(w, r, err)
				return
			}
			if p != nil {
				entry.Deviations = deviation.Compute(c, p.DayFor(c.PlanRef.Weekday).Activities)
			}
		}
		entries = append(entries, entry)
	}
	app.writeJSON(w, r, http.StatusOK, entries)
}

// historyPlan resolves and memoizes a plan while rendering history. A plan
// that no longer exists yields nil so the session still renders, just
// without deviations.
func (app *application) historyPlan(ctx context.Context, cache map[string]*plan.WeeklyPlan, id string) (*plan.WeeklyPlan, error) {
	if p, ok := cache[id]; ok {
		return p, nil
	}
	p, err := app.plans.Get(ctx, id)
	if errors.Is(err, plan.ErrNotFound) {
		cache[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plan %s: %w", id, err)
	}
	cache[id] = &p
	return &p, nil
}
