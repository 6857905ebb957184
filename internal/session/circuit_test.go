package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrsky/passo/internal/exercise"
	"github.com/myrsky/passo/internal/plan"
	"github.com/myrsky/passo/internal/session"
	"github.com/myrsky/passo/internal/testhelpers"
)

type fakeCircuitStore struct {
	saved []session.Circuit
	err   error
}

func (s *fakeCircuitStore) SaveCircuit(_ context.Context, c session.Circuit) (session.Circuit, error) {
	if s.err != nil {
		return session.Circuit{}, s.err
	}
	c.ID = "circuit_test"
	s.saved = append(s.saved, c)
	return c, nil
}

func newCircuitRecorder(t *testing.T, store session.CircuitStore) *session.CircuitRecorder {
	t.Helper()
	return session.NewCircuitRecorder(store, testhelpers.NewLogger(testhelpers.NewWriter(t)))
}

func circuitPlanDay() plan.Day {
	return plan.Day{
		Weekday: time.Wednesday,
		Kind:    plan.KindCircuit,
		Activities: []plan.Activity{
			{ExerciseID: "ex_bicipiti", Label: "Bicipiti", TargetSets: 2, TargetReps: 10, TargetWeightKg: 2.0},
			{ExerciseID: "ex_petto", Label: "Petto", TargetSets: 3, TargetReps: 10, TargetWeightKg: 3.0},
		},
	}
}

func TestCircuitRecorder_SeedFromPlan(t *testing.T) {
	r := newCircuitRecorder(t, &fakeCircuitStore{})

	if err := r.SeedFromPlan("plan_abc", circuitPlanDay()); err != nil {
		t.Fatalf("SeedFromPlan() = %v", err)
	}

	snap := r.Snapshot()
	want := []session.ExerciseLog{
		{ExerciseID: "ex_bicipiti", Name: "Bicipiti", Sets: []session.SetLog{
			{Number: 1, Reps: 10, WeightKg: 2.0},
			{Number: 2, Reps: 10, WeightKg: 2.0},
		}},
		{ExerciseID: "ex_petto", Name: "Petto", Sets: []session.SetLog{
			{Number: 1, Reps: 10, WeightKg: 3.0},
			{Number: 2, Reps: 10, WeightKg: 3.0},
			{Number: 3, Reps: 10, WeightKg: 3.0},
		}},
	}
	if diff := cmp.Diff(want, snap.Exercises); diff != "" {
		t.Errorf("seeded exercises mismatch (-want +got):\n%s", diff)
	}
	if snap.PlanRef == nil || snap.PlanRef.PlanID != "plan_abc" || snap.PlanRef.Weekday != time.Wednesday {
		t.Errorf("plan ref = %+v, want plan_abc on Wednesday", snap.PlanRef)
	}
}

func TestCircuitRecorder_SeedDefaultsSkipsCardio(t *testing.T) {
	r := newCircuitRecorder(t, &fakeCircuitStore{})

	catalog := []exercise.Exercise{
		{ID: "ex_spalle", Name: "Spalle", Type: exercise.TypeWeights, DefaultSets: 3, DefaultReps: 12, DefaultWeightKg: 1.5},
		{ID: "ex_cardio", Name: "Cardio", Type: exercise.TypeCardio, DefaultSets: 1, DefaultReps: 1},
		{ID: "ex_addome", Name: "Addome", Type: exercise.TypeBodyweight, DefaultSets: 2, DefaultReps: 15},
	}
	if err := r.SeedDefaults(catalog); err != nil {
		t.Fatalf("SeedDefaults() = %v", err)
	}

	snap := r.Snapshot()
	if len(snap.Exercises) != 2 {
		t.Fatalf("seeded %d exercises, want 2 (cardio excluded)", len(snap.Exercises))
	}
	if snap.Exercises[0].ExerciseID != "ex_spalle" || len(snap.Exercises[0].Sets) != 3 {
		t.Errorf("first exercise = %+v, want ex_spalle with 3 sets", snap.Exercises[0])
	}
	if snap.PlanRef != nil {
		t.Errorf("plan ref = %+v, want nil for default seed", snap.PlanRef)
	}
}

func TestCircuitRecorder_SetEdits(t *testing.T) {
	r := newCircuitRecorder(t, &fakeCircuitStore{})
	if err := r.SeedFromPlan("plan_abc", circuitPlanDay()); err != nil {
		t.Fatalf("SeedFromPlan() = %v", err)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}

	if err := r.UpdateSet(0, 2, 12, 2.5); err != nil {
		t.Fatalf("UpdateSet() = %v", err)
	}
	if err := r.ToggleSet(0, 2); err != nil {
		t.Fatalf("ToggleSet() = %v", err)
	}
	if err := r.AppendSet(0); err != nil {
		t.Fatalf("AppendSet() = %v", err)
	}

	sets := r.Snapshot().Exercises[0].Sets
	want := []session.SetLog{
		{Number: 1, Reps: 10, WeightKg: 2.0},
		{Number: 2, Reps: 12, WeightKg: 2.5, Completed: true},
		// Appended sets copy reps and weight from the previous last set.
		{Number: 3, Reps: 12, WeightKg: 2.5},
	}
	if diff := cmp.Diff(want, sets); diff != "" {
		t.Errorf("sets after edits mismatch (-want +got):\n%s", diff)
	}

	if err := r.RemoveLastSet(0); err != nil {
		t.Fatalf("RemoveLastSet() = %v", err)
	}
	if err := r.RemoveLastSet(0); err != nil {
		t.Fatalf("RemoveLastSet() = %v", err)
	}
	if err := r.RemoveLastSet(0); !errors.Is(err, session.ErrLastSet) {
		t.Errorf("RemoveLastSet() on single set = %v, want ErrLastSet", err)
	}
	if got := len(r.Snapshot().Exercises[0].Sets); got != 1 {
		t.Errorf("sets remaining = %d, want 1", got)
	}
}

func TestCircuitRecorder_UpdateSetClampsNegatives(t *testing.T) {
	r := newCircuitRecorder(t, &fakeCircuitStore{})
	if err := r.SeedFromPlan("plan_abc", circuitPlanDay()); err != nil {
		t.Fatalf("SeedFromPlan() = %v", err)
	}

	if err := r.UpdateSet(0, 1, -3, -1.5); err != nil {
		t.Fatalf("UpdateSet() = %v", err)
	}
	set := r.Snapshot().Exercises[0].Sets[0]
	if set.Reps != 0 || set.WeightKg != 0 {
		t.Errorf("negative input stored as %+v, want zeroes", set)
	}
}

func TestCircuitRecorder_SwapExercise(t *testing.T) {
	r := newCircuitRecorder(t, &fakeCircuitStore{})
	if err := r.SeedFromPlan("plan_abc", circuitPlanDay()); err != nil {
		t.Fatalf("SeedFromPlan() = %v", err)
	}

	// Alternative with its own defaults wins.
	alt := exercise.Exercise{ID: "ex_spalle", Name: "Spalle", DefaultSets: 3, DefaultReps: 12, DefaultWeightKg: 1.5}
	if err := r.SwapExercise(0, alt); err != nil {
		t.Fatalf("SwapExercise() = %v", err)
	}
	first := r.Snapshot().Exercises[0]
	if first.ExerciseID != "ex_spalle" || len(first.Sets) != 3 || first.Sets[0].Reps != 12 {
		t.Errorf("swapped slot = %+v, want ex_spalle with 3x12", first)
	}

	// Alternative without defaults keeps the slot's current shape.
	bare := exercise.Exercise{ID: "exc_custom", Name: "Elastico"}
	if err := r.SwapExercise(1, bare); err != nil {
		t.Fatalf("SwapExercise() = %v", err)
	}
	second := r.Snapshot().Exercises[1]
	if second.ExerciseID != "exc_custom" || len(second.Sets) != 3 || second.Sets[0].Reps != 10 {
		t.Errorf("swapped slot = %+v, want exc_custom keeping 3x10", second)
	}

	if err := r.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if err := r.SwapExercise(0, alt); !errors.Is(err, session.ErrInvalidTransition) {
		t.Errorf("SwapExercise() after start = %v, want ErrInvalidTransition", err)
	}
}

func TestCircuitRecorder_DurationRoundsUp(t *testing.T) {
	r := newCircuitRecorder(t, &fakeCircuitStore{})
	if err := r.SeedFromPlan("plan_abc", circuitPlanDay()); err != nil {
		t.Fatalf("SeedFromPlan() = %v", err)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}

	for i := 0; i < 61; i++ {
		r.Tick()
	}
	if got := r.Snapshot().DurationMinutes; got != 2 {
		t.Errorf("duration after 61s = %d min, want 2", got)
	}
}

func TestCircuitRecorder_SaveFailurePreservesState(t *testing.T) {
	ctx := context.Background()
	store := &fakeCircuitStore{err: errors.New("disk full")}
	r := newCircuitRecorder(t, store)
	if err := r.SeedFromPlan("plan_abc", circuitPlanDay()); err != nil {
		t.Fatalf("SeedFromPlan() = %v", err)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	r.Tick()
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}

	if _, err := r.Save(ctx); err == nil {
		t.Fatal("Save() with failing store did not return an error")
	}
	if got := r.Snapshot().Status; got != session.StatusStopped {
		t.Errorf("status after failed save = %s, want stopped", got)
	}

	store.err = nil
	saved, err := r.Save(ctx)
	if err != nil {
		t.Fatalf("retried Save() = %v", err)
	}
	if saved.PlanRef == nil || saved.PlanRef.PlanID != "plan_abc" {
		t.Errorf("saved circuit plan ref = %+v, want plan_abc", saved.PlanRef)
	}
	if got := r.Snapshot().Status; got != session.StatusIdle {
		t.Errorf("status after successful save = %s, want idle", got)
	}
}
