package deviation_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrsky/passo/internal/deviation"
	"github.com/myrsky/passo/internal/plan"
	"github.com/myrsky/passo/internal/session"
)

func plannedActivities() []plan.Activity {
	return []plan.Activity{
		{ExerciseID: "ex_bicipiti", Label: "Bicipiti", TargetSets: 2, TargetReps: 10, TargetWeightKg: 2.0},
		{ExerciseID: "ex_petto", Label: "Petto", TargetSets: 3, TargetReps: 10, TargetWeightKg: 3.0},
	}
}

func plannedCircuit(exercises []session.ExerciseLog) session.Circuit {
	return session.Circuit{
		ID:        "circuit_test",
		PlanRef:   &session.PlanRef{PlanID: "plan_abc", Weekday: time.Wednesday},
		Exercises: exercises,
	}
}

func TestCompute_NilWithoutPlan(t *testing.T) {
	c := session.Circuit{Exercises: []session.ExerciseLog{
		{ExerciseID: "ex_bicipiti", Sets: []session.SetLog{{Number: 1, Reps: 10, Completed: true}}},
	}}

	if got := deviation.Compute(c, nil); got != nil {
		t.Errorf("Compute() without plan = %+v, want nil", got)
	}
}

func TestCompute_OnPlanIsEmpty(t *testing.T) {
	c := plannedCircuit([]session.ExerciseLog{
		{ExerciseID: "ex_bicipiti", Name: "Bicipiti", Sets: []session.SetLog{
			{Number: 1, Reps: 10, WeightKg: 2.0, Completed: true},
			{Number: 2, Reps: 10, WeightKg: 2.0, Completed: true},
		}},
		{ExerciseID: "ex_petto", Name: "Petto", Sets: []session.SetLog{
			{Number: 1, Reps: 10, WeightKg: 3.0, Completed: true},
			{Number: 2, Reps: 10, WeightKg: 3.0, Completed: true},
			{Number: 3, Reps: 10, WeightKg: 3.0, Completed: true},
		}},
	})

	got := deviation.Compute(c, plannedActivities())
	if got == nil {
		t.Fatal("Compute() with plan returned nil")
	}
	if len(got.Entries) != 0 {
		t.Errorf("on-plan session produced entries %+v, want none", got.Entries)
	}
}

func TestCompute_ExtraRepsAndWeight(t *testing.T) {
	// Two completed sets at 10 and 12 reps against 2x10: +2 reps. Weights
	// 2.5 and 3.1 average to 2.8 against a 2.0 target: +0.8 kg.
	c := plannedCircuit([]session.ExerciseLog{
		{ExerciseID: "ex_bicipiti", Name: "Bicipiti", Sets: []session.SetLog{
			{Number: 1, Reps: 10, WeightKg: 2.5, Completed: true},
			{Number: 2, Reps: 12, WeightKg: 3.1, Completed: true},
		}},
	})

	got := deviation.Compute(c, plannedActivities())
	want := []deviation.Delta{{
		ExerciseID:    "ex_bicipiti",
		Name:          "Bicipiti",
		RepsDelta:     2,
		WeightDeltaKg: 0.8,
		Sets: []deviation.SetDelta{
			{Number: 1, WeightDeltaKg: 0.5},
			{Number: 2, RepsDelta: 2, WeightDeltaKg: 1.1},
		},
	}}
	if diff := cmp.Diff(want, got.Entries); diff != "" {
		t.Errorf("Compute() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_PerSetDriftsSurviveCancellation(t *testing.T) {
	// 8 and 12 reps against 2x10 cancel out in the aggregate, but each set
	// still deviated and keeps its own entry. The on-target set stays silent.
	c := plannedCircuit([]session.ExerciseLog{
		{ExerciseID: "ex_bicipiti", Name: "Bicipiti", Sets: []session.SetLog{
			{Number: 1, Reps: 8, WeightKg: 2.0, Completed: true},
			{Number: 2, Reps: 12, WeightKg: 2.0, Completed: true},
		}},
	})

	got := deviation.Compute(c, plannedActivities())
	want := []deviation.Delta{{
		ExerciseID: "ex_bicipiti",
		Name:       "Bicipiti",
		Sets: []deviation.SetDelta{
			{Number: 1, RepsDelta: -2},
			{Number: 2, RepsDelta: 2},
		},
	}}
	if diff := cmp.Diff(want, got.Entries); diff != "" {
		t.Errorf("Compute() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_SkippedSets(t *testing.T) {
	// Only one of three planned sets completed: -2 sets, -20 reps.
	c := plannedCircuit([]session.ExerciseLog{
		{ExerciseID: "ex_petto", Name: "Petto", Sets: []session.SetLog{
			{Number: 1, Reps: 10, WeightKg: 3.0, Completed: true},
			{Number: 2, Reps: 10, WeightKg: 3.0},
			{Number: 3, Reps: 10, WeightKg: 3.0},
		}},
	})

	got := deviation.Compute(c, plannedActivities())
	want := []deviation.Delta{{
		ExerciseID: "ex_petto",
		Name:       "Petto",
		SetsDelta:  -2,
		RepsDelta:  -20,
	}}
	if diff := cmp.Diff(want, got.Entries); diff != "" {
		t.Errorf("Compute() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_SwappedExerciseIgnored(t *testing.T) {
	// An exercise absent from the plan targets, e.g. swapped in before the
	// session, produces no delta.
	c := plannedCircuit([]session.ExerciseLog{
		{ExerciseID: "exc_custom", Name: "Elastico", Sets: []session.SetLog{
			{Number: 1, Reps: 20, WeightKg: 1.0, Completed: true},
		}},
	})

	got := deviation.Compute(c, plannedActivities())
	if got == nil || len(got.Entries) != 0 {
		t.Errorf("Compute() with only off-plan exercises = %+v, want empty report", got)
	}
}
