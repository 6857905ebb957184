// Package deviation compares a logged weight circuit against the plan it ran
// on and reports how far the user strayed per exercise. The report is pure
// derivation, recomputed from the log and the targets whenever needed.
package deviation

import (
	"math"

	"github.com/myrsky/passo/internal/plan"
	"github.com/myrsky/passo/internal/session"
)

// SetDelta is the difference of one completed set against the per-set plan
// target, suppressed entirely when the set matched it.
type SetDelta struct {
	Number        int     `json:"number"`
	RepsDelta     int     `json:"reps_delta,omitempty"`
	WeightDeltaKg float64 `json:"weight_delta_kg,omitempty"`
}

// Delta is the per-exercise difference between logged work and the plan
// targets, with the per-set breakdown alongside the aggregate. Only non-zero
// fields carry information; a fully on-plan exercise produces no entry at all.
type Delta struct {
	ExerciseID    string     `json:"exercise_id"`
	Name          string     `json:"name"`
	SetsDelta     int        `json:"sets_delta,omitempty"`
	RepsDelta     int        `json:"reps_delta,omitempty"`
	WeightDeltaKg float64    `json:"weight_delta_kg,omitempty"`
	Sets          []SetDelta `json:"sets,omitempty"`
}

// Report lists the exercises that deviated from plan. An empty Entries slice
// means the session matched its plan exactly.
type Report struct {
	Entries []Delta `json:"entries"`
}

// Compute builds the deviation report for a circuit executed against the
// given plan targets. Returns nil when the session ran without a plan, which
// is distinct from an empty report on a perfectly followed plan.
//
// Per exercise, against its plan target:
//   - sets delta: completed sets minus planned sets
//   - reps delta: total completed reps minus planned sets times planned reps
//   - weight delta: mean completed weight minus planned weight, rounded to
//     one decimal
//
// Each completed set additionally gets its own reps and weight delta against
// the per-set target, so opposite drifts stay visible even when they cancel
// out in the aggregate.
func Compute(c session.Circuit, planned []plan.Activity) *Report {
	if c.PlanRef == nil || len(planned) == 0 {
		return nil
	}

	targets := make(map[string]plan.Activity, len(planned))
	for _, act := range planned {
		if act.ExerciseID != "" {
			targets[act.ExerciseID] = act
		}
	}

	report := &Report{Entries: []Delta{}}
	for _, log := range c.Exercises {
		target, ok := targets[log.ExerciseID]
		if !ok {
			continue
		}

		var (
			completedSets int
			totalReps     int
			totalWeight   float64
			setDeltas     []SetDelta
		)
		for _, set := range log.Sets {
			if !set.Completed {
				continue
			}
			completedSets++
			totalReps += set.Reps
			totalWeight += set.WeightKg

			sd := SetDelta{
				Number:        set.Number,
				RepsDelta:     set.Reps - target.TargetReps,
				WeightDeltaKg: round1(set.WeightKg - target.TargetWeightKg),
			}
			if sd.RepsDelta != 0 || sd.WeightDeltaKg != 0 {
				setDeltas = append(setDeltas, sd)
			}
		}

		delta := Delta{
			ExerciseID: log.ExerciseID,
			Name:       log.Name,
			SetsDelta:  completedSets - target.TargetSets,
			RepsDelta:  totalReps - target.TargetSets*target.TargetReps,
			Sets:       setDeltas,
		}
		if completedSets > 0 {
			mean := totalWeight / float64(completedSets)
			delta.WeightDeltaKg = round1(mean - target.TargetWeightKg)
		}

		if delta.SetsDelta != 0 || delta.RepsDelta != 0 || delta.WeightDeltaKg != 0 || len(delta.Sets) > 0 {
			report.Entries = append(report.Entries, delta)
		}
	}
	return report
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
