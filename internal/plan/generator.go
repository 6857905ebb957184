package plan

import (
	"slices"
	"time"

	"github.com/myrsky/passo/internal/exercise"
	"github.com/myrsky/passo/internal/profile"
)

// Default days substituted when the profile has no available days. The
// generator never produces a plan with zero active days.
//
//nolint:gochecknoglobals // fixed fallback schedule.
var defaultDays = []time.Weekday{time.Monday, time.Wednesday, time.Friday}

const circuitExerciseCount = 4

// levelTargets holds the per-level circuit defaults. The table is an
// implementation choice; it only has to grow monotonically with level.
type levelTargets struct {
	sets int
	reps int
}

func targetsForLevel(level profile.Level) levelTargets {
	switch level {
	case profile.LevelIntermediate:
		return levelTargets{sets: 3, reps: 10}
	case profile.LevelAdvanced:
		return levelTargets{sets: 3, reps: 12}
	default:
		return levelTargets{sets: 2, reps: 10}
	}
}

// walkTargets returns duration and distance defaults for a moderate walk day.
func walkTargets(level profile.Level) (durationMin int, distanceKm float64) {
	if level == profile.LevelBeginner {
		return 30, 2.0
	}
	return 45, 3.5
}

// Generate produces a deterministic weekly plan from the profile and the
// exercise catalog. Days outside the available set rest; available days
// rotate walk / circuit / light walk by their index in the available list.
// Generation cannot fail: missing profile fields fall back to defaults.
func Generate(p profile.Profile, catalog []exercise.Exercise) WeeklyPlan {
	p = p.Normalized()

	available := p.AvailableDays
	if len(available) == 0 {
		available = defaultDays
	}

	days := make([]Day, 0, len(WeekOrder))
	for _, weekday := range WeekOrder {
		idx := slices.Index(available, weekday)
		if idx < 0 {
			days = append(days, Day{Weekday: weekday, Kind: KindRest})
			continue
		}
		days = append(days, activeDay(weekday, idx, p.Level, catalog))
	}

	return WeeklyPlan{
		Name:   "Piano automatico",
		Source: SourceAutomatic,
		Days:   days,
	}
}

func activeDay(weekday time.Weekday, idx int, level profile.Level, catalog []exercise.Exercise) Day {
	switch idx % 3 {
	case 1:
		return Day{Weekday: weekday, Kind: KindCircuit, Activities: circuitActivities(level, catalog)}
	case 2:
		return Day{
			Weekday: weekday,
			Kind:    KindWalk,
			Activities: []Activity{{
				Label:             "Camminata leggera + stretching",
				TargetDurationMin: 20,
				Notes:             "Ritmo tranquillo, chiudere con stretching dolce",
			}},
		}
	default:
		durationMin, distanceKm := walkTargets(level)
		return Day{
			Weekday: weekday,
			Kind:    KindWalk,
			Activities: []Activity{{
				Label:             "Camminata",
				TargetDurationMin: durationMin,
				TargetDistanceKm:  distanceKm,
				Notes:             "Passo moderato, con pause se necessario",
			}},
		}
	}
}

// circuitActivities prescribes the first few catalog exercises with targets
// scaled by level. Catalog order is stable, so output is deterministic for
// identical input.
func circuitActivities(level profile.Level, catalog []exercise.Exercise) []Activity {
	targets := targetsForLevel(level)

	count := circuitExerciseCount
	if count > len(catalog) {
		count = len(catalog)
	}

	activities := make([]Activity, 0, count)
	for _, ex := range catalog[:count] {
		sets := targets.sets
		if ex.DefaultSets > 0 && ex.DefaultSets < sets {
			sets = ex.DefaultSets
		}
		reps := targets.reps
		if ex.DefaultReps > 0 && ex.DefaultReps < reps {
			reps = ex.DefaultReps
		}
		activities = append(activities, Activity{
			ExerciseID:     ex.ID,
			Label:          ex.Name,
			TargetSets:     sets,
			TargetReps:     reps,
			TargetWeightKg: ex.DefaultWeightKg,
			Notes:          ex.SafetyNotes,
		})
	}
	return activities
}
