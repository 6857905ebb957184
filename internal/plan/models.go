// Package plan provides weekly training plans: deterministic generation
// from the user profile and persistence with a single active plan at a time.
package plan

import "time"

// Kind is the activity assigned to a plan day.
type Kind string

const (
	KindRest    Kind = "rest"
	KindWalk    Kind = "walk"
	KindCircuit Kind = "circuit"
)

// Source distinguishes generated plans from hand-built ones.
type Source string

const (
	SourceAutomatic Source = "automatic"
	SourceCustom    Source = "custom"
)

// Activity is one prescribed entry within a plan day. Either ExerciseID
// references the catalog or Label carries free text for walks/stretching.
type Activity struct {
	ExerciseID        string  `json:"exercise_id,omitempty"`
	Label             string  `json:"label,omitempty"`
	TargetSets        int     `json:"target_sets,omitempty"`
	TargetReps        int     `json:"target_reps,omitempty"`
	TargetWeightKg    float64 `json:"target_weight_kg,omitempty"`
	TargetDistanceKm  float64 `json:"target_distance_km,omitempty"`
	TargetDurationMin int     `json:"target_duration_min,omitempty"`
	Notes             string  `json:"notes,omitempty"`
}

// Day prescribes rest, a walk, or a circuit for one weekday.
type Day struct {
	Weekday    time.Weekday `json:"weekday"`
	Kind       Kind         `json:"kind"`
	Activities []Activity   `json:"activities,omitempty"`
}

// WeeklyPlan holds exactly seven days in Monday..Sunday order.
type WeeklyPlan struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Source    Source    `json:"source"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	Days      []Day     `json:"days"`
}

// WeekOrder is the fixed weekday ordering used throughout the app.
//
//nolint:gochecknoglobals // fixed ordering shared by generator and repository.
var WeekOrder = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// DayFor returns the plan day for the given weekday, or a rest day when the
// plan has no entry for it. Missing a plan for a day is a normal state.
func (p WeeklyPlan) DayFor(weekday time.Weekday) Day {
	for _, d := range p.Days {
		if d.Weekday == weekday {
			return d
		}
	}
	return Day{Weekday: weekday, Kind: KindRest}
}
