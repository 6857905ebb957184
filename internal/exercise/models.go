// Package exercise manages the exercise catalog: a shared set of built-in
// movements suitable for elderly users plus user-defined custom entries.
package exercise

// Type categorizes how an exercise is performed.
type Type string

const (
	TypeWeights    Type = "weights"
	TypeBodyweight Type = "bodyweight"
	TypeCardio     Type = "cardio"
)

// Exercise is a single movement in the catalog. Built-in exercises carry an
// "ex_" prefixed identity and must not be deleted once referenced by history;
// the database handles that with cascading semantics, not this package.
type Exercise struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Type                Type    `json:"type"`
	MuscleGroup         string  `json:"muscle_group"`
	DescriptionMarkdown string  `json:"description_markdown"`
	Custom              bool    `json:"custom"`
	DefaultSets         int     `json:"default_sets"`
	DefaultReps         int     `json:"default_reps"`
	DefaultWeightKg     float64 `json:"default_weight_kg"`
	SafetyNotes         string  `json:"safety_notes,omitempty"`
}
