// Package session implements the recorders that govern the lifecycle of a
// single in-progress walk or weight circuit: start, pause/resume, stop,
// discard and save. Timer ticks and sensor samples interleave onto one
// mutable state guarded by a single mutex per recorder.
package session

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a recorder.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusActive  Status = "active"
	StatusPaused  Status = "paused"
	StatusStopped Status = "stopped"
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed in
	// the recorder's current state, including a second save attempt after
	// the first one already reset the recorder.
	ErrInvalidTransition = errors.New("invalid session state transition")
	// ErrLastSet is returned when removing a set would leave an exercise
	// with no sets at all.
	ErrLastSet = errors.New("cannot remove the only remaining set")
)

// KmPerStep estimates walked distance from a step count when no GPS source
// is available. Calibrated for a short elderly stride.
const KmPerStep = 0.0007

// GPSPoint is one raw location sample from the location collaborator.
type GPSPoint struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Altitude  *float64   `json:"altitude,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Walk is a finalized walking session handed to the persistence collaborator.
type Walk struct {
	ID             string     `json:"id"`
	StartedAt      time.Time  `json:"started_at"`
	ElapsedSeconds int        `json:"elapsed_seconds"`
	DistanceKm     float64    `json:"distance_km"`
	Steps          int        `json:"steps"`
	AvgSpeedKmh    float64    `json:"avg_speed_kmh"`
	Track          []GPSPoint `json:"track,omitempty"`
	TemperatureC   *float64   `json:"temperature_c,omitempty"`
	Note           string     `json:"note,omitempty"`
}

// SetLog is one logged set within an exercise. Set numbers are 1-based and
// contiguous: sets are appended at the end and only the last one can be
// removed.
type SetLog struct {
	Number    int     `json:"number"`
	Reps      int     `json:"reps"`
	WeightKg  float64 `json:"weight_kg"`
	Completed bool    `json:"completed"`
}

// ExerciseLog groups the logged sets of one exercise within a circuit.
type ExerciseLog struct {
	ExerciseID string   `json:"exercise_id"`
	Name       string   `json:"name"`
	Sets       []SetLog `json:"sets"`
}

// PlanRef identifies the plan day a circuit was executed against.
type PlanRef struct {
	PlanID  string       `json:"plan_id"`
	Weekday time.Weekday `json:"weekday"`
}

// Circuit is a finalized weight-circuit session.
type Circuit struct {
	ID              string        `json:"id"`
	StartedAt       time.Time     `json:"started_at"`
	DurationMinutes int           `json:"duration_minutes"`
	Exercises       []ExerciseLog `json:"exercises"`
	PlanRef         *PlanRef      `json:"plan_ref,omitempty"`
	Note            string        `json:"note,omitempty"`
}

// avgSpeedKmh derives average speed from distance and elapsed time. Speed is
// defined as zero for a zero-length session so it can never diverge from the
// stored distance and time.
func avgSpeedKmh(distanceKm float64, elapsedSeconds int) float64 {
	if elapsedSeconds == 0 {
		return 0
	}
	return distanceKm / (float64(elapsedSeconds) / 3600)
}

// durationMinutes is the circuit duration rule: the ceiling of elapsed
// seconds over full minutes.
func durationMinutes(elapsedSeconds int) int {
	return (elapsedSeconds + 59) / 60
}
