package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/myrsky/passo/internal/exercise"
	"github.com/myrsky/passo/internal/plan"
)

// CircuitStore persists finished weight-circuit sessions.
type CircuitStore interface {
	SaveCircuit(ctx context.Context, c Circuit) (Circuit, error)
}

// CircuitSnapshot is the read-only view of an in-progress circuit.
type CircuitSnapshot struct {
	Status          Status        `json:"status"`
	ElapsedSeconds  int           `json:"elapsed_seconds"`
	DurationMinutes int           `json:"duration_minutes"`
	Exercises       []ExerciseLog `json:"exercises"`
	PlanRef         *PlanRef      `json:"plan_ref,omitempty"`
}

// CircuitRecorder tracks a single weight-circuit session: the timer plus the
// per-set log the user edits while exercising. Like the walk recorder, every
// mutation goes through one mutex.
type CircuitRecorder struct {
	mu     sync.Mutex
	logger *slog.Logger
	store  CircuitStore

	status         Status
	startedAt      time.Time
	elapsedSeconds int
	exercises      []ExerciseLog
	planRef        *PlanRef
	planned        []plan.Activity
	note           string
}

func NewCircuitRecorder(store CircuitStore, logger *slog.Logger) *CircuitRecorder {
	return &CircuitRecorder{
		logger: logger,
		store:  store,
		status: StatusIdle,
	}
}

// SeedFromPlan pre-fills the set log from a circuit plan day. Only valid
// while idle. The planned targets are kept alongside the log so deviations
// can be computed at save time.
func (r *CircuitRecorder) SeedFromPlan(planID string, day plan.Day) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusIdle {
		return fmt.Errorf("%w: seed from %s", ErrInvalidTransition, r.status)
	}

	logs := make([]ExerciseLog, 0, len(day.Activities))
	for _, act := range day.Activities {
		logs = append(logs, seededLog(act.ExerciseID, act.Label, act.TargetSets, act.TargetReps, act.TargetWeightKg))
	}
	r.exercises = logs
	r.planRef = &PlanRef{PlanID: planID, Weekday: day.Weekday}
	r.planned = append([]plan.Activity(nil), day.Activities...)
	return nil
}

// SeedDefaults pre-fills the set log from the exercise catalog defaults,
// used when no plan prescribes a circuit for today.
func (r *CircuitRecorder) SeedDefaults(catalog []exercise.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusIdle {
		return fmt.Errorf("%w: seed from %s", ErrInvalidTransition, r.status)
	}

	logs := make([]ExerciseLog, 0, len(catalog))
	for _, ex := range catalog {
		if ex.Type == exercise.TypeCardio {
			continue
		}
		logs = append(logs, seededLog(ex.ID, ex.Name, ex.DefaultSets, ex.DefaultReps, ex.DefaultWeightKg))
	}
	r.exercises = logs
	r.planRef = nil
	r.planned = nil
	return nil
}

func seededLog(id, name string, sets, reps int, weightKg float64) ExerciseLog {
	if sets < 1 {
		sets = 1
	}
	log := ExerciseLog{ExerciseID: id, Name: name, Sets: make([]SetLog, 0, sets)}
	for i := 0; i < sets; i++ {
		log.Sets = append(log.Sets, SetLog{Number: i + 1, Reps: reps, WeightKg: weightKg})
	}
	return log
}

// SwapExercise replaces the exercise at the given position with an
// alternative before the session starts. The alternative's own defaults win
// when it has any; otherwise the slot keeps its current set count and
// targets. Logged data for the slot is reseeded either way.
func (r *CircuitRecorder) SwapExercise(position int, alt exercise.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusIdle {
		return fmt.Errorf("%w: swap exercise from %s", ErrInvalidTransition, r.status)
	}
	if position < 0 || position >= len(r.exercises) {
		return fmt.Errorf("swap exercise: position %d out of range", position)
	}

	current := r.exercises[position]
	sets, reps, weight := len(current.Sets), 0, 0.0
	if len(current.Sets) > 0 {
		reps = current.Sets[0].Reps
		weight = current.Sets[0].WeightKg
	}
	if alt.DefaultSets > 0 {
		sets, reps, weight = alt.DefaultSets, alt.DefaultReps, alt.DefaultWeightKg
	}
	r.exercises[position] = seededLog(alt.ID, alt.Name, sets, reps, weight)
	return nil
}

// Start begins the circuit. Requires a seeded set log.
func (r *CircuitRecorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusIdle {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, r.status)
	}
	if len(r.exercises) == 0 {
		return fmt.Errorf("start circuit: no exercises seeded")
	}
	r.status = StatusActive
	r.startedAt = time.Now().UTC()
	return nil
}

// Pause suspends the timer; the set log stays editable.
func (r *CircuitRecorder) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return fmt.Errorf("%w: pause from %s", ErrInvalidTransition, r.status)
	}
	r.status = StatusPaused
	return nil
}

// Resume continues a paused circuit.
func (r *CircuitRecorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusPaused {
		return fmt.Errorf("%w: resume from %s", ErrInvalidTransition, r.status)
	}
	r.status = StatusActive
	return nil
}

// Stop freezes the circuit for review.
func (r *CircuitRecorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive && r.status != StatusPaused {
		return fmt.Errorf("%w: stop from %s", ErrInvalidTransition, r.status)
	}
	r.status = StatusStopped
	return nil
}

// Discard throws the stopped circuit away.
func (r *CircuitRecorder) Discard() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusStopped {
		return fmt.Errorf("%w: discard from %s", ErrInvalidTransition, r.status)
	}
	r.reset()
	return nil
}

// Tick advances the timer by one second. Dropped unless active, so stale
// ticks after pause or stop are harmless.
func (r *CircuitRecorder) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return
	}
	r.elapsedSeconds++
}

// UpdateSet overwrites reps and weight for one set. Allowed any time before
// the session stops, including while seeding or paused.
func (r *CircuitRecorder) UpdateSet(position, setNumber, reps int, weightKg float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, err := r.findSet(position, setNumber)
	if err != nil {
		return err
	}
	if reps < 0 {
		reps = 0
	}
	if weightKg < 0 {
		weightKg = 0
	}
	set.Reps = reps
	set.WeightKg = weightKg
	return nil
}

// ToggleSet flips the completed flag for one set.
func (r *CircuitRecorder) ToggleSet(position, setNumber int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, err := r.findSet(position, setNumber)
	if err != nil {
		return err
	}
	set.Completed = !set.Completed
	return nil
}

// AppendSet adds one more set to an exercise, copying reps and weight from
// the current last set.
func (r *CircuitRecorder) AppendSet(position int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log, err := r.findExercise(position)
	if err != nil {
		return err
	}
	last := log.Sets[len(log.Sets)-1]
	log.Sets = append(log.Sets, SetLog{
		Number:   last.Number + 1,
		Reps:     last.Reps,
		WeightKg: last.WeightKg,
	})
	return nil
}

// RemoveLastSet drops the last set of an exercise. Every exercise keeps at
// least one set.
func (r *CircuitRecorder) RemoveLastSet(position int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log, err := r.findExercise(position)
	if err != nil {
		return err
	}
	if len(log.Sets) == 1 {
		return ErrLastSet
	}
	log.Sets = log.Sets[:len(log.Sets)-1]
	return nil
}

// SetNote attaches a free-text note shown in history.
func (r *CircuitRecorder) SetNote(note string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.note = note
}

// Snapshot returns a deep copy of the current session state for display.
func (r *CircuitRecorder) Snapshot() CircuitSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return CircuitSnapshot{
		Status:          r.status,
		ElapsedSeconds:  r.elapsedSeconds,
		DurationMinutes: durationMinutes(r.elapsedSeconds),
		Exercises:       copyLogs(r.exercises),
		PlanRef:         r.planRef,
	}
}

// PlannedActivities returns the plan targets this circuit was seeded from,
// or nil for an unplanned session.
func (r *CircuitRecorder) PlannedActivities() []plan.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]plan.Activity(nil), r.planned...)
}

// Save persists the stopped circuit and resets the recorder. On failure the
// session stays stopped so the user can retry.
func (r *CircuitRecorder) Save(ctx context.Context) (Circuit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusStopped {
		return Circuit{}, fmt.Errorf("%w: save from %s", ErrInvalidTransition, r.status)
	}

	c := Circuit{
		StartedAt:       r.startedAt,
		DurationMinutes: durationMinutes(r.elapsedSeconds),
		Exercises:       copyLogs(r.exercises),
		PlanRef:         r.planRef,
		Note:            r.note,
	}

	saved, err := r.store.SaveCircuit(ctx, c)
	if err != nil {
		return Circuit{}, fmt.Errorf("save circuit session: %w", err)
	}

	r.reset()
	return saved, nil
}

func (r *CircuitRecorder) findExercise(position int) (*ExerciseLog, error) {
	if r.status == StatusStopped {
		return nil, fmt.Errorf("%w: edit sets from %s", ErrInvalidTransition, r.status)
	}
	if position < 0 || position >= len(r.exercises) {
		return nil, fmt.Errorf("edit sets: position %d out of range", position)
	}
	return &r.exercises[position], nil
}

func (r *CircuitRecorder) findSet(position, setNumber int) (*SetLog, error) {
	log, err := r.findExercise(position)
	if err != nil {
		return nil, err
	}
	if setNumber < 1 || setNumber > len(log.Sets) {
		return nil, fmt.Errorf("edit sets: set %d out of range", setNumber)
	}
	return &log.Sets[setNumber-1], nil
}

func copyLogs(logs []ExerciseLog) []ExerciseLog {
	out := make([]ExerciseLog, len(logs))
	for i, log := range logs {
		out[i] = log
		out[i].Sets = append([]SetLog(nil), log.Sets...)
	}
	return out
}

// reset must be called with the mutex held.
func (r *CircuitRecorder) reset() {
	r.status = StatusIdle
	r.startedAt = time.Time{}
	r.elapsedSeconds = 0
	r.exercises = nil
	r.planRef = nil
	r.planned = nil
	r.note = ""
}
