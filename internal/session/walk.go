package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/myrsky/passo/internal/geo"
)

// WalkStore persists finished walking sessions.
type WalkStore interface {
	SaveWalk(ctx context.Context, w Walk) (Walk, error)
}

// StepSource yields the steps taken since the previous tick. Used when the
// walk runs without GPS and distance is estimated from the step count.
type StepSource func() int

// defaultStepSource simulates a slow elderly cadence of one to two steps per
// second, matching what the step estimator produces without pedometer
// hardware.
func defaultStepSource() int {
	return 1 + rand.Intn(2)
}

// WalkSnapshot is the read-only view of an in-progress walk handed to the
// presentation layer. Speed is always derived from distance and elapsed time.
type WalkSnapshot struct {
	Status         Status   `json:"status"`
	ElapsedSeconds int      `json:"elapsed_seconds"`
	DistanceKm     float64  `json:"distance_km"`
	Steps          int      `json:"steps"`
	AvgSpeedKmh    float64  `json:"avg_speed_kmh"`
	TemperatureC   *float64 `json:"temperature_c,omitempty"`
}

// WalkRecorder tracks a single walking session. All mutations funnel through
// one mutex so that timer ticks, sensor samples and user commands serialize
// onto a consistent state.
type WalkRecorder struct {
	mu     sync.Mutex
	logger *slog.Logger
	store  WalkStore
	steps  StepSource

	status         Status
	startedAt      time.Time
	elapsedSeconds int
	distanceKm     float64
	stepCount      int
	track          []GPSPoint
	lastFix        *GPSPoint
	lastFixElapsed int
	hasGPS         bool
	temperatureC   *float64
	note           string
}

func NewWalkRecorder(store WalkStore, logger *slog.Logger) *WalkRecorder {
	return &WalkRecorder{
		logger: logger,
		store:  store,
		steps:  defaultStepSource,
		status: StatusIdle,
	}
}

// SetStepSource replaces the per-tick step generator. Only used before a
// session starts.
func (r *WalkRecorder) SetStepSource(s StepSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = s
}

// Start begins a new walk. Only valid from idle.
func (r *WalkRecorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusIdle {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, r.status)
	}
	r.reset()
	r.status = StatusActive
	r.startedAt = time.Now().UTC()
	return nil
}

// Pause suspends the session. Elapsed time and distance are kept.
func (r *WalkRecorder) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return fmt.Errorf("%w: pause from %s", ErrInvalidTransition, r.status)
	}
	r.status = StatusPaused
	return nil
}

// Resume continues a paused session without losing accumulated progress.
func (r *WalkRecorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusPaused {
		return fmt.Errorf("%w: resume from %s", ErrInvalidTransition, r.status)
	}
	r.status = StatusActive
	return nil
}

// Stop freezes the session for review. Valid from active or paused.
func (r *WalkRecorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive && r.status != StatusPaused {
		return fmt.Errorf("%w: stop from %s", ErrInvalidTransition, r.status)
	}
	r.status = StatusStopped
	return nil
}

// Discard throws the stopped session away without persisting it.
func (r *WalkRecorder) Discard() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusStopped {
		return fmt.Errorf("%w: discard from %s", ErrInvalidTransition, r.status)
	}
	r.reset()
	return nil
}

// Tick advances the session by one second. Ticks arriving while the session
// is not active, including stale ones delivered after pause or stop, are
// dropped without touching state.
func (r *WalkRecorder) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return
	}
	r.elapsedSeconds++

	// Without GPS the distance is an estimate derived from the step count,
	// so the two can never drift apart.
	if !r.hasGPS {
		r.stepCount += r.steps()
		r.distanceKm = float64(r.stepCount) * KmPerStep
	}
}

// AddSteps records a batch of pedometer steps. When GPS drives the distance
// the steps only feed the step counter.
func (r *WalkRecorder) AddSteps(delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return fmt.Errorf("%w: add steps from %s", ErrInvalidTransition, r.status)
	}
	if delta <= 0 {
		return nil
	}
	r.stepCount += delta
	if !r.hasGPS {
		r.distanceKm = float64(r.stepCount) * KmPerStep
	}
	return nil
}

// AddGPSSample feeds one location fix into the session. Samples with poor
// accuracy are dropped. The increment from the last accepted fix only counts
// when it passes the movement filter; rejected samples never advance the last
// known good position, so a later fix is still measured against it.
func (r *WalkRecorder) AddGPSSample(ctx context.Context, p GPSPoint, accuracyMeters float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return fmt.Errorf("%w: gps sample from %s", ErrInvalidTransition, r.status)
	}
	if !geo.AcceptableAccuracy(accuracyMeters) {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "dropping inaccurate gps sample",
			slog.Float64("accuracy_m", accuracyMeters))
		return nil
	}

	if r.lastFix == nil {
		r.adoptFix(p)
		return nil
	}

	distanceKm := geo.DistanceKm(r.lastFix.Latitude, r.lastFix.Longitude, p.Latitude, p.Longitude)
	elapsed := float64(r.elapsedSeconds - r.lastFixElapsed)
	if !geo.ValidMovement(distanceKm, elapsed) {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "dropping implausible gps movement",
			slog.Float64("distance_km", distanceKm),
			slog.Float64("elapsed_s", elapsed))
		return nil
	}

	r.distanceKm += distanceKm
	r.adoptFix(p)
	return nil
}

func (r *WalkRecorder) adoptFix(p GPSPoint) {
	r.hasGPS = true
	r.lastFix = &p
	r.lastFixElapsed = r.elapsedSeconds
	r.track = append(r.track, p)
}

// SetTemperature attaches the ambient temperature looked up at session start.
// A missing temperature never blocks a walk, so this is best effort.
func (r *WalkRecorder) SetTemperature(celsius float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == StatusIdle {
		return
	}
	r.temperatureC = &celsius
}

// SetNote attaches a free-text note shown in history.
func (r *WalkRecorder) SetNote(note string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.note = note
}

// Snapshot returns the current session state for display.
func (r *WalkRecorder) Snapshot() WalkSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return WalkSnapshot{
		Status:         r.status,
		ElapsedSeconds: r.elapsedSeconds,
		DistanceKm:     r.distanceKm,
		Steps:          r.stepCount,
		AvgSpeedKmh:    avgSpeedKmh(r.distanceKm, r.elapsedSeconds),
		TemperatureC:   r.temperatureC,
	}
}

// Save persists the stopped session and resets the recorder. On failure the
// session stays stopped with all data intact so the user can retry. A second
// save after a successful one fails the state check because the recorder is
// already idle again.
func (r *WalkRecorder) Save(ctx context.Context) (Walk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusStopped {
		return Walk{}, fmt.Errorf("%w: save from %s", ErrInvalidTransition, r.status)
	}

	w := Walk{
		StartedAt:      r.startedAt,
		ElapsedSeconds: r.elapsedSeconds,
		DistanceKm:     r.distanceKm,
		Steps:          r.stepCount,
		AvgSpeedKmh:    avgSpeedKmh(r.distanceKm, r.elapsedSeconds),
		Track:          append([]GPSPoint(nil), r.track...),
		TemperatureC:   r.temperatureC,
		Note:           r.note,
	}

	saved, err := r.store.SaveWalk(ctx, w)
	if err != nil {
		return Walk{}, fmt.Errorf("save walk session: %w", err)
	}

	r.reset()
	return saved, nil
}

// reset must be called with the mutex held.
func (r *WalkRecorder) reset() {
	r.status = StatusIdle
	r.startedAt = time.Time{}
	r.elapsedSeconds = 0
	r.distanceKm = 0
	r.stepCount = 0
	r.track = nil
	r.lastFix = nil
	r.lastFixElapsed = 0
	r.hasGPS = false
	r.temperatureC = nil
	r.note = ""
}
