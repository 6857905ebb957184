package session_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/myrsky/passo/internal/session"
	"github.com/myrsky/passo/internal/testhelpers"
)

type fakeWalkStore struct {
	saved []session.Walk
	err   error
}

func (s *fakeWalkStore) SaveWalk(_ context.Context, w session.Walk) (session.Walk, error) {
	if s.err != nil {
		return session.Walk{}, s.err
	}
	w.ID = "walk_test"
	s.saved = append(s.saved, w)
	return w, nil
}

func newWalkRecorder(t *testing.T, store session.WalkStore) *session.WalkRecorder {
	t.Helper()
	return session.NewWalkRecorder(store, testhelpers.NewLogger(testhelpers.NewWriter(t)))
}

func tick(r *session.WalkRecorder, n int) {
	for i := 0; i < n; i++ {
		r.Tick()
	}
}

func TestWalkRecorder_InvalidTransitions(t *testing.T) {
	r := newWalkRecorder(t, &fakeWalkStore{})

	if err := r.Pause(); !errors.Is(err, session.ErrInvalidTransition) {
		t.Errorf("Pause() from idle = %v, want ErrInvalidTransition", err)
	}
	if err := r.Stop(); !errors.Is(err, session.ErrInvalidTransition) {
		t.Errorf("Stop() from idle = %v, want ErrInvalidTransition", err)
	}
	if _, err := r.Save(context.Background()); !errors.Is(err, session.ErrInvalidTransition) {
		t.Errorf("Save() from idle = %v, want ErrInvalidTransition", err)
	}

	if err := r.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if err := r.Start(); !errors.Is(err, session.ErrInvalidTransition) {
		t.Errorf("Start() while active = %v, want ErrInvalidTransition", err)
	}
	if err := r.Resume(); !errors.Is(err, session.ErrInvalidTransition) {
		t.Errorf("Resume() while active = %v, want ErrInvalidTransition", err)
	}
}

func TestWalkRecorder_PauseKeepsElapsed(t *testing.T) {
	r := newWalkRecorder(t, &fakeWalkStore{})
	r.SetStepSource(func() int { return 1 })

	if err := r.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	tick(r, 5)

	if err := r.Pause(); err != nil {
		t.Fatalf("Pause() = %v", err)
	}
	// Stale ticks delivered after pause must not advance the timer.
	tick(r, 30)

	if err := r.Resume(); err != nil {
		t.Fatalf("Resume() = %v", err)
	}
	tick(r, 5)

	if got := r.Snapshot().ElapsedSeconds; got != 10 {
		t.Errorf("elapsed after 5 ticks + pause + 5 ticks = %d, want 10", got)
	}
}

func TestWalkRecorder_StepEstimateDistance(t *testing.T) {
	store := &fakeWalkStore{}
	r := newWalkRecorder(t, store)
	r.SetStepSource(func() int { return 2 })

	if err := r.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	tick(r, 60)

	snap := r.Snapshot()
	if snap.Steps != 120 {
		t.Errorf("steps after 60 ticks = %d, want 120", snap.Steps)
	}
	wantKm := 120 * session.KmPerStep
	if math.Abs(snap.DistanceKm-wantKm) > 1e-9 {
		t.Errorf("distance = %v, want %v", snap.DistanceKm, wantKm)
	}
	wantSpeed := wantKm / (60.0 / 3600)
	if math.Abs(snap.AvgSpeedKmh-wantSpeed) > 1e-9 {
		t.Errorf("speed = %v, want %v", snap.AvgSpeedKmh, wantSpeed)
	}

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
	saved, err := r.Save(context.Background())
	if err != nil {
		t.Fatalf("Save() = %v", err)
	}

	// The saved record must match the last live view exactly.
	if saved.DistanceKm != snap.DistanceKm || saved.Steps != snap.Steps ||
		saved.ElapsedSeconds != snap.ElapsedSeconds || saved.AvgSpeedKmh != snap.AvgSpeedKmh {
		t.Errorf("saved walk %+v diverges from final snapshot %+v", saved, snap)
	}
}

func TestWalkRecorder_ZeroElapsedSpeed(t *testing.T) {
	r := newWalkRecorder(t, &fakeWalkStore{})

	if err := r.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if got := r.Snapshot().AvgSpeedKmh; got != 0 {
		t.Errorf("speed with zero elapsed = %v, want 0", got)
	}
}

func TestWalkRecorder_GPSFiltering(t *testing.T) {
	ctx := context.Background()
	r := newWalkRecorder(t, &fakeWalkStore{})
	r.SetStepSource(func() int { return 0 })

	if err := r.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}

	// First acceptable fix is adopted without adding distance.
	if err := r.AddGPSSample(ctx, session.GPSPoint{Latitude: 45.0, Longitude: 7.0}, 10); err != nil {
		t.Fatalf("AddGPSSample() = %v", err)
	}
	if got := r.Snapshot().DistanceKm; got != 0 {
		t.Errorf("distance after first fix = %v, want 0", got)
	}

	// Inaccurate sample is dropped entirely.
	tick(r, 80)
	if err := r.AddGPSSample(ctx, session.GPSPoint{Latitude: 45.0009, Longitude: 7.0}, 50); err != nil {
		t.Fatalf("AddGPSSample() = %v", err)
	}
	if got := r.Snapshot().DistanceKm; got != 0 {
		t.Errorf("distance after inaccurate sample = %v, want 0", got)
	}

	// Roughly 100 m north over 80 s is a plausible 4.5 km/h.
	if err := r.AddGPSSample(ctx, session.GPSPoint{Latitude: 45.0009, Longitude: 7.0}, 10); err != nil {
		t.Fatalf("AddGPSSample() = %v", err)
	}
	afterGood := r.Snapshot().DistanceKm
	if afterGood < 0.09 || afterGood > 0.11 {
		t.Errorf("distance after plausible movement = %v, want about 0.1", afterGood)
	}

	// An 11 km teleport is rejected and must not move the reference fix.
	tick(r, 10)
	if err := r.AddGPSSample(ctx, session.GPSPoint{Latitude: 45.1, Longitude: 7.0}, 10); err != nil {
		t.Fatalf("AddGPSSample() = %v", err)
	}
	if got := r.Snapshot().DistanceKm; got != afterGood {
		t.Errorf("distance after rejected jump = %v, want unchanged %v", got, afterGood)
	}

	// The next plausible fix is measured against the last accepted one.
	tick(r, 70)
	if err := r.AddGPSSample(ctx, session.GPSPoint{Latitude: 45.0018, Longitude: 7.0}, 10); err != nil {
		t.Fatalf("AddGPSSample() = %v", err)
	}
	if got := r.Snapshot().DistanceKm; got < 0.18 || got > 0.22 {
		t.Errorf("distance after second plausible movement = %v, want about 0.2", got)
	}
}

func TestWalkRecorder_SaveFailurePreservesState(t *testing.T) {
	ctx := context.Background()
	store := &fakeWalkStore{err: errors.New("disk full")}
	r := newWalkRecorder(t, store)
	r.SetStepSource(func() int { return 1 })

	if err := r.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	tick(r, 30)
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}

	if _, err := r.Save(ctx); err == nil {
		t.Fatal("Save() with failing store did not return an error")
	}
	snap := r.Snapshot()
	if snap.Status != session.StatusStopped || snap.ElapsedSeconds != 30 {
		t.Errorf("state after failed save = %+v, want stopped with 30s elapsed", snap)
	}

	// Retrying once the store recovers must succeed and reset the recorder.
	store.err = nil
	if _, err := r.Save(ctx); err != nil {
		t.Fatalf("retried Save() = %v", err)
	}
	if got := r.Snapshot().Status; got != session.StatusIdle {
		t.Errorf("status after successful save = %s, want idle", got)
	}
	if len(store.saved) != 1 {
		t.Fatalf("store holds %d walks, want 1", len(store.saved))
	}

	// The recorder is idle again, so a duplicate save fails the state check.
	if _, err := r.Save(ctx); !errors.Is(err, session.ErrInvalidTransition) {
		t.Errorf("duplicate Save() = %v, want ErrInvalidTransition", err)
	}
}

func TestWalkRecorder_DiscardDropsSession(t *testing.T) {
	store := &fakeWalkStore{}
	r := newWalkRecorder(t, store)
	r.SetStepSource(func() int { return 1 })

	if err := r.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	tick(r, 10)
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
	if err := r.Discard(); err != nil {
		t.Fatalf("Discard() = %v", err)
	}

	snap := r.Snapshot()
	if snap.Status != session.StatusIdle || snap.ElapsedSeconds != 0 || snap.Steps != 0 {
		t.Errorf("state after discard = %+v, want pristine idle", snap)
	}
	if len(store.saved) != 0 {
		t.Errorf("discard persisted %d walks, want 0", len(store.saved))
	}
}
