package plan_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/myrsky/passo/internal/plan"
	"github.com/myrsky/passo/internal/profile"
	"github.com/myrsky/passo/internal/sqlite"
	"github.com/myrsky/passo/internal/testhelpers"
)

func newTestRepository(t *testing.T) *plan.Repository {
	t.Helper()

	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(context.Background(), ":memory:", logger)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})
	return plan.NewRepository(db, logger)
}

func generated(days ...time.Weekday) plan.WeeklyPlan {
	return plan.Generate(profile.Profile{AvailableDays: days}, testCatalog())
}

func TestRepository_SaveAndGetActive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if _, err := repo.GetActive(ctx); !errors.Is(err, plan.ErrNotFound) {
		t.Errorf("GetActive() on empty database = %v, want ErrNotFound", err)
	}

	saved, err := repo.Save(ctx, generated(time.Monday, time.Wednesday), true)
	if err != nil {
		t.Fatalf("Save() = %v", err)
	}

	active, err := repo.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive() = %v", err)
	}
	if active.ID != saved.ID {
		t.Errorf("active plan = %s, want %s", active.ID, saved.ID)
	}
	if len(active.Days) != 7 {
		t.Errorf("loaded plan has %d days, want 7", len(active.Days))
	}

	// Activities survive the round trip with their targets.
	day := active.DayFor(time.Wednesday)
	if day.Kind != plan.KindCircuit || len(day.Activities) == 0 {
		t.Fatalf("Wednesday = %+v, want circuit with activities", day)
	}
	if day.Activities[0].ExerciseID == "" || day.Activities[0].TargetSets == 0 {
		t.Errorf("activity lost its targets: %+v", day.Activities[0])
	}
}

func TestRepository_SingleActivePlan(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	first, err := repo.Save(ctx, generated(time.Monday), true)
	if err != nil {
		t.Fatalf("Save() = %v", err)
	}
	second, err := repo.Save(ctx, generated(time.Tuesday), true)
	if err != nil {
		t.Fatalf("Save() = %v", err)
	}

	active, err := repo.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive() = %v", err)
	}
	if active.ID != second.ID {
		t.Errorf("active plan = %s, want the later %s", active.ID, second.ID)
	}

	if err = repo.Activate(ctx, first.ID); err != nil {
		t.Fatalf("Activate() = %v", err)
	}
	if active, err = repo.GetActive(ctx); err != nil {
		t.Fatalf("GetActive() = %v", err)
	}
	if active.ID != first.ID {
		t.Errorf("active plan after re-activation = %s, want %s", active.ID, first.ID)
	}

	plans, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() = %v", err)
	}
	activeCount := 0
	for _, p := range plans {
		if p.Active {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Errorf("%d plans marked active, want exactly 1", activeCount)
	}
}

func TestRepository_ActivateUnknownPlan(t *testing.T) {
	repo := newTestRepository(t)

	if err := repo.Activate(context.Background(), "plan_missing"); !errors.Is(err, plan.ErrNotFound) {
		t.Errorf("Activate() unknown plan = %v, want ErrNotFound", err)
	}
}
