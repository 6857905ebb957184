package plan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/myrsky/passo/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

// ErrNotFound is returned when no plan matches. Having no active plan is a
// normal state for callers, not a failure.
var ErrNotFound = errors.New("plan not found")

// Repository handles database operations for weekly plans.
type Repository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewRepository(db *sqlite.Database, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Save persists a plan with a fresh identity and returns it. When activate
// is set, all other plans are deactivated in the same transaction so that at
// most one plan is ever active.
func (r *Repository) Save(ctx context.Context, p WeeklyPlan, activate bool) (WeeklyPlan, error) {
	p.ID = fmt.Sprintf("plan_%s", uuid.NewString()[:12])
	p.CreatedAt = time.Now().UTC()
	p.Active = activate

	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return WeeklyPlan{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	if activate {
		if _, err = tx.ExecContext(ctx, `UPDATE plans SET active = 0`); err != nil {
			return WeeklyPlan{}, fmt.Errorf("deactivate plans: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO plans (id, name, source, active, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(p.Source), p.Active, p.CreatedAt.Format(timestampFormat))
	if err != nil {
		return WeeklyPlan{}, fmt.Errorf("insert plan: %w", err)
	}

	for _, day := range p.Days {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO plan_days (plan_id, weekday, kind)
			VALUES (?, ?, ?)`,
			p.ID, isoWeekday(day.Weekday), string(day.Kind)); err != nil {
			return WeeklyPlan{}, fmt.Errorf("insert plan day: %w", err)
		}

		for i, act := range day.Activities {
			var exerciseID any
			if act.ExerciseID != "" {
				exerciseID = act.ExerciseID
			}
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO plan_activities
					(plan_id, weekday, position, exercise_id, label, target_sets, target_reps,
					 target_weight_kg, target_distance_km, target_duration_min, notes)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, isoWeekday(day.Weekday), i+1, exerciseID, act.Label,
				act.TargetSets, act.TargetReps, act.TargetWeightKg,
				act.TargetDistanceKm, act.TargetDurationMin, act.Notes); err != nil {
				return WeeklyPlan{}, fmt.Errorf("insert plan activity: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return WeeklyPlan{}, fmt.Errorf("commit transaction: %w", err)
	}

	return p, nil
}

// Activate marks the given plan active and deactivates every other plan.
func (r *Repository) Activate(ctx context.Context, id string) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	if _, err = tx.ExecContext(ctx, `UPDATE plans SET active = 0`); err != nil {
		return fmt.Errorf("deactivate plans: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE plans SET active = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("activate plan: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetActive returns the currently active plan or ErrNotFound.
func (r *Repository) GetActive(ctx context.Context) (WeeklyPlan, error) {
	return r.getWhere(ctx, `WHERE active = 1`)
}

// Get returns the plan with the given ID or ErrNotFound.
func (r *Repository) Get(ctx context.Context, id string) (WeeklyPlan, error) {
	return r.getWhere(ctx, `WHERE id = ?`, id)
}

// List returns all stored plans, newest first, without day details.
func (r *Repository) List(ctx context.Context) (_ []WeeklyPlan, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, source, active, created_at
		FROM plans
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var plans []WeeklyPlan
	for rows.Next() {
		var p WeeklyPlan
		if p, err = scanPlan(rows); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan rows: %w", err)
	}
	return plans, nil
}

func (r *Repository) getWhere(ctx context.Context, where string, args ...any) (WeeklyPlan, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, source, active, created_at
		FROM plans `+where, args...)

	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return WeeklyPlan{}, ErrNotFound
	}
	if err != nil {
		return WeeklyPlan{}, err
	}

	if p.Days, err = r.loadDays(ctx, p.ID); err != nil {
		return WeeklyPlan{}, err
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (WeeklyPlan, error) {
	var (
		p            WeeklyPlan
		source       string
		createdAtStr string
	)
	if err := row.Scan(&p.ID, &p.Name, &source, &p.Active, &createdAtStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return WeeklyPlan{}, sql.ErrNoRows
		}
		return WeeklyPlan{}, fmt.Errorf("scan plan row: %w", err)
	}
	p.Source = Source(source)

	createdAt, err := time.Parse(timestampFormat, createdAtStr)
	if err != nil {
		return WeeklyPlan{}, fmt.Errorf("parse created_at: %w", err)
	}
	p.CreatedAt = createdAt
	return p, nil
}

func (r *Repository) loadDays(ctx context.Context, planID string) (_ []Day, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT weekday, kind
		FROM plan_days
		WHERE plan_id = ?
		ORDER BY weekday`, planID)
	if err != nil {
		return nil, fmt.Errorf("query plan days: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var days []Day
	for rows.Next() {
		var (
			weekday int
			kind    string
		)
		if err = rows.Scan(&weekday, &kind); err != nil {
			return nil, fmt.Errorf("scan plan day row: %w", err)
		}

		day := Day{Weekday: fromISOWeekday(weekday), Kind: Kind(kind)}
		if day.Activities, err = r.loadActivities(ctx, planID, weekday); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan day rows: %w", err)
	}
	return days, nil
}

func (r *Repository) loadActivities(ctx context.Context, planID string, weekday int) (_ []Activity, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_id, label, target_sets, target_reps, target_weight_kg,
		       target_distance_km, target_duration_min, notes
		FROM plan_activities
		WHERE plan_id = ? AND weekday = ?
		ORDER BY position`, planID, weekday)
	if err != nil {
		return nil, fmt.Errorf("query plan activities: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var activities []Activity
	for rows.Next() {
		var (
			act        Activity
			exerciseID sql.NullString
		)
		if err = rows.Scan(&exerciseID, &act.Label, &act.TargetSets, &act.TargetReps,
			&act.TargetWeightKg, &act.TargetDistanceKm, &act.TargetDurationMin, &act.Notes); err != nil {
			return nil, fmt.Errorf("scan plan activity row: %w", err)
		}
		act.ExerciseID = exerciseID.String
		activities = append(activities, act)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan activity rows: %w", err)
	}
	return activities, nil
}

func (r *Repository) rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		r.logger.LogAttrs(ctx, slog.LevelError, "rollback transaction", slog.Any("error", err))
	}
}

// isoWeekday maps time.Weekday to ISO numbering (Monday = 1 .. Sunday = 7).
func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

func fromISOWeekday(n int) time.Weekday {
	if n == 7 {
		return time.Sunday
	}
	return time.Weekday(n)
}
