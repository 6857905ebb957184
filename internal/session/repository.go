package session

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

// ErrNotFound is returned when no saved session matches the given ID.
var ErrNotFound = errors.New("session not found")

// Repository stores finished sessions. It implements both WalkStore and
// CircuitStore.
type Repository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewRepository(db *sqlite.Database, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// SaveWalk persists a walk with a fresh identity and returns it with the
// assigned ID.
func (r *Repository) SaveWalk(ctx context.Context, w Walk) (Walk, error) {
	w.ID = fmt.Sprintf("walk_%s", uuid.NewString()[:12])

	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return Walk{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO walk_sessions (id, started_at, elapsed_seconds, distance_km, steps, temperature_c, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.StartedAt.Format(timestampFormat), w.ElapsedSeconds,
		w.DistanceKm, w.Steps, w.TemperatureC, w.Note)
	if err != nil {
		return Walk{}, fmt.Errorf("insert walk session: %w", err)
	}

	for i, p := range w.Track {
		var recordedAt any
		if p.Timestamp != nil {
			recordedAt = p.Timestamp.UTC().Format(timestampFormat)
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO walk_points (walk_id, position, latitude, longitude, altitude, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			w.ID, i+1, p.Latitude, p.Longitude, p.Altitude, recordedAt); err != nil {
			return Walk{}, fmt.Errorf("insert walk point: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return Walk{}, fmt.Errorf("commit transaction: %w", err)
	}
	return w, nil
}

// SaveCircuit persists a circuit with a fresh identity and returns it with
// the assigned ID.
func (r *Repository) SaveCircuit(ctx context.Context, c Circuit) (Circuit, error) {
	c.ID = fmt.Sprintf("circuit_%s", uuid.NewString()[:12])

	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return Circuit{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer r.rollback(ctx, tx)

	var planID, planWeekday any
	if c.PlanRef != nil {
		planID = c.PlanRef.PlanID
		planWeekday = isoWeekday(c.PlanRef.Weekday)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO circuit_sessions (id, started_at, duration_minutes, plan_id, plan_weekday, note)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.StartedAt.Format(timestampFormat), c.DurationMinutes, planID, planWeekday, c.Note)
	if err != nil {
		return Circuit{}, fmt.Errorf("insert circuit session: %w", err)
	}

	for pos, log := range c.Exercises {
		for _, set := range log.Sets {
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO circuit_set_logs
					(circuit_id, exercise_position, exercise_id, exercise_name,
					 set_number, reps, weight_kg, completed)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				c.ID, pos+1, log.ExerciseID, log.Name,
				set.Number, set.Reps, set.WeightKg, set.Completed); err != nil {
				return Circuit{}, fmt.Errorf("insert circuit set log: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return Circuit{}, fmt.Errorf("commit transaction: %w", err)
	}
	return c, nil
}

// ListWalks returns all saved walks, newest first, without GPS tracks.
func (r *Repository) ListWalks(ctx context.Context) (_ []Walk, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, started_at, elapsed_seconds, distance_km, steps, temperature_c, note
		FROM walk_sessions
		ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query walk sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var walks []Walk
	for rows.Next() {
		var (
			w            Walk
			startedAtStr string
			temperature  sql.NullFloat64
		)
		if err = rows.Scan(&w.ID, &startedAtStr, &w.ElapsedSeconds,
			&w.DistanceKm, &w.Steps, &temperature, &w.Note); err != nil {
			return nil, fmt.Errorf("scan walk session row: %w", err)
		}
		if w.StartedAt, err = time.Parse(timestampFormat, startedAtStr); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if temperature.Valid {
			w.TemperatureC = &temperature.Float64
		}
		w.AvgSpeedKmh = avgSpeedKmh(w.DistanceKm, w.ElapsedSeconds)
		walks = append(walks, w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate walk session rows: %w", err)
	}
	return walks, nil
}

// GetWalk returns one saved walk including its GPS track.
func (r *Repository) GetWalk(ctx context.Context, id string) (Walk, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, started_at, elapsed_seconds, distance_km, steps, temperature_c, note
		FROM walk_sessions
		WHERE id = ?`, id)

	var (
		w            Walk
		startedAtStr string
		temperature  sql.NullFloat64
	)
	err := row.Scan(&w.ID, &startedAtStr, &w.ElapsedSeconds,
		&w.DistanceKm, &w.Steps, &temperature, &w.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return Walk{}, ErrNotFound
	}
	if err != nil {
		return Walk{}, fmt.Errorf("scan walk session row: %w", err)
	}
	if w.StartedAt, err = time.Parse(timestampFormat, startedAtStr); err != nil {
		return Walk{}, fmt.Errorf("parse started_at: %w", err)
	}
	if temperature.Valid {
		w.TemperatureC = &temperature.Float64
	}
	w.AvgSpeedKmh = avgSpeedKmh(w.DistanceKm, w.ElapsedSeconds)

	if w.Track, err = r.loadTrack(ctx, id); err != nil {
		return Walk{}, err
	}
	return w, nil
}

func (r *Repository) loadTrack(ctx context.Context, walkID string) (_ []GPSPoint, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT latitude, longitude, altitude, recorded_at
		FROM walk_points
		WHERE walk_id = ?
		ORDER BY position`, walkID)
	if err != nil {
		return nil, fmt.Errorf("query walk points: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var track []GPSPoint
	for rows.Next() {
		var (
			p           GPSPoint
			altitude    sql.NullFloat64
			recordedStr sql.NullString
		)
		if err = rows.Scan(&p.Latitude, &p.Longitude, &altitude, &recordedStr); err != nil {
			return nil, fmt.Errorf("scan walk point row: %w", err)
		}
		if altitude.Valid {
			p.Altitude = &altitude.Float64
		}
		if recordedStr.Valid {
			recorded, parseErr := time.Parse(timestampFormat, recordedStr.String)
			if parseErr != nil {
				return nil, fmt.Errorf("parse recorded_at: %w", parseErr)
			}
			p.Timestamp = &recorded
		}
		track = append(track, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate walk point rows: %w", err)
	}
	return track, nil
}

// ListCircuits returns all saved circuits, newest first, including set logs.
func (r *Repository) ListCircuits(ctx context.Context) (_ []Circuit, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, started_at, duration_minutes, plan_id, plan_weekday, note
		FROM circuit_sessions
		ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query circuit sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var circuits []Circuit
	for rows.Next() {
		var (
			c            Circuit
			startedAtStr string
			planID       sql.NullString
			planWeekday  sql.NullInt64
		)
		if err = rows.Scan(&c.ID, &startedAtStr, &c.DurationMinutes,
			&planID, &planWeekday, &c.Note); err != nil {
			return nil, fmt.Errorf("scan circuit session row: %w", err)
		}
		if c.StartedAt, err = time.Parse(timestampFormat, startedAtStr); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if planID.Valid && planWeekday.Valid {
			c.PlanRef = &PlanRef{
				PlanID:  planID.String,
				Weekday: fromISOWeekday(int(planWeekday.Int64)),
			}
		}
		circuits = append(circuits, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate circuit session rows: %w", err)
	}

	for i := range circuits {
		if circuits[i].Exercises, err = r.loadSetLogs(ctx, circuits[i].ID); err != nil {
			return nil, err
		}
	}
	return circuits, nil
}

func (r *Repository) loadSetLogs(ctx context.Context, circuitID string) (_ []ExerciseLog, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_position, exercise_id, exercise_name, set_number, reps, weight_kg, completed
		FROM circuit_set_logs
		WHERE circuit_id = ?
		ORDER BY exercise_position, set_number`, circuitID)
	if err != nil {
		return nil, fmt.Errorf("query circuit set logs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var logs []ExerciseLog
	lastPosition := 0
	for rows.Next() {
		var (
			position int
			id, name string
			set      SetLog
		)
		if err = rows.Scan(&position, &id, &name,
			&set.Number, &set.Reps, &set.WeightKg, &set.Completed); err != nil {
			return nil, fmt.Errorf("scan circuit set log row: %w", err)
		}
		if position != lastPosition {
			logs = append(logs, ExerciseLog{ExerciseID: id, Name: name})
			lastPosition = position
		}
		logs[len(logs)-1].Sets = append(logs[len(logs)-1].Sets, set)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate circuit set log rows: %w", err)
	}
	return logs, nil
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
