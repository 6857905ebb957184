package exercise

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/myrsky/passo/internal/sqlite"
)

// ErrNotFound is returned when the requested exercise does not exist.
var ErrNotFound = errors.New("exercise not found")

// Repository handles database operations for the exercise catalog.
type Repository struct {
	db *sqlite.Database
}

func NewRepository(db *sqlite.Database) *Repository {
	return &Repository{db: db}
}

// List returns the whole catalog, built-ins first, in stable order.
func (r *Repository) List(ctx context.Context) (_ []Exercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, type, muscle_group, description_markdown, custom,
		       default_sets, default_reps, default_weight_kg, safety_notes
		FROM exercises
		ORDER BY custom, id`)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var exercises []Exercise
	for rows.Next() {
		var ex Exercise
		if err = rows.Scan(
			&ex.ID, &ex.Name, &ex.Type, &ex.MuscleGroup, &ex.DescriptionMarkdown,
			&ex.Custom, &ex.DefaultSets, &ex.DefaultReps, &ex.DefaultWeightKg, &ex.SafetyNotes,
		); err != nil {
			return nil, fmt.Errorf("scan exercise row: %w", err)
		}
		exercises = append(exercises, ex)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercise rows: %w", err)
	}

	return exercises, nil
}

// Get retrieves a single exercise by ID.
func (r *Repository) Get(ctx context.Context, id string) (Exercise, error) {
	var ex Exercise
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, type, muscle_group, description_markdown, custom,
		       default_sets, default_reps, default_weight_kg, safety_notes
		FROM exercises
		WHERE id = ?`, id).Scan(
		&ex.ID, &ex.Name, &ex.Type, &ex.MuscleGroup, &ex.DescriptionMarkdown,
		&ex.Custom, &ex.DefaultSets, &ex.DefaultReps, &ex.DefaultWeightKg, &ex.SafetyNotes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Exercise{}, ErrNotFound
	}
	if err != nil {
		return Exercise{}, fmt.Errorf("query exercise: %w", err)
	}
	return ex, nil
}

// Create persists a user-defined custom exercise and returns it with its
// generated identity.
func (r *Repository) Create(ctx context.Context, ex Exercise) (Exercise, error) {
	ex.ID = fmt.Sprintf("exc_%s", uuid.NewString()[:12])
	ex.Custom = true
	if ex.DefaultSets <= 0 {
		ex.DefaultSets = 2
	}
	if ex.DefaultReps <= 0 {
		ex.DefaultReps = 10
	}

	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO exercises
			(id, name, type, muscle_group, description_markdown, custom,
			 default_sets, default_reps, default_weight_kg, safety_notes)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?, ?)`,
		ex.ID, ex.Name, ex.Type, ex.MuscleGroup, ex.DescriptionMarkdown,
		ex.DefaultSets, ex.DefaultReps, ex.DefaultWeightKg, ex.SafetyNotes)
	if err != nil {
		return Exercise{}, fmt.Errorf("insert exercise: %w", err)
	}

	return ex, nil
}
