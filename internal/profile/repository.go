package profile

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/myrsky/passo/internal/sqlite"
)

// Repository handles database operations for the user profile. The schema
// guarantees exactly one profile row per database.
type Repository struct {
	db *sqlite.Database
}

func NewRepository(db *sqlite.Database) *Repository {
	return &Repository{db: db}
}

// Get retrieves the stored profile with defaults applied.
func (r *Repository) Get(ctx context.Context) (Profile, error) {
	var (
		p       Profile
		level   string
		daysCSV string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT name, age, weight_kg, height_cm, level, goal, available_days
		FROM profile
		WHERE id = 1`).Scan(&p.Name, &p.Age, &p.WeightKg, &p.HeightCm, &level, &p.Goal, &daysCSV)
	if err != nil {
		return Profile{}, fmt.Errorf("query profile: %w", err)
	}
	p.Level = Level(level)
	p.AvailableDays = parseDays(daysCSV)
	return p.Normalized(), nil
}

// Set saves the profile, replacing the previous one.
func (r *Repository) Set(ctx context.Context, p Profile) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE profile
		SET name = ?, age = ?, weight_kg = ?, height_cm = ?, level = ?, goal = ?,
		    available_days = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = 1`,
		p.Name, p.Age, p.WeightKg, p.HeightCm, string(p.Level), p.Goal, formatDays(p.AvailableDays))
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// formatDays encodes weekdays as comma-separated numbers with Monday = 1.
func formatDays(days []time.Weekday) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(isoWeekday(d)))
	}
	return strings.Join(parts, ",")
}

func parseDays(csv string) []time.Weekday {
	if csv == "" {
		return nil
	}
	var days []time.Weekday
	for _, part := range strings.Split(csv, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > 7 {
			continue
		}
		days = append(days, fromISOWeekday(n))
	}
	return days
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
