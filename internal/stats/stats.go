// Package stats derives aggregate statistics from saved sessions: period
// totals, all-time walk and per-exercise records, the current day streak and
// a short daily activity series. Everything is computed on demand from the session
// history, never stored.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/myrsky/passo/internal/session"
)

// Period selects how far back the totals look.
type Period string

const (
	PeriodWeek  Period = "week"  // trailing 7 days
	PeriodMonth Period = "month" // trailing 30 days
	PeriodAll   Period = "all"
)

// DailySeriesDays is the length of the zero-filled daily activity series.
const DailySeriesDays = 14

// ParsePeriod validates a period string, defaulting to week when empty.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodWeek, PeriodMonth, PeriodAll:
		return Period(s), nil
	case "":
		return PeriodWeek, nil
	default:
		return "", fmt.Errorf("unknown stats period %q", s)
	}
}

// Totals aggregates the sessions inside the selected period. VolumeKg is the
// lifted volume, reps times weight summed over completed sets.
type Totals struct {
	Walks          int     `json:"walks"`
	Circuits       int     `json:"circuits"`
	DistanceKm     float64 `json:"distance_km"`
	Steps          int     `json:"steps"`
	WalkMinutes    int     `json:"walk_minutes"`
	CircuitMinutes int     `json:"circuit_minutes"`
	CompletedSets  int     `json:"completed_sets"`
	TotalReps      int     `json:"total_reps"`
	VolumeKg       float64 `json:"volume_kg"`
}

// WalkRecords are the all-time walk bests, independent of the period filter.
type WalkRecords struct {
	BestDistanceKm  float64 `json:"best_distance_km"`
	BestAvgSpeedKmh float64 `json:"best_avg_speed_kmh"`
	LongestMinutes  int     `json:"longest_minutes"`
}

// ExerciseRecord is the all-time personal best for one exercise, taken over
// completed sets only.
type ExerciseRecord struct {
	ExerciseID  string  `json:"exercise_id"`
	Name        string  `json:"name"`
	MaxWeightKg float64 `json:"max_weight_kg"`
	MaxReps     int     `json:"max_reps"`
	TotalSets   int     `json:"total_sets"`
}

// DayActivity is one bucket of the daily series.
type DayActivity struct {
	Date       string  `json:"date"`
	Walks      int     `json:"walks"`
	Circuits   int     `json:"circuits"`
	DistanceKm float64 `json:"distance_km"`
	Steps      int     `json:"steps"`
	Minutes    int     `json:"minutes"`
	VolumeKg   float64 `json:"volume_kg"`
}

// Summary is the full statistics payload. Totals honor the period; records
// and the streak always look at the entire history.
type Summary struct {
	Period      Period           `json:"period"`
	Totals      Totals           `json:"totals"`
	StreakDays  int              `json:"streak_days"`
	WalkRecords WalkRecords      `json:"walk_records"`
	Records     []ExerciseRecord `json:"records"`
	Daily       []DayActivity    `json:"daily"`
}

// Compute builds the summary from the full session history. The now argument
// anchors the trailing windows, the streak and the daily series.
func Compute(walks []session.Walk, circuits []session.Circuit, period Period, now time.Time) Summary {
	now = now.UTC()

	return Summary{
		Period:      period,
		Totals:      computeTotals(walks, circuits, periodCutoff(period, now)),
		StreakDays:  computeStreak(walks, circuits, now),
		WalkRecords: computeWalkRecords(walks),
		Records:     computeRecords(circuits),
		Daily:       computeDaily(walks, circuits, now),
	}
}

// periodCutoff returns the inclusive lower bound for the period, or the zero
// time for the all period.
func periodCutoff(period Period, now time.Time) time.Time {
	switch period {
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

func computeTotals(walks []session.Walk, circuits []session.Circuit, cutoff time.Time) Totals {
	var t Totals
	for _, w := range walks {
		if w.StartedAt.Before(cutoff) {
			continue
		}
		t.Walks++
		t.DistanceKm += w.DistanceKm
		t.Steps += w.Steps
		t.WalkMinutes += w.ElapsedSeconds / 60
	}
	for _, c := range circuits {
		if c.StartedAt.Before(cutoff) {
			continue
		}
		t.Circuits++
		t.CircuitMinutes += c.DurationMinutes
		for _, log := range c.Exercises {
			for _, set := range log.Sets {
				if !set.Completed {
					continue
				}
				t.CompletedSets++
				t.TotalReps += set.Reps
				t.VolumeKg += float64(set.Reps) * set.WeightKg
			}
		}
	}
	return t
}

// computeWalkRecords collects the all-time walk bests over the full history.
func computeWalkRecords(walks []session.Walk) WalkRecords {
	var rec WalkRecords
	for _, w := range walks {
		if w.DistanceKm > rec.BestDistanceKm {
			rec.BestDistanceKm = w.DistanceKm
		}
		if w.AvgSpeedKmh > rec.BestAvgSpeedKmh {
			rec.BestAvgSpeedKmh = w.AvgSpeedKmh
		}
		if minutes := w.ElapsedSeconds / 60; minutes > rec.LongestMinutes {
			rec.LongestMinutes = minutes
		}
	}
	return rec
}

// computeStreak counts consecutive calendar days with at least one session,
// walking backwards from today. A day without a session today means no
// current streak at all.
func computeStreak(walks []session.Walk, circuits []session.Circuit, now time.Time) int {
	days := make(map[string]bool)
	for _, w := range walks {
		days[dayKey(w.StartedAt)] = true
	}
	for _, c := range circuits {
		days[dayKey(c.StartedAt)] = true
	}

	streak := 0
	for day := now; days[dayKey(day)]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// computeRecords collects all-time personal bests per exercise from
// completed sets, sorted by exercise ID for stable output. Comparisons are
// strict, so on equal values the earlier set keeps the record.
func computeRecords(circuits []session.Circuit) []ExerciseRecord {
	byExercise := make(map[string]*ExerciseRecord)
	for _, c := range circuits {
		for _, log := range c.Exercises {
			for _, set := range log.Sets {
				if !set.Completed {
					continue
				}
				rec, ok := byExercise[log.ExerciseID]
				if !ok {
					rec = &ExerciseRecord{ExerciseID: log.ExerciseID, Name: log.Name}
					byExercise[log.ExerciseID] = rec
				}
				rec.TotalSets++
				if set.WeightKg > rec.MaxWeightKg {
					rec.MaxWeightKg = set.WeightKg
				}
				if set.Reps > rec.MaxReps {
					rec.MaxReps = set.Reps
				}
			}
		}
	}

	records := make([]ExerciseRecord, 0, len(byExercise))
	for _, rec := range byExercise {
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ExerciseID < records[j].ExerciseID
	})
	return records
}

// computeDaily builds the zero-filled series for the trailing days including
// today, oldest bucket first.
func computeDaily(walks []session.Walk, circuits []session.Circuit, now time.Time) []DayActivity {
	buckets := make([]DayActivity, DailySeriesDays)
	index := make(map[string]int, DailySeriesDays)
	for i := range buckets {
		day := now.AddDate(0, 0, i-DailySeriesDays+1)
		buckets[i].Date = dayKey(day)
		index[buckets[i].Date] = i
	}

	for _, w := range walks {
		if i, ok := index[dayKey(w.StartedAt)]; ok {
			buckets[i].Walks++
			buckets[i].DistanceKm += w.DistanceKm
			buckets[i].Steps += w.Steps
			buckets[i].Minutes += w.ElapsedSeconds / 60
		}
	}
	for _, c := range circuits {
		if i, ok := index[dayKey(c.StartedAt)]; ok {
			buckets[i].Circuits++
			buckets[i].Minutes += c.DurationMinutes
			buckets[i].VolumeKg += circuitVolume(c)
		}
	}
	return buckets
}

func circuitVolume(c session.Circuit) float64 {
	var v float64
	for _, log := range c.Exercises {
		for _, set := range log.Sets {
			if set.Completed {
				v += float64(set.Reps) * set.WeightKg
			}
		}
	}
	return v
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
