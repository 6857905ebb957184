// Package profile stores the user profile captured at onboarding.
package profile

import "time"

// Level is the user's self-reported training experience.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Defaults applied when onboarding left fields blank. The app targets the
// 70-75 age band, so the fallback age sits in the middle of it.
const (
	DefaultAge   = 72
	DefaultLevel = LevelBeginner
)

// Profile is the single user profile owned by this database.
type Profile struct {
	Name          string         `json:"name"`
	Age           int            `json:"age"`
	WeightKg      float64        `json:"weight_kg"`
	HeightCm      float64        `json:"height_cm"`
	Level         Level          `json:"level"`
	Goal          string         `json:"goal"`
	AvailableDays []time.Weekday `json:"available_days"`
}

// Normalized returns a copy with documented defaults substituted for
// missing fields. Plan generation relies on this never producing an
// unusable profile.
func (p Profile) Normalized() Profile {
	if p.Age <= 0 {
		p.Age = DefaultAge
	}
	switch p.Level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
	default:
		p.Level = DefaultLevel
	}
	return p
}
