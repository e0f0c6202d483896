package pet

import (
	"time"
)

const (
	// StatMin and StatMax bound the well-being axes (mood, hunger, energy).
	StatMin = 0
	StatMax = 5

	// MeterMin and MeterMax bound care quality and attention score.
	MeterMin = 0
	MeterMax = 100

	// ExperiencePerLevel: the level-up threshold is level * ExperiencePerLevel.
	ExperiencePerLevel = 100
)

// Vitals are the three well-being axes, always clamped into [StatMin, StatMax].
type Vitals struct {
	Mood   int `json:"mood"`
	Hunger int `json:"hunger"`
	Energy int `json:"energy"`
}

// ClampStat bounds a single stat into [StatMin, StatMax]
func ClampStat(v int) int {
	if v < StatMin {
		return StatMin
	}
	if v > StatMax {
		return StatMax
	}
	return v
}

// ClampMeter bounds a meter value into [MeterMin, MeterMax]
func ClampMeter(v int) int {
	if v < MeterMin {
		return MeterMin
	}
	if v > MeterMax {
		return MeterMax
	}
	return v
}

// Clamp returns the vitals bounded into the valid domain
func (v Vitals) Clamp() Vitals {
	return Vitals{
		Mood:   ClampStat(v.Mood),
		Hunger: ClampStat(v.Hunger),
		Energy: ClampStat(v.Energy),
	}
}

// Stats is the durable game record for one Moonling, keyed by wallet.
type Stats struct {
	Vitals

	TotalFeedings int `json:"total_feedings"`
	TotalPlays    int `json:"total_plays"`
	TotalSleeps   int `json:"total_sleeps"`
	TotalChats    int `json:"total_chats"`

	LastPlayed int64 `json:"last_played"` // ms since epoch of last interaction

	Level      int `json:"level"`
	Experience int `json:"experience"`

	DailyStreak    int    `json:"daily_streak"`
	LastDailyCheck string `json:"last_daily_check"` // YYYY-MM-DD, UTC

	CareQuality    int `json:"care_quality"`
	AttentionScore int `json:"attention_score"`
}

// NewStats returns the default record for a brand-new Moonling
func NewStats() *Stats {
	return &Stats{
		Vitals: Vitals{
			Mood:   3,
			Hunger: 3,
			Energy: 3,
		},
		Level:          1,
		CareQuality:    50,
		AttentionScore: MeterMax,
	}
}

// Clamp bounds every bounded field into its domain
func (s *Stats) Clamp() {
	s.Vitals = s.Vitals.Clamp()
	if s.Level < 1 {
		s.Level = 1
	}
	if s.Experience < 0 {
		s.Experience = 0
	}
	if s.DailyStreak < 0 {
		s.DailyStreak = 0
	}
	s.CareQuality = ClampMeter(s.CareQuality)
	s.AttentionScore = ClampMeter(s.AttentionScore)
}

// AddExperience awards experience and applies level-ups until the
// experience is below the current level's threshold. Handles multi-level
// jumps. Returns the number of levels gained.
func (s *Stats) AddExperience(points int) int {
	if points < 0 {
		points = 0
	}
	s.Experience += points

	gained := 0
	for s.Experience >= s.Level*ExperiencePerLevel {
		s.Experience -= s.Level * ExperiencePerLevel
		s.Level++
		gained++
	}
	return gained
}

// Touch records an interaction timestamp
func (s *Stats) Touch(now time.Time) {
	s.LastPlayed = now.UnixMilli()
}

// Day formats a time as the UTC date string used for daily comparisons
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// IsYesterday reports whether prev is exactly the day before today.
// Both are YYYY-MM-DD strings; malformed input is never "yesterday".
func IsYesterday(prev, today string) bool {
	t, err := time.Parse("2006-01-02", today)
	if err != nil {
		return false
	}
	return prev == t.AddDate(0, 0, -1).Format("2006-01-02")
}
