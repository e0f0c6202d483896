package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed balance_default.yaml
var defaultBalanceYAML []byte

// Balance holds the gameplay tunables. Values are loaded from an embedded
// default and can be overridden with a YAML file (BALANCE_FILE).
type Balance struct {
	Decay      DecayBalance               `yaml:"decay"`
	Actions    map[string]ActionBalance   `yaml:"actions"`
	Quality    QualityBalance             `yaml:"quality"`
	Challenges map[string]ChallengeRanges `yaml:"challenges"`
	Attention  AttentionBalance           `yaml:"attention"`
	Care       CareBalance                `yaml:"care"`

	// DailyMoodBonus is the mood granted at most once per UTC day
	// by the decay service's RecordAction.
	DailyMoodBonus int `yaml:"daily_mood_bonus"`
}

// DecayBalance controls time-based stat decay.
type DecayBalance struct {
	HungerPerHour float64 `yaml:"hunger_per_hour"`
	EnergyPerHour float64 `yaml:"energy_per_hour"`
	MoodPerHour   float64 `yaml:"mood_per_hour"`

	// CriticalBand: a stat at or below this value is critical.
	// While hunger or energy is critical, mood cannot exceed MoodCeiling.
	CriticalBand int `yaml:"critical_band"`
	MoodCeiling  int `yaml:"mood_ceiling"`
}

// ActionBalance is the base stat delta for one action verb at minimum quality.
type ActionBalance struct {
	Mood       int `yaml:"mood"`
	Hunger     int `yaml:"hunger"`
	Energy     int `yaml:"energy"`
	Experience int `yaml:"experience"`
}

// QualityBalance bounds the quality parameter and its scaling.
type QualityBalance struct {
	Min             int `yaml:"min"`
	Max             int `yaml:"max"`
	ExperienceBonus int `yaml:"experience_bonus"` // per quality point above Min
}

// ChallengeRanges bounds the randomized daily challenge targets per action type.
type ChallengeRanges struct {
	MinTarget int `yaml:"min_target"`
	MaxTarget int `yaml:"max_target"`
	Reward    int `yaml:"reward"` // experience granted on completion
}

type AttentionBalance struct {
	DailyDecay    int `yaml:"daily_decay"`
	Floor         int `yaml:"floor"`
	GainPerAction int `yaml:"gain_per_action"`
}

type CareBalance struct {
	GainPerQuality int `yaml:"gain_per_quality"`
}

// DefaultBalance returns the embedded balance tunables.
func DefaultBalance() (*Balance, error) {
	return parseBalance(defaultBalanceYAML)
}

// LoadBalance reads tunables from path, or the embedded defaults if path is empty.
func LoadBalance(path string) (*Balance, error) {
	if path == "" {
		return DefaultBalance()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance file: %w", err)
	}
	return parseBalance(data)
}

func parseBalance(data []byte) (*Balance, error) {
	var b Balance
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse balance yaml: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks the tunables for values that would break gameplay invariants.
func (b *Balance) Validate() error {
	if b.Decay.HungerPerHour < 0 || b.Decay.EnergyPerHour < 0 || b.Decay.MoodPerHour < 0 {
		return fmt.Errorf("decay rates must be non-negative")
	}
	if b.Decay.CriticalBand < 0 || b.Decay.MoodCeiling < 0 {
		return fmt.Errorf("decay critical band and mood ceiling must be non-negative")
	}
	if b.Quality.Min < 1 || b.Quality.Max < b.Quality.Min {
		return fmt.Errorf("quality range [%d,%d] is invalid", b.Quality.Min, b.Quality.Max)
	}
	for _, verb := range []string{"feed", "play", "sleep", "chat"} {
		a, ok := b.Actions[verb]
		if !ok {
			return fmt.Errorf("missing action balance for %q", verb)
		}
		if a.Experience < 0 {
			return fmt.Errorf("action %q has negative experience", verb)
		}
		c, ok := b.Challenges[verb]
		if !ok {
			return fmt.Errorf("missing challenge ranges for %q", verb)
		}
		if c.MinTarget < 1 || c.MaxTarget < c.MinTarget {
			return fmt.Errorf("challenge %q target range [%d,%d] is invalid", verb, c.MinTarget, c.MaxTarget)
		}
		if c.Reward < 0 {
			return fmt.Errorf("challenge %q has negative reward", verb)
		}
	}
	if b.Attention.Floor < 0 || b.Attention.DailyDecay < 0 || b.Attention.GainPerAction < 0 {
		return fmt.Errorf("attention tunables must be non-negative")
	}
	if b.Care.GainPerQuality < 0 {
		return fmt.Errorf("care gain must be non-negative")
	}
	if b.DailyMoodBonus < 0 {
		return fmt.Errorf("daily mood bonus must be non-negative")
	}
	return nil
}
