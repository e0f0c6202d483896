// Package challenge implements the ephemeral daily challenge set:
// regenerated once per UTC day with randomized targets, rewarded
// exactly once on completion, and discarded at the day boundary.
package challenge

import (
	"math/rand"
)

// Type is the action family a challenge tracks.
type Type string

const (
	TypeFeed  Type = "feed"
	TypePlay  Type = "play"
	TypeSleep Type = "sleep"
	TypeChat  Type = "chat"
)

// Types lists every challenge type in generation order
func Types() []Type {
	return []Type{TypeFeed, TypePlay, TypeSleep, TypeChat}
}

// Challenge is one daily goal. Date is the YYYY-MM-DD (UTC) day it
// belongs to; a stored set from another day is stale and regenerated.
type Challenge struct {
	Type      Type   `json:"type"`
	Target    int    `json:"target"`
	Current   int    `json:"current"`
	Reward    int    `json:"reward"` // experience granted on completion
	Completed bool   `json:"completed"`
	Date      string `json:"date"`
}

// Ranges bounds the randomized target for one challenge type.
type Ranges struct {
	MinTarget int
	MaxTarget int
	Reward    int
}

// GenerateDaily builds the challenge set for one day, one challenge per
// type, with targets drawn uniformly from the configured ranges.
func GenerateDaily(date string, ranges map[Type]Ranges, rng *rand.Rand) []Challenge {
	out := make([]Challenge, 0, len(ranges))
	for _, t := range Types() {
		r, ok := ranges[t]
		if !ok {
			continue
		}
		target := r.MinTarget
		if span := r.MaxTarget - r.MinTarget; span > 0 {
			target += rng.Intn(span + 1)
		}
		out = append(out, Challenge{
			Type:   t,
			Target: target,
			Reward: r.Reward,
			Date:   date,
		})
	}
	return out
}

// Advance increments the matching incomplete challenge by one. When
// progress reaches the target the challenge is marked completed and its
// reward is returned; subsequent calls for the same type return 0.
func Advance(challenges []Challenge, t Type) ([]Challenge, int) {
	for i := range challenges {
		c := &challenges[i]
		if c.Type != t || c.Completed {
			continue
		}
		c.Current++
		if c.Current >= c.Target {
			c.Current = c.Target
			c.Completed = true
			return challenges, c.Reward
		}
		return challenges, 0
	}
	return challenges, 0
}
