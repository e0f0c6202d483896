package engine

import (
	"context"
	"encoding/json"

	"github.com/moonlit-labs/moonling-engine/pkg/achievement"
	"github.com/moonlit-labs/moonling-engine/pkg/challenge"
	"github.com/moonlit-labs/moonling-engine/pkg/pet"
)

// runDailyReset applies the once-per-day bookkeeping on the first
// mutation of a new UTC calendar day: streak accounting, attention
// decay, and daily challenge regeneration. Date strings are compared
// directly; elapsed milliseconds are irrelevant here.
func (e *Engine) runDailyReset(ctx context.Context, wallet string, stats *pet.Stats, today string) {
	if stats.LastDailyCheck == today {
		return
	}

	firstEver := stats.LastDailyCheck == ""

	streakBefore := stats.DailyStreak
	if pet.IsYesterday(stats.LastDailyCheck, today) {
		stats.DailyStreak++
	} else {
		stats.DailyStreak = 1
	}
	stats.LastDailyCheck = today

	// Attention decays at each reset, floored at a baseline. A brand-new
	// record is being initialized, not neglected.
	if !firstEver {
		stats.AttentionScore -= e.balance.Attention.DailyDecay
		if stats.AttentionScore < e.balance.Attention.Floor {
			stats.AttentionScore = e.balance.Attention.Floor
		}
	}

	e.saveChallenges(ctx, wallet, e.generateChallenges(today))

	if stats.DailyStreak > streakBefore {
		e.evaluateCounter(ctx, wallet, achievement.CounterStreak, streakBefore, stats.DailyStreak)
	}

	e.logger.Info("Daily reset applied",
		"wallet", wallet,
		"date", today,
		"streak", stats.DailyStreak,
		"attention", stats.AttentionScore)
}

// DailyChallenges returns today's challenge set, regenerating it if the
// stored set belongs to another day.
func (e *Engine) DailyChallenges(ctx context.Context, wallet string) []challenge.Challenge {
	return e.loadChallenges(ctx, wallet, pet.Day(e.now()))
}

// loadChallenges reads the stored set, regenerating (and persisting) a
// fresh one when the stored set is missing, unreadable, or stale.
func (e *Engine) loadChallenges(ctx context.Context, wallet string, today string) []challenge.Challenge {
	data, err := e.cache.Get(ctx, challengesKey(wallet))
	if err != nil {
		e.logger.Warn("Failed to load daily challenges", "wallet", wallet, "error", err)
		data = ""
	}

	if data != "" {
		var challenges []challenge.Challenge
		if err := json.Unmarshal([]byte(data), &challenges); err != nil {
			e.logger.Warn("Corrupted daily challenges, regenerating", "wallet", wallet, "error", err)
		} else if len(challenges) > 0 && challenges[0].Date == today {
			return challenges
		}
	}

	fresh := e.generateChallenges(today)
	e.saveChallenges(ctx, wallet, fresh)
	return fresh
}

func (e *Engine) generateChallenges(today string) []challenge.Challenge {
	ranges := make(map[challenge.Type]challenge.Ranges, len(e.balance.Challenges))
	for verb, r := range e.balance.Challenges {
		ranges[challenge.Type(verb)] = challenge.Ranges{
			MinTarget: r.MinTarget,
			MaxTarget: r.MaxTarget,
			Reward:    r.Reward,
		}
	}

	// rand.Rand is not safe for concurrent use; generation is rare
	e.mu.Lock()
	defer e.mu.Unlock()
	return challenge.GenerateDaily(today, ranges, e.rng)
}

func (e *Engine) saveChallenges(ctx context.Context, wallet string, challenges []challenge.Challenge) {
	data, err := json.Marshal(challenges)
	if err != nil {
		e.logger.Error("Failed to marshal daily challenges", "wallet", wallet, "error", err)
		return
	}
	if err := e.cache.Set(ctx, challengesKey(wallet), string(data), 0); err != nil {
		e.logger.Error("Failed to save daily challenges", "wallet", wallet, "error", err)
	}
}
