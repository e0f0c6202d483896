// Package engine owns the canonical per-wallet game record: stats,
// counters, level and experience, the achievement mint queue, and the
// daily challenge lifecycle. Public methods never return storage errors;
// failure paths degrade to defaults and log, favoring availability over
// strict durability. A per-wallet mutex serializes read-modify-write
// cycles so overlapping calls for the same wallet cannot lose updates.
package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/moonlit-labs/moonling-engine/internal/config"
	"github.com/moonlit-labs/moonling-engine/internal/services"
	"github.com/moonlit-labs/moonling-engine/pkg/achievement"
	"github.com/moonlit-labs/moonling-engine/pkg/challenge"
	"github.com/moonlit-labs/moonling-engine/pkg/pet"
)

// Source tags where a loaded record came from, so callers can tell a
// genuine fresh player from a corruption fallback.
type Source string

const (
	// SourceFresh: no stored record existed
	SourceFresh Source = "fresh"
	// SourceStored: the record was read back intact
	SourceStored Source = "stored"
	// SourceRecovered: a stored record was unreadable and defaults were substituted
	SourceRecovered Source = "recovered"
)

// LoadResult is the outcome of GetLocalStats.
type LoadResult struct {
	Stats  *pet.Stats
	Source Source
}

// Engine is the single source of truth for durable game records.
type Engine struct {
	cache   services.Cache
	balance *config.Balance
	logger  *slog.Logger
	now     func() time.Time

	mu    sync.Mutex
	rng   *rand.Rand
	locks map[string]*sync.Mutex
}

// New creates an engine backed by the given store
func New(cache services.Cache, balance *config.Balance, logger *slog.Logger) *Engine {
	return &Engine{
		cache:   cache,
		balance: balance,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		locks:   make(map[string]*sync.Mutex),
	}
}

// WithClock overrides the time source. Returns the Engine for chaining.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// WithRand overrides the random source used for daily challenge targets.
// Returns the Engine for chaining.
func (e *Engine) WithRand(rng *rand.Rand) *Engine {
	e.rng = rng
	return e
}

// Now returns the engine's current time (UTC unless overridden)
func (e *Engine) Now() time.Time {
	return e.now()
}

// Storage keys, namespaced per wallet and record type

func statsKey(wallet string) string {
	return "game_stats_" + wallet
}

func queueKey(wallet string) string {
	return "achievement_queue_" + wallet
}

func completedKey(wallet string) string {
	return "completed_achievements_" + wallet
}

func moodEventsKey(wallet string) string {
	return "mood_events_" + wallet
}

func challengesKey(wallet string) string {
	return "daily_challenges_" + wallet
}

// walletLock returns the mutex serializing mutations for one wallet
func (e *Engine) walletLock(wallet string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.locks[wallet]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[wallet] = lock
	}
	return lock
}

// GetLocalStats loads the durable record for a wallet. If the record is
// absent or unreadable it returns defaults WITHOUT persisting them; a
// read must never overwrite data it could not parse.
func (e *Engine) GetLocalStats(ctx context.Context, wallet string) LoadResult {
	data, err := e.cache.Get(ctx, statsKey(wallet))
	if err != nil {
		e.logger.Warn("Failed to load game stats, using defaults", "wallet", wallet, "error", err)
		return LoadResult{Stats: pet.NewStats(), Source: SourceRecovered}
	}
	if data == "" {
		return LoadResult{Stats: pet.NewStats(), Source: SourceFresh}
	}

	var stats pet.Stats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		e.logger.Warn("Corrupted game stats, using defaults", "wallet", wallet, "error", err)
		return LoadResult{Stats: pet.NewStats(), Source: SourceRecovered}
	}

	stats.Clamp()
	return LoadResult{Stats: &stats, Source: SourceStored}
}

// SaveLocalStats persists the record. Write failures are logged and
// swallowed; the next mutation rewrites full state and implicitly retries.
func (e *Engine) SaveLocalStats(ctx context.Context, wallet string, stats *pet.Stats) {
	stats.Clamp()

	data, err := json.Marshal(stats)
	if err != nil {
		e.logger.Error("Failed to marshal game stats", "wallet", wallet, "error", err)
		return
	}
	if err := e.cache.Set(ctx, statsKey(wallet), string(data), 0); err != nil {
		e.logger.Error("Failed to save game stats", "wallet", wallet, "error", err)
	}
}

// FeedMoonling feeds the Moonling. Higher food quality gives larger
// bounded gains and more experience.
func (e *Engine) FeedMoonling(ctx context.Context, wallet string, foodQuality int) *pet.Stats {
	return e.applyAction(ctx, wallet, challenge.TypeFeed, foodQuality)
}

// PlayWithMoonling plays with the Moonling
func (e *Engine) PlayWithMoonling(ctx context.Context, wallet string, playQuality int) *pet.Stats {
	return e.applyAction(ctx, wallet, challenge.TypePlay, playQuality)
}

// PutMoonlingToSleep tucks the Moonling in
func (e *Engine) PutMoonlingToSleep(ctx context.Context, wallet string, sleepQuality int) *pet.Stats {
	return e.applyAction(ctx, wallet, challenge.TypeSleep, sleepQuality)
}

// ChatWithMoonling has a conversation with the Moonling
func (e *Engine) ChatWithMoonling(ctx context.Context, wallet string, chatQuality int) *pet.Stats {
	return e.applyAction(ctx, wallet, challenge.TypeChat, chatQuality)
}

// applyAction runs the full action pipeline: daily reset, stat delta,
// counters and experience, persistence, achievement evaluation, and
// daily challenge progress.
func (e *Engine) applyAction(ctx context.Context, wallet string, action challenge.Type, quality int) *pet.Stats {
	lock := e.walletLock(wallet)
	lock.Lock()
	defer lock.Unlock()

	stats := e.GetLocalStats(ctx, wallet).Stats
	now := e.now()
	today := pet.Day(now)

	e.runDailyReset(ctx, wallet, stats, today)

	quality = e.clampQuality(quality)
	delta, ok := e.balance.Actions[string(action)]
	if !ok {
		e.logger.Warn("No balance entry for action", "action", action)
		return stats
	}

	// Base delta, with the action's primary axis scaled by quality
	stats.Mood += delta.Mood
	stats.Hunger += delta.Hunger
	stats.Energy += delta.Energy
	bonus := quality - e.balance.Quality.Min
	switch action {
	case challenge.TypeFeed:
		stats.Hunger += bonus
	case challenge.TypePlay:
		stats.Mood += bonus
	case challenge.TypeSleep:
		stats.Energy += bonus
	case challenge.TypeChat:
		stats.Mood += bonus
	}
	stats.Vitals = stats.Vitals.Clamp()

	counterBefore, counterAfter, kind := e.bumpCounter(stats, action)

	levelBefore := stats.Level
	stats.AddExperience(delta.Experience + bonus*e.balance.Quality.ExperienceBonus)

	stats.Touch(now)

	stats.CareQuality = pet.ClampMeter(stats.CareQuality + quality*e.balance.Care.GainPerQuality)
	stats.AttentionScore = pet.ClampMeter(stats.AttentionScore + e.balance.Attention.GainPerAction)

	e.SaveLocalStats(ctx, wallet, stats)

	e.evaluateCounter(ctx, wallet, kind, counterBefore, counterAfter)
	if stats.Level != levelBefore {
		e.evaluateCounter(ctx, wallet, achievement.CounterLevel, levelBefore, stats.Level)
	}

	e.advanceChallenge(ctx, wallet, stats, action, today)

	e.logger.Debug("Action applied",
		"wallet", wallet,
		"action", action,
		"quality", quality,
		"level", stats.Level,
		"experience", stats.Experience)

	return stats
}

// bumpCounter increments the counter for an action family and returns
// the before/after values with the achievement counter kind.
func (e *Engine) bumpCounter(stats *pet.Stats, action challenge.Type) (int, int, achievement.CounterKind) {
	switch action {
	case challenge.TypeFeed:
		stats.TotalFeedings++
		return stats.TotalFeedings - 1, stats.TotalFeedings, achievement.CounterFeedings
	case challenge.TypePlay:
		stats.TotalPlays++
		return stats.TotalPlays - 1, stats.TotalPlays, achievement.CounterPlays
	case challenge.TypeSleep:
		stats.TotalSleeps++
		return stats.TotalSleeps - 1, stats.TotalSleeps, achievement.CounterSleeps
	default:
		stats.TotalChats++
		return stats.TotalChats - 1, stats.TotalChats, achievement.CounterChats
	}
}

// advanceChallenge moves today's challenge of the action's type forward
// and grants the completion reward exactly once.
func (e *Engine) advanceChallenge(ctx context.Context, wallet string, stats *pet.Stats, action challenge.Type, today string) {
	challenges := e.loadChallenges(ctx, wallet, today)
	challenges, reward := challenge.Advance(challenges, action)
	e.saveChallenges(ctx, wallet, challenges)

	if reward > 0 {
		levelBefore := stats.Level
		stats.AddExperience(reward)
		e.SaveLocalStats(ctx, wallet, stats)
		if stats.Level != levelBefore {
			e.evaluateCounter(ctx, wallet, achievement.CounterLevel, levelBefore, stats.Level)
		}
		e.logger.Info("Daily challenge completed", "wallet", wallet, "type", action, "reward", reward)
	}
}

func (e *Engine) clampQuality(q int) int {
	if q < e.balance.Quality.Min {
		return e.balance.Quality.Min
	}
	if q > e.balance.Quality.Max {
		return e.balance.Quality.Max
	}
	return q
}
