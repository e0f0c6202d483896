// Package decay implements the stat decay service: it converts a stored
// vitals snapshot plus elapsed wall-clock time into current stats and a
// derived mood state. Snapshots are stored per wallet in the key-value
// store; all failure paths degrade to neutral defaults and log, they
// never surface errors to callers.
package decay

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/moonlit-labs/moonling-engine/internal/config"
	"github.com/moonlit-labs/moonling-engine/internal/services"
	"github.com/moonlit-labs/moonling-engine/pkg/pet"
)

// Snapshot is the persisted decay record. Stats are kept fractional so
// slow decay rates accumulate across short intervals.
type Snapshot struct {
	Mood      float64 `json:"mood"`
	Hunger    float64 `json:"hunger"`
	Energy    float64 `json:"energy"`
	UpdatedAt int64   `json:"updated_at"` // ms since epoch
}

// CharacterState is the caller-facing view: rounded vitals plus the
// derived mood state.
type CharacterState struct {
	pet.Vitals
	MoodState pet.MoodState `json:"mood_state"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Effects is an immediate, non-decay stat delta applied by RecordAction.
// Mood is the daily-capped bonus; hunger and energy apply unconditionally.
type Effects struct {
	Mood   int `json:"mood"`
	Hunger int `json:"hunger"`
	Energy int `json:"energy"`
}

// Service owns per-character decay snapshots.
type Service struct {
	cache   services.Cache
	balance *config.Balance
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a decay service backed by the given store
func NewService(cache services.Cache, balance *config.Balance, logger *slog.Logger) *Service {
	return &Service{
		cache:   cache,
		balance: balance,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Returns the Service for chaining.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func snapshotKey(wallet string) string {
	return "decay_state_" + wallet
}

func moodGainKey(wallet string) string {
	return "daily_mood_gain_" + wallet
}

// InitializeCharacter creates a decay record for a character if none
// exists. Idempotent: an existing record is left untouched. Initial
// stats are clamped into the valid domain.
func (s *Service) InitializeCharacter(ctx context.Context, wallet string, initial pet.Vitals) {
	if _, ok := s.loadSnapshot(ctx, wallet); ok {
		return
	}

	initial = initial.Clamp()
	s.saveSnapshot(ctx, wallet, Snapshot{
		Mood:      float64(initial.Mood),
		Hunger:    float64(initial.Hunger),
		Energy:    float64(initial.Energy),
		UpdatedAt: s.now().UnixMilli(),
	})
}

// UpdateCharacterStats applies elapsed-time decay to the stored snapshot,
// writes it back with a fresh timestamp, and returns the current state.
// Repeated calls with no elapsed time are idempotent. A character with no
// prior snapshot is auto-initialized with neutral defaults.
func (s *Service) UpdateCharacterStats(ctx context.Context, wallet string) *CharacterState {
	now := s.now()

	snap, ok := s.loadSnapshot(ctx, wallet)
	if !ok {
		snap = defaultSnapshot(now)
	}

	snap = s.decayed(snap, now)
	s.saveSnapshot(ctx, wallet, snap)

	return s.stateOf(snap)
}

// RecordAction applies an immediate stat delta on top of the decayed
// snapshot. The mood component is a bonus granted at most once per UTC
// day per character; the returned bool reports whether it applied so
// callers can message the player accurately.
func (s *Service) RecordAction(ctx context.Context, wallet string, actionType string, effects Effects) (*CharacterState, bool) {
	now := s.now()

	snap, ok := s.loadSnapshot(ctx, wallet)
	if !ok {
		snap = defaultSnapshot(now)
	}
	snap = s.decayed(snap, now)

	snap.Hunger = clampFloat(snap.Hunger + float64(effects.Hunger))
	snap.Energy = clampFloat(snap.Energy + float64(effects.Energy))

	canGainMood := false
	if effects.Mood > 0 {
		today := pet.Day(now)
		lastGain, err := s.cache.Get(ctx, moodGainKey(wallet))
		if err != nil {
			s.logger.Warn("Failed to read daily mood gain marker", "wallet", wallet, "error", err)
			lastGain = today // fail closed: no double bonus on storage trouble
		}
		if lastGain != today {
			snap.Mood = clampFloat(snap.Mood + float64(effects.Mood))
			canGainMood = true
			if err := s.cache.Set(ctx, moodGainKey(wallet), today, 0); err != nil {
				s.logger.Error("Failed to store daily mood gain marker", "wallet", wallet, "error", err)
			}
		}
	}

	// Re-apply the critical-band ceiling: an action can raise hunger or
	// energy out of the critical band, but never mood above its ceiling
	// while either axis remains critical.
	snap = s.applyMoodCeiling(snap)
	s.saveSnapshot(ctx, wallet, snap)

	s.logger.Debug("Recorded action", "wallet", wallet, "action", actionType, "mood_bonus", canGainMood)
	return s.stateOf(snap), canGainMood
}

// CharacterStateDescription returns a human-readable sentence for the
// character's current mood state. Read-only: nothing is persisted.
func (s *Service) CharacterStateDescription(ctx context.Context, wallet string) string {
	now := s.now()

	snap, ok := s.loadSnapshot(ctx, wallet)
	if !ok {
		snap = defaultSnapshot(now)
	}
	snap = s.decayed(snap, now)

	return pet.MoodDescription(pet.ClassifyMood(s.stateOf(snap).Vitals))
}

// decayed returns the snapshot advanced to now. Hunger and energy fall
// at fixed hourly rates with a floor of zero; mood falls more slowly and
// is capped while hunger or energy sits in the critical band. Zero or
// negative elapsed time (clock skew) means zero decay.
func (s *Service) decayed(snap Snapshot, now time.Time) Snapshot {
	elapsed := now.UnixMilli() - snap.UpdatedAt
	if elapsed < 0 {
		elapsed = 0
	}
	hours := float64(elapsed) / float64(time.Hour.Milliseconds())

	d := s.balance.Decay
	snap.Hunger = clampFloat(snap.Hunger - d.HungerPerHour*hours)
	snap.Energy = clampFloat(snap.Energy - d.EnergyPerHour*hours)
	snap.Mood = clampFloat(snap.Mood - d.MoodPerHour*hours)

	snap = s.applyMoodCeiling(snap)
	snap.UpdatedAt = now.UnixMilli()
	return snap
}

// applyMoodCeiling enforces the hunger/energy coupling: while the worse
// of hunger and energy is critical, mood cannot exceed the ceiling.
func (s *Service) applyMoodCeiling(snap Snapshot) Snapshot {
	d := s.balance.Decay
	worst := math.Min(snap.Hunger, snap.Energy)
	if int(math.Round(worst)) <= d.CriticalBand {
		snap.Mood = math.Min(snap.Mood, float64(d.MoodCeiling))
	}
	return snap
}

func (s *Service) stateOf(snap Snapshot) *CharacterState {
	vitals := pet.Vitals{
		Mood:   int(math.Round(snap.Mood)),
		Hunger: int(math.Round(snap.Hunger)),
		Energy: int(math.Round(snap.Energy)),
	}.Clamp()

	return &CharacterState{
		Vitals:    vitals,
		MoodState: pet.ClassifyMood(vitals),
		UpdatedAt: time.UnixMilli(snap.UpdatedAt).UTC(),
	}
}

func (s *Service) loadSnapshot(ctx context.Context, wallet string) (Snapshot, bool) {
	data, err := s.cache.Get(ctx, snapshotKey(wallet))
	if err != nil {
		s.logger.Warn("Failed to load decay snapshot, using defaults", "wallet", wallet, "error", err)
		return Snapshot{}, false
	}
	if data == "" {
		return Snapshot{}, false
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		s.logger.Warn("Corrupted decay snapshot, using defaults", "wallet", wallet, "error", err)
		return Snapshot{}, false
	}
	return snap, true
}

func (s *Service) saveSnapshot(ctx context.Context, wallet string, snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("Failed to marshal decay snapshot", "wallet", wallet, "error", err)
		return
	}
	if err := s.cache.Set(ctx, snapshotKey(wallet), string(data), 0); err != nil {
		s.logger.Error("Failed to save decay snapshot", "wallet", wallet, "error", err)
	}
}

func defaultSnapshot(now time.Time) Snapshot {
	return Snapshot{Mood: 3, Hunger: 3, Energy: 3, UpdatedAt: now.UnixMilli()}
}

func clampFloat(v float64) float64 {
	if v < pet.StatMin {
		return pet.StatMin
	}
	if v > pet.StatMax {
		return pet.StatMax
	}
	return v
}
