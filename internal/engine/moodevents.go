package engine

import (
	"context"
	"encoding/json"

	"github.com/moonlit-labs/moonling-engine/pkg/pet"
)

// RecordMoodEvent appends a mood event to the wallet's list, pruning
// anything already expired.
func (e *Engine) RecordMoodEvent(ctx context.Context, wallet string, event pet.MoodEvent) {
	now := e.now()
	events := pet.PruneMoodEvents(e.loadMoodEvents(ctx, wallet), now)
	events = append(events, event)
	e.saveMoodEvents(ctx, wallet, events)
}

// CurrentMoodEvents returns the active mood events for a wallet.
// Expired events are pruned on read and the pruned list is written back.
func (e *Engine) CurrentMoodEvents(ctx context.Context, wallet string) []pet.MoodEvent {
	stored := e.loadMoodEvents(ctx, wallet)
	active := pet.PruneMoodEvents(stored, e.now())
	if len(active) != len(stored) {
		e.saveMoodEvents(ctx, wallet, active)
	}
	return active
}

func (e *Engine) loadMoodEvents(ctx context.Context, wallet string) []pet.MoodEvent {
	data, err := e.cache.Get(ctx, moodEventsKey(wallet))
	if err != nil {
		e.logger.Warn("Failed to load mood events, treating as empty", "wallet", wallet, "error", err)
		return nil
	}
	if data == "" {
		return nil
	}

	var events []pet.MoodEvent
	if err := json.Unmarshal([]byte(data), &events); err != nil {
		e.logger.Warn("Corrupted mood events, treating as empty", "wallet", wallet, "error", err)
		return nil
	}
	return events
}

func (e *Engine) saveMoodEvents(ctx context.Context, wallet string, events []pet.MoodEvent) {
	data, err := json.Marshal(events)
	if err != nil {
		e.logger.Error("Failed to marshal mood events", "wallet", wallet, "error", err)
		return
	}
	if err := e.cache.Set(ctx, moodEventsKey(wallet), string(data), 0); err != nil {
		e.logger.Error("Failed to save mood events", "wallet", wallet, "error", err)
	}
}
