package engine

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/moonlit-labs/moonling-engine/pkg/achievement"
)

// pendingWalletsKey holds the roster of wallets with queued achievements,
// so the mint worker knows which queues to drain.
const pendingWalletsKey = "achievement_pending_wallets"

// evaluateCounter queues every registry achievement whose milestone was
// crossed by a single counter increment.
func (e *Engine) evaluateCounter(ctx context.Context, wallet string, kind achievement.CounterKind, before, after int) {
	for _, a := range achievement.ForCounter(kind) {
		if a.Crossed(before, after) {
			e.queueAchievement(ctx, wallet, a.ID)
		}
	}
}

// queueAchievement moves an id into the pending mint queue. Set
// semantics: an id already queued or already minted is skipped. Unknown
// ids are skipped with a warning, never fatal.
func (e *Engine) queueAchievement(ctx context.Context, wallet string, id string) {
	if _, ok := achievement.Lookup(id); !ok {
		e.logger.Warn("Unknown achievement id, not queuing", "wallet", wallet, "achievement", id)
		return
	}

	queued := e.loadIDs(ctx, queueKey(wallet))
	if slices.Contains(queued, id) {
		return
	}
	if slices.Contains(e.loadIDs(ctx, completedKey(wallet)), id) {
		// minted is terminal
		return
	}

	queued = append(queued, id)
	e.saveIDs(ctx, queueKey(wallet), queued)
	e.addPendingWallet(ctx, wallet)

	e.logger.Info("Achievement queued for minting", "wallet", wallet, "achievement", id)
}

// QueuedAchievements returns the ids pending external minting
func (e *Engine) QueuedAchievements(ctx context.Context, wallet string) []string {
	return e.loadIDs(ctx, queueKey(wallet))
}

// CompletedAchievements returns the ids already minted
func (e *Engine) CompletedAchievements(ctx context.Context, wallet string) []string {
	return e.loadIDs(ctx, completedKey(wallet))
}

// MarkAchievementMinted moves an id from the pending queue to the
// completed set. Safe for ids not currently queued: the minting
// collaborator may retry or double-confirm, and that must be a no-op.
func (e *Engine) MarkAchievementMinted(ctx context.Context, wallet string, id string) {
	queued := e.loadIDs(ctx, queueKey(wallet))
	if i := slices.Index(queued, id); i >= 0 {
		queued = slices.Delete(queued, i, i+1)
		e.saveIDs(ctx, queueKey(wallet), queued)
	}

	completed := e.loadIDs(ctx, completedKey(wallet))
	if !slices.Contains(completed, id) {
		completed = append(completed, id)
		e.saveIDs(ctx, completedKey(wallet), completed)
		e.logger.Info("Achievement minted", "wallet", wallet, "achievement", id)
	}

	if len(queued) == 0 {
		e.removePendingWallet(ctx, wallet)
	}
}

// ClearAchievementQueue empties the pending queue for a wallet
func (e *Engine) ClearAchievementQueue(ctx context.Context, wallet string) {
	e.saveIDs(ctx, queueKey(wallet), []string{})
	e.removePendingWallet(ctx, wallet)
}

// PendingWallets returns the wallets that currently have queued achievements
func (e *Engine) PendingWallets(ctx context.Context) []string {
	return e.loadIDs(ctx, pendingWalletsKey)
}

func (e *Engine) addPendingWallet(ctx context.Context, wallet string) {
	wallets := e.loadIDs(ctx, pendingWalletsKey)
	if slices.Contains(wallets, wallet) {
		return
	}
	e.saveIDs(ctx, pendingWalletsKey, append(wallets, wallet))
}

func (e *Engine) removePendingWallet(ctx context.Context, wallet string) {
	wallets := e.loadIDs(ctx, pendingWalletsKey)
	if i := slices.Index(wallets, wallet); i >= 0 {
		e.saveIDs(ctx, pendingWalletsKey, slices.Delete(wallets, i, i+1))
	}
}

// loadIDs reads a JSON string array; missing or corrupted values read as empty
func (e *Engine) loadIDs(ctx context.Context, key string) []string {
	data, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn("Failed to load id list, treating as empty", "key", key, "error", err)
		return nil
	}
	if data == "" {
		return nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		e.logger.Warn("Corrupted id list, treating as empty", "key", key, "error", err)
		return nil
	}
	return ids
}

func (e *Engine) saveIDs(ctx context.Context, key string, ids []string) {
	data, err := json.Marshal(ids)
	if err != nil {
		e.logger.Error("Failed to marshal id list", "key", key, "error", err)
		return
	}
	if err := e.cache.Set(ctx, key, string(data), 0); err != nil {
		e.logger.Error("Failed to save id list", "key", key, "error", err)
	}
}
