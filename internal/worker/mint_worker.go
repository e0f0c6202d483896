// Package worker implements the mint worker: the external consumer of
// the engine's achievement queue. It periodically drains per-wallet
// queues, asks the minting collaborator to mint each achievement, and
// acknowledges successes back through the engine. Failures stay queued
// for the next cycle.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/moonlit-labs/moonling-engine/internal/engine"
	"github.com/moonlit-labs/moonling-engine/internal/minting"
	"github.com/moonlit-labs/moonling-engine/pkg/achievement"
)

const walletLockTTL = 30 * time.Second

// MintWorker drains achievement queues on an interval
type MintWorker struct {
	id          string
	engine      *engine.Engine
	minter      minting.Minter
	redisClient *redis.Client
	interval    time.Duration
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new mint worker instance
func New(eng *engine.Engine, minter minting.Minter, redisClient *redis.Client, log *slog.Logger, workerID string, interval time.Duration) *MintWorker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("mint-worker-%s", uuid.New().String()[:8])
	}

	return &MintWorker{
		id:          workerID,
		engine:      eng,
		minter:      minter,
		redisClient: redisClient,
		interval:    interval,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins draining achievement queues until Stop is called
func (w *MintWorker) Start() error {
	w.log.Info("Mint worker starting", "worker_id", w.id, "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Mint worker shutting down", "worker_id", w.id)
			return nil
		case <-ticker.C:
			w.processPendingWallets()
		}
	}
}

// Stop gracefully shuts down the worker
func (w *MintWorker) Stop() {
	w.log.Info("Mint worker stop requested", "worker_id", w.id)
	w.cancel()
}

func (w *MintWorker) processPendingWallets() {
	wallets := w.engine.PendingWallets(w.ctx)
	for _, wallet := range wallets {
		if err := w.ProcessWallet(w.ctx, wallet); err != nil {
			w.log.Error("Error processing wallet queue", "error", err, "wallet", wallet, "worker_id", w.id)
		}
	}
}

// ProcessWallet drains one wallet's achievement queue under a
// cross-process lock. Another worker holding the lock is not an error;
// the queue stays put for the next cycle.
func (w *MintWorker) ProcessWallet(ctx context.Context, wallet string) error {
	locked, err := w.acquireWalletLock(ctx, wallet)
	if err != nil {
		return fmt.Errorf("failed to acquire mint lock: %w", err)
	}
	if !locked {
		w.log.Debug("Wallet already locked by another worker", "wallet", wallet, "worker_id", w.id)
		return nil
	}
	defer w.releaseWalletLock(ctx, wallet)

	queued := w.engine.QueuedAchievements(ctx, wallet)
	for _, id := range queued {
		a, ok := achievement.Lookup(id)
		if !ok {
			// Shouldn't happen: the engine validates ids at queue time.
			// Acknowledge it anyway so a bad id cannot wedge the queue.
			w.log.Warn("Unknown achievement id in queue, discarding", "wallet", wallet, "achievement", id)
			w.engine.MarkAchievementMinted(ctx, wallet, id)
			continue
		}

		metadata := map[string]string{
			"name":        a.Name,
			"description": a.Description,
		}

		result, err := w.minter.MintAchievement(ctx, wallet, id, metadata)
		if err != nil {
			w.log.Error("Mint request failed, leaving queued",
				"error", err,
				"wallet", wallet,
				"achievement", id,
				"worker_id", w.id)
			continue
		}
		if !result.Success {
			w.log.Warn("Mint rejected, leaving queued",
				"wallet", wallet,
				"achievement", id,
				"mint_error", result.Error)
			continue
		}

		w.engine.MarkAchievementMinted(ctx, wallet, id)
		w.log.Info("Achievement mint confirmed",
			"wallet", wallet,
			"achievement", id,
			"signature", result.Signature,
			"worker_id", w.id)
	}

	return nil
}

// acquireWalletLock attempts to acquire the mint lock for a wallet.
// Returns true if the lock was acquired, false if already locked.
func (w *MintWorker) acquireWalletLock(ctx context.Context, wallet string) (bool, error) {
	lockKey := fmt.Sprintf("mint-lock:%s", wallet)

	result, err := w.redisClient.SetNX(ctx, lockKey, w.id, walletLockTTL).Result()
	if err != nil {
		return false, err
	}
	return result, nil
}

// releaseWalletLock releases the mint lock for a wallet
func (w *MintWorker) releaseWalletLock(ctx context.Context, wallet string) {
	lockKey := fmt.Sprintf("mint-lock:%s", wallet)

	// Only delete if we own the lock
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)

	if err := script.Run(ctx, w.redisClient, []string{lockKey}, w.id).Err(); err != nil {
		w.log.Error("Failed to release mint lock", "error", err, "wallet", wallet)
	}
}
