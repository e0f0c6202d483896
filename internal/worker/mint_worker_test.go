package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonlit-labs/moonling-engine/internal/config"
	"github.com/moonlit-labs/moonling-engine/internal/engine"
	"github.com/moonlit-labs/moonling-engine/internal/minting"
	"github.com/moonlit-labs/moonling-engine/internal/services"
	"github.com/moonlit-labs/moonling-engine/pkg/pet"
)

func setupWorker(t *testing.T, minter minting.Minter) (*MintWorker, *engine.Engine, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	balance, err := config.DefaultBalance()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(services.NewMemoryCache(), balance, logger)

	w := New(eng, minter, client, logger, "test-worker", time.Minute)
	return w, eng, mr
}

// queueOneAchievement drives a wallet to the caretaker_10 milestone so
// exactly one achievement sits in its queue.
func queueOneAchievement(t *testing.T, eng *engine.Engine, wallet string) {
	t.Helper()
	ctx := context.Background()

	stats := pet.NewStats()
	stats.TotalFeedings = 9
	stats.LastDailyCheck = pet.Day(eng.Now())
	eng.SaveLocalStats(ctx, wallet, stats)
	eng.FeedMoonling(ctx, wallet, 1)

	require.Equal(t, []string{"caretaker_10"}, eng.QueuedAchievements(ctx, wallet))
}

func TestProcessWalletMintsAndAcks(t *testing.T) {
	minter := minting.NewMockMinter()
	w, eng, _ := setupWorker(t, minter)
	ctx := context.Background()

	queueOneAchievement(t, eng, "w1")

	require.NoError(t, w.ProcessWallet(ctx, "w1"))

	assert.Empty(t, eng.QueuedAchievements(ctx, "w1"))
	assert.Equal(t, []string{"caretaker_10"}, eng.CompletedAchievements(ctx, "w1"))
	assert.Empty(t, eng.PendingWallets(ctx))

	require.Len(t, minter.MintCalls, 1)
	call := minter.MintCalls[0]
	assert.Equal(t, "w1", call.Wallet)
	assert.Equal(t, "caretaker_10", call.AchievementID)
	assert.NotEmpty(t, call.Metadata["name"])
	assert.NotEmpty(t, call.Metadata["description"])
}

func TestProcessWalletMintErrorLeavesQueued(t *testing.T) {
	minter := minting.NewMockMinter()
	minter.MintFunc = func(ctx context.Context, wallet, id string, metadata map[string]string) (*minting.Result, error) {
		return nil, assert.AnError
	}
	w, eng, _ := setupWorker(t, minter)
	ctx := context.Background()

	queueOneAchievement(t, eng, "w1")

	require.NoError(t, w.ProcessWallet(ctx, "w1"))

	assert.Equal(t, []string{"caretaker_10"}, eng.QueuedAchievements(ctx, "w1"))
	assert.Empty(t, eng.CompletedAchievements(ctx, "w1"))
}

func TestProcessWalletMintRejectionLeavesQueued(t *testing.T) {
	minter := minting.NewMockMinter()
	minter.MintFunc = func(ctx context.Context, wallet, id string, metadata map[string]string) (*minting.Result, error) {
		return &minting.Result{Success: false, Error: "insufficient funds"}, nil
	}
	w, eng, _ := setupWorker(t, minter)
	ctx := context.Background()

	queueOneAchievement(t, eng, "w1")

	require.NoError(t, w.ProcessWallet(ctx, "w1"))

	assert.Equal(t, []string{"caretaker_10"}, eng.QueuedAchievements(ctx, "w1"))
	assert.Empty(t, eng.CompletedAchievements(ctx, "w1"))
}

func TestProcessWalletSkipsWhenLocked(t *testing.T) {
	minter := minting.NewMockMinter()
	w, eng, mr := setupWorker(t, minter)
	ctx := context.Background()

	queueOneAchievement(t, eng, "w1")

	// Another worker holds the lock
	require.NoError(t, mr.Set("mint-lock:w1", "other-worker"))

	require.NoError(t, w.ProcessWallet(ctx, "w1"))

	assert.Empty(t, minter.MintCalls)
	assert.Equal(t, []string{"caretaker_10"}, eng.QueuedAchievements(ctx, "w1"))
}

func TestProcessWalletReleasesLock(t *testing.T) {
	minter := minting.NewMockMinter()
	w, eng, mr := setupWorker(t, minter)
	ctx := context.Background()

	queueOneAchievement(t, eng, "w1")
	require.NoError(t, w.ProcessWallet(ctx, "w1"))

	assert.False(t, mr.Exists("mint-lock:w1"))
}

func TestWorkerDefaultID(t *testing.T) {
	minter := minting.NewMockMinter()
	w, _, _ := setupWorker(t, minter)
	assert.Equal(t, "test-worker", w.id)

	anon := New(w.engine, minter, w.redisClient, w.log, "", time.Minute)
	assert.Contains(t, anon.id, "mint-worker-")
}

func TestDryRunMinterAlwaysSucceeds(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	minter := minting.NewDryRunMinter(logger)

	result, err := minter.MintAchievement(context.Background(), "w1", "caretaker_10", nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Signature, "dry-run-")
}
