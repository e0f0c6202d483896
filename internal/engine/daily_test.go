package engine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonlit-labs/moonling-engine/pkg/challenge"
	"github.com/moonlit-labs/moonling-engine/pkg/pet"
)

func TestFirstActionInitializesStreak(t *testing.T) {
	eng, _, _ := setupEngine(t)

	stats := eng.FeedMoonling(context.Background(), "w1", 1)
	assert.Equal(t, 1, stats.DailyStreak)
	assert.Equal(t, "2025-03-14", stats.LastDailyCheck)
	// A brand-new record starts at full attention; the first reset must
	// not count as a missed day.
	assert.Equal(t, 100, stats.AttentionScore)
}

func TestConsecutiveDaysIncrementStreak(t *testing.T) {
	eng, _, clock := setupEngine(t)
	ctx := context.Background()

	eng.FeedMoonling(ctx, "w1", 1)

	clock.Advance(24 * time.Hour)
	stats := eng.FeedMoonling(ctx, "w1", 1)
	assert.Equal(t, 2, stats.DailyStreak)

	clock.Advance(24 * time.Hour)
	stats = eng.FeedMoonling(ctx, "w1", 1)
	assert.Equal(t, 3, stats.DailyStreak)
}

func TestMissedDayResetsStreak(t *testing.T) {
	eng, _, clock := setupEngine(t)
	ctx := context.Background()

	eng.FeedMoonling(ctx, "w1", 1)
	clock.Advance(24 * time.Hour)
	stats := eng.FeedMoonling(ctx, "w1", 1)
	require.Equal(t, 2, stats.DailyStreak)

	// Skip a day
	clock.Advance(48 * time.Hour)
	stats = eng.FeedMoonling(ctx, "w1", 1)
	assert.Equal(t, 1, stats.DailyStreak)
}

func TestSameDayActionsDoNotRerunReset(t *testing.T) {
	eng, _, clock := setupEngine(t)
	ctx := context.Background()

	eng.FeedMoonling(ctx, "w1", 1)
	clock.Advance(2 * time.Hour)
	stats := eng.FeedMoonling(ctx, "w1", 1)

	assert.Equal(t, 1, stats.DailyStreak)
	assert.Equal(t, 2, stats.TotalFeedings)
}

func TestAttentionDecaysAtResetWithFloor(t *testing.T) {
	eng, _, _ := setupEngine(t)
	ctx := context.Background()

	// Yesterday's record with low attention. Daily decay of 10 would
	// drop 22 to 12; the floor of 20 holds, then the action adds 5.
	seed := pet.NewStats()
	seed.LastDailyCheck = "2025-03-13"
	seed.DailyStreak = 4
	seed.AttentionScore = 22
	eng.SaveLocalStats(ctx, "w1", seed)

	stats := eng.FeedMoonling(ctx, "w1", 1)
	assert.Equal(t, 5, stats.DailyStreak)
	assert.Equal(t, 25, stats.AttentionScore)
}

func TestStreakMilestoneQueuesAchievement(t *testing.T) {
	eng, _, _ := setupEngine(t)
	ctx := context.Background()

	seed := pet.NewStats()
	seed.LastDailyCheck = "2025-03-13"
	seed.DailyStreak = 6
	eng.SaveLocalStats(ctx, "w1", seed)

	stats := eng.FeedMoonling(ctx, "w1", 1)
	require.Equal(t, 7, stats.DailyStreak)
	assert.Contains(t, eng.QueuedAchievements(ctx, "w1"), "streak_7")
}

func TestDailyChallengesGenerated(t *testing.T) {
	eng, _, _ := setupEngine(t)

	challenges := eng.DailyChallenges(context.Background(), "w1")
	assert.Len(t, challenges, 4)
	for _, c := range challenges {
		assert.Equal(t, "2025-03-14", c.Date)
		assert.Greater(t, c.Target, 0)
		assert.False(t, c.Completed)
	}
}

func TestStaleChallengesRegenerated(t *testing.T) {
	eng, cache, _ := setupEngine(t)
	ctx := context.Background()

	stale := []challenge.Challenge{
		{Type: challenge.TypeFeed, Target: 2, Current: 2, Completed: true, Date: "2025-03-10"},
	}
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, "daily_challenges_w1", string(data), 0))

	challenges := eng.DailyChallenges(ctx, "w1")
	assert.Len(t, challenges, 4)
	for _, c := range challenges {
		assert.Equal(t, "2025-03-14", c.Date)
		assert.False(t, c.Completed)
	}
}

func TestChallengeCompletionAwardsExperienceOnce(t *testing.T) {
	eng, cache, _ := setupEngine(t)
	ctx := context.Background()

	seedStats(t, eng, "w1", func(*pet.Stats) {})

	today := []challenge.Challenge{
		{Type: challenge.TypeFeed, Target: 2, Reward: 20, Date: "2025-03-14"},
	}
	data, err := json.Marshal(today)
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, "daily_challenges_w1", string(data), 0))

	// First feed: progress only. 15 experience from the action itself.
	stats := eng.FeedMoonling(ctx, "w1", 1)
	assert.Equal(t, 15, stats.Experience)

	// Second feed completes the challenge: 15 + 15 + 20 reward
	stats = eng.FeedMoonling(ctx, "w1", 1)
	assert.Equal(t, 50, stats.Experience)

	// Third feed: no double reward
	stats = eng.FeedMoonling(ctx, "w1", 1)
	assert.Equal(t, 65, stats.Experience)
}
