package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonlit-labs/moonling-engine/internal/config"
	"github.com/moonlit-labs/moonling-engine/internal/decay"
	"github.com/moonlit-labs/moonling-engine/internal/engine"
	"github.com/moonlit-labs/moonling-engine/internal/services"
	"github.com/moonlit-labs/moonling-engine/pkg/challenge"
	"github.com/moonlit-labs/moonling-engine/pkg/pet"
)

func setupHandler(t *testing.T) (*MoonlingHandler, *engine.Engine) {
	t.Helper()

	balance, err := config.DefaultBalance()
	require.NoError(t, err)

	cache := services.NewMemoryCache()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	eng := engine.New(cache, balance, logger)
	decaySvc := decay.NewService(cache, balance, logger)

	return NewMoonlingHandler(eng, decaySvc, balance, logger), eng
}

func doRequest(h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetMoonlingStateFresh(t *testing.T) {
	h, _ := setupHandler(t)

	w := doRequest(h, http.MethodGet, "/v1/moonling/wallet123", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp MoonlingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "wallet123", resp.Wallet)
	assert.Equal(t, engine.SourceFresh, resp.Source)
	assert.Equal(t, 3, resp.Stats.Mood)
	assert.NotEmpty(t, resp.Description)
}

func TestGetMoonlingStateMissingWallet(t *testing.T) {
	h, _ := setupHandler(t)

	w := doRequest(h, http.MethodGet, "/v1/moonling/", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "Wallet")
}

func TestPostAction(t *testing.T) {
	h, _ := setupHandler(t)

	w := doRequest(h, http.MethodPost, "/v1/moonling/wallet123/actions",
		ActionRequest{Action: "feed", Quality: 2})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ActionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 1, resp.Stats.TotalFeedings)
	assert.True(t, resp.CanGainMood, "first mood-positive action of the day")
	assert.NotEmpty(t, resp.MoodState)
}

func TestPostActionSecondMoodGainDenied(t *testing.T) {
	h, _ := setupHandler(t)

	doRequest(h, http.MethodPost, "/v1/moonling/wallet123/actions", ActionRequest{Action: "feed"})
	w := doRequest(h, http.MethodPost, "/v1/moonling/wallet123/actions", ActionRequest{Action: "play"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ActionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.CanGainMood)
}

func TestPostActionCaseInsensitive(t *testing.T) {
	h, _ := setupHandler(t)

	w := doRequest(h, http.MethodPost, "/v1/moonling/wallet123/actions", ActionRequest{Action: "FEED"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPostActionUnknownVerb(t *testing.T) {
	h, _ := setupHandler(t)

	w := doRequest(h, http.MethodPost, "/v1/moonling/wallet123/actions", ActionRequest{Action: "juggle"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "juggle")
}

func TestPostActionBadBody(t *testing.T) {
	h, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/moonling/wallet123/actions",
		bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAchievements(t *testing.T) {
	h, eng := setupHandler(t)
	ctx := context.Background()

	stats := pet.NewStats()
	stats.TotalFeedings = 9
	stats.LastDailyCheck = pet.Day(eng.Now())
	eng.SaveLocalStats(ctx, "wallet123", stats)
	eng.FeedMoonling(ctx, "wallet123", 1)
	eng.MarkAchievementMinted(ctx, "wallet123", "level_5")

	w := doRequest(h, http.MethodGet, "/v1/moonling/wallet123/achievements", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp AchievementsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, []string{"caretaker_10"}, resp.Pending)
	assert.Equal(t, []string{"level_5"}, resp.Completed)
}

func TestGetAchievementsEmptyListsNotNull(t *testing.T) {
	h, _ := setupHandler(t)

	w := doRequest(h, http.MethodGet, "/v1/moonling/nobody/achievements", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `"pending":[]`)
	assert.Contains(t, body, `"completed":[]`)
}

func TestGetChallenges(t *testing.T) {
	h, _ := setupHandler(t)

	w := doRequest(h, http.MethodGet, "/v1/moonling/wallet123/challenges", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var challenges []challenge.Challenge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &challenges))
	assert.Len(t, challenges, 4)
}

func TestMoodEventLifecycle(t *testing.T) {
	h, _ := setupHandler(t)

	w := doRequest(h, http.MethodPost, "/v1/moonling/wallet123/events",
		MoodEventRequest{Type: "excited", Intensity: 4, Duration: 30, Cause: "new toy"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(h, http.MethodGet, "/v1/moonling/wallet123/events", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var events []pet.MoodEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "excited", events[0].Type)
	assert.Equal(t, 4, events[0].Intensity)
}

func TestPostMoodEventValidation(t *testing.T) {
	h, _ := setupHandler(t)

	w := doRequest(h, http.MethodPost, "/v1/moonling/wallet123/events",
		MoodEventRequest{Type: "", Duration: 30})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(h, http.MethodPost, "/v1/moonling/wallet123/events",
		MoodEventRequest{Type: "excited", Duration: 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := setupHandler(t)

	w := doRequest(h, http.MethodDelete, "/v1/moonling/wallet123", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = doRequest(h, http.MethodGet, "/v1/moonling/wallet123/actions", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
