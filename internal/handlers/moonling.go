package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/moonlit-labs/moonling-engine/internal/config"
	"github.com/moonlit-labs/moonling-engine/internal/decay"
	"github.com/moonlit-labs/moonling-engine/internal/engine"
	"github.com/moonlit-labs/moonling-engine/internal/logger"
	"github.com/moonlit-labs/moonling-engine/pkg/challenge"
	"github.com/moonlit-labs/moonling-engine/pkg/pet"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// MoonlingHandler serves the per-wallet Moonling state and action verbs
type MoonlingHandler struct {
	engine  *engine.Engine
	decay   *decay.Service
	balance *config.Balance
	logger  *slog.Logger
}

func NewMoonlingHandler(eng *engine.Engine, decaySvc *decay.Service, balance *config.Balance, logger *slog.Logger) *MoonlingHandler {
	return &MoonlingHandler{
		engine:  eng,
		decay:   decaySvc,
		balance: balance,
		logger:  logger,
	}
}

// MoonlingResponse is the combined state for one wallet
type MoonlingResponse struct {
	Wallet      string          `json:"wallet"`
	Stats       *pet.Stats      `json:"stats"`
	MoodState   pet.MoodState   `json:"mood_state"`
	Description string          `json:"description"`
	Source      engine.Source   `json:"source"`
	MoodEvents  []pet.MoodEvent `json:"mood_events,omitempty"`
}

// ActionRequest is the body for POST .../actions
type ActionRequest struct {
	Action  string `json:"action"`  // feed, play, sleep, chat
	Quality int    `json:"quality"` // optional, clamped to the balance range
}

// ActionResponse reports the record after the action
type ActionResponse struct {
	Wallet      string        `json:"wallet"`
	Stats       *pet.Stats    `json:"stats"`
	MoodState   pet.MoodState `json:"mood_state"`
	CanGainMood bool          `json:"can_gain_mood"`
}

// AchievementsResponse lists pending and minted achievement ids
type AchievementsResponse struct {
	Wallet    string   `json:"wallet"`
	Pending   []string `json:"pending"`
	Completed []string `json:"completed"`
}

// MoodEventRequest is the body for POST .../events
type MoodEventRequest struct {
	Type      string `json:"type"`
	Intensity int    `json:"intensity"`
	Duration  int    `json:"duration"` // minutes
	Cause     string `json:"cause,omitempty"`
}

// ServeHTTP routes Moonling requests
// Routes:
// GET  /v1/moonling/{wallet}               - Current stats and mood state
// POST /v1/moonling/{wallet}/actions       - Apply an action verb
// GET  /v1/moonling/{wallet}/achievements  - Pending and minted achievements
// GET  /v1/moonling/{wallet}/challenges    - Today's daily challenges
// GET  /v1/moonling/{wallet}/events        - Active mood events
// POST /v1/moonling/{wallet}/events        - Record a mood event
func (h *MoonlingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/moonling"), "/")
	if path == "" {
		h.writeError(w, http.StatusBadRequest, "Wallet address is required")
		return
	}

	parts := strings.SplitN(path, "/", 2)
	wallet := parts[0]
	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.handleState(w, r, wallet)
	case sub == "actions" && r.Method == http.MethodPost:
		h.handleAction(w, r, wallet)
	case sub == "achievements" && r.Method == http.MethodGet:
		h.handleAchievements(w, r, wallet)
	case sub == "challenges" && r.Method == http.MethodGet:
		h.handleChallenges(w, r, wallet)
	case sub == "events" && r.Method == http.MethodGet:
		h.handleEventsList(w, r, wallet)
	case sub == "events" && r.Method == http.MethodPost:
		h.handleEventRecord(w, r, wallet)
	default:
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed for this endpoint")
	}
}

func (h *MoonlingHandler) handleState(w http.ResponseWriter, r *http.Request, wallet string) {
	ctx := r.Context()

	state := h.decay.UpdateCharacterStats(ctx, wallet)
	result := h.engine.GetLocalStats(ctx, wallet)

	h.writeJSON(w, http.StatusOK, MoonlingResponse{
		Wallet:      wallet,
		Stats:       result.Stats,
		MoodState:   state.MoodState,
		Description: pet.MoodDescription(state.MoodState),
		Source:      result.Source,
		MoodEvents:  h.engine.CurrentMoodEvents(ctx, wallet),
	})
}

func (h *MoonlingHandler) handleAction(w http.ResponseWriter, r *http.Request, wallet string) {
	ctx := r.Context()

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithError(h.logger, err).Warn("Invalid action request body", "wallet", wallet)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	action := challenge.Type(strings.ToLower(req.Action))
	delta, ok := h.balance.Actions[string(action)]
	if !ok {
		h.writeError(w, http.StatusBadRequest, "Unknown action: "+req.Action)
		return
	}

	var stats *pet.Stats
	switch action {
	case challenge.TypeFeed:
		stats = h.engine.FeedMoonling(ctx, wallet, req.Quality)
	case challenge.TypePlay:
		stats = h.engine.PlayWithMoonling(ctx, wallet, req.Quality)
	case challenge.TypeSleep:
		stats = h.engine.PutMoonlingToSleep(ctx, wallet, req.Quality)
	case challenge.TypeChat:
		stats = h.engine.ChatWithMoonling(ctx, wallet, req.Quality)
	}

	// Mirror the action into the decay snapshot; the mood component is
	// the daily-capped bonus.
	state, canGainMood := h.decay.RecordAction(ctx, wallet, string(action), decay.Effects{
		Mood:   h.balance.DailyMoodBonus,
		Hunger: delta.Hunger,
		Energy: delta.Energy,
	})

	logger.WithWallet(h.logger, wallet).Debug("Action handled",
		"action", action,
		"mood_state", state.MoodState,
		"can_gain_mood", canGainMood)

	h.writeJSON(w, http.StatusOK, ActionResponse{
		Wallet:      wallet,
		Stats:       stats,
		MoodState:   state.MoodState,
		CanGainMood: canGainMood,
	})
}

func (h *MoonlingHandler) handleAchievements(w http.ResponseWriter, r *http.Request, wallet string) {
	ctx := r.Context()

	pending := h.engine.QueuedAchievements(ctx, wallet)
	completed := h.engine.CompletedAchievements(ctx, wallet)
	if pending == nil {
		pending = []string{}
	}
	if completed == nil {
		completed = []string{}
	}

	h.writeJSON(w, http.StatusOK, AchievementsResponse{
		Wallet:    wallet,
		Pending:   pending,
		Completed: completed,
	})
}

func (h *MoonlingHandler) handleChallenges(w http.ResponseWriter, r *http.Request, wallet string) {
	h.writeJSON(w, http.StatusOK, h.engine.DailyChallenges(r.Context(), wallet))
}

func (h *MoonlingHandler) handleEventsList(w http.ResponseWriter, r *http.Request, wallet string) {
	events := h.engine.CurrentMoodEvents(r.Context(), wallet)
	if events == nil {
		events = []pet.MoodEvent{}
	}
	h.writeJSON(w, http.StatusOK, events)
}

func (h *MoonlingHandler) handleEventRecord(w http.ResponseWriter, r *http.Request, wallet string) {
	var req MoodEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Type == "" || req.Duration <= 0 {
		h.writeError(w, http.StatusBadRequest, "Event type and positive duration are required")
		return
	}

	event := pet.NewMoodEvent(req.Type, req.Intensity, req.Duration, req.Cause, h.engine.Now())
	h.engine.RecordMoodEvent(r.Context(), wallet, event)

	h.writeJSON(w, http.StatusCreated, event)
}

func (h *MoonlingHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *MoonlingHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
