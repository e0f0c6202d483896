package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/moonlit-labs/moonling-engine/internal/services"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// HealthHandler reports service and storage health
type HealthHandler struct {
	cache  services.Cache
	logger *slog.Logger
}

func NewHealthHandler(cache services.Cache, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		cache:  cache,
		logger: logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Method not allowed"}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	response := HealthResponse{Status: "healthy", Storage: "connected"}
	status := http.StatusOK

	if err := h.cache.Ping(r.Context()); err != nil {
		h.logger.Error("Storage health check failed", "error", err)
		response = HealthResponse{Status: "unhealthy", Storage: "disconnected"}
		status = http.StatusServiceUnavailable
	}

	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode health response", "error", err)
	}
}
