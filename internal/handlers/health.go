package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/saga-engine/internal/services"
	"github.com/jwebster45206/saga-engine/pkg/storage"
)

const serviceName = "saga-engine"

type HealthResponse struct {
	Status     string         `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
	Service    string         `json:"service"`
	Components map[string]any `json:"components"`
}

type HealthHandler struct {
	storage storage.Storage
	planner services.Planner
	logger  *slog.Logger
}

// NewHealthHandler reports on storage and, when one is wired, the planner.
func NewHealthHandler(storage storage.Storage, planner services.Planner, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		planner: planner,
		logger:  logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]any)
	overallStatus := "healthy"

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		components["storage"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["storage"] = "healthy"
	}

	if h.planner != nil {
		planner := map[string]any{"name": h.planner.Name(), "status": "healthy"}
		if err := h.planner.Ready(ctx); err != nil {
			h.logger.Warn("Planner health check failed", "error", err, "planner", h.planner.Name())
			planner["status"] = "unhealthy"
			planner["error"] = err.Error()
			overallStatus = "degraded"
		}
		components["planner"] = planner
	}

	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    serviceName,
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding health response", "error", err)
	}
}
