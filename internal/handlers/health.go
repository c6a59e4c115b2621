package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/models"
)

const version = "1.3.0"

var startTime = time.Now()

// Pinger reports backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints
type HealthHandler struct {
	db     Pinger
	redis  Pinger
	logger *zap.SugaredLogger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db, redis Pinger, logger *zap.SugaredLogger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, logger: logger}
}

// Check handles GET /api/health (liveness probe)
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:  "ok",
		Version: version,
		Uptime:  time.Since(startTime).String(),
	})
}

// Ready handles GET /api/health/ready (readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatus{
		Status:   "ready",
		Version:  version,
		Uptime:   time.Since(startTime).String(),
		Database: "connected",
		Redis:    "connected",
	}

	code := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warnw("Database ping failed", "error", err)
		status.Status = "not ready"
		status.Database = "disconnected"
		code = http.StatusServiceUnavailable
	}
	if err := h.redis.Ping(r.Context()); err != nil {
		h.logger.Warnw("Redis ping failed", "error", err)
		status.Status = "not ready"
		status.Redis = "disconnected"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, status)
}
