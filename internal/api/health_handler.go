package api

import (
	"context"
	"net/http"
	"time"

	"github.com/phrazzld/gatehouse/internal/api/shared"
	"github.com/phrazzld/gatehouse/internal/platform/logger"
	"github.com/phrazzld/gatehouse/internal/redact"
)

// Database states reported by the health endpoint.
const (
	DatabaseUp       = "up"
	DatabaseDown     = "down"
	DatabaseDisabled = "disabled"
)

const healthPingTimeout = 2 * time.Second

// DatabaseProbe reports whether a database is configured and reachable.
type DatabaseProbe interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	db DatabaseProbe
}

// NewHealthHandler creates a HealthHandler. A nil db reports the database as disabled.
func NewHealthHandler(db DatabaseProbe) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health reports the service as up. An unreachable database does not fail the
// check; the service keeps serving routes that do not need it.
//
// @Summary      Health
// @Description  Liveness and database availability
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) error {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:   "ok",
		Database: h.databaseStatus(r.Context()),
	})
	return nil
}

func (h *HealthHandler) databaseStatus(ctx context.Context) string {
	if h.db == nil || !h.db.Enabled() {
		return DatabaseDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.FromContext(ctx).Warn("database health check failed", "error", redact.Error(err))
		return DatabaseDown
	}
	return DatabaseUp
}
