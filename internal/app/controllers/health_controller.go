package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models/dto"
)

// Pinger is anything whose liveness can be checked
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports service health
type HealthController struct {
	db     Pinger
	checks map[string]Pinger
}

// NewHealthController creates a new HealthController. checks holds optional
// dependencies; their failure degrades but does not fail the service.
func NewHealthController(db Pinger, checks map[string]Pinger) *HealthController {
	return &HealthController{db: db, checks: checks}
}

// Health handles GET /health
func (c *HealthController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{Status: "ok", Database: "up"}
	status := http.StatusOK
	if err := c.db.Ping(pingCtx); err != nil {
		resp.Status = "down"
		resp.Database = "down"
		status = http.StatusServiceUnavailable
	}

	if len(c.checks) > 0 {
		resp.Checks = make(map[string]string, len(c.checks))
		for name, p := range c.checks {
			if err := p.Ping(pingCtx); err != nil {
				resp.Checks[name] = "down"
				if resp.Status == "ok" {
					resp.Status = "degraded"
				}
				continue
			}
			resp.Checks[name] = "up"
		}
	}

	ctx.JSON(status, resp)
}
