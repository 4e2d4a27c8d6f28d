package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/middleware"
)

// LiveAttacher upgrades a request into a push connection for a user
type LiveAttacher interface {
	Attach(w http.ResponseWriter, r *http.Request, userID int64) error
}

// LiveController serves the websocket that pushes new notifications
type LiveController struct {
	hub    LiveAttacher
	logger zerolog.Logger
}

// NewLiveController creates a new LiveController
func NewLiveController(hub LiveAttacher, logger zerolog.Logger) *LiveController {
	return &LiveController{hub: hub, logger: logger}
}

// Connect handles GET /live
func (c *LiveController) Connect(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	if err := c.hub.Attach(ctx.Writer, ctx.Request, actor.UserID); err != nil {
		c.logger.Debug().Err(err).Int64("userID", actor.UserID).Msg("Live connection not established")
	}
}
