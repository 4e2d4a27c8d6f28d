package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
)

// EventController handles club events
type EventController struct {
	eventService services.EventService
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService) *EventController {
	return &EventController{eventService: eventService}
}

// Get handles GET /events/:id
func (c *EventController) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Event")
	if !ok {
		return
	}

	event, err := c.eventService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromEvent(event), ""))
}

// ListByClub handles GET /clubs/:id/events
func (c *EventController) ListByClub(ctx *gin.Context) {
	clubID, ok := pathID(ctx, "id", "Club")
	if !ok {
		return
	}

	events, err := c.eventService.ListByClub(ctx.Request.Context(), clubID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromEvents(events), ""))
}

// RSVP handles POST /events/:id/rsvp
func (c *EventController) RSVP(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Event")
	if !ok {
		return
	}

	if err := c.eventService.RSVP(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(nil, "RSVP recorded"))
}

// CancelRSVP handles DELETE /events/:id/rsvp
func (c *EventController) CancelRSVP(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Event")
	if !ok {
		return
	}

	if err := c.eventService.CancelRSVP(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Delete handles DELETE /events/:id
func (c *EventController) Delete(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Event")
	if !ok {
		return
	}

	if _, err := c.eventService.Delete(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
