package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
)

// MessageController handles threads with the student union
type MessageController struct {
	messageService services.MessageService
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService services.MessageService) *MessageController {
	return &MessageController{messageService: messageService}
}

// Send handles POST /messages/:participantId
func (c *MessageController) Send(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	participantID, ok := pathID(ctx, "participantId", "Participant")
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	msg, err := c.messageService.Send(ctx.Request.Context(), actor, participantID, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromMessage(msg), "Message sent"))
}

// Thread handles GET /messages/:participantId
func (c *MessageController) Thread(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	participantID, ok := pathID(ctx, "participantId", "Participant")
	if !ok {
		return
	}

	msgs, err := c.messageService.Thread(ctx.Request.Context(), actor, participantID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromMessages(msgs), ""))
}

// Threads handles GET /messages
func (c *MessageController) Threads(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}

	threads, err := c.messageService.Threads(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromThreadSummaries(threads), ""))
}
