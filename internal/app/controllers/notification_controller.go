package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// NotificationController handles notification fan-out and inboxes
type NotificationController struct {
	notificationService services.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

func (c *NotificationController) send(ctx *gin.Context, actor auth.Actor, audience models.Audience, title, content string) {
	n, err := c.notificationService.Notify(ctx.Request.Context(), actor, audience, title, content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromNotification(n), "Notification sent"))
}

// NotifyUsers handles POST /notifications
func (c *NotificationController) NotifyUsers(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	var req dto.ExplicitNotificationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	c.send(ctx, actor, models.ExplicitList{UserIDs: req.UserIDs}, req.Title, req.Content)
}

// NotifyAllStudents handles POST /notifications/all
func (c *NotificationController) NotifyAllStudents(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	var req dto.BroadcastRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	c.send(ctx, actor, models.AllStudents{}, req.Title, req.Content)
}

// NotifyClub handles POST /notifications/club
func (c *NotificationController) NotifyClub(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	var req dto.ClubNotificationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	c.send(ctx, actor, models.ClubMembers{ClubID: req.ClubID}, req.Title, req.Content)
}

// MarkRead handles PUT /notifications/:id/read/:userId
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Notification")
	if !ok {
		return
	}
	userID, ok := pathID(ctx, "userId", "User")
	if !ok {
		return
	}

	if err := c.notificationService.MarkRead(ctx.Request.Context(), actor, id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Notification marked as read"))
}

// Inbox handles GET /notifications/inbox
func (c *NotificationController) Inbox(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	items, total, err := c.notificationService.Inbox(ctx.Request.Context(), actor.UserID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(paged(dto.FromInbox(items), total, page, size), ""))
}
