package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// ClubController handles club related operations
type ClubController struct {
	clubService services.ClubService
	logger      zerolog.Logger
}

// NewClubController creates a new ClubController
func NewClubController(clubService services.ClubService, logger zerolog.Logger) *ClubController {
	return &ClubController{
		clubService: clubService,
		logger:      logger,
	}
}

// List handles GET /clubs
func (c *ClubController) List(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	clubs, total, err := c.clubService.List(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(paged(dto.FromClubs(clubs), total, page, size), ""))
}

// Get handles GET /clubs/:id
func (c *ClubController) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Club")
	if !ok {
		return
	}

	club, err := c.clubService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromClub(club), ""))
}

// Members handles GET /clubs/:id/members
func (c *ClubController) Members(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "Club")
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	members, total, err := c.clubService.Members(ctx.Request.Context(), id, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(paged(dto.FromClubMembers(members), total, page, size), ""))
}

// Join handles POST /clubs/:id/members
func (c *ClubController) Join(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Club")
	if !ok {
		return
	}

	if err := c.clubService.Join(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(nil, "Joined club"))
}

// Leave handles DELETE /clubs/:id/members
func (c *ClubController) Leave(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Club")
	if !ok {
		return
	}

	if err := c.clubService.Leave(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AddExecutive handles POST /clubs/:id/executives
func (c *ClubController) AddExecutive(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Club")
	if !ok {
		return
	}

	var req dto.AddExecutiveRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.clubService.AddExecutive(ctx.Request.Context(), actor, id, req.UserID, req.Role); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(nil, "Executive assigned"))
}

// RemoveExecutive handles DELETE /clubs/:id/executives/:userId
func (c *ClubController) RemoveExecutive(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Club")
	if !ok {
		return
	}
	userID, ok := pathID(ctx, "userId", "User")
	if !ok {
		return
	}

	if err := c.clubService.RemoveExecutive(ctx.Request.Context(), actor, id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// UpdateImage handles PUT /clubs/:id/image (multipart field "image")
func (c *ClubController) UpdateImage(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Club")
	if !ok {
		return
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Image file is required").WithField("image")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	club, err := c.clubService.UpdateImage(ctx.Request.Context(), actor, id, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromClub(club), "Club image updated"))
}

// Delete handles DELETE /clubs/:id
func (c *ClubController) Delete(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Club")
	if !ok {
		return
	}

	if _, err := c.clubService.Delete(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
