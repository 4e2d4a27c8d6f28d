package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// RequestController exposes the request ledger
type RequestController struct {
	requestService services.RequestService
}

// NewRequestController creates a new RequestController
func NewRequestController(requestService services.RequestService) *RequestController {
	return &RequestController{requestService: requestService}
}

// Submit handles POST /requests/:submitterId
func (c *RequestController) Submit(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	submitterID, ok := pathID(ctx, "submitterId", "Submitter")
	if !ok {
		return
	}

	var req dto.SubmitRequestRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	created, err := c.requestService.Submit(ctx.Request.Context(), actor, submitterID, req.ActionType, req.Payload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromRequest(created), "Request submitted"))
}

// Decide handles PUT /requests/:id/decision
func (c *RequestController) Decide(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Request")
	if !ok {
		return
	}

	var req dto.DecideRequestRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	decision, ok := models.ParseDecision(req.Decision)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("decision must be APPROVED or REJECTED"))
		return
	}

	decided, err := c.requestService.Decide(ctx.Request.Context(), actor, id, decision)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromRequest(decided), "Request decided"))
}

// Get handles GET /requests/:id
func (c *RequestController) Get(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "Request")
	if !ok {
		return
	}

	req, err := c.requestService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromRequest(req), ""))
}

// List handles GET /requests?status=&actionType=&page=&size=
func (c *RequestController) List(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)
	filter := models.RequestFilter{Page: page, Size: size}

	if s := ctx.Query("status"); s != "" {
		status := models.RequestStatus(s)
		if status != models.StatusPending && !status.IsTerminal() {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError("status must be PENDING, APPROVED or REJECTED"))
			return
		}
		filter.Status = &status
	}
	if t := ctx.Query("actionType"); t != "" {
		actionType, err := models.ParseActionType(t)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewInvalidActionError(err.Error()))
			return
		}
		filter.ActionType = &actionType
	}

	reqs, total, err := c.requestService.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(paged(dto.FromRequests(reqs), total, page, size), ""))
}
