package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/middleware"
)

// VenueLister lists bookable venues
type VenueLister interface {
	List(ctx context.Context) ([]*models.Venue, error)
}

// VenueController exposes the venue catalogue used in event approval payloads
type VenueController struct {
	venues VenueLister
}

// NewVenueController creates a new VenueController
func NewVenueController(venues VenueLister) *VenueController {
	return &VenueController{venues: venues}
}

// List handles GET /venues
func (c *VenueController) List(ctx *gin.Context) {
	venues, err := c.venues.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(venues, ""))
}
