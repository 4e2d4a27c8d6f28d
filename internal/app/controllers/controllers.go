// Package controllers handles HTTP request handling
package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// pathID parses a positive id path parameter, answering 400 when it is not one
func pathID(ctx *gin.Context, name, label string) (int64, bool) {
	id, ok := helpers.ParseIDParam(ctx, name)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, fmt.Sprintf("Invalid %s ID", label)).
			WithField(name).
			WithDetails(fmt.Sprintf("%s ID must be a positive number", label))
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

func paged(items interface{}, total int64, page, size int) dto.PagedResponse {
	return dto.PagedResponse{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}
}
