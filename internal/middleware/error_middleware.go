package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/logger"
)

type errorMapping struct {
	kind   error
	status int
	code   dto.ErrorCode
}

// Checked in order: an ActionFailed error may wrap a NotFound or Conflict
// cause, so it must match first.
var errorMappings = []errorMapping{
	{apperrors.ErrActionFailed, http.StatusUnprocessableEntity, dto.ErrorCodeActionFailed},
	{apperrors.ErrNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrUnauthorized, http.StatusForbidden, dto.ErrorCodeUnauthorized},
	{apperrors.ErrInvalidState, http.StatusConflict, dto.ErrorCodeInvalidState},
	{apperrors.ErrConflictInvariant, http.StatusConflict, dto.ErrorCodeConflict},
	{apperrors.ErrInvalidAction, http.StatusBadRequest, dto.ErrorCodeInvalidAction},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.kind) {
			continue
		}

		errorDetail := dto.NewErrorDetail(m.code, apperrors.MessageOf(err))
		var ce *apperrors.CustomError
		if errors.As(err, &ce) {
			if ce.Details != nil {
				errorDetail = errorDetail.WithDetails(ce.Details)
			} else if ce.Cause != nil {
				errorDetail = errorDetail.WithDetails(ce.Cause.Error())
			}
		}
		if m.status < http.StatusInternalServerError {
			errorDetail = errorDetail.WithSeverity(dto.ErrorSeverityWarning)
		}
		c.AbortWithStatusJSON(m.status, dto.NewErrorResponse(errorDetail))
		return
	}

	logger.Error().Err(err).Str("path", c.FullPath()).Str("method", c.Request.Method).Msg("Unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
}
