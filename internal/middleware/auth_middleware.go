package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/pkg/auth"
)

const actorKey = "actor"

// TokenValidator verifies access tokens
type TokenValidator interface {
	ValidateAndExtractClaims(tokenString string) (*auth.Claims, error)
}

// ActorResolver turns verified claims into an authorization actor
type ActorResolver interface {
	Resolve(ctx context.Context, claims *auth.Claims) (appauth.Actor, error)
}

// AuthMiddleware for authentication
type AuthMiddleware struct {
	tokens   TokenValidator
	resolver ActorResolver
	logger   zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(tokens TokenValidator, resolver ActorResolver, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		resolver: resolver,
		logger:   logger,
	}
}

// JWTAuth validates the bearer token and stores the resolved actor in the context
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Invalid token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		claims, err := m.tokens.ValidateAndExtractClaims(tokenString)
		if err != nil {
			errorCode := dto.ErrorCodeInvalidToken
			errorDetails := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				errorCode = dto.ErrorCodeExpiredToken
				errorDetails = "Token has expired"
			}
			errorDetail := dto.NewErrorDetail(errorCode, "Authentication failed").WithDetails(errorDetails)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		actor, err := m.resolver.Resolve(c.Request.Context(), claims)
		if err != nil {
			m.logger.Error().Err(err).Int64("userID", claims.UserID).Msg("Failed to resolve actor")
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
			return
		}

		SetActor(c, actor)
		c.Next()
	}
}

// SetActor stores the authenticated actor in the gin context
func SetActor(c *gin.Context, actor appauth.Actor) {
	c.Set(actorKey, actor)
	c.Set("userID", actor.UserID)
}

// ActorFromContext returns the actor stored by JWTAuth
func ActorFromContext(c *gin.Context) (appauth.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return appauth.Actor{}, false
	}
	actor, ok := v.(appauth.Actor)
	return actor, ok
}

// RequireActor returns the actor or aborts with 401
func RequireActor(c *gin.Context) (appauth.Actor, bool) {
	actor, ok := ActorFromContext(c)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
			WithDetails("User information not found")
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return appauth.Actor{}, false
	}
	return actor, true
}
