package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appauth "github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apperrors.NewNotFoundError("club 3 not found"), http.StatusNotFound, "RES_001"},
		{"unauthorized", apperrors.NewUnauthorizedError("SYSTEM_ADMIN required"), http.StatusForbidden, "AUTH_008"},
		{"invalid state", apperrors.NewInvalidStateError("already decided"), http.StatusConflict, "WF_001"},
		{"conflict", apperrors.NewConflictError("last President"), http.StatusConflict, "RES_004"},
		{"invalid action", apperrors.NewInvalidActionError("PARTY"), http.StatusBadRequest, "WF_002"},
		{"validation", apperrors.NewValidationError("bad"), http.StatusBadRequest, "VAL_001"},
		{"action failed wrapping not found", apperrors.NewActionFailedError("handler failed", apperrors.NewNotFoundError("venue")), http.StatusUnprocessableEntity, "WF_003"},
		{"wrapped", fmt.Errorf("outer: %w", apperrors.NewNotFoundError("x")), http.StatusNotFound, "RES_001"},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "AUTH_001"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "SRV_001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body struct {
				Success bool `json:"success"`
				Error   struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

type stubValidator struct {
	claims *auth.Claims
	err    error
}

func (s stubValidator) ValidateAndExtractClaims(string) (*auth.Claims, error) { return s.claims, s.err }

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, claims *auth.Claims) (appauth.Actor, error) {
	return appauth.Actor{UserID: claims.UserID, Category: models.UserCategory(claims.Category)}, nil
}

func TestJWTAuth(t *testing.T) {
	newRouter := func(v TokenValidator) *gin.Engine {
		r := gin.New()
		r.Use(NewAuthMiddleware(v, stubResolver{}, zerolog.Nop()).JWTAuth())
		r.GET("/me", func(c *gin.Context) {
			actor, ok := RequireActor(c)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": actor.UserID, "category": actor.Category})
		})
		return r
	}

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(stubValidator{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer a.b.c")
		newRouter(stubValidator{err: auth.ErrExpiredToken}).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_006")
	})

	t.Run("valid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer a.b.c")
		newRouter(stubValidator{claims: &auth.Claims{UserID: 4, Category: "SU"}}).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"userId":4,"category":"SU"}`, w.Body.String())
	})
}

func TestBindJSON(t *testing.T) {
	type body struct {
		Decision string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	}

	run := func(payload string) *httptest.ResponseRecorder {
		r := gin.New()
		r.POST("/", func(c *gin.Context) {
			var b body
			if !BindJSON(c, &b) {
				return
			}
			c.Status(http.StatusNoContent)
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload)))
		return w
	}

	assert.Equal(t, http.StatusNoContent, run(`{"decision":"APPROVED"}`).Code)

	w := run(`{"decision":"MAYBE"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VAL_001")

	w = run(`{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VAL_002")
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}
