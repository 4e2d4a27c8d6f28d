package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/auth"
)

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)

	users := &mockUserStore{}
	users.On("GetByEmail", mock.Anything, "su@campus.edu").
		Return(&models.User{ID: 1, Email: "su@campus.edu", Password: hash, Category: models.CategorySU}, nil)
	users.On("GetByEmail", mock.Anything, "ghost@campus.edu").Return(nil, apperrors.NewNotFoundError("user not found"))

	jwtSvc := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "clubhub"})
	svc := NewAuthService(users, jwtSvc, zerolog.Nop())

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "su@campus.edu", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", resp.Token.TokenType)
		assert.Equal(t, int64(3600), resp.Token.ExpiresIn)
		assert.Equal(t, "SU", resp.User.Category)

		claims, err := jwtSvc.ValidateToken(resp.Token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(1), claims.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "su@campus.edu", Password: "nope"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "ghost@campus.edu", Password: "x"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}
