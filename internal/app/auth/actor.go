package auth

import (
	"context"
	"fmt"

	"github.com/yigit/clubhub/internal/app/models"
	pkgauth "github.com/yigit/clubhub/internal/pkg/auth"
)

// ExecutiveRoleLoader loads the executive roles a user holds, keyed by club id
type ExecutiveRoleLoader interface {
	RolesByUser(ctx context.Context, userID int64) (map[int64]string, error)
}

// ActorResolver builds an Actor from verified token claims
type ActorResolver struct {
	roles ExecutiveRoleLoader
}

// NewActorResolver creates an ActorResolver
func NewActorResolver(roles ExecutiveRoleLoader) *ActorResolver {
	return &ActorResolver{roles: roles}
}

// Resolve loads the caller's current club roles. Roles are read per request so
// a revoked executive loses access immediately.
func (r *ActorResolver) Resolve(ctx context.Context, claims *pkgauth.Claims) (Actor, error) {
	category := models.UserCategory(claims.Category)
	if !category.Valid() {
		return Actor{}, fmt.Errorf("unknown user category %q", claims.Category)
	}

	roles, err := r.roles.RolesByUser(ctx, claims.UserID)
	if err != nil {
		return Actor{}, fmt.Errorf("load executive roles for user %d: %w", claims.UserID, err)
	}

	return Actor{
		UserID:         claims.UserID,
		Email:          claims.Email,
		Category:       category,
		ExecutiveRoles: roles,
	}, nil
}
