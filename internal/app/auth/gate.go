// Package auth decides whether an actor may exercise a capability.
//
// Gate is a pure predicate over an Actor value; the Actor itself is built per
// request by ActorResolver from the token claims and the executives table.
package auth

import (
	"fmt"

	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

// Actor is the authenticated caller together with the club roles it holds
type Actor struct {
	UserID   int64
	Email    string
	Category models.UserCategory
	// ExecutiveRoles maps club id to the executive role held there. Clubs where
	// the user is an executive without a role are not listed.
	ExecutiveRoles map[int64]string
}

// IsSystemAdmin reports whether the actor holds system-wide privileges
func (a Actor) IsSystemAdmin() bool {
	return a.Category == models.CategorySU
}

// RoleIn returns the executive role held in clubID
func (a Actor) RoleIn(clubID int64) (string, bool) {
	role, ok := a.ExecutiveRoles[clubID]
	return role, ok && role != ""
}

// Scope restricts a capability to a club. A nil ClubID is the global scope.
type Scope struct {
	ClubID *int64
}

// GlobalScope is the scope of system-wide capabilities
func GlobalScope() Scope { return Scope{} }

// ClubScope is the scope of one club
func ClubScope(clubID int64) Scope { return Scope{ClubID: &clubID} }

// Gate evaluates capabilities
type Gate struct{}

// NewGate creates a Gate
func NewGate() *Gate { return &Gate{} }

// CanAct reports whether actor holds capability within scope.
// SystemAdmin is held by SU users. ClubAdmin of a club is held by anyone with
// a role in that club's executives, and by every SystemAdmin.
func (g *Gate) CanAct(actor Actor, capability models.Capability, scope Scope) bool {
	switch capability {
	case models.CapSystemAdmin:
		return actor.IsSystemAdmin()
	case models.CapClubAdmin:
		if actor.IsSystemAdmin() {
			return true
		}
		if scope.ClubID == nil {
			return false
		}
		_, ok := actor.RoleIn(*scope.ClubID)
		return ok
	}
	return false
}

// Require returns an Unauthorized error when CanAct is false
func (g *Gate) Require(actor Actor, capability models.Capability, scope Scope) error {
	if g.CanAct(actor, capability, scope) {
		return nil
	}
	if scope.ClubID != nil {
		return apperrors.NewUnauthorizedError(fmt.Sprintf("%s required for club %d", capability, *scope.ClubID))
	}
	return apperrors.NewUnauthorizedError(fmt.Sprintf("%s required", capability))
}
