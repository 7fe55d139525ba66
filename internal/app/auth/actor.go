package auth

import (
	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
)

// Actor is the authenticated user an operation runs on behalf of
type Actor struct {
	UserID uuid.UUID
	Roles  []models.Role
}

// NewActor builds an actor from a loaded user
func NewActor(u *models.User) Actor {
	roles := make([]models.Role, len(u.Roles))
	copy(roles, u.Roles)
	return Actor{UserID: u.ID, Roles: roles}
}

// IsAuthenticated reports whether the actor carries an identity
func (a Actor) IsAuthenticated() bool {
	return a.UserID != uuid.Nil
}

// HasRole reports whether the actor holds the role
func (a Actor) HasRole(role models.Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the actor is a system administrator
func (a Actor) IsAdmin() bool {
	return a.HasRole(models.RoleAdmin)
}

// IsPresident reports whether the actor holds the President role
func (a Actor) IsPresident() bool {
	return a.HasRole(models.RolePresident)
}
