package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a student account registration
type RegisterRequest struct {
	Email         string `json:"email" binding:"required,email" validate:"required,email"`
	Password      string `json:"password" binding:"required,min=8,max=72" validate:"required,min=8,max=72"`
	FullName      string `json:"fullName" binding:"required,max=150" validate:"required,max=150"`
	StudentNumber string `json:"studentNumber" binding:"max=20" validate:"max=20"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID            uuid.UUID     `json:"id"`
	Email         string        `json:"email"`
	FullName      string        `json:"fullName"`
	StudentNumber string        `json:"studentNumber,omitempty"`
	Roles         []models.Role `json:"roles"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// NewUserResponse maps a user to its public representation
func NewUserResponse(u *models.User) UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []models.Role{}
	}
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		StudentNumber: u.StudentNumber,
		Roles:         roles,
		CreatedAt:     u.CreatedAt,
	}
}
