package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/clubhub/internal/pkg/auth"
)

// AuthService handles registration, login and actor resolution
type AuthService struct {
	users      UserStore
	jwtService *pkgauth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, jwtService *pkgauth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Register creates a student account holding the Member role
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if req == nil {
		return nil, apperrors.NewBadRequestError("Request body is required")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validateInput(req); err != nil {
		return nil, err
	}

	_, err := s.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "An account with this email already exists")
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	hash, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		FullName:      req.FullName,
		Email:         req.Email,
		StudentNumber: strings.TrimSpace(req.StudentNumber),
		PasswordHash:  hash,
		IsActive:      true,
		Roles:         []models.Role{models.RoleMember},
	}
	user.Stamp(now(), nil)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "An account with this email already exists")
		}
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	s.logger.Info().Str("userId", user.ID.String()).Str("email", user.Email).Msg("User registered")
	return s.authResponse(user)
}

// Login verifies credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if req == nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("Email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid email or password")
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	if !pkgauth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn().Str("email", user.Email).Msg("Failed login attempt")
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid email or password")
	}
	if !user.IsActive {
		return nil, apperrors.NewCustomError(apperrors.ErrAccountDisabled, "Account is disabled")
	}

	s.logger.Info().Str("userId", user.ID.String()).Msg("User logged in")
	return s.authResponse(user)
}

// Profile returns the actor's account with its current roles
func (s *AuthService) Profile(ctx context.Context, actor auth.Actor) (*dto.UserResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFoundAs(err, "User not found")
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// ResolveActor loads the current role set of an authenticated user; roles can change mid-session
func (s *AuthService) ResolveActor(ctx context.Context, userID uuid.UUID) (auth.Actor, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return auth.Actor{}, apperrors.NewCustomError(apperrors.ErrUnauthorized, "User no longer exists")
		}
		return auth.Actor{}, fmt.Errorf("error loading user: %w", err)
	}
	if !user.IsActive {
		return auth.Actor{}, apperrors.NewCustomError(apperrors.ErrAccountDisabled, "Account is disabled")
	}
	return auth.NewActor(user), nil
}

func (s *AuthService) authResponse(user *models.User) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
		},
		User: dto.NewUserResponse(user),
	}, nil
}
