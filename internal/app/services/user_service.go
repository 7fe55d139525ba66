package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/clubhub/internal/pkg/auth"
)

// UserService handles self-service account changes
type UserService interface {
	UpdateProfile(ctx context.Context, actor auth.Actor, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, actor auth.Actor, req *dto.ChangePasswordRequest) error
}

type userServiceImpl struct {
	users  UserStore
	logger zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(users UserStore, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		users:  users,
		logger: logger,
	}
}

// UpdateProfile updates the actor's name and student number
func (s *userServiceImpl) UpdateProfile(ctx context.Context, actor auth.Actor, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperrors.NewBadRequestError("Request body is required")
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.StudentNumber = strings.TrimSpace(req.StudentNumber)
	if err := validateInput(req); err != nil {
		return nil, err
	}

	user, err := s.load(ctx, actor)
	if err != nil {
		return nil, err
	}

	expected := user.Version
	user.FullName = req.FullName
	user.StudentNumber = req.StudentNumber
	user.Touch(now(), actor.UserID)
	if err := s.users.Update(ctx, user, expected); err != nil {
		s.logger.Error().Err(err).Str("userId", actor.UserID.String()).Msg("Error updating user profile")
		return nil, staleAsInvalidState(err, "Profile was modified concurrently")
	}

	s.logger.Info().Str("userId", user.ID.String()).Msg("User profile updated")
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// ChangePassword replaces the actor's password after verifying the current one
func (s *userServiceImpl) ChangePassword(ctx context.Context, actor auth.Actor, req *dto.ChangePasswordRequest) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if req == nil {
		return apperrors.NewBadRequestError("Request body is required")
	}
	if err := validateInput(req); err != nil {
		return err
	}

	user, err := s.load(ctx, actor)
	if err != nil {
		return err
	}
	if !pkgauth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		s.logger.Warn().Str("userId", actor.UserID.String()).Msg("Password change with wrong current password")
		return apperrors.NewValidationError("Current password is incorrect", map[string]string{"currentPassword": "is incorrect"})
	}

	hash, err := pkgauth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	expected := user.Version
	user.PasswordHash = hash
	user.Touch(now(), actor.UserID)
	if err := s.users.Update(ctx, user, expected); err != nil {
		s.logger.Error().Err(err).Str("userId", actor.UserID.String()).Msg("Error changing password")
		return staleAsInvalidState(err, "Account was modified concurrently")
	}

	s.logger.Info().Str("userId", user.ID.String()).Msg("Password changed")
	return nil
}

func (s *userServiceImpl) load(ctx context.Context, actor auth.Actor) (*models.User, error) {
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFoundAs(err, "User not found")
	}
	return user, nil
}
