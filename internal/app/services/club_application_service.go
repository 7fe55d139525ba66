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
	"github.com/yigit/clubhub/internal/pkg/email"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// ClubApplicationService handles proposals to found new clubs
type ClubApplicationService interface {
	Submit(ctx context.Context, actor auth.Actor, req *dto.SubmitClubApplicationRequest) (*dto.ClubApplicationResponse, error)
	Approve(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*dto.ClubApplicationResponse, error)
	Reject(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*dto.ClubApplicationResponse, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*dto.ClubApplicationResponse, error)
	List(ctx context.Context, actor auth.Actor, filter *dto.ClubApplicationFilterRequest) (*dto.ClubApplicationListResponse, error)
}

type clubApplicationServiceImpl struct {
	tx           Transactor
	applications ClubApplicationStore
	clubs        ClubStore
	memberships  MembershipStore
	users        UserStore
	mailer       email.EmailService
	logger       zerolog.Logger
}

// NewClubApplicationService creates a new ClubApplicationService
func NewClubApplicationService(stores Stores, mailer email.EmailService, logger zerolog.Logger) ClubApplicationService {
	return &clubApplicationServiceImpl{
		tx:           stores.Tx,
		applications: stores.Applications,
		clubs:        stores.Clubs,
		memberships:  stores.Memberships,
		users:        stores.Users,
		mailer:       mailer,
		logger:       logger,
	}
}

// Submit records a Pending application for the acting student
func (s *clubApplicationServiceImpl) Submit(ctx context.Context, actor auth.Actor, req *dto.SubmitClubApplicationRequest) (*dto.ClubApplicationResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperrors.NewBadRequestError("Request body is required")
	}
	req.ClubName = strings.TrimSpace(req.ClubName)
	req.Mission = strings.TrimSpace(req.Mission)
	if err := validateInput(req); err != nil {
		return nil, err
	}

	nameKey := helpers.NameKey(req.ClubName)

	open, err := s.applications.ExistsOpenName(ctx, nameKey)
	if err != nil {
		return nil, fmt.Errorf("error checking application names: %w", err)
	}
	if open {
		return nil, apperrors.NewConflictError("An application for this club name already exists")
	}

	active, err := s.clubs.ExistsActiveName(ctx, nameKey)
	if err != nil {
		return nil, fmt.Errorf("error checking club names: %w", err)
	}
	if active {
		return nil, apperrors.NewConflictError("A club with this name already exists")
	}

	presided, err := s.clubs.ListPresidedBy(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("error checking presidency: %w", err)
	}
	if len(presided) > 0 {
		s.logger.Warn().Str("userId", actor.UserID.String()).Msg("President attempted to apply for another club")
		return nil, apperrors.NewForbiddenError("You already preside over an active club")
	}

	app := &models.ClubApplication{
		ClubName:             req.ClubName,
		ClubNameKey:          nameKey,
		Mission:              req.Mission,
		Vision:               req.Vision,
		PlannedActivities:    req.PlannedActivities,
		EstimatedMemberCount: req.EstimatedMemberCount,
		AdvisorName:          req.AdvisorName,
		AdvisorEmail:         req.AdvisorEmail,
		ResourceNeeds:        req.ResourceNeeds,
		ApplicantUserID:      actor.UserID,
		Status:               models.ApprovalPending,
	}
	app.Stamp(now(), &actor.UserID)

	if err := s.applications.Create(ctx, app); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.NewConflictError("An application for this club name already exists")
		}
		return nil, fmt.Errorf("error creating club application: %w", err)
	}

	s.logger.Info().
		Str("applicationId", app.ID.String()).
		Str("applicantId", actor.UserID.String()).
		Str("clubName", app.ClubName).
		Msg("Club application submitted")

	resp := dto.NewClubApplicationResponse(app)
	return &resp, nil
}

// Approve founds the club, makes the applicant its President and grants the identity roles in one unit of work
func (s *clubApplicationServiceImpl) Approve(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*dto.ClubApplicationResponse, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := requireID(id, "Application ID"); err != nil {
		return nil, err
	}

	var app *models.ClubApplication
	var club *models.Club
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.loadPending(ctx, id)
		if err != nil {
			return err
		}

		presided, err := s.clubs.ListPresidedBy(ctx, app.ApplicantUserID)
		if err != nil {
			return fmt.Errorf("error checking presidency: %w", err)
		}
		if len(presided) > 0 {
			return apperrors.NewBusinessRuleError("The applicant already presides over an active club")
		}
		taken, err := s.clubs.ExistsActiveName(ctx, app.ClubNameKey)
		if err != nil {
			return fmt.Errorf("error checking club names: %w", err)
		}
		if taken {
			return apperrors.NewConflictError("A club with this name already exists")
		}

		t := now()
		expected := app.Version
		app.Status = models.ApprovalApproved
		app.CoordinatorNote = note
		app.Record(actor.UserID, t)
		app.Touch(t, actor.UserID)
		if err := s.applications.UpdateReview(ctx, app, expected); err != nil {
			return staleAsInvalidState(err, "Application has already been reviewed")
		}

		club = &models.Club{
			Name:        app.ClubName,
			NameKey:     app.ClubNameKey,
			Description: app.Mission,
			AdvisorName: app.AdvisorName,
			PresidentID: app.ApplicantUserID,
			IsActive:    true,
		}
		club.Stamp(t, &actor.UserID)
		if err := s.clubs.Create(ctx, club); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return apperrors.NewConflictError("A club with this name already exists")
			}
			return fmt.Errorf("error creating club: %w", err)
		}

		membership := &models.ClubMembership{
			ClubID: club.ID,
			UserID: app.ApplicantUserID,
			Status: models.MembershipApproved,
			Role:   models.ClubRolePresident,
			Note:   "Founding president",
		}
		membership.Stamp(t, &actor.UserID)
		membership.Record(actor.UserID, t)
		if err := s.memberships.Create(ctx, membership); err != nil {
			return fmt.Errorf("error creating president membership: %w", err)
		}

		for _, role := range []models.Role{models.RolePresident, models.RoleMember} {
			if err := s.users.AddRole(ctx, app.ApplicantUserID, role); err != nil {
				return fmt.Errorf("error granting %s role: %w", role, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("applicationId", app.ID.String()).
		Str("clubId", club.ID.String()).
		Str("reviewerId", actor.UserID.String()).
		Msg("Club application approved")

	notifyReview(ctx, s.users, s.mailer, s.logger, app.ApplicantUserID, email.ReviewOutcome{
		Kind:     email.KindClubApplication,
		Subject:  app.ClubName,
		Approved: true,
		Note:     note,
	})

	resp := dto.NewClubApplicationResponse(app)
	resp.ClubID = &club.ID
	return &resp, nil
}

// Reject closes the application without side effects
func (s *clubApplicationServiceImpl) Reject(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*dto.ClubApplicationResponse, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := requireID(id, "Application ID"); err != nil {
		return nil, err
	}

	var app *models.ClubApplication
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.loadPending(ctx, id)
		if err != nil {
			return err
		}
		t := now()
		expected := app.Version
		app.Status = models.ApprovalRejected
		app.CoordinatorNote = note
		app.Record(actor.UserID, t)
		app.Touch(t, actor.UserID)
		if err := s.applications.UpdateReview(ctx, app, expected); err != nil {
			return staleAsInvalidState(err, "Application has already been reviewed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("applicationId", app.ID.String()).
		Str("reviewerId", actor.UserID.String()).
		Msg("Club application rejected")

	notifyReview(ctx, s.users, s.mailer, s.logger, app.ApplicantUserID, email.ReviewOutcome{
		Kind:    email.KindClubApplication,
		Subject: app.ClubName,
		Note:    note,
	})

	resp := dto.NewClubApplicationResponse(app)
	return &resp, nil
}

func (s *clubApplicationServiceImpl) loadPending(ctx context.Context, id uuid.UUID) (*models.ClubApplication, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Club application not found")
	}
	if app.Status != models.ApprovalPending {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("Application is already %s", strings.ToLower(string(app.Status))))
	}
	return app, nil
}

// Get returns an application to an administrator or its applicant
func (s *clubApplicationServiceImpl) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*dto.ClubApplicationResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Club application not found")
	}
	if !actor.IsAdmin() && app.ApplicantUserID != actor.UserID {
		return nil, apperrors.NewForbiddenError("You can only view your own applications")
	}
	resp := dto.NewClubApplicationResponse(app)
	return &resp, nil
}

// List returns every application to an administrator and the caller's own otherwise
func (s *clubApplicationServiceImpl) List(ctx context.Context, actor auth.Actor, filter *dto.ClubApplicationFilterRequest) (*dto.ClubApplicationListResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &dto.ClubApplicationFilterRequest{}
	}

	query := models.ApplicationFilter{Status: filter.Status, Search: strings.TrimSpace(filter.Search)}
	if !actor.IsAdmin() {
		query.ApplicantID = &actor.UserID
	}

	offset, limit, page := pageOf(filter.PageRequest)
	apps, total, err := s.applications.List(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing club applications: %w", err)
	}

	items := make([]dto.ClubApplicationResponse, 0, len(apps))
	for _, a := range apps {
		items = append(items, dto.NewClubApplicationResponse(a))
	}
	s.logger.Debug().Int("count", len(items)).Int64("total", total).Msg("Listed club applications")

	return &dto.ClubApplicationListResponse{
		Applications: items,
		Pagination:   helpers.NewPaginationInfo(total, page, limit),
	}, nil
}
