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

// MembershipService handles join requests and club roles
type MembershipService interface {
	Request(ctx context.Context, actor auth.Actor, clubID uuid.UUID) (*dto.MembershipResponse, error)
	Approve(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*dto.MembershipResponse, error)
	Reject(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*dto.MembershipResponse, error)
	Cancel(ctx context.Context, actor auth.Actor, clubID uuid.UUID) (*dto.MembershipResponse, error)
	AssignRole(ctx context.Context, actor auth.Actor, id uuid.UUID, role models.ClubRole) (*dto.MembershipResponse, error)
	Remove(ctx context.Context, actor auth.Actor, id uuid.UUID) (*dto.MembershipResponse, error)
	ListPending(ctx context.Context, actor auth.Actor, filter *dto.PendingMembershipFilterRequest) (*dto.MembershipListResponse, error)
	ListMine(ctx context.Context, actor auth.Actor, page dto.PageRequest) (*dto.MembershipListResponse, error)
	IsMember(ctx context.Context, userID, clubID uuid.UUID) (bool, error)
}

type membershipServiceImpl struct {
	tx          Transactor
	memberships MembershipStore
	clubs       ClubStore
	users       UserStore
	authz       *auth.AuthorizationService
	mailer      email.EmailService
	logger      zerolog.Logger
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(stores Stores, authz *auth.AuthorizationService, mailer email.EmailService, logger zerolog.Logger) MembershipService {
	return &membershipServiceImpl{
		tx:          stores.Tx,
		memberships: stores.Memberships,
		clubs:       stores.Clubs,
		users:       stores.Users,
		authz:       authz,
		mailer:      mailer,
		logger:      logger,
	}
}

// Request creates a Pending Member-role record for the actor
func (s *membershipServiceImpl) Request(ctx context.Context, actor auth.Actor, clubID uuid.UUID) (*dto.MembershipResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := requireID(clubID, "Club ID"); err != nil {
		return nil, err
	}

	club, err := s.clubs.GetByID(ctx, clubID)
	if err != nil {
		return nil, notFoundAs(err, "Club not found")
	}
	if !club.IsActive {
		return nil, apperrors.NewInvalidStateError("Club is not active")
	}

	existing, err := s.memberships.FindOpen(ctx, clubID, actor.UserID)
	switch {
	case err == nil:
		if existing.Status == models.MembershipApproved {
			return nil, apperrors.NewConflictError("You are already a member of this club")
		}
		return nil, apperrors.NewConflictError("You already have a pending request for this club")
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("error checking existing membership: %w", err)
	}

	m := &models.ClubMembership{
		ClubID: clubID,
		UserID: actor.UserID,
		Status: models.MembershipPending,
		Role:   models.ClubRoleMember,
	}
	m.Stamp(now(), &actor.UserID)
	if err := s.memberships.Create(ctx, m); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.NewConflictError("You already have a pending request for this club")
		}
		return nil, fmt.Errorf("error creating membership request: %w", err)
	}

	s.logger.Info().
		Str("membershipId", m.ID.String()).
		Str("clubId", clubID.String()).
		Str("userId", actor.UserID.String()).
		Msg("Membership requested")

	resp := dto.NewMembershipResponse(m)
	return &resp, nil
}

// Approve admits the requester to the club
func (s *membershipServiceImpl) Approve(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*dto.MembershipResponse, error) {
	return s.review(ctx, actor, id, models.MembershipApproved, note)
}

// Reject declines the request; the note is surfaced to the requester as the reason
func (s *membershipServiceImpl) Reject(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*dto.MembershipResponse, error) {
	return s.review(ctx, actor, id, models.MembershipRejected, note)
}

func (s *membershipServiceImpl) review(ctx context.Context, actor auth.Actor, id uuid.UUID, outcome models.MembershipStatus, note string) (*dto.MembershipResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := requireID(id, "Membership ID"); err != nil {
		return nil, err
	}

	var m *models.ClubMembership
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.memberships.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "Membership not found")
		}
		if _, err := s.authz.RequireReviewer(ctx, actor, m.ClubID); err != nil {
			return err
		}
		if m.Status != models.MembershipPending {
			return apperrors.NewInvalidStateError(fmt.Sprintf("Membership is already %s", strings.ToLower(string(m.Status))))
		}

		t := now()
		expected := m.Version
		m.Status = outcome
		m.Note = note
		m.Record(actor.UserID, t)
		m.Touch(t, actor.UserID)
		if err := s.memberships.UpdateStatus(ctx, m, models.MembershipPending, expected); err != nil {
			return staleAsInvalidState(err, "Membership has already been reviewed")
		}
		if outcome == models.MembershipApproved {
			if err := s.users.AddRole(ctx, m.UserID, models.RoleMember); err != nil {
				return fmt.Errorf("error granting member role: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("membershipId", m.ID.String()).
		Str("clubId", m.ClubID.String()).
		Str("reviewerId", actor.UserID.String()).
		Str("status", string(m.Status)).
		Msg("Membership reviewed")

	subject := "club membership"
	if club, err := s.clubs.GetByID(ctx, m.ClubID); err == nil {
		subject = club.Name
	}
	notifyReview(ctx, s.users, s.mailer, s.logger, m.UserID, email.ReviewOutcome{
		Kind:     email.KindMembership,
		Subject:  subject,
		Approved: outcome == models.MembershipApproved,
		Note:     note,
	})

	resp := dto.NewMembershipResponse(m)
	return &resp, nil
}

// Cancel withdraws the actor's pending request for the club
func (s *membershipServiceImpl) Cancel(ctx context.Context, actor auth.Actor, clubID uuid.UUID) (*dto.MembershipResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := requireID(clubID, "Club ID"); err != nil {
		return nil, err
	}

	var m *models.ClubMembership
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.memberships.FindOpen(ctx, clubID, actor.UserID)
		if errors.Is(err, repositories.ErrNotFound) || (err == nil && m.Status != models.MembershipPending) {
			return apperrors.NewBusinessRuleError("No pending membership request found for this club")
		}
		if err != nil {
			return fmt.Errorf("error loading membership request: %w", err)
		}

		t := now()
		expected := m.Version
		m.Status = models.MembershipCancelled
		m.Touch(t, actor.UserID)
		if err := s.memberships.UpdateStatus(ctx, m, models.MembershipPending, expected); err != nil {
			return staleAsInvalidState(err, "Membership request is no longer pending")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("membershipId", m.ID.String()).
		Str("clubId", clubID.String()).
		Str("userId", actor.UserID.String()).
		Msg("Membership request cancelled")

	resp := dto.NewMembershipResponse(m)
	return &resp, nil
}

// AssignRole changes the club role of an approved member, enforcing one privileged role per user
func (s *membershipServiceImpl) AssignRole(ctx context.Context, actor auth.Actor, id uuid.UUID, role models.ClubRole) (*dto.MembershipResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	switch role {
	case models.ClubRoleMember, models.ClubRoleBoardMember, models.ClubRoleVicePresident, models.ClubRolePresident:
	default:
		return nil, apperrors.NewValidationError("Invalid club role", map[string]string{"role": "must be one of MEMBER BOARD_MEMBER VICE_PRESIDENT PRESIDENT"})
	}

	var m *models.ClubMembership
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.memberships.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "Membership not found")
		}
		if _, err := s.authz.RequireReviewer(ctx, actor, m.ClubID); err != nil {
			return err
		}
		if role == models.ClubRolePresident && !actor.IsAdmin() {
			return apperrors.NewForbiddenError("Only administrators can assign the president role")
		}
		if m.Status != models.MembershipApproved {
			return apperrors.NewBusinessRuleError("Roles can only be assigned to approved members")
		}
		if m.Role == role {
			return nil
		}

		if role.IsPrivileged() {
			held, err := s.memberships.HasPrivilegedRole(ctx, m.UserID, m.ID)
			if err != nil {
				return fmt.Errorf("error checking privileged roles: %w", err)
			}
			if held {
				return apperrors.NewBusinessRuleError("User already holds a privileged role in another club")
			}
		}

		expected := m.Version
		m.Role = role
		m.Touch(now(), actor.UserID)
		if err := s.memberships.UpdateRole(ctx, m, expected); err != nil {
			return staleAsInvalidState(err, "Membership is no longer approved")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("membershipId", m.ID.String()).
		Str("clubId", m.ClubID.String()).
		Str("role", string(role)).
		Str("assignedBy", actor.UserID.String()).
		Msg("Club role assigned")

	resp := dto.NewMembershipResponse(m)
	return &resp, nil
}

// Remove takes an approved member out of the club; the user may request to join again afterwards
func (s *membershipServiceImpl) Remove(ctx context.Context, actor auth.Actor, id uuid.UUID) (*dto.MembershipResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := requireID(id, "Membership ID"); err != nil {
		return nil, err
	}

	var m *models.ClubMembership
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.memberships.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "Membership not found")
		}
		if _, err := s.authz.RequireReviewer(ctx, actor, m.ClubID); err != nil {
			return err
		}
		if m.Status != models.MembershipApproved {
			return apperrors.NewBusinessRuleError("Only approved members can be removed")
		}
		club, err := s.clubs.GetByID(ctx, m.ClubID)
		if err != nil {
			return notFoundAs(err, "Club not found")
		}
		if m.UserID == club.PresidentID {
			return apperrors.NewBusinessRuleError("The club president cannot be removed")
		}

		expected := m.Version
		m.Touch(now(), actor.UserID)
		if err := s.memberships.SoftDelete(ctx, m, expected); err != nil {
			return staleAsInvalidState(err, "Membership was modified concurrently")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("membershipId", m.ID.String()).
		Str("clubId", m.ClubID.String()).
		Str("userId", m.UserID.String()).
		Str("removedBy", actor.UserID.String()).
		Msg("Member removed from club")

	resp := dto.NewMembershipResponse(m)
	return &resp, nil
}

// ListPending returns the review queue: every club for an administrator, presided clubs for a President
func (s *membershipServiceImpl) ListPending(ctx context.Context, actor auth.Actor, filter *dto.PendingMembershipFilterRequest) (*dto.MembershipListResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &dto.PendingMembershipFilterRequest{}
	}

	status := models.MembershipPending
	query := models.MembershipFilter{Status: &status}
	offset, limit, page := pageOf(filter.PageRequest)

	switch {
	case actor.IsAdmin():
		if filter.ClubID != nil {
			query.ClubIDs = []uuid.UUID{*filter.ClubID}
		}
	case actor.IsPresident():
		clubs, err := s.authz.PresidedClubs(ctx, actor)
		if err != nil {
			return nil, err
		}
		for _, c := range clubs {
			if filter.ClubID == nil || *filter.ClubID == c.ID {
				query.ClubIDs = append(query.ClubIDs, c.ID)
			}
		}
		if filter.ClubID != nil && len(query.ClubIDs) == 0 {
			return nil, apperrors.NewForbiddenError("You can only review requests of clubs you preside over")
		}
		if len(query.ClubIDs) == 0 {
			return emptyMembershipPage(page, limit), nil
		}
	default:
		return nil, apperrors.NewForbiddenError("Only administrators and presidents can review membership requests")
	}

	return s.list(ctx, query, offset, limit, page)
}

// ListMine returns every membership record of the actor
func (s *membershipServiceImpl) ListMine(ctx context.Context, actor auth.Actor, page dto.PageRequest) (*dto.MembershipListResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	offset, limit, p := pageOf(page)
	return s.list(ctx, models.MembershipFilter{UserID: &actor.UserID}, offset, limit, p)
}

func (s *membershipServiceImpl) list(ctx context.Context, query models.MembershipFilter, offset uint64, limit, page int) (*dto.MembershipListResponse, error) {
	items, total, err := s.memberships.List(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing memberships: %w", err)
	}
	out := make([]dto.MembershipResponse, 0, len(items))
	for _, m := range items {
		out = append(out, dto.NewMembershipResponse(m))
	}
	return &dto.MembershipListResponse{
		Memberships: out,
		Pagination:  helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

func emptyMembershipPage(page, limit int) *dto.MembershipListResponse {
	return &dto.MembershipListResponse{
		Memberships: []dto.MembershipResponse{},
		Pagination:  helpers.NewPaginationInfo(0, page, limit),
	}
}

// IsMember reports whether the user holds an Approved membership of the club
func (s *membershipServiceImpl) IsMember(ctx context.Context, userID, clubID uuid.UUID) (bool, error) {
	m, err := s.memberships.FindOpen(ctx, clubID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("error checking membership: %w", err)
	}
	return m.Status == models.MembershipApproved, nil
}
