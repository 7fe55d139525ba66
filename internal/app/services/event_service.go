package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

// EventService handles club event proposals and their review
type EventService interface {
	Propose(ctx context.Context, actor auth.Actor, req *dto.ProposeEventRequest) (*dto.EventResponse, error)
	Approve(ctx context.Context, actor auth.Actor, id uuid.UUID, comment string) (*dto.EventDetailResponse, error)
	Reject(ctx context.Context, actor auth.Actor, id uuid.UUID, comment string) (*dto.EventDetailResponse, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*dto.EventDetailResponse, error)
	List(ctx context.Context, actor auth.Actor, filter *dto.EventFilterRequest) (*dto.EventListResponse, error)
}

type eventServiceImpl struct {
	tx       Transactor
	events   EventStore
	clubs    ClubStore
	users    UserStore
	authz    *auth.AuthorizationService
	mailer   email.EmailService
	location *time.Location
	logger   zerolog.Logger
}

// NewEventService creates a new EventService; wall-clock dates without a zone are read in location
func NewEventService(stores Stores, authz *auth.AuthorizationService, mailer email.EmailService, location *time.Location, logger zerolog.Logger) EventService {
	if location == nil {
		location = time.UTC
	}
	return &eventServiceImpl{
		tx:       stores.Tx,
		events:   stores.Events,
		clubs:    stores.Clubs,
		users:    stores.Users,
		authz:    authz,
		mailer:   mailer,
		location: location,
		logger:   logger,
	}
}

// Propose creates a Pending event for a club the actor represents
func (s *eventServiceImpl) Propose(ctx context.Context, actor auth.Actor, req *dto.ProposeEventRequest) (*dto.EventResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.IsPresident() {
		return nil, apperrors.NewForbiddenError("Only administrators and presidents can propose events")
	}
	if req == nil {
		return nil, apperrors.NewBadRequestError("Request body is required")
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validateInput(req); err != nil {
		return nil, err
	}

	clubID, err := s.resolveClub(ctx, actor, req.ClubID)
	if err != nil {
		return nil, err
	}
	club, err := s.clubs.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NewBusinessRuleError("Club not found")
		}
		return nil, fmt.Errorf("error loading club: %w", err)
	}
	if !club.IsActive {
		return nil, apperrors.NewBusinessRuleError("Events can only be proposed for active clubs")
	}
	scope, err := s.authz.ScopeFor(ctx, actor, club.ID)
	if err != nil {
		return nil, err
	}
	if scope == auth.ScopeNone {
		return nil, apperrors.NewForbiddenError("You can only propose events for clubs you preside over")
	}

	loc, err := helpers.ResolveLocation(req.TimeZone, s.location)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid time zone", map[string]string{"timeZone": err.Error()})
	}
	eventDate, err := helpers.NormalizeEventTime(req.EventDate, loc)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid event date", map[string]string{"eventDate": err.Error()})
	}

	e := &models.Event{
		ClubID:          club.ID,
		Title:           req.Title,
		Description:     req.Description,
		EventDate:       eventDate,
		EstimatedBudget: req.EstimatedBudget,
		Status:          models.ApprovalPending,
		Club:            club,
	}
	e.Stamp(now(), &actor.UserID)
	if err := s.events.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("error creating event: %w", err)
	}

	s.logger.Info().
		Str("eventId", e.ID.String()).
		Str("clubId", club.ID.String()).
		Time("eventDate", e.EventDate).
		Msg("Event proposed")

	resp := dto.NewEventResponse(e)
	return &resp, nil
}

// resolveClub picks the target club; a President without an explicit club gets the presided one
func (s *eventServiceImpl) resolveClub(ctx context.Context, actor auth.Actor, requested *uuid.UUID) (uuid.UUID, error) {
	if requested != nil && *requested != uuid.Nil {
		return *requested, nil
	}
	if actor.IsPresident() {
		clubs, err := s.authz.PresidedClubs(ctx, actor)
		if err != nil {
			return uuid.Nil, err
		}
		if len(clubs) > 0 {
			return clubs[0].ID, nil
		}
		return uuid.Nil, apperrors.NewBusinessRuleError("You do not preside over an active club")
	}
	return uuid.Nil, apperrors.NewValidationError("Club is required", map[string]string{"clubId": "required"})
}

// Approve publishes the event and appends the review to its history
func (s *eventServiceImpl) Approve(ctx context.Context, actor auth.Actor, id uuid.UUID, comment string) (*dto.EventDetailResponse, error) {
	return s.review(ctx, actor, id, models.ApprovalApproved, comment)
}

// Reject declines the event and appends the review to its history
func (s *eventServiceImpl) Reject(ctx context.Context, actor auth.Actor, id uuid.UUID, comment string) (*dto.EventDetailResponse, error) {
	return s.review(ctx, actor, id, models.ApprovalRejected, comment)
}

func (s *eventServiceImpl) review(ctx context.Context, actor auth.Actor, id uuid.UUID, outcome models.ApprovalStatus, comment string) (*dto.EventDetailResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := requireID(id, "Event ID"); err != nil {
		return nil, err
	}

	var e *models.Event
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		e, err = s.events.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "Event not found")
		}
		if _, err := s.authz.RequireReviewer(ctx, actor, e.ClubID); err != nil {
			return err
		}
		if e.Status != models.ApprovalPending {
			return apperrors.NewInvalidStateError(fmt.Sprintf("Event is already %s", strings.ToLower(string(e.Status))))
		}

		t := now()
		expected := e.Version
		e.Status = outcome
		e.Touch(t, actor.UserID)
		if err := s.events.UpdateStatus(ctx, e, expected); err != nil {
			return staleAsInvalidState(err, "Event has already been reviewed")
		}
		approval := &models.EventApproval{
			ID:         uuid.New(),
			EventID:    e.ID,
			ReviewerID: actor.UserID,
			Status:     outcome,
			Comment:    comment,
			CreatedAt:  t,
		}
		if err := s.events.AppendApproval(ctx, approval); err != nil {
			return fmt.Errorf("error recording event review: %w", err)
		}

		e.ApprovalHistory, err = s.events.ListApprovals(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("error loading event history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("eventId", e.ID.String()).
		Str("clubId", e.ClubID.String()).
		Str("reviewerId", actor.UserID.String()).
		Str("status", string(outcome)).
		Msg("Event reviewed")

	if e.CreatedByID != nil {
		notifyReview(ctx, s.users, s.mailer, s.logger, *e.CreatedByID, email.ReviewOutcome{
			Kind:     email.KindEvent,
			Subject:  e.Title,
			Approved: outcome == models.ApprovalApproved,
			Note:     comment,
		})
	}

	return newEventDetail(e), nil
}

// Get returns a visible event with its full review history
func (s *eventServiceImpl) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*dto.EventDetailResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Event not found")
	}

	viewer, err := s.authz.ViewerFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !viewer.CanSeeEvent(e) {
		return nil, apperrors.NewResourceNotFoundError("Event not found")
	}

	e.ApprovalHistory, err = s.events.ListApprovals(ctx, e.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading event history: %w", err)
	}
	return newEventDetail(e), nil
}

// List returns the events visible to the actor ordered by date
func (s *eventServiceImpl) List(ctx context.Context, actor auth.Actor, filter *dto.EventFilterRequest) (*dto.EventListResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &dto.EventFilterRequest{}
	}

	viewer, err := s.authz.ViewerFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	query := models.EventFilter{
		ClubID: filter.ClubID,
		Status: filter.Status,
		Search: strings.TrimSpace(filter.Search),
		Scope:  viewer.EventScope(),
	}
	if filter.Upcoming {
		from := now()
		query.FromDate = &from
	}

	offset, limit, page := pageOf(filter.PageRequest)
	events, total, err := s.events.List(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}

	items := make([]dto.EventResponse, 0, len(events))
	for _, e := range events {
		items = append(items, dto.NewEventResponse(e))
	}
	s.logger.Debug().Int("count", len(items)).Int64("total", total).Msg("Listed events")

	return &dto.EventListResponse{
		Events:     items,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

func newEventDetail(e *models.Event) *dto.EventDetailResponse {
	detail := &dto.EventDetailResponse{
		EventResponse:   dto.NewEventResponse(e),
		ApprovalHistory: make([]dto.EventApprovalResponse, 0, len(e.ApprovalHistory)),
	}
	for i := range e.ApprovalHistory {
		detail.ApprovalHistory = append(detail.ApprovalHistory, dto.NewEventApprovalResponse(&e.ApprovalHistory[i]))
	}
	if latest := e.LatestApproval(); latest != nil {
		a := dto.NewEventApprovalResponse(latest)
		detail.LatestApproval = &a
	}
	return detail
}
