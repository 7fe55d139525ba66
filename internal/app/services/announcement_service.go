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

var (
	adminAudiences = []models.AnnouncementAudience{
		models.AudienceAllStudents,
		models.AudiencePresidents,
		models.AudienceSpecificClubMembers,
	}
	presidentAudiences = []models.AnnouncementAudience{
		models.AudienceAllStudents,
		models.AudienceClubMembers,
	}
)

// AllowedAudiences returns the audiences the actor may address
func AllowedAudiences(actor auth.Actor) []models.AnnouncementAudience {
	switch {
	case actor.IsAdmin():
		return adminAudiences
	case actor.IsPresident():
		return presidentAudiences
	}
	return nil
}

// AnnouncementService handles announcement authoring, review and read tracking
type AnnouncementService interface {
	Create(ctx context.Context, actor auth.Actor, req *dto.CreateAnnouncementRequest) (*dto.AnnouncementDetailResponse, error)
	Update(ctx context.Context, actor auth.Actor, id uuid.UUID, req *dto.UpdateAnnouncementRequest) (*dto.AnnouncementDetailResponse, error)
	Approve(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*dto.AnnouncementDetailResponse, error)
	Reject(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*dto.AnnouncementDetailResponse, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
	MarkRead(ctx context.Context, actor auth.Actor, id uuid.UUID) error
	List(ctx context.Context, actor auth.Actor, filter *dto.AnnouncementFilterRequest) (*dto.AnnouncementListResponse, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*dto.AnnouncementDetailResponse, error)
	ListPending(ctx context.Context, actor auth.Actor, page dto.PageRequest) (*dto.AnnouncementListResponse, error)
	AllowedAudiences(actor auth.Actor) (*dto.AllowedAudiencesResponse, error)
}

type announcementServiceImpl struct {
	tx            Transactor
	announcements AnnouncementStore
	clubs         ClubStore
	users         UserStore
	authz         *auth.AuthorizationService
	mailer        email.EmailService
	logger        zerolog.Logger
}

// NewAnnouncementService creates a new AnnouncementService
func NewAnnouncementService(stores Stores, authz *auth.AuthorizationService, mailer email.EmailService, logger zerolog.Logger) AnnouncementService {
	return &announcementServiceImpl{
		tx:            stores.Tx,
		announcements: stores.Announcements,
		clubs:         stores.Clubs,
		users:         stores.Users,
		authz:         authz,
		mailer:        mailer,
		logger:        logger,
	}
}

// Create stores an announcement; administrator posts are published at once, President posts await review
func (s *announcementServiceImpl) Create(ctx context.Context, actor auth.Actor, req *dto.CreateAnnouncementRequest) (*dto.AnnouncementDetailResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperrors.NewBadRequestError("Request body is required")
	}
	content, err := s.checkContent(ctx, actor, &req.AnnouncementContent, "")
	if err != nil {
		return nil, err
	}

	a := &models.Announcement{
		Title:    content.Title,
		Content:  content.Content,
		Audience: content.Audience,
		ClubID:   content.ClubID,
		IsPinned: content.IsPinned,
		Status:   models.ApprovalPending,
	}
	if actor.IsAdmin() {
		a.Status = models.ApprovalApproved
	}
	a.Stamp(now(), &actor.UserID)
	if err := s.announcements.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("error creating announcement: %w", err)
	}

	s.logger.Info().
		Str("announcementId", a.ID.String()).
		Str("audience", string(a.Audience)).
		Str("status", string(a.Status)).
		Str("authorId", actor.UserID.String()).
		Msg("Announcement created")

	return &dto.AnnouncementDetailResponse{
		AnnouncementSummaryResponse: dto.NewAnnouncementSummary(a, a.Content, false),
	}, nil
}

// checkContent validates the fields and the audience the actor is allowed to address.
// current is the audience already stored on an edited announcement and is always accepted.
func (s *announcementServiceImpl) checkContent(ctx context.Context, actor auth.Actor, c *dto.AnnouncementContent, current models.AnnouncementAudience) (*dto.AnnouncementContent, error) {
	c.Title = strings.TrimSpace(c.Title)
	c.Content = strings.TrimSpace(c.Content)

	allowed := AllowedAudiences(actor)
	if len(allowed) == 0 {
		return nil, apperrors.NewForbiddenError("Only administrators and presidents can publish announcements")
	}
	if err := validateInput(c); err != nil {
		return nil, err
	}
	if c.Audience != current && !containsAudience(allowed, c.Audience) {
		s.logger.Warn().
			Str("userId", actor.UserID.String()).
			Str("audience", string(c.Audience)).
			Msg("Announcement audience not allowed for role")
		names := make([]string, len(allowed))
		for i, a := range allowed {
			names[i] = string(a)
		}
		return nil, apperrors.NewCustomError(apperrors.ErrPermissionDenied, "You cannot address this audience").
			WithDetails(map[string]interface{}{"allowedAudiences": names})
	}

	if !c.Audience.IsClubScoped() {
		c.ClubID = nil
		return c, nil
	}

	if c.ClubID == nil || *c.ClubID == uuid.Nil {
		if !actor.IsAdmin() {
			clubs, err := s.authz.PresidedClubs(ctx, actor)
			if err != nil {
				return nil, err
			}
			if len(clubs) == 0 {
				return nil, apperrors.NewBusinessRuleError("You do not preside over an active club")
			}
			c.ClubID = &clubs[0].ID
			return c, nil
		}
		return nil, apperrors.NewValidationError("Club is required for this audience", map[string]string{"clubId": "required"})
	}

	club, err := s.clubs.GetByID(ctx, *c.ClubID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NewBusinessRuleError("Club not found")
		}
		return nil, fmt.Errorf("error loading club: %w", err)
	}
	if !club.IsActive {
		return nil, apperrors.NewBusinessRuleError("Announcements can only target active clubs")
	}
	if !actor.IsAdmin() {
		scope, err := s.authz.ScopeFor(ctx, actor, club.ID)
		if err != nil {
			return nil, err
		}
		if scope == auth.ScopeNone {
			return nil, apperrors.NewForbiddenError("You can only address members of clubs you preside over")
		}
	}
	return c, nil
}

func containsAudience(list []models.AnnouncementAudience, a models.AnnouncementAudience) bool {
	for _, v := range list {
		if v == a {
			return true
		}
	}
	return false
}

// Update edits an announcement; Presidents may only edit their own submissions while pending
func (s *announcementServiceImpl) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, req *dto.UpdateAnnouncementRequest) (*dto.AnnouncementDetailResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperrors.NewBadRequestError("Request body is required")
	}

	var a *models.Announcement
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.announcements.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "Announcement not found")
		}
		if !actor.IsAdmin() {
			if a.CreatedByID == nil || *a.CreatedByID != actor.UserID {
				return apperrors.NewForbiddenError("You can only edit your own announcements")
			}
			if a.Status != models.ApprovalPending {
				return apperrors.NewInvalidStateError("Only pending announcements can be edited")
			}
		}

		content, err := s.checkContent(ctx, actor, &req.AnnouncementContent, a.Audience)
		if err != nil {
			return err
		}

		expected := a.Version
		a.Title = content.Title
		a.Content = content.Content
		a.Audience = content.Audience
		a.ClubID = content.ClubID
		a.IsPinned = content.IsPinned
		a.Touch(now(), actor.UserID)
		if err := s.announcements.Update(ctx, a, expected); err != nil {
			return staleAsInvalidState(err, "Announcement was modified concurrently")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("announcementId", a.ID.String()).
		Str("editorId", actor.UserID.String()).
		Msg("Announcement updated")

	return s.detail(ctx, actor, a)
}

// Approve publishes a pending announcement
func (s *announcementServiceImpl) Approve(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*dto.AnnouncementDetailResponse, error) {
	return s.review(ctx, actor, id, models.ApprovalApproved, note)
}

// Reject declines a pending announcement
func (s *announcementServiceImpl) Reject(ctx context.Context, actor auth.Actor, id uuid.UUID, note string) (*dto.AnnouncementDetailResponse, error) {
	return s.review(ctx, actor, id, models.ApprovalRejected, note)
}

func (s *announcementServiceImpl) review(ctx context.Context, actor auth.Actor, id uuid.UUID, outcome models.ApprovalStatus, note string) (*dto.AnnouncementDetailResponse, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := requireID(id, "Announcement ID"); err != nil {
		return nil, err
	}

	var a *models.Announcement
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.announcements.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "Announcement not found")
		}
		if a.Status != models.ApprovalPending {
			return apperrors.NewInvalidStateError(fmt.Sprintf("Announcement is already %s", strings.ToLower(string(a.Status))))
		}
		expected := a.Version
		a.Status = outcome
		a.Touch(now(), actor.UserID)
		if err := s.announcements.UpdateStatus(ctx, a, expected); err != nil {
			return staleAsInvalidState(err, "Announcement has already been reviewed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("announcementId", a.ID.String()).
		Str("reviewerId", actor.UserID.String()).
		Str("status", string(outcome)).
		Msg("Announcement reviewed")

	if a.CreatedByID != nil {
		notifyReview(ctx, s.users, s.mailer, s.logger, *a.CreatedByID, email.ReviewOutcome{
			Kind:     email.KindAnnouncement,
			Subject:  a.Title,
			Approved: outcome == models.ApprovalApproved,
			Note:     note,
		})
	}

	return s.detail(ctx, actor, a)
}

// Delete soft-deletes an announcement; it disappears from every listing
func (s *announcementServiceImpl) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return err
	}
	if err := requireID(id, "Announcement ID"); err != nil {
		return err
	}

	var a *models.Announcement
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.announcements.GetByID(ctx, id)
		if err != nil {
			return notFoundAs(err, "Announcement not found")
		}
		expected := a.Version
		a.Touch(now(), actor.UserID)
		if err := s.announcements.SoftDelete(ctx, a, expected); err != nil {
			return staleAsInvalidState(err, "Announcement was modified concurrently")
		}
		return nil
	})
	if err != nil {
		return err
	}

	event := s.logger.Info().
		Str("announcementId", a.ID.String()).
		Str("title", a.Title).
		Str("deletedBy", actor.UserID.String())
	if a.ClubID != nil {
		event = event.Str("clubId", a.ClubID.String())
	}
	event.Msg("Announcement deleted")
	return nil
}

// MarkRead records that the actor viewed the announcement; repeated calls are no-ops
func (s *announcementServiceImpl) MarkRead(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	a, err := s.visible(ctx, actor, id)
	if err != nil {
		return err
	}

	inserted, err := s.announcements.MarkRead(ctx, &models.AnnouncementRead{
		ID:             uuid.New(),
		AnnouncementID: a.ID,
		UserID:         actor.UserID,
		ReadAt:         now(),
	})
	if err != nil {
		return notFoundAs(err, "Announcement not found")
	}
	if inserted {
		s.logger.Debug().
			Str("announcementId", a.ID.String()).
			Str("userId", actor.UserID.String()).
			Msg("Announcement marked as read")
	}
	return nil
}

// List returns approved announcements visible to the actor, pinned first then newest
func (s *announcementServiceImpl) List(ctx context.Context, actor auth.Actor, filter *dto.AnnouncementFilterRequest) (*dto.AnnouncementListResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &dto.AnnouncementFilterRequest{}
	}

	viewer, err := s.authz.ViewerFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	scope := viewer.AudienceScope()
	query := models.AnnouncementFilter{
		Status:   models.ApprovalApproved,
		Audience: filter.Audience,
		ClubID:   filter.ClubID,
		IsPinned: filter.IsPinned,
		Search:   strings.TrimSpace(filter.Search),
		Scope:    &scope,
	}
	if filter.UnreadOnly {
		query.UnreadBy = &actor.UserID
	}
	return s.list(ctx, actor, query, filter.PageRequest)
}

// ListPending returns the announcements awaiting administrator review
func (s *announcementServiceImpl) ListPending(ctx context.Context, actor auth.Actor, page dto.PageRequest) (*dto.AnnouncementListResponse, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.list(ctx, actor, models.AnnouncementFilter{Status: models.ApprovalPending}, page)
}

func (s *announcementServiceImpl) list(ctx context.Context, actor auth.Actor, query models.AnnouncementFilter, page dto.PageRequest) (*dto.AnnouncementListResponse, error) {
	offset, limit, p := pageOf(page)
	items, total, err := s.announcements.List(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing announcements: %w", err)
	}

	ids := make([]uuid.UUID, len(items))
	for i, a := range items {
		ids[i] = a.ID
	}
	read, err := s.announcements.ReadSet(ctx, actor.UserID, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading read state: %w", err)
	}

	out := make([]dto.AnnouncementSummaryResponse, 0, len(items))
	for _, a := range items {
		out = append(out, dto.NewAnnouncementSummary(a, helpers.Truncate(a.Content, helpers.SummaryLength), read[a.ID]))
	}
	s.logger.Debug().Int("count", len(out)).Int64("total", total).Msg("Listed announcements")

	return &dto.AnnouncementListResponse{
		Announcements: out,
		Pagination:    helpers.NewPaginationInfo(total, p, limit),
	}, nil
}

// Get returns the full announcement with its read count
func (s *announcementServiceImpl) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*dto.AnnouncementDetailResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	a, err := s.visible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, actor, a)
}

// visible loads the announcement and hides it from viewers outside its audience
func (s *announcementServiceImpl) visible(ctx context.Context, actor auth.Actor, id uuid.UUID) (*models.Announcement, error) {
	a, err := s.announcements.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Announcement not found")
	}
	viewer, err := s.authz.ViewerFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !viewer.CanSeeAnnouncement(a) {
		return nil, apperrors.NewResourceNotFoundError("Announcement not found")
	}
	return a, nil
}

func (s *announcementServiceImpl) detail(ctx context.Context, actor auth.Actor, a *models.Announcement) (*dto.AnnouncementDetailResponse, error) {
	read, err := s.announcements.ReadSet(ctx, actor.UserID, []uuid.UUID{a.ID})
	if err != nil {
		return nil, fmt.Errorf("error loading read state: %w", err)
	}
	count, err := s.announcements.CountReads(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("error counting reads: %w", err)
	}
	return &dto.AnnouncementDetailResponse{
		AnnouncementSummaryResponse: dto.NewAnnouncementSummary(a, a.Content, read[a.ID]),
		ReadCount:                   count,
	}, nil
}

// AllowedAudiences lists the audiences the actor may address
func (s *announcementServiceImpl) AllowedAudiences(actor auth.Actor) (*dto.AllowedAudiencesResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	allowed := AllowedAudiences(actor)
	if len(allowed) == 0 {
		return nil, apperrors.NewForbiddenError("Only administrators and presidents can publish announcements")
	}
	out := make([]models.AnnouncementAudience, len(allowed))
	copy(out, allowed)
	return &dto.AllowedAudiencesResponse{Audiences: out}, nil
}
