package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
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

// Transactor runs fn atomically; stores called with the given ctx join the unit of work
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserStore is the identity collaborator
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User, expectedVersion int) error
	AddRole(ctx context.Context, userID uuid.UUID, role models.Role) error
	HasRole(ctx context.Context, userID uuid.UUID, role models.Role) (bool, error)
}

// ClubStore persists clubs
type ClubStore interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Club, error)
	ExistsActiveName(ctx context.Context, nameKey string) (bool, error)
	ListPresidedBy(ctx context.Context, userID uuid.UUID) ([]*models.Club, error)
	List(ctx context.Context, filter models.ClubFilter, offset uint64, limit int) ([]*models.Club, int64, error)
}

// ClubApplicationStore persists club applications
type ClubApplicationStore interface {
	Create(ctx context.Context, app *models.ClubApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ClubApplication, error)
	ExistsOpenName(ctx context.Context, nameKey string) (bool, error)
	UpdateReview(ctx context.Context, app *models.ClubApplication, expectedVersion int) error
	List(ctx context.Context, filter models.ApplicationFilter, offset uint64, limit int) ([]*models.ClubApplication, int64, error)
}

// MembershipStore persists club memberships
type MembershipStore interface {
	Create(ctx context.Context, m *models.ClubMembership) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ClubMembership, error)
	FindOpen(ctx context.Context, clubID, userID uuid.UUID) (*models.ClubMembership, error)
	UpdateStatus(ctx context.Context, m *models.ClubMembership, from models.MembershipStatus, expectedVersion int) error
	UpdateRole(ctx context.Context, m *models.ClubMembership, expectedVersion int) error
	SoftDelete(ctx context.Context, m *models.ClubMembership, expectedVersion int) error
	HasPrivilegedRole(ctx context.Context, userID, exclude uuid.UUID) (bool, error)
	ListApprovedClubIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CountApproved(ctx context.Context, clubID uuid.UUID) (int64, error)
	List(ctx context.Context, filter models.MembershipFilter, offset uint64, limit int) ([]*models.ClubMembership, int64, error)
}

// EventStore persists events and their review history
type EventStore interface {
	Create(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	UpdateStatus(ctx context.Context, e *models.Event, expectedVersion int) error
	AppendApproval(ctx context.Context, a *models.EventApproval) error
	ListApprovals(ctx context.Context, eventID uuid.UUID) ([]models.EventApproval, error)
	List(ctx context.Context, filter models.EventFilter, offset uint64, limit int) ([]*models.Event, int64, error)
}

// AnnouncementStore persists announcements and read receipts
type AnnouncementStore interface {
	Create(ctx context.Context, a *models.Announcement) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error)
	Update(ctx context.Context, a *models.Announcement, expectedVersion int) error
	UpdateStatus(ctx context.Context, a *models.Announcement, expectedVersion int) error
	SoftDelete(ctx context.Context, a *models.Announcement, expectedVersion int) error
	List(ctx context.Context, filter models.AnnouncementFilter, offset uint64, limit int) ([]*models.Announcement, int64, error)
	MarkRead(ctx context.Context, read *models.AnnouncementRead) (bool, error)
	ReadSet(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error)
	CountReads(ctx context.Context, announcementID uuid.UUID) (int64, error)
}

// Stores groups every persistence collaborator the services use
type Stores struct {
	Tx            Transactor
	Users         UserStore
	Clubs         ClubStore
	Applications  ClubApplicationStore
	Memberships   MembershipStore
	Events        EventStore
	Announcements AnnouncementStore
}

// now is the service clock; tests replace it
var now = func() time.Time { return time.Now().UTC() }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateInput turns validator failures into a validation error with per-field details
func validateInput(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperrors.NewValidationError("Invalid input", dto.FieldErrors(err))
		}
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return nil
}

func requireActor(actor auth.Actor) error {
	if !actor.IsAuthenticated() {
		return apperrors.NewUnauthorizedError("Authentication required")
	}
	return nil
}

func requireID(id uuid.UUID, what string) error {
	if id == uuid.Nil {
		return apperrors.NewValidationError(what+" is required", map[string]string{"id": "required"})
	}
	return nil
}

// staleAsInvalidState maps a lost conditional update to invalid-state
func staleAsInvalidState(err error, message string) error {
	if errors.Is(err, repositories.ErrStaleRecord) {
		return apperrors.NewInvalidStateError(message)
	}
	return err
}

// notFoundAs maps a missing row to a not-found error with a domain message
func notFoundAs(err error, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NewResourceNotFoundError(message)
	}
	return err
}

func pageOf(req dto.PageRequest) (offset uint64, limit, page int) {
	return helpers.PageWindow(req.Page, req.PageSize)
}

// notifyReview sends a review outcome after commit; delivery failures are logged only
func notifyReview(ctx context.Context, users UserStore, mailer email.EmailService, logger zerolog.Logger, userID uuid.UUID, outcome email.ReviewOutcome) {
	if mailer == nil {
		return
	}
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Str("userId", userID.String()).Msg("Could not load recipient for review notification")
		return
	}
	outcome.ToEmail = user.Email
	outcome.ToName = user.FullName
	if err := mailer.SendReviewOutcome(ctx, outcome); err != nil {
		logger.Warn().Err(err).Str("userId", userID.String()).Str("kind", outcome.Kind).Msg("Review notification failed")
	}
}
