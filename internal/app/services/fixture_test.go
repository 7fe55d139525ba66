package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/email"
	"github.com/yigit/clubhub/internal/testkit/memstore"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []email.ReviewOutcome
}

func (m *fakeMailer) SendReviewOutcome(ctx context.Context, outcome email.ReviewOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, outcome)
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fixture struct {
	ctx    context.Context
	store  *memstore.Store
	authz  *auth.AuthorizationService
	mailer *fakeMailer

	applications  ClubApplicationService
	memberships   MembershipService
	events        EventService
	announcements AnnouncementService
	clubs         ClubService
	accounts      *AuthService
	users         UserService

	admin auth.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	var clockMu sync.Mutex
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	prev := now
	now = func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	t.Cleanup(func() { now = prev })

	store := memstore.New()
	stores := Stores{
		Tx:            store,
		Users:         store.Users,
		Clubs:         store.Clubs,
		Applications:  store.Applications,
		Memberships:   store.Memberships,
		Events:        store.Events,
		Announcements: store.Announcements,
	}
	log := zerolog.Nop()
	authz := auth.NewAuthorizationService(store.Clubs, store.Memberships, log)
	mailer := &fakeMailer{}

	f := &fixture{
		ctx:           context.Background(),
		store:         store,
		authz:         authz,
		mailer:        mailer,
		applications:  NewClubApplicationService(stores, mailer, log),
		memberships:   NewMembershipService(stores, authz, mailer, log),
		events:        NewEventService(stores, authz, mailer, time.UTC, log),
		announcements: NewAnnouncementService(stores, authz, mailer, log),
		clubs:         NewClubService(stores, authz, log),
		accounts:      NewAuthService(store.Users, nil, log),
		users:         NewUserService(store.Users, log),
	}
	f.admin = f.user(t, "admin", models.RoleAdmin)
	return f
}

// user creates an account holding the given roles and returns its actor
func (f *fixture) user(t *testing.T, name string, roles ...models.Role) auth.Actor {
	t.Helper()
	if len(roles) == 0 {
		roles = []models.Role{models.RoleMember}
	}
	u := &models.User{
		FullName: name,
		Email:    name + "@uni.test",
		IsActive: true,
		Roles:    roles,
	}
	u.Stamp(now(), nil)
	if err := f.store.Users.Create(f.ctx, u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return f.refresh(t, u.ID)
}

// refresh reloads the actor's current roles
func (f *fixture) refresh(t *testing.T, id uuid.UUID) auth.Actor {
	t.Helper()
	u, err := f.store.Users.GetByID(f.ctx, id)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	return auth.NewActor(u)
}

func applicationRequest(name string) *dto.SubmitClubApplicationRequest {
	return &dto.SubmitClubApplicationRequest{
		ClubName:             name,
		Mission:              "Bring people together around " + name,
		EstimatedMemberCount: 20,
		AdvisorName:          "Dr. Advisor",
		AdvisorEmail:         "advisor@uni.test",
	}
}

// foundClub runs the application workflow and returns the club and its refreshed President
func (f *fixture) foundClub(t *testing.T, name string) (uuid.UUID, auth.Actor) {
	t.Helper()
	president := f.user(t, strings.ToLower(strings.ReplaceAll(name, " ", "."))+".president")
	app, err := f.applications.Submit(f.ctx, president, applicationRequest(name))
	if err != nil {
		t.Fatalf("submit %s: %v", name, err)
	}
	approved, err := f.applications.Approve(f.ctx, f.admin, app.ID, "")
	if err != nil {
		t.Fatalf("approve %s: %v", name, err)
	}
	return *approved.ClubID, f.refresh(t, president.UserID)
}

// member creates a user with an approved membership of the club
func (f *fixture) member(t *testing.T, name string, clubID uuid.UUID) auth.Actor {
	t.Helper()
	u := f.user(t, name)
	m, err := f.memberships.Request(f.ctx, u, clubID)
	if err != nil {
		t.Fatalf("request membership: %v", err)
	}
	if _, err := f.memberships.Approve(f.ctx, f.admin, m.ID, ""); err != nil {
		t.Fatalf("approve membership: %v", err)
	}
	return f.refresh(t, u.UserID)
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}

var errInjected = errors.New("injected failure")

// kinds used across the workflow tests
var (
	errNotFound     = apperrors.ErrResourceNotFound
	errConflict     = apperrors.ErrConflict
	errForbidden    = apperrors.ErrPermissionDenied
	errBusinessRule = apperrors.ErrBusinessRule
	errInvalidState = apperrors.ErrInvalidState
	errValidation   = apperrors.ErrValidationFailed
	errUnauthorized = apperrors.ErrUnauthorized
)
