package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/controllers"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
	pkgauth "github.com/yigit/clubhub/internal/pkg/auth"
	"github.com/yigit/clubhub/internal/testkit/memstore"
)

type envelope struct {
	Data    json.RawMessage  `json:"data"`
	Message string           `json:"message"`
	Error   *dto.ErrorDetail `json:"error"`
}

type apiHarness struct {
	t      *testing.T
	store  *memstore.Store
	router *gin.Engine
}

func newAPIHarness(t *testing.T, health HealthCheck) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memstore.New()
	stores := services.Stores{
		Tx:            store,
		Users:         store.Users,
		Clubs:         store.Clubs,
		Applications:  store.Applications,
		Memberships:   store.Memberships,
		Events:        store.Events,
		Announcements: store.Announcements,
	}
	log := zerolog.Nop()
	jwtService := pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:      "routes-test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "clubhub-test",
	})
	authz := auth.NewAuthorizationService(store.Clubs, store.Memberships, log)
	authService := services.NewAuthService(store.Users, jwtService, log)
	membershipService := services.NewMembershipService(stores, authz, nil, log)

	router := gin.New()
	router.Use(middleware.Recovery())
	SetupRouter(router, Controllers{
		Auth:          controllers.NewAuthController(authService, log),
		Users:         controllers.NewUserController(services.NewUserService(store.Users, log), log),
		Clubs:         controllers.NewClubController(services.NewClubService(stores, authz, log), membershipService),
		Applications:  controllers.NewClubApplicationController(services.NewClubApplicationService(stores, nil, log)),
		Memberships:   controllers.NewMembershipController(membershipService),
		Events:        controllers.NewEventController(services.NewEventService(stores, authz, nil, time.UTC, log)),
		Announcements: controllers.NewAnnouncementController(services.NewAnnouncementService(stores, authz, nil, log)),
	}, middleware.NewAuthMiddleware(jwtService, authService, log), health)

	return &apiHarness{t: t, store: store, router: router}
}

func (h *apiHarness) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	h.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			h.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			h.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, env
}

// expect performs the request and fails unless the status matches, decoding data into out
func (h *apiHarness) expect(status int, method, path, token string, body, out interface{}) envelope {
	h.t.Helper()
	w, env := h.do(method, path, token, body)
	if w.Code != status {
		h.t.Fatalf("%s %s: status = %d, want %d: %s", method, path, w.Code, status, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			h.t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
	return env
}

// register signs up an account and returns its token and id
func (h *apiHarness) register(name string) (string, uuid.UUID) {
	h.t.Helper()
	var resp dto.AuthResponse
	h.expect(http.StatusCreated, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    name + "@uni.test",
		"password": "correct-horse",
		"fullName": name,
	}, &resp)
	return resp.Token.AccessToken, resp.User.ID
}

func TestClubLifecycleOverHTTP(t *testing.T) {
	h := newAPIHarness(t, nil)

	adminToken, adminID := h.register("admin")
	if err := h.store.Users.AddRole(context.Background(), adminID, models.RoleAdmin); err != nil {
		t.Fatalf("grant admin: %v", err)
	}
	aliceToken, _ := h.register("alice")
	bobToken, bobID := h.register("bob")

	// Club application, reviewed by the admin
	var app dto.ClubApplicationResponse
	h.expect(http.StatusCreated, http.MethodPost, "/api/v1/club-applications", aliceToken, map[string]interface{}{
		"clubName":             "Chess Club",
		"mission":              "Play chess every week",
		"estimatedMemberCount": 12,
	}, &app)
	if app.Status != models.ApprovalPending {
		t.Fatalf("application status = %s, want PENDING", app.Status)
	}
	h.expect(http.StatusConflict, http.MethodPost, "/api/v1/club-applications", bobToken, map[string]interface{}{
		"clubName":             "  chess   CLUB ",
		"mission":              "Also chess",
		"estimatedMemberCount": 8,
	}, nil)
	h.expect(http.StatusForbidden, http.MethodPost, "/api/v1/club-applications/"+app.ID.String()+"/approve", aliceToken, nil, nil)
	h.expect(http.StatusOK, http.MethodPost, "/api/v1/club-applications/"+app.ID.String()+"/approve", adminToken, nil, &app)
	if app.ClubID == nil {
		t.Fatalf("approved application without club id")
	}
	clubID := app.ClubID.String()
	h.expect(http.StatusConflict, http.MethodPost, "/api/v1/club-applications/"+app.ID.String()+"/reject", adminToken, dto.ReviewRequest{Note: "late"}, nil)

	// The new president role is effective on the existing token
	var mine []dto.ClubResponse
	h.expect(http.StatusOK, http.MethodGet, "/api/v1/clubs/mine", aliceToken, nil, &mine)
	if len(mine) != 1 || mine[0].ID != *app.ClubID {
		t.Fatalf("presided clubs = %+v", mine)
	}
	h.expect(http.StatusForbidden, http.MethodGet, "/api/v1/clubs/mine", bobToken, nil, nil)

	// Membership request reviewed by the president
	var membership dto.MembershipResponse
	h.expect(http.StatusCreated, http.MethodPost, "/api/v1/clubs/"+clubID+"/memberships", bobToken, nil, &membership)
	h.expect(http.StatusConflict, http.MethodPost, "/api/v1/clubs/"+clubID+"/memberships", bobToken, nil, nil)

	var pending dto.MembershipListResponse
	h.expect(http.StatusOK, http.MethodGet, "/api/v1/memberships/pending?clubId="+clubID, aliceToken, nil, &pending)
	if len(pending.Memberships) != 1 || pending.Memberships[0].UserID != bobID {
		t.Fatalf("pending memberships = %+v", pending.Memberships)
	}
	h.expect(http.StatusForbidden, http.MethodGet, "/api/v1/memberships/pending", bobToken, nil, nil)
	h.expect(http.StatusOK, http.MethodPost, "/api/v1/memberships/"+membership.ID.String()+"/approve", aliceToken, dto.ReviewRequest{Note: "welcome"}, &membership)
	if membership.Status != models.MembershipApproved {
		t.Fatalf("membership status = %s, want APPROVED", membership.Status)
	}

	// Event proposed by the president, hidden from members until approved
	var event dto.EventResponse
	h.expect(http.StatusCreated, http.MethodPost, "/api/v1/events", aliceToken, map[string]interface{}{
		"title":     "Spring open",
		"eventDate": "2027-04-10T18:00:00",
		"timeZone":  "UTC",
	}, &event)
	if event.Status != models.ApprovalPending || !event.EventDate.Equal(time.Date(2027, 4, 10, 18, 0, 0, 0, time.UTC)) {
		t.Fatalf("proposed event = %+v", event)
	}
	h.expect(http.StatusForbidden, http.MethodPost, "/api/v1/events", bobToken, map[string]interface{}{
		"title": "Rogue", "eventDate": "2027-04-10T18:00:00Z",
	}, nil)

	var events dto.EventListResponse
	h.expect(http.StatusOK, http.MethodGet, "/api/v1/events", bobToken, nil, &events)
	if len(events.Events) != 0 {
		t.Fatalf("member sees pending events: %+v", events.Events)
	}
	h.expect(http.StatusNotFound, http.MethodGet, "/api/v1/events/"+event.ID.String(), bobToken, nil, nil)

	var detail dto.EventDetailResponse
	h.expect(http.StatusOK, http.MethodPost, "/api/v1/events/"+event.ID.String()+"/approve", adminToken, dto.ReviewRequest{Note: "ok"}, &detail)
	if detail.LatestApproval == nil || len(detail.ApprovalHistory) != 1 {
		t.Fatalf("event history = %+v", detail)
	}
	h.expect(http.StatusOK, http.MethodGet, "/api/v1/events?upcoming=true", bobToken, nil, &events)
	if len(events.Events) != 1 {
		t.Fatalf("member events = %+v", events.Events)
	}

	// Announcement audience restriction and review
	env := h.expect(http.StatusForbidden, http.MethodPost, "/api/v1/announcements", aliceToken, map[string]string{
		"title": "Board", "content": "Presidents only", "audience": "PRESIDENTS",
	}, nil)
	if env.Error == nil || env.Error.Details == nil {
		t.Fatalf("forbidden audience without details: %+v", env.Error)
	}
	details, _ := env.Error.Details.(map[string]interface{})
	if _, ok := details["allowedAudiences"]; !ok {
		t.Fatalf("details = %+v, want allowedAudiences", details)
	}

	var announcement dto.AnnouncementDetailResponse
	h.expect(http.StatusCreated, http.MethodPost, "/api/v1/announcements", aliceToken, map[string]string{
		"title": "Practice", "content": "Thursday practice moved", "audience": "CLUB_MEMBERS",
	}, &announcement)
	if announcement.Status != models.ApprovalPending {
		t.Fatalf("president announcement status = %s, want PENDING", announcement.Status)
	}
	h.expect(http.StatusForbidden, http.MethodPost, "/api/v1/announcements/"+announcement.ID.String()+"/approve", aliceToken, nil, nil)

	var feed dto.AnnouncementListResponse
	h.expect(http.StatusOK, http.MethodGet, "/api/v1/announcements", bobToken, nil, &feed)
	if len(feed.Announcements) != 0 {
		t.Fatalf("member sees pending announcement: %+v", feed.Announcements)
	}
	h.expect(http.StatusOK, http.MethodPost, "/api/v1/announcements/"+announcement.ID.String()+"/approve", adminToken, nil, nil)

	h.expect(http.StatusOK, http.MethodGet, "/api/v1/announcements?unread=true", bobToken, nil, &feed)
	if len(feed.Announcements) != 1 || feed.Announcements[0].IsRead {
		t.Fatalf("unread feed = %+v", feed.Announcements)
	}
	for i := 0; i < 2; i++ {
		h.expect(http.StatusOK, http.MethodPost, "/api/v1/announcements/"+announcement.ID.String()+"/read", bobToken, nil, nil)
	}
	h.expect(http.StatusOK, http.MethodGet, "/api/v1/announcements?unread=true", bobToken, nil, &feed)
	if len(feed.Announcements) != 0 {
		t.Fatalf("read announcement still unread: %+v", feed.Announcements)
	}
	h.expect(http.StatusOK, http.MethodGet, "/api/v1/announcements/"+announcement.ID.String(), adminToken, nil, &announcement)
	if announcement.ReadCount != 1 {
		t.Fatalf("read count = %d, want 1", announcement.ReadCount)
	}

	// Deletion is admin only and hides the announcement
	h.expect(http.StatusForbidden, http.MethodDelete, "/api/v1/announcements/"+announcement.ID.String(), aliceToken, nil, nil)
	h.expect(http.StatusOK, http.MethodDelete, "/api/v1/announcements/"+announcement.ID.String(), adminToken, nil, nil)
	h.expect(http.StatusNotFound, http.MethodGet, "/api/v1/announcements/"+announcement.ID.String(), bobToken, nil, nil)
	h.expect(http.StatusNotFound, http.MethodDelete, "/api/v1/announcements/"+announcement.ID.String(), adminToken, nil, nil)

	// The president removes the member, who may then ask to join again
	var aliceMemberships dto.MembershipListResponse
	h.expect(http.StatusForbidden, http.MethodDelete, "/api/v1/memberships/"+membership.ID.String(), bobToken, nil, nil)
	h.expect(http.StatusOK, http.MethodDelete, "/api/v1/memberships/"+membership.ID.String(), aliceToken, nil, &membership)
	h.expect(http.StatusNotFound, http.MethodDelete, "/api/v1/memberships/"+membership.ID.String(), aliceToken, nil, nil)
	h.expect(http.StatusCreated, http.MethodPost, "/api/v1/clubs/"+clubID+"/memberships", bobToken, nil, nil)
	h.expect(http.StatusOK, http.MethodGet, "/api/v1/memberships/mine", aliceToken, nil, &aliceMemberships)
	if len(aliceMemberships.Memberships) != 1 || aliceMemberships.Memberships[0].Role != models.ClubRolePresident {
		t.Fatalf("president memberships = %+v", aliceMemberships.Memberships)
	}
	h.expect(http.StatusBadRequest, http.MethodDelete, "/api/v1/memberships/"+aliceMemberships.Memberships[0].ID.String(), adminToken, nil, nil)
}

func TestAccountSelfServiceOverHTTP(t *testing.T) {
	h := newAPIHarness(t, nil)
	token, _ := h.register("dave")

	var user dto.UserResponse
	h.expect(http.StatusOK, http.MethodPut, "/api/v1/users/me", token, map[string]string{
		"fullName": "Dave Doe", "studentNumber": "20231234",
	}, &user)
	if user.FullName != "Dave Doe" || user.StudentNumber != "20231234" {
		t.Fatalf("profile = %+v", user)
	}
	h.expect(http.StatusOK, http.MethodGet, "/api/v1/auth/me", token, nil, &user)
	if user.FullName != "Dave Doe" {
		t.Fatalf("me after update = %+v", user)
	}

	h.expect(http.StatusBadRequest, http.MethodPut, "/api/v1/users/me/password", token, map[string]string{
		"currentPassword": "correct-horse", "newPassword": "battery-staple", "confirmPassword": "battery-stapler",
	}, nil)
	h.expect(http.StatusBadRequest, http.MethodPut, "/api/v1/users/me/password", token, map[string]string{
		"currentPassword": "wrong-horse", "newPassword": "battery-staple", "confirmPassword": "battery-staple",
	}, nil)
	h.expect(http.StatusOK, http.MethodPut, "/api/v1/users/me/password", token, map[string]string{
		"currentPassword": "correct-horse", "newPassword": "battery-staple", "confirmPassword": "battery-staple",
	}, nil)

	h.expect(http.StatusUnauthorized, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "dave@uni.test", "password": "correct-horse",
	}, nil)
	h.expect(http.StatusOK, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "dave@uni.test", "password": "battery-staple",
	}, nil)
}

func TestRouteGuards(t *testing.T) {
	h := newAPIHarness(t, nil)
	token, _ := h.register("carol")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"no token", http.MethodGet, "/api/v1/clubs", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/v1/clubs", "not-a-token", http.StatusUnauthorized},
		{"bad id", http.MethodGet, "/api/v1/clubs/42", token, http.StatusBadRequest},
		{"bad club filter", http.MethodGet, "/api/v1/events?clubId=nope", token, http.StatusBadRequest},
		{"bad status filter", http.MethodGet, "/api/v1/events?status=DONE", token, http.StatusBadRequest},
		{"unknown club", http.MethodGet, "/api/v1/clubs/" + uuid.NewString(), token, http.StatusNotFound},
		{"member proposes event", http.MethodPost, "/api/v1/events", token, http.StatusForbidden},
		{"member lists pending announcements", http.MethodGet, "/api/v1/announcements/pending", token, http.StatusForbidden},
		{"member asks audiences", http.MethodGet, "/api/v1/announcements/audiences", token, http.StatusForbidden},
		{"member deletes announcement", http.MethodDelete, "/api/v1/announcements/" + uuid.NewString(), token, http.StatusForbidden},
		{"member removes membership", http.MethodDelete, "/api/v1/memberships/" + uuid.NewString(), token, http.StatusForbidden},
		{"profile without body", http.MethodPut, "/api/v1/users/me", token, http.StatusBadRequest},
		{"profile without token", http.MethodPut, "/api/v1/users/me", "", http.StatusUnauthorized},
		{"cancel without request", http.MethodDelete, "/api/v1/clubs/" + uuid.NewString() + "/memberships", token, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := h.do(tt.method, tt.path, tt.token, nil)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
		})
	}

	h.expect(http.StatusOK, http.MethodGet, "/api/v1/auth/me", token, nil, nil)
	h.expect(http.StatusUnauthorized, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "carol@uni.test", "password": "wrong-password",
	}, nil)
	h.expect(http.StatusBadRequest, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "not-an-email", "password": "x",
	}, nil)
}

func TestHealth(t *testing.T) {
	h := newAPIHarness(t, nil)
	h.expect(http.StatusOK, http.MethodGet, "/health", "", nil, nil)

	down := newAPIHarness(t, func(ctx context.Context) error { return errors.New("connection refused") })
	w, env := down.do(http.MethodGet, "/api/v1/health", "", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if env.Error == nil || env.Error.Code != dto.ErrorCodeDatabaseError {
		t.Fatalf("error = %+v", env.Error)
	}
}
