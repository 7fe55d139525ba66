package services

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

func eventRequest(clubID *uuid.UUID, title, date string) *dto.ProposeEventRequest {
	return &dto.ProposeEventRequest{
		ClubID: clubID,
		EventContent: dto.EventContent{
			Title:           title,
			Description:     "Details of " + title,
			EventDate:       date,
			EstimatedBudget: 150,
		},
	}
}

func TestProposeEventNormalizesToUTC(t *testing.T) {
	f := newFixture(t)
	_, president := f.foundClub(t, "Chess")
	want := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		date     string
		timeZone string
	}{
		{"explicit offset", "2026-03-10T18:30:00+03:00", ""},
		{"utc", "2026-03-10T15:30:00Z", ""},
		{"wall time in request zone", "2026-03-10 18:30", "Europe/Istanbul"},
		{"seconds truncated", "2026-03-10T15:30:59Z", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := eventRequest(nil, "Tournament", tt.date)
			req.TimeZone = tt.timeZone
			e, err := f.events.Propose(f.ctx, president, req)
			if err != nil {
				t.Fatalf("propose: %v", err)
			}
			if !e.EventDate.Equal(want) || e.EventDate.Location() != time.UTC {
				t.Fatalf("event date = %v, want %v", e.EventDate, want)
			}
			if e.Status != models.ApprovalPending {
				t.Fatalf("status = %s", e.Status)
			}
		})
	}
}

func TestProposeEventGuards(t *testing.T) {
	f := newFixture(t)
	chess, president := f.foundClub(t, "Chess")
	goClub, _ := f.foundClub(t, "Go Club")
	member := f.member(t, "alice", chess)

	inactive := &models.Club{Name: "Dormant", NameKey: helpers.NameKey("Dormant"), PresidentID: f.admin.UserID}
	inactive.Stamp(now(), nil)
	if err := f.store.Clubs.Create(f.ctx, inactive); err != nil {
		t.Fatalf("seed club: %v", err)
	}
	missing := uuid.New()

	tests := []struct {
		name string
		run  func() error
		kind error
	}{
		{"member cannot propose", func() error {
			_, err := f.events.Propose(f.ctx, member, eventRequest(&chess, "Party", "2026-04-01T10:00:00Z"))
			return err
		}, errForbidden},
		{"president of another club", func() error {
			_, err := f.events.Propose(f.ctx, president, eventRequest(&goClub, "Party", "2026-04-01T10:00:00Z"))
			return err
		}, errForbidden},
		{"inactive club", func() error {
			_, err := f.events.Propose(f.ctx, f.admin, eventRequest(&inactive.ID, "Party", "2026-04-01T10:00:00Z"))
			return err
		}, errBusinessRule},
		{"missing club", func() error {
			_, err := f.events.Propose(f.ctx, f.admin, eventRequest(&missing, "Party", "2026-04-01T10:00:00Z"))
			return err
		}, errBusinessRule},
		{"negative budget", func() error {
			req := eventRequest(&chess, "Party", "2026-04-01T10:00:00Z")
			req.EstimatedBudget = -1
			_, err := f.events.Propose(f.ctx, president, req)
			return err
		}, errValidation},
		{"unparseable date", func() error {
			_, err := f.events.Propose(f.ctx, president, eventRequest(&chess, "Party", "next friday"))
			return err
		}, errValidation},
		{"admin without club", func() error {
			_, err := f.events.Propose(f.ctx, f.admin, eventRequest(nil, "Party", "2026-04-01T10:00:00Z"))
			return err
		}, errValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertKind(t, tt.run(), tt.kind)
		})
	}
	if got := f.store.Counts()["events"]; got != 0 {
		t.Fatalf("events = %d, want 0", got)
	}

	if _, err := f.events.Propose(f.ctx, f.admin, eventRequest(&goClub, "Open day", "2026-04-01T10:00:00Z")); err != nil {
		t.Fatalf("admin propose for any active club: %v", err)
	}
}

func TestEventApprovalHistoryConsistency(t *testing.T) {
	f := newFixture(t)
	chess, president := f.foundClub(t, "Chess")

	e, err := f.events.Propose(f.ctx, president, eventRequest(&chess, "Simul", "2026-05-01T17:00:00Z"))
	if err != nil {
		t.Fatalf("propose: %v", err)
	}

	detail, err := f.events.Approve(f.ctx, president, e.ID, "ok")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if detail.Status != models.ApprovalApproved {
		t.Fatalf("status = %s", detail.Status)
	}
	latest := detail.LatestApproval
	if latest == nil || latest.Status != models.ApprovalApproved || latest.ReviewerID != president.UserID || latest.Comment != "ok" {
		t.Fatalf("latest approval = %+v", latest)
	}

	_, err = f.events.Reject(f.ctx, f.admin, e.ID, "changed my mind")
	assertKind(t, err, errInvalidState)

	got, err := f.events.Get(f.ctx, f.admin, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.ApprovalApproved || len(got.ApprovalHistory) != 1 {
		t.Fatalf("after failed review: status %s, history %d", got.Status, len(got.ApprovalHistory))
	}
}

func TestEventReviewIsAtomic(t *testing.T) {
	f := newFixture(t)
	chess, president := f.foundClub(t, "Chess")
	e, err := f.events.Propose(f.ctx, president, eventRequest(&chess, "Simul", "2026-05-01T17:00:00Z"))
	if err != nil {
		t.Fatalf("propose: %v", err)
	}

	f.store.FailOn("events.appendApproval", errInjected)
	if _, err := f.events.Approve(f.ctx, f.admin, e.ID, "ok"); err == nil {
		t.Fatalf("approve succeeded despite failing history append")
	}
	f.store.FailOn("events.appendApproval", nil)

	got, err := f.events.Get(f.ctx, f.admin, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.ApprovalPending || len(got.ApprovalHistory) != 0 {
		t.Fatalf("partial review applied: status %s, history %d", got.Status, len(got.ApprovalHistory))
	}
}

func TestEventReviewScope(t *testing.T) {
	f := newFixture(t)
	chess, chessPresident := f.foundClub(t, "Chess")
	_, goPresident := f.foundClub(t, "Go Club")
	e, err := f.events.Propose(f.ctx, chessPresident, eventRequest(&chess, "Simul", "2026-05-01T17:00:00Z"))
	if err != nil {
		t.Fatalf("propose: %v", err)
	}

	_, err = f.events.Approve(f.ctx, goPresident, e.ID, "")
	assertKind(t, err, errForbidden)
	_, err = f.events.Approve(f.ctx, f.admin, uuid.New(), "")
	assertKind(t, err, errNotFound)
}

func TestEventListingVisibility(t *testing.T) {
	f := newFixture(t)
	chess, chessPresident := f.foundClub(t, "Chess")
	goClub, goPresident := f.foundClub(t, "Go Club")
	member := f.member(t, "alice", chess)

	pendingChess, err := f.events.Propose(f.ctx, chessPresident, eventRequest(&chess, "Blitz", "2026-06-02T10:00:00Z"))
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	approvedGo, err := f.events.Propose(f.ctx, goPresident, eventRequest(&goClub, "Stones", "2026-06-01T10:00:00Z"))
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := f.events.Approve(f.ctx, goPresident, approvedGo.ID, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	pendingGo, err := f.events.Propose(f.ctx, goPresident, eventRequest(&goClub, "Review", "2026-06-03T10:00:00Z"))
	if err != nil {
		t.Fatalf("propose: %v", err)
	}

	ids := func(list *dto.EventListResponse) []uuid.UUID {
		out := make([]uuid.UUID, len(list.Events))
		for i, e := range list.Events {
			out[i] = e.ID
		}
		return out
	}

	tests := []struct {
		name   string
		viewer func() []uuid.UUID
		want   []uuid.UUID
	}{
		{"member sees approved only", func() []uuid.UUID {
			l, err := f.events.List(f.ctx, member, nil)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			return ids(l)
		}, []uuid.UUID{approvedGo.ID}},
		{"president sees own pending and approved elsewhere", func() []uuid.UUID {
			l, err := f.events.List(f.ctx, chessPresident, nil)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			return ids(l)
		}, []uuid.UUID{approvedGo.ID, pendingChess.ID}},
		{"admin sees everything ordered by date", func() []uuid.UUID {
			l, err := f.events.List(f.ctx, f.admin, nil)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			return ids(l)
		}, []uuid.UUID{approvedGo.ID, pendingChess.ID, pendingGo.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.viewer()
			if len(got) != len(tt.want) {
				t.Fatalf("got %d events, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("position %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}

	_, err = f.events.Get(f.ctx, member, pendingChess.ID)
	assertKind(t, err, errNotFound)
	if _, err := f.events.Get(f.ctx, chessPresident, pendingChess.ID); err != nil {
		t.Fatalf("president get own pending: %v", err)
	}
}
