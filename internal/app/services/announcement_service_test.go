package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

func announcementRequest(title string, audience models.AnnouncementAudience, clubID *uuid.UUID) *dto.CreateAnnouncementRequest {
	return &dto.CreateAnnouncementRequest{
		AnnouncementContent: dto.AnnouncementContent{
			Title:    title,
			Content:  "Body of " + title,
			Audience: audience,
			ClubID:   clubID,
		},
	}
}

func TestPresidentAudienceRestriction(t *testing.T) {
	f := newFixture(t)
	chess, president := f.foundClub(t, "Chess")
	goClub, _ := f.foundClub(t, "Go Club")

	for _, audience := range []models.AnnouncementAudience{models.AudiencePresidents, models.AudienceSpecificClubMembers} {
		t.Run(string(audience), func(t *testing.T) {
			_, err := f.announcements.Create(f.ctx, president, announcementRequest("Hello", audience, &chess))
			assertKind(t, err, errForbidden)

			allowed, ok := apperrors.DetailsOf(err)["allowedAudiences"].([]string)
			if !ok {
				t.Fatalf("missing allowedAudiences in %v", apperrors.DetailsOf(err))
			}
			want := []string{string(models.AudienceAllStudents), string(models.AudienceClubMembers)}
			if strings.Join(allowed, ",") != strings.Join(want, ",") {
				t.Fatalf("allowedAudiences = %v, want %v", allowed, want)
			}
		})
	}

	_, err := f.announcements.Create(f.ctx, president, announcementRequest("Hello", models.AudienceClubMembers, &goClub))
	assertKind(t, err, errForbidden)

	if got := f.store.Counts()["announcements"]; got != 0 {
		t.Fatalf("announcements = %d, want 0", got)
	}

	_, err = f.announcements.Create(f.ctx, f.user(t, "alice"), announcementRequest("Hello", models.AudienceAllStudents, nil))
	assertKind(t, err, errForbidden)
}

func TestAnnouncementInitialStatusByRole(t *testing.T) {
	f := newFixture(t)
	chess, president := f.foundClub(t, "Chess")

	byAdmin, err := f.announcements.Create(f.ctx, f.admin, announcementRequest("Exams", models.AudienceAllStudents, nil))
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if byAdmin.Status != models.ApprovalApproved {
		t.Fatalf("admin announcement status = %s", byAdmin.Status)
	}

	byPresident, err := f.announcements.Create(f.ctx, president, announcementRequest("Meetup", models.AudienceClubMembers, nil))
	if err != nil {
		t.Fatalf("president create: %v", err)
	}
	if byPresident.Status != models.ApprovalPending {
		t.Fatalf("president announcement status = %s", byPresident.Status)
	}
	if byPresident.ClubID == nil || *byPresident.ClubID != chess {
		t.Fatalf("club defaulted to %v, want %s", byPresident.ClubID, chess)
	}

	_, err = f.announcements.Create(f.ctx, f.admin, announcementRequest("Club news", models.AudienceSpecificClubMembers, nil))
	assertKind(t, err, errValidation)
}

func TestAnnouncementAudienceVisibility(t *testing.T) {
	f := newFixture(t)
	chess, chessPresident := f.foundClub(t, "Chess")
	_, goPresident := f.foundClub(t, "Go Club")
	member := f.member(t, "alice", chess)
	outsider := f.user(t, "bob")

	clubNews, err := f.announcements.Create(f.ctx, chessPresident, announcementRequest("Chess news", models.AudienceClubMembers, &chess))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.announcements.Approve(f.ctx, f.admin, clubNews.ID, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	forPresidents, err := f.announcements.Create(f.ctx, f.admin, announcementRequest("Budget meeting", models.AudiencePresidents, nil))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	everyone, err := f.announcements.Create(f.ctx, f.admin, announcementRequest("Welcome", models.AudienceAllStudents, nil))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name  string
		actor auth.Actor
		want  map[uuid.UUID]bool
	}{
		{"club member", member, map[uuid.UUID]bool{clubNews.ID: true, forPresidents.ID: false, everyone.ID: true}},
		{"outsider", outsider, map[uuid.UUID]bool{clubNews.ID: false, forPresidents.ID: false, everyone.ID: true}},
		{"president of the club", chessPresident, map[uuid.UUID]bool{clubNews.ID: true, forPresidents.ID: true, everyone.ID: true}},
		{"president of another club", goPresident, map[uuid.UUID]bool{clubNews.ID: false, forPresidents.ID: true, everyone.ID: true}},
		{"admin", f.admin, map[uuid.UUID]bool{clubNews.ID: true, forPresidents.ID: true, everyone.ID: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := f.announcements.List(f.ctx, tt.actor, nil)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			seen := map[uuid.UUID]bool{}
			for _, a := range list.Announcements {
				seen[a.ID] = true
			}
			for id, want := range tt.want {
				if seen[id] != want {
					t.Fatalf("visibility of %s = %v, want %v", id, seen[id], want)
				}
				_, err := f.announcements.Get(f.ctx, tt.actor, id)
				if want && err != nil {
					t.Fatalf("get visible %s: %v", id, err)
				}
				if !want {
					assertKind(t, err, errNotFound)
				}
			}
		})
	}
}

func TestPendingAnnouncementsHiddenFromListing(t *testing.T) {
	f := newFixture(t)
	chess, president := f.foundClub(t, "Chess")
	member := f.member(t, "alice", chess)

	pending, err := f.announcements.Create(f.ctx, president, announcementRequest("Draft", models.AudienceClubMembers, &chess))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := f.announcements.List(f.ctx, member, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Announcements) != 0 {
		t.Fatalf("pending announcement listed")
	}
	_, err = f.announcements.Get(f.ctx, member, pending.ID)
	assertKind(t, err, errNotFound)
	if _, err := f.announcements.Get(f.ctx, president, pending.ID); err != nil {
		t.Fatalf("author get pending: %v", err)
	}

	queue, err := f.announcements.ListPending(f.ctx, f.admin, dto.PageRequest{})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(queue.Announcements) != 1 || queue.Announcements[0].ID != pending.ID {
		t.Fatalf("pending queue = %+v", queue.Announcements)
	}
	_, err = f.announcements.ListPending(f.ctx, president, dto.PageRequest{})
	assertKind(t, err, errForbidden)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	a, err := f.announcements.Create(f.ctx, f.admin, announcementRequest("Welcome", models.AudienceAllStudents, nil))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := f.announcements.MarkRead(f.ctx, alice, a.ID); err != nil {
			t.Fatalf("mark read #%d: %v", i+1, err)
		}
	}
	if got := f.store.Counts()["reads"]; got != 1 {
		t.Fatalf("reads = %d, want 1", got)
	}

	detail, err := f.announcements.Get(f.ctx, alice, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.ReadCount != 1 || !detail.IsRead {
		t.Fatalf("readCount = %d, isRead = %v", detail.ReadCount, detail.IsRead)
	}

	err = f.announcements.MarkRead(f.ctx, alice, uuid.New())
	assertKind(t, err, errNotFound)
}

func TestAnnouncementListTruncationOrderingAndUnread(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	long := strings.Repeat("ğ", 250)
	older, err := f.announcements.Create(f.ctx, f.admin, &dto.CreateAnnouncementRequest{AnnouncementContent: dto.AnnouncementContent{
		Title: "Older", Content: long, Audience: models.AudienceAllStudents,
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	pinned, err := f.announcements.Create(f.ctx, f.admin, &dto.CreateAnnouncementRequest{AnnouncementContent: dto.AnnouncementContent{
		Title: "Pinned", Content: "Important", Audience: models.AudienceAllStudents, IsPinned: true,
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	newer, err := f.announcements.Create(f.ctx, f.admin, announcementRequest("Newer", models.AudienceAllStudents, nil))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := f.announcements.List(f.ctx, alice, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	order := []uuid.UUID{pinned.ID, newer.ID, older.ID}
	if len(list.Announcements) != len(order) {
		t.Fatalf("got %d announcements", len(list.Announcements))
	}
	for i, id := range order {
		if list.Announcements[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, list.Announcements[i].Title, id)
		}
	}

	summary := list.Announcements[2].Content
	if utf8.RuneCountInString(summary) != 203 || !strings.HasSuffix(summary, "...") {
		t.Fatalf("summary has %d runes: %q", utf8.RuneCountInString(summary), summary)
	}
	detail, err := f.announcements.Get(f.ctx, alice, older.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Content != long {
		t.Fatalf("detail content truncated")
	}

	if err := f.announcements.MarkRead(f.ctx, alice, pinned.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unread, err := f.announcements.List(f.ctx, alice, &dto.AnnouncementFilterRequest{UnreadOnly: true})
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread.Announcements) != 2 {
		t.Fatalf("unread = %d, want 2", len(unread.Announcements))
	}
	for _, a := range unread.Announcements {
		if a.ID == pinned.ID || a.IsRead {
			t.Fatalf("read announcement returned as unread")
		}
	}
}

func TestAnnouncementTerminalStates(t *testing.T) {
	f := newFixture(t)
	chess, president := f.foundClub(t, "Chess")
	a, err := f.announcements.Create(f.ctx, president, announcementRequest("Meetup", models.AudienceClubMembers, &chess))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.announcements.Approve(f.ctx, president, a.ID, "")
	assertKind(t, err, errForbidden)

	if _, err := f.announcements.Reject(f.ctx, f.admin, a.ID, "off topic"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err = f.announcements.Approve(f.ctx, f.admin, a.ID, "")
	assertKind(t, err, errInvalidState)

	update := &dto.UpdateAnnouncementRequest{AnnouncementContent: dto.AnnouncementContent{
		Title: "Meetup v2", Content: "Edited", Audience: models.AudienceClubMembers, ClubID: &chess,
	}}
	_, err = f.announcements.Update(f.ctx, president, a.ID, update)
	assertKind(t, err, errInvalidState)

	stored, err := f.store.Announcements.GetByID(f.ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != models.ApprovalRejected || stored.Title != "Meetup" {
		t.Fatalf("stored = %s/%q", stored.Status, stored.Title)
	}
}

func TestUpdateAnnouncement(t *testing.T) {
	f := newFixture(t)
	chess, president := f.foundClub(t, "Chess")
	_, otherPresident := f.foundClub(t, "Go Club")
	a, err := f.announcements.Create(f.ctx, president, announcementRequest("Meetup", models.AudienceClubMembers, &chess))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	update := &dto.UpdateAnnouncementRequest{AnnouncementContent: dto.AnnouncementContent{
		Title: "Meetup moved", Content: "Now on Friday", Audience: models.AudienceClubMembers, ClubID: &chess, IsPinned: true,
	}}
	_, err = f.announcements.Update(f.ctx, otherPresident, a.ID, update)
	assertKind(t, err, errForbidden)

	edited, err := f.announcements.Update(f.ctx, president, a.ID, update)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if edited.Title != "Meetup moved" || !edited.IsPinned || edited.Status != models.ApprovalPending {
		t.Fatalf("edited = %+v", edited)
	}

	byAdmin, err := f.announcements.Update(f.ctx, f.admin, a.ID, update)
	if err != nil {
		t.Fatalf("admin keeps the stored audience: %v", err)
	}
	if byAdmin.Audience != models.AudienceClubMembers {
		t.Fatalf("audience = %s", byAdmin.Audience)
	}
}

func TestAllowedAudiences(t *testing.T) {
	f := newFixture(t)
	_, president := f.foundClub(t, "Chess")

	tests := []struct {
		name  string
		actor auth.Actor
		want  int
	}{
		{"admin", f.admin, 3},
		{"president", president, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.announcements.AllowedAudiences(tt.actor)
			if err != nil {
				t.Fatalf("allowed audiences: %v", err)
			}
			if len(resp.Audiences) != tt.want {
				t.Fatalf("got %v", resp.Audiences)
			}
		})
	}
	_, err := f.announcements.AllowedAudiences(f.user(t, "alice"))
	assertKind(t, err, errForbidden)
}

func TestDeleteAnnouncement(t *testing.T) {
	f := newFixture(t)
	chess, president := f.foundClub(t, "Chess")
	bob := f.member(t, "bob", chess)
	a, err := f.announcements.Create(f.ctx, f.admin, announcementRequest("Closure", models.AudienceAllStudents, nil))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = f.announcements.Delete(f.ctx, president, a.ID)
	assertKind(t, err, errForbidden)
	err = f.announcements.Delete(f.ctx, f.admin, uuid.Nil)
	assertKind(t, err, errValidation)

	if err := f.announcements.Delete(f.ctx, f.admin, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = f.announcements.Get(f.ctx, bob, a.ID)
	assertKind(t, err, errNotFound)
	feed, err := f.announcements.List(f.ctx, bob, &dto.AnnouncementFilterRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(feed.Announcements) != 0 {
		t.Fatalf("deleted announcement listed: %+v", feed.Announcements)
	}
	err = f.announcements.MarkRead(f.ctx, bob, a.ID)
	assertKind(t, err, errNotFound)

	err = f.announcements.Delete(f.ctx, f.admin, a.ID)
	assertKind(t, err, errNotFound)
	if got := f.store.Counts()["announcements"]; got != 1 {
		t.Fatalf("announcement rows = %d, want the soft-deleted row kept", got)
	}
}
