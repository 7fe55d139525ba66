// Package memstore is an in-memory implementation of every store the services use.
// Transactions run one at a time; each snapshots the whole state and restores it when the unit of work fails.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
)

type state struct {
	users         map[uuid.UUID]models.User
	roles         map[uuid.UUID]map[models.Role]bool
	clubs         map[uuid.UUID]models.Club
	applications  map[uuid.UUID]models.ClubApplication
	memberships   map[uuid.UUID]models.ClubMembership
	events        map[uuid.UUID]models.Event
	approvals     map[uuid.UUID][]models.EventApproval
	announcements map[uuid.UUID]models.Announcement
	reads         map[uuid.UUID]map[uuid.UUID]models.AnnouncementRead
}

func newState() *state {
	return &state{
		users:         map[uuid.UUID]models.User{},
		roles:         map[uuid.UUID]map[models.Role]bool{},
		clubs:         map[uuid.UUID]models.Club{},
		applications:  map[uuid.UUID]models.ClubApplication{},
		memberships:   map[uuid.UUID]models.ClubMembership{},
		events:        map[uuid.UUID]models.Event{},
		approvals:     map[uuid.UUID][]models.EventApproval{},
		announcements: map[uuid.UUID]models.Announcement{},
		reads:         map[uuid.UUID]map[uuid.UUID]models.AnnouncementRead{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.roles {
		m := make(map[models.Role]bool, len(v))
		for r, ok := range v {
			m[r] = ok
		}
		c.roles[k] = m
	}
	for k, v := range s.clubs {
		c.clubs[k] = v
	}
	for k, v := range s.applications {
		c.applications[k] = v
	}
	for k, v := range s.memberships {
		c.memberships[k] = v
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.approvals {
		c.approvals[k] = append([]models.EventApproval(nil), v...)
	}
	for k, v := range s.announcements {
		c.announcements[k] = v
	}
	for k, v := range s.reads {
		m := make(map[uuid.UUID]models.AnnouncementRead, len(v))
		for u, r := range v {
			m[u] = r
		}
		c.reads[k] = m
	}
	return c
}

// Store holds the shared state behind the per-aggregate stores
type Store struct {
	txMu     sync.Mutex
	mu       sync.Mutex
	data     *state
	failures map[string]error

	Users         *UserStore
	Clubs         *ClubStore
	Applications  *ApplicationStore
	Memberships   *MembershipStore
	Events        *EventStore
	Announcements *AnnouncementStore
}

// New returns an empty store
func New() *Store {
	s := &Store{data: newState(), failures: map[string]error{}}
	s.Users = &UserStore{s}
	s.Clubs = &ClubStore{s}
	s.Applications = &ApplicationStore{s}
	s.Memberships = &MembershipStore{s}
	s.Events = &EventStore{s}
	s.Announcements = &AnnouncementStore{s}
	return s
}

// FailOn makes the named operation (for example "clubs.create") return err until cleared with a nil err
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) fail(op string) error {
	return s.failures[op]
}

type txKey struct{}

// WithinTransaction runs fn and restores the previous state if it fails; nested calls join the outer unit
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	// a rollback restores the whole state, so units of work must not interleave
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Counts reports the number of stored rows per aggregate
func (s *Store) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	reads := 0
	for _, m := range s.data.reads {
		reads += len(m)
	}
	approvals := 0
	for _, h := range s.data.approvals {
		approvals += len(h)
	}
	return map[string]int{
		"users":         len(s.data.users),
		"clubs":         len(s.data.clubs),
		"applications":  len(s.data.applications),
		"memberships":   len(s.data.memberships),
		"events":        len(s.data.events),
		"approvals":     approvals,
		"announcements": len(s.data.announcements),
		"reads":         reads,
	}
}

func page[T any](items []T, offset uint64, limit int) []T {
	if offset >= uint64(len(items)) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func matches(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// UserStore is the in-memory identity store
type UserStore struct{ s *Store }

func (u *UserStore) Create(ctx context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.fail("users.create"); err != nil {
		return err
	}
	email := strings.ToLower(user.Email)
	for _, existing := range u.s.data.users {
		if strings.ToLower(existing.Email) == email {
			return repositories.ErrDuplicate
		}
	}
	stored := *user
	stored.Email = email
	stored.Roles = nil
	u.s.data.users[user.ID] = stored
	roles := map[models.Role]bool{}
	for _, r := range user.Roles {
		roles[r] = true
	}
	u.s.data.roles[user.ID] = roles
	return nil
}

func (u *UserStore) withRoles(user models.User) *models.User {
	for r := range u.s.data.roles[user.ID] {
		user.Roles = append(user.Roles, r)
	}
	sort.Slice(user.Roles, func(i, j int) bool { return user.Roles[i] < user.Roles[j] })
	return &user
}

func (u *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.data.users[id]
	if !ok || user.IsDeleted {
		return nil, repositories.ErrNotFound
	}
	return u.withRoles(user), nil
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range u.s.data.users {
		if user.Email == email && !user.IsDeleted {
			return u.withRoles(user), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (u *UserStore) Update(ctx context.Context, user *models.User, expectedVersion int) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.fail("users.update"); err != nil {
		return err
	}
	stored, ok := u.s.data.users[user.ID]
	if !ok || stored.IsDeleted || stored.Version != expectedVersion {
		return repositories.ErrStaleRecord
	}
	user.Version = expectedVersion + 1
	stored.FullName = user.FullName
	stored.StudentNumber = user.StudentNumber
	stored.PasswordHash = user.PasswordHash
	stored.UpdatedAt = user.UpdatedAt
	stored.UpdatedByID = user.UpdatedByID
	stored.Version = user.Version
	u.s.data.users[user.ID] = stored
	return nil
}

func (u *UserStore) AddRole(ctx context.Context, userID uuid.UUID, role models.Role) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if err := u.s.fail("users.addRole"); err != nil {
		return err
	}
	if _, ok := u.s.data.users[userID]; !ok {
		return repositories.ErrNotFound
	}
	if u.s.data.roles[userID] == nil {
		u.s.data.roles[userID] = map[models.Role]bool{}
	}
	u.s.data.roles[userID][role] = true
	return nil
}

func (u *UserStore) HasRole(ctx context.Context, userID uuid.UUID, role models.Role) (bool, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	return u.s.data.roles[userID][role], nil
}

// ClubStore is the in-memory club store
type ClubStore struct{ s *Store }

func (c *ClubStore) Create(ctx context.Context, club *models.Club) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if err := c.s.fail("clubs.create"); err != nil {
		return err
	}
	if club.IsActive {
		for _, existing := range c.s.data.clubs {
			if existing.IsActive && !existing.IsDeleted && existing.NameKey == club.NameKey {
				return repositories.ErrDuplicate
			}
		}
	}
	c.s.data.clubs[club.ID] = *club
	return nil
}

func (c *ClubStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Club, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	club, ok := c.s.data.clubs[id]
	if !ok || club.IsDeleted {
		return nil, repositories.ErrNotFound
	}
	return &club, nil
}

func (c *ClubStore) ExistsActiveName(ctx context.Context, nameKey string) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for _, club := range c.s.data.clubs {
		if club.IsActive && !club.IsDeleted && club.NameKey == nameKey {
			return true, nil
		}
	}
	return false, nil
}

func (c *ClubStore) ListPresidedBy(ctx context.Context, userID uuid.UUID) ([]*models.Club, error) {
	clubs, _, err := c.List(ctx, models.ClubFilter{PresidentID: &userID, ActiveOnly: true}, 0, 0)
	return clubs, err
}

func (c *ClubStore) List(ctx context.Context, filter models.ClubFilter, offset uint64, limit int) ([]*models.Club, int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	var out []*models.Club
	for _, club := range c.s.data.clubs {
		club := club
		if club.IsDeleted || (filter.ActiveOnly && !club.IsActive) {
			continue
		}
		if filter.PresidentID != nil && club.PresidentID != *filter.PresidentID {
			continue
		}
		if !matches(filter.Search, club.Name, club.Description) {
			continue
		}
		out = append(out, &club)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, offset, limit), int64(len(out)), nil
}

// ApplicationStore is the in-memory club application store
type ApplicationStore struct{ s *Store }

func (a *ApplicationStore) Create(ctx context.Context, app *models.ClubApplication) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if err := a.s.fail("applications.create"); err != nil {
		return err
	}
	for _, existing := range a.s.data.applications {
		if existing.Status == models.ApprovalPending && !existing.IsDeleted && existing.ClubNameKey == app.ClubNameKey {
			return repositories.ErrDuplicate
		}
	}
	a.s.data.applications[app.ID] = *app
	return nil
}

func (a *ApplicationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ClubApplication, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	app, ok := a.s.data.applications[id]
	if !ok || app.IsDeleted {
		return nil, repositories.ErrNotFound
	}
	return &app, nil
}

func (a *ApplicationStore) ExistsOpenName(ctx context.Context, nameKey string) (bool, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	for _, app := range a.s.data.applications {
		open := app.Status == models.ApprovalPending || app.Status == models.ApprovalApproved
		if open && !app.IsDeleted && app.ClubNameKey == nameKey {
			return true, nil
		}
	}
	return false, nil
}

func (a *ApplicationStore) UpdateReview(ctx context.Context, app *models.ClubApplication, expectedVersion int) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if err := a.s.fail("applications.updateReview"); err != nil {
		return err
	}
	stored, ok := a.s.data.applications[app.ID]
	if !ok || stored.IsDeleted || stored.Version != expectedVersion || stored.Status != models.ApprovalPending {
		return repositories.ErrStaleRecord
	}
	app.Version = expectedVersion + 1
	a.s.data.applications[app.ID] = *app
	return nil
}

func (a *ApplicationStore) List(ctx context.Context, filter models.ApplicationFilter, offset uint64, limit int) ([]*models.ClubApplication, int64, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	var out []*models.ClubApplication
	for _, app := range a.s.data.applications {
		app := app
		if app.IsDeleted {
			continue
		}
		if filter.Status != nil && app.Status != *filter.Status {
			continue
		}
		if filter.ApplicantID != nil && app.ApplicantUserID != *filter.ApplicantID {
			continue
		}
		if !matches(filter.Search, app.ClubName, app.Mission) {
			continue
		}
		out = append(out, &app)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, offset, limit), int64(len(out)), nil
}

// MembershipStore is the in-memory membership store
type MembershipStore struct{ s *Store }

func isOpen(m models.ClubMembership) bool {
	return !m.IsDeleted && (m.Status == models.MembershipPending || m.Status == models.MembershipApproved)
}

func (ms *MembershipStore) Create(ctx context.Context, m *models.ClubMembership) error {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()
	if err := ms.s.fail("memberships.create"); err != nil {
		return err
	}
	for _, existing := range ms.s.data.memberships {
		if isOpen(existing) && existing.ClubID == m.ClubID && existing.UserID == m.UserID {
			return repositories.ErrDuplicate
		}
	}
	ms.s.data.memberships[m.ID] = *m
	return nil
}

func (ms *MembershipStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ClubMembership, error) {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()
	m, ok := ms.s.data.memberships[id]
	if !ok || m.IsDeleted {
		return nil, repositories.ErrNotFound
	}
	return &m, nil
}

func (ms *MembershipStore) FindOpen(ctx context.Context, clubID, userID uuid.UUID) (*models.ClubMembership, error) {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()
	for _, m := range ms.s.data.memberships {
		if isOpen(m) && m.ClubID == clubID && m.UserID == userID {
			return &m, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (ms *MembershipStore) update(m *models.ClubMembership, from models.MembershipStatus, expectedVersion int, op string) error {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()
	if err := ms.s.fail(op); err != nil {
		return err
	}
	stored, ok := ms.s.data.memberships[m.ID]
	if !ok || stored.IsDeleted || stored.Version != expectedVersion || stored.Status != from {
		return repositories.ErrStaleRecord
	}
	m.Version = expectedVersion + 1
	ms.s.data.memberships[m.ID] = *m
	return nil
}

func (ms *MembershipStore) UpdateStatus(ctx context.Context, m *models.ClubMembership, from models.MembershipStatus, expectedVersion int) error {
	return ms.update(m, from, expectedVersion, "memberships.updateStatus")
}

func (ms *MembershipStore) UpdateRole(ctx context.Context, m *models.ClubMembership, expectedVersion int) error {
	return ms.update(m, models.MembershipApproved, expectedVersion, "memberships.updateRole")
}

func (ms *MembershipStore) SoftDelete(ctx context.Context, m *models.ClubMembership, expectedVersion int) error {
	m.IsDeleted = true
	return ms.update(m, models.MembershipApproved, expectedVersion, "memberships.softDelete")
}

func (ms *MembershipStore) HasPrivilegedRole(ctx context.Context, userID, exclude uuid.UUID) (bool, error) {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()
	for _, m := range ms.s.data.memberships {
		if m.ID == exclude || m.IsDeleted || m.UserID != userID {
			continue
		}
		if m.Status == models.MembershipApproved && m.Role.IsPrivileged() {
			return true, nil
		}
	}
	return false, nil
}

func (ms *MembershipStore) ListApprovedClubIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()
	var ids []uuid.UUID
	for _, m := range ms.s.data.memberships {
		if m.IsDeleted || m.UserID != userID || m.Status != models.MembershipApproved {
			continue
		}
		if club, ok := ms.s.data.clubs[m.ClubID]; ok && club.IsActive && !club.IsDeleted {
			ids = append(ids, m.ClubID)
		}
	}
	return ids, nil
}

func (ms *MembershipStore) CountApproved(ctx context.Context, clubID uuid.UUID) (int64, error) {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()
	var n int64
	for _, m := range ms.s.data.memberships {
		if !m.IsDeleted && m.ClubID == clubID && m.Status == models.MembershipApproved {
			n++
		}
	}
	return n, nil
}

func (ms *MembershipStore) List(ctx context.Context, filter models.MembershipFilter, offset uint64, limit int) ([]*models.ClubMembership, int64, error) {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()
	var out []*models.ClubMembership
	for _, m := range ms.s.data.memberships {
		m := m
		if m.IsDeleted {
			continue
		}
		if len(filter.ClubIDs) > 0 && !containsID(filter.ClubIDs, m.ClubID) {
			continue
		}
		if filter.UserID != nil && m.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return page(out, offset, limit), int64(len(out)), nil
}

// EventStore is the in-memory event store
type EventStore struct{ s *Store }

func (es *EventStore) Create(ctx context.Context, e *models.Event) error {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()
	if err := es.s.fail("events.create"); err != nil {
		return err
	}
	stored := *e
	stored.Club = nil
	stored.ApprovalHistory = nil
	es.s.data.events[e.ID] = stored
	return nil
}

func (es *EventStore) withClub(e models.Event) *models.Event {
	if club, ok := es.s.data.clubs[e.ClubID]; ok {
		e.Club = &club
	}
	return &e
}

func (es *EventStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()
	e, ok := es.s.data.events[id]
	if !ok || e.IsDeleted {
		return nil, repositories.ErrNotFound
	}
	return es.withClub(e), nil
}

func (es *EventStore) UpdateStatus(ctx context.Context, e *models.Event, expectedVersion int) error {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()
	if err := es.s.fail("events.updateStatus"); err != nil {
		return err
	}
	stored, ok := es.s.data.events[e.ID]
	if !ok || stored.IsDeleted || stored.Version != expectedVersion || stored.Status != models.ApprovalPending {
		return repositories.ErrStaleRecord
	}
	e.Version = expectedVersion + 1
	stored.Status = e.Status
	stored.UpdatedAt = e.UpdatedAt
	stored.UpdatedByID = e.UpdatedByID
	stored.Version = e.Version
	es.s.data.events[e.ID] = stored
	return nil
}

func (es *EventStore) AppendApproval(ctx context.Context, a *models.EventApproval) error {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()
	if err := es.s.fail("events.appendApproval"); err != nil {
		return err
	}
	if _, ok := es.s.data.events[a.EventID]; !ok {
		return repositories.ErrNotFound
	}
	es.s.data.approvals[a.EventID] = append(es.s.data.approvals[a.EventID], *a)
	return nil
}

func (es *EventStore) ListApprovals(ctx context.Context, eventID uuid.UUID) ([]models.EventApproval, error) {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()
	history := append([]models.EventApproval{}, es.s.data.approvals[eventID]...)
	sort.SliceStable(history, func(i, j int) bool { return history[i].CreatedAt.After(history[j].CreatedAt) })
	return history, nil
}

func (es *EventStore) List(ctx context.Context, filter models.EventFilter, offset uint64, limit int) ([]*models.Event, int64, error) {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()
	var out []*models.Event
	for _, e := range es.s.data.events {
		if e.IsDeleted || !filter.Scope.Allows(&e) {
			continue
		}
		if filter.ClubID != nil && e.ClubID != *filter.ClubID {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if filter.FromDate != nil && e.EventDate.Before(*filter.FromDate) {
			continue
		}
		if !matches(filter.Search, e.Title, e.Description) {
			continue
		}
		out = append(out, es.withClub(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate) })
	return page(out, offset, limit), int64(len(out)), nil
}

// AnnouncementStore is the in-memory announcement store
type AnnouncementStore struct{ s *Store }

func (as *AnnouncementStore) Create(ctx context.Context, a *models.Announcement) error {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()
	if err := as.s.fail("announcements.create"); err != nil {
		return err
	}
	as.s.data.announcements[a.ID] = *a
	return nil
}

func (as *AnnouncementStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error) {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()
	a, ok := as.s.data.announcements[id]
	if !ok || a.IsDeleted {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (as *AnnouncementStore) Update(ctx context.Context, a *models.Announcement, expectedVersion int) error {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()
	if err := as.s.fail("announcements.update"); err != nil {
		return err
	}
	stored, ok := as.s.data.announcements[a.ID]
	if !ok || stored.IsDeleted || stored.Version != expectedVersion {
		return repositories.ErrStaleRecord
	}
	a.Version = expectedVersion + 1
	as.s.data.announcements[a.ID] = *a
	return nil
}

func (as *AnnouncementStore) SoftDelete(ctx context.Context, a *models.Announcement, expectedVersion int) error {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()
	if err := as.s.fail("announcements.softDelete"); err != nil {
		return err
	}
	stored, ok := as.s.data.announcements[a.ID]
	if !ok || stored.IsDeleted || stored.Version != expectedVersion {
		return repositories.ErrStaleRecord
	}
	a.Version = expectedVersion + 1
	a.IsDeleted = true
	stored.IsDeleted = true
	stored.UpdatedAt = a.UpdatedAt
	stored.UpdatedByID = a.UpdatedByID
	stored.Version = a.Version
	as.s.data.announcements[a.ID] = stored
	return nil
}

func (as *AnnouncementStore) UpdateStatus(ctx context.Context, a *models.Announcement, expectedVersion int) error {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()
	if err := as.s.fail("announcements.updateStatus"); err != nil {
		return err
	}
	stored, ok := as.s.data.announcements[a.ID]
	if !ok || stored.IsDeleted || stored.Version != expectedVersion || stored.Status != models.ApprovalPending {
		return repositories.ErrStaleRecord
	}
	a.Version = expectedVersion + 1
	stored.Status = a.Status
	stored.UpdatedAt = a.UpdatedAt
	stored.UpdatedByID = a.UpdatedByID
	stored.Version = a.Version
	as.s.data.announcements[a.ID] = stored
	return nil
}

func (as *AnnouncementStore) List(ctx context.Context, filter models.AnnouncementFilter, offset uint64, limit int) ([]*models.Announcement, int64, error) {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()
	var out []*models.Announcement
	for _, a := range as.s.data.announcements {
		a := a
		if a.IsDeleted {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Scope != nil && !filter.Scope.Allows(&a) {
			continue
		}
		if filter.Audience != nil && a.Audience != *filter.Audience {
			continue
		}
		if filter.ClubID != nil && (a.ClubID == nil || *a.ClubID != *filter.ClubID) {
			continue
		}
		if filter.IsPinned != nil && a.IsPinned != *filter.IsPinned {
			continue
		}
		if !matches(filter.Search, a.Title, a.Content) {
			continue
		}
		if filter.UnreadBy != nil {
			if _, read := as.s.data.reads[a.ID][*filter.UnreadBy]; read {
				continue
			}
		}
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, offset, limit), int64(len(out)), nil
}

func (as *AnnouncementStore) MarkRead(ctx context.Context, read *models.AnnouncementRead) (bool, error) {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()
	if _, ok := as.s.data.announcements[read.AnnouncementID]; !ok {
		return false, repositories.ErrNotFound
	}
	if as.s.data.reads[read.AnnouncementID] == nil {
		as.s.data.reads[read.AnnouncementID] = map[uuid.UUID]models.AnnouncementRead{}
	}
	if _, exists := as.s.data.reads[read.AnnouncementID][read.UserID]; exists {
		return false, nil
	}
	as.s.data.reads[read.AnnouncementID][read.UserID] = *read
	return true, nil
}

func (as *AnnouncementStore) ReadSet(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if _, ok := as.s.data.reads[id][userID]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (as *AnnouncementStore) CountReads(ctx context.Context, announcementID uuid.UUID) (int64, error) {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()
	return int64(len(as.s.data.reads[announcementID])), nil
}
