package repositories

import (
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/db"
)

// Shared repository errors
var (
	// ErrNotFound is returned when no live row matches
	ErrNotFound = errors.New("record not found")
	// ErrStaleRecord is returned when a conditional update matched no row
	ErrStaleRecord = errors.New("record was modified concurrently or is no longer pending")
	// ErrDuplicate is returned when a unique constraint rejects a write
	ErrDuplicate = errors.New("duplicate record")
)

// Repositories holds all the repository instances
type Repositories struct {
	Users         *UserRepository
	Clubs         *ClubRepository
	Applications  *ClubApplicationRepository
	Memberships   *MembershipRepository
	Events        *EventRepository
	Announcements *AnnouncementRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(database),
		Clubs:         NewClubRepository(database),
		Applications:  NewClubApplicationRepository(database),
		Memberships:   NewMembershipRepository(database),
		Events:        NewEventRepository(database),
		Announcements: NewAnnouncementRepository(database),
	}
}

// base carries what every repository shares
type base struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

func newBase(database *db.PostgresDB) base {
	return base{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var auditColumns = []string{"id", "created_at", "created_by_id", "updated_at", "updated_by_id", "is_deleted", "version"}

// columns prefixes the audit envelope to the entity columns
func columns(cols ...string) []string {
	out := make([]string, 0, len(auditColumns)+len(cols))
	out = append(out, auditColumns...)
	return append(out, cols...)
}

// qualified prefixes every column with a table alias
func qualified(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

func auditValues(a *models.Audit) []interface{} {
	return []interface{}{a.ID, a.CreatedAt, a.CreatedByID, a.UpdatedAt, a.UpdatedByID, a.IsDeleted, a.Version}
}

func auditDest(a *models.Audit) []interface{} {
	return []interface{}{&a.ID, &a.CreatedAt, &a.CreatedByID, &a.UpdatedAt, &a.UpdatedByID, &a.IsDeleted, &a.Version}
}

// notDeleted is the soft-delete predicate every read applies
func notDeleted(alias string) squirrel.Eq {
	if alias == "" {
		return squirrel.Eq{"is_deleted": false}
	}
	return squirrel.Eq{alias + ".is_deleted": false}
}

// searchLike builds a case-insensitive substring match over the given columns
func searchLike(term string, cols ...string) squirrel.Or {
	pattern := "%" + term + "%"
	or := squirrel.Or{}
	for _, c := range cols {
		or = append(or, squirrel.ILike{c: pattern})
	}
	return or
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
