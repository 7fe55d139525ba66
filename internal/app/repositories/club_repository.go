package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/db"
	"github.com/yigit/clubhub/internal/pkg/dberrors"
	"github.com/yigit/clubhub/internal/pkg/logger"
)

var clubColumns = columns("name", "name_key", "description", "advisor_name", "president_id", "is_active")

// ClubRepository handles club persistence
type ClubRepository struct {
	base
}

// NewClubRepository creates a new ClubRepository
func NewClubRepository(database *db.PostgresDB) *ClubRepository {
	return &ClubRepository{base: newBase(database)}
}

func clubDest(c *models.Club) []interface{} {
	return append(auditDest(&c.Audit), &c.Name, &c.NameKey, &c.Description, &c.AdvisorName, &c.PresidentID, &c.IsActive)
}

// Create inserts a club; a name clash with an active club yields ErrDuplicate
func (r *ClubRepository) Create(ctx context.Context, club *models.Club) error {
	values := append(auditValues(&club.Audit), club.Name, club.NameKey, club.Description, club.AdvisorName, club.PresidentID, club.IsActive)
	sql, args, err := r.sb.Insert("clubs").Columns(clubColumns...).Values(values...).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create club query: %w", err)
	}

	if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "uq_clubs_active_name") {
			return ErrDuplicate
		}
		logger.Error().Err(err).Str("name", club.Name).Msg("Error creating club")
		return fmt.Errorf("error creating club: %w", err)
	}
	return nil
}

// GetByID retrieves a club by ID
func (r *ClubRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Club, error) {
	sql, args, err := r.sb.Select(clubColumns...).
		From("clubs").
		Where(squirrel.Eq{"id": id}).
		Where(notDeleted("")).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get club query: %w", err)
	}

	club := &models.Club{}
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(clubDest(club)...); err != nil {
		return nil, mapNoRows(err)
	}
	return club, nil
}

// ExistsActiveName reports whether an active club already uses the folded name
func (r *ClubRepository) ExistsActiveName(ctx context.Context, nameKey string) (bool, error) {
	sql, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("clubs").
		Where(squirrel.Eq{"name_key": nameKey, "is_active": true}).
		Where(notDeleted("")).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build club name query: %w", err)
	}

	var exists bool
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking club name: %w", err)
	}
	return exists, nil
}

// ListPresidedBy returns the active clubs presided by the user
func (r *ClubRepository) ListPresidedBy(ctx context.Context, userID uuid.UUID) ([]*models.Club, error) {
	clubs, _, err := r.List(ctx, models.ClubFilter{PresidentID: &userID, ActiveOnly: true}, 0, 0)
	return clubs, err
}

// List returns a page of clubs and the total count; limit 0 returns every row
func (r *ClubRepository) List(ctx context.Context, filter models.ClubFilter, offset uint64, limit int) ([]*models.Club, int64, error) {
	where := squirrel.And{notDeleted("")}
	if filter.ActiveOnly {
		where = append(where, squirrel.Eq{"is_active": true})
	}
	if filter.PresidentID != nil {
		where = append(where, squirrel.Eq{"president_id": *filter.PresidentID})
	}
	if filter.Search != "" {
		where = append(where, searchLike(filter.Search, "name", "description"))
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("clubs").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count clubs query: %w", err)
	}
	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting clubs: %w", err)
	}

	q := r.sb.Select(clubColumns...).From("clubs").Where(where).OrderBy("name ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(uint64(limit))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list clubs query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list clubs query")
		return nil, 0, fmt.Errorf("error querying clubs: %w", err)
	}
	defer rows.Close()

	clubs := []*models.Club{}
	for rows.Next() {
		club := &models.Club{}
		if err := rows.Scan(clubDest(club)...); err != nil {
			return nil, 0, fmt.Errorf("error scanning club row: %w", err)
		}
		clubs = append(clubs, club)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating club rows: %w", err)
	}
	return clubs, total, nil
}
