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

var membershipColumns = columns("club_id", "user_id", "status", "role", "reviewed_by_id", "reviewed_at", "note")

// MembershipRepository handles club membership persistence
type MembershipRepository struct {
	base
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(database *db.PostgresDB) *MembershipRepository {
	return &MembershipRepository{base: newBase(database)}
}

func membershipDest(m *models.ClubMembership) []interface{} {
	return append(auditDest(&m.Audit), &m.ClubID, &m.UserID, &m.Status, &m.Role, &m.ReviewedByID, &m.ReviewedAt, &m.Note)
}

// Create inserts a membership; an existing open membership for the pair yields ErrDuplicate
func (r *MembershipRepository) Create(ctx context.Context, m *models.ClubMembership) error {
	values := append(auditValues(&m.Audit), m.ClubID, m.UserID, m.Status, m.Role, m.ReviewedByID, m.ReviewedAt, m.Note)
	sql, args, err := r.sb.Insert("club_memberships").Columns(membershipColumns...).Values(values...).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create membership query: %w", err)
	}

	if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "uq_club_memberships_open") {
			return ErrDuplicate
		}
		logger.Error().Err(err).Str("clubId", m.ClubID.String()).Str("userId", m.UserID.String()).Msg("Error creating membership")
		return fmt.Errorf("error creating membership: %w", err)
	}
	return nil
}

func (r *MembershipRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.ClubMembership, error) {
	sql, args, err := r.sb.Select(membershipColumns...).
		From("club_memberships").
		Where(where).
		Where(notDeleted("")).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get membership query: %w", err)
	}

	m := &models.ClubMembership{}
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(membershipDest(m)...); err != nil {
		return nil, mapNoRows(err)
	}
	return m, nil
}

// GetByID retrieves a membership by ID
func (r *MembershipRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ClubMembership, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// FindOpen returns the pending or approved membership of a user in a club
func (r *MembershipRepository) FindOpen(ctx context.Context, clubID, userID uuid.UUID) (*models.ClubMembership, error) {
	return r.getOne(ctx, squirrel.Eq{
		"club_id": clubID,
		"user_id": userID,
		"status":  []models.MembershipStatus{models.MembershipPending, models.MembershipApproved},
	})
}

// UpdateStatus persists a status transition if the row is still in status from at the expected version
func (r *MembershipRepository) UpdateStatus(ctx context.Context, m *models.ClubMembership, from models.MembershipStatus, expectedVersion int) error {
	return r.conditionalUpdate(ctx, m, map[string]interface{}{
		"status":         m.Status,
		"reviewed_by_id": m.ReviewedByID,
		"reviewed_at":    m.ReviewedAt,
		"note":           m.Note,
	}, from, expectedVersion)
}

// UpdateRole persists a role change of an approved membership at the expected version
func (r *MembershipRepository) UpdateRole(ctx context.Context, m *models.ClubMembership, expectedVersion int) error {
	return r.conditionalUpdate(ctx, m, map[string]interface{}{
		"role": m.Role,
	}, models.MembershipApproved, expectedVersion)
}

// SoftDelete removes an approved membership at the expected version
func (r *MembershipRepository) SoftDelete(ctx context.Context, m *models.ClubMembership, expectedVersion int) error {
	m.IsDeleted = true
	return r.conditionalUpdate(ctx, m, map[string]interface{}{
		"is_deleted": true,
	}, models.MembershipApproved, expectedVersion)
}

func (r *MembershipRepository) conditionalUpdate(ctx context.Context, m *models.ClubMembership, set map[string]interface{}, from models.MembershipStatus, expectedVersion int) error {
	set["updated_at"] = m.UpdatedAt
	set["updated_by_id"] = m.UpdatedByID
	set["version"] = squirrel.Expr("version + 1")

	sql, args, err := r.sb.Update("club_memberships").
		SetMap(set).
		Where(squirrel.Eq{"id": m.ID, "version": expectedVersion, "status": from}).
		Where(notDeleted("")).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update membership query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("membershipId", m.ID.String()).Msg("Error updating membership")
		return fmt.Errorf("error updating membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleRecord
	}
	m.Version = expectedVersion + 1
	return nil
}

// HasPrivilegedRole reports whether the user holds an approved privileged membership other than exclude
func (r *MembershipRepository) HasPrivilegedRole(ctx context.Context, userID, exclude uuid.UUID) (bool, error) {
	sql, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("club_memberships").
		Where(squirrel.Eq{
			"user_id": userID,
			"status":  models.MembershipApproved,
			"role":    models.PrivilegedClubRoles,
		}).
		Where(squirrel.NotEq{"id": exclude}).
		Where(notDeleted("")).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build privileged role query: %w", err)
	}

	var exists bool
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking privileged role: %w", err)
	}
	return exists, nil
}

// ListApprovedClubIDs returns the clubs where the user is an approved member
func (r *MembershipRepository) ListApprovedClubIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	sql, args, err := r.sb.Select("m.club_id").
		From("club_memberships m").
		Join("clubs c ON c.id = m.club_id").
		Where(squirrel.Eq{"m.user_id": userID, "m.status": models.MembershipApproved, "c.is_active": true}).
		Where(notDeleted("m")).
		Where(notDeleted("c")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build member clubs query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying member clubs: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning member club row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountApproved returns the number of approved members of a club
func (r *MembershipRepository) CountApproved(ctx context.Context, clubID uuid.UUID) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("club_memberships").
		Where(squirrel.Eq{"club_id": clubID, "status": models.MembershipApproved}).
		Where(notDeleted("")).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count members query: %w", err)
	}

	var n int64
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting members: %w", err)
	}
	return n, nil
}

// List returns a page of memberships, oldest first, and the total count
func (r *MembershipRepository) List(ctx context.Context, filter models.MembershipFilter, offset uint64, limit int) ([]*models.ClubMembership, int64, error) {
	where := squirrel.And{notDeleted("")}
	if len(filter.ClubIDs) > 0 {
		where = append(where, squirrel.Eq{"club_id": filter.ClubIDs})
	}
	if filter.UserID != nil {
		where = append(where, squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("club_memberships").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count memberships query: %w", err)
	}
	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting memberships: %w", err)
	}

	q := r.sb.Select(membershipColumns...).From("club_memberships").Where(where).OrderBy("created_at ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(uint64(limit))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list memberships query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list memberships query")
		return nil, 0, fmt.Errorf("error querying memberships: %w", err)
	}
	defer rows.Close()

	list := []*models.ClubMembership{}
	for rows.Next() {
		m := &models.ClubMembership{}
		if err := rows.Scan(membershipDest(m)...); err != nil {
			return nil, 0, fmt.Errorf("error scanning membership row: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating membership rows: %w", err)
	}
	return list, total, nil
}
