package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/db"
	"github.com/yigit/clubhub/internal/pkg/dberrors"
	"github.com/yigit/clubhub/internal/pkg/logger"
)

var announcementColumns = columns("title", "content", "audience", "club_id", "is_pinned", "status")

// AnnouncementRepository handles announcement and read receipt persistence
type AnnouncementRepository struct {
	base
}

// NewAnnouncementRepository creates a new AnnouncementRepository
func NewAnnouncementRepository(database *db.PostgresDB) *AnnouncementRepository {
	return &AnnouncementRepository{base: newBase(database)}
}

func announcementDest(a *models.Announcement) []interface{} {
	return append(auditDest(&a.Audit), &a.Title, &a.Content, &a.Audience, &a.ClubID, &a.IsPinned, &a.Status)
}

// Create inserts an announcement
func (r *AnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	values := append(auditValues(&a.Audit), a.Title, a.Content, a.Audience, a.ClubID, a.IsPinned, a.Status)
	sql, args, err := r.sb.Insert("announcements").Columns(announcementColumns...).Values(values...).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create announcement query: %w", err)
	}

	if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Msg("Error creating announcement")
		return fmt.Errorf("error creating announcement: %w", err)
	}
	return nil
}

// GetByID retrieves an announcement by ID
func (r *AnnouncementRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error) {
	sql, args, err := r.sb.Select(announcementColumns...).
		From("announcements").
		Where(squirrel.Eq{"id": id}).
		Where(notDeleted("")).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get announcement query: %w", err)
	}

	a := &models.Announcement{}
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(announcementDest(a)...); err != nil {
		return nil, mapNoRows(err)
	}
	return a, nil
}

// Update persists edited content and status at the expected version
func (r *AnnouncementRepository) Update(ctx context.Context, a *models.Announcement, expectedVersion int) error {
	return r.conditionalUpdate(ctx, a, map[string]interface{}{
		"title":     a.Title,
		"content":   a.Content,
		"audience":  a.Audience,
		"club_id":   a.ClubID,
		"is_pinned": a.IsPinned,
		"status":    a.Status,
	}, squirrel.Eq{"id": a.ID, "version": expectedVersion}, expectedVersion)
}

// UpdateStatus persists a review outcome if the announcement is still pending at the expected version
func (r *AnnouncementRepository) UpdateStatus(ctx context.Context, a *models.Announcement, expectedVersion int) error {
	return r.conditionalUpdate(ctx, a, map[string]interface{}{
		"status": a.Status,
	}, squirrel.Eq{"id": a.ID, "version": expectedVersion, "status": models.ApprovalPending}, expectedVersion)
}

// SoftDelete hides an announcement from every read at the expected version
func (r *AnnouncementRepository) SoftDelete(ctx context.Context, a *models.Announcement, expectedVersion int) error {
	a.IsDeleted = true
	return r.conditionalUpdate(ctx, a, map[string]interface{}{
		"is_deleted": true,
	}, squirrel.Eq{"id": a.ID, "version": expectedVersion}, expectedVersion)
}

func (r *AnnouncementRepository) conditionalUpdate(ctx context.Context, a *models.Announcement, set map[string]interface{}, where squirrel.Eq, expectedVersion int) error {
	set["updated_at"] = a.UpdatedAt
	set["updated_by_id"] = a.UpdatedByID
	set["version"] = squirrel.Expr("version + 1")

	sql, args, err := r.sb.Update("announcements").
		SetMap(set).
		Where(where).
		Where(notDeleted("")).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update announcement query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("announcementId", a.ID.String()).Msg("Error updating announcement")
		return fmt.Errorf("error updating announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleRecord
	}
	a.Version = expectedVersion + 1
	return nil
}

func announcementWhere(filter models.AnnouncementFilter) squirrel.And {
	where := squirrel.And{notDeleted("a")}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"a.status": filter.Status})
	}
	if s := filter.Scope; s != nil && !s.All {
		visible := squirrel.Or{squirrel.Eq{"a.audience": models.AudienceAllStudents}}
		if s.Presidents {
			visible = append(visible, squirrel.Eq{"a.audience": models.AudiencePresidents})
		}
		if len(s.ClubIDs) > 0 {
			visible = append(visible, squirrel.And{
				squirrel.Eq{"a.audience": []models.AnnouncementAudience{models.AudienceClubMembers, models.AudienceSpecificClubMembers}},
				squirrel.Eq{"a.club_id": s.ClubIDs},
			})
		}
		where = append(where, visible)
	}
	if filter.Audience != nil {
		where = append(where, squirrel.Eq{"a.audience": *filter.Audience})
	}
	if filter.ClubID != nil {
		where = append(where, squirrel.Eq{"a.club_id": *filter.ClubID})
	}
	if filter.IsPinned != nil {
		where = append(where, squirrel.Eq{"a.is_pinned": *filter.IsPinned})
	}
	if filter.Search != "" {
		where = append(where, searchLike(filter.Search, "a.title", "a.content"))
	}
	if filter.UnreadBy != nil {
		where = append(where, squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM announcement_reads r WHERE r.announcement_id = a.id AND r.user_id = ?)",
			*filter.UnreadBy,
		))
	}
	return where
}

// List returns a page of announcements, pinned first then newest, and the total count
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter, offset uint64, limit int) ([]*models.Announcement, int64, error) {
	where := announcementWhere(filter)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("announcements a").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count announcements query: %w", err)
	}
	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting announcements: %w", err)
	}

	q := r.sb.Select(qualified("a", announcementColumns)...).
		From("announcements a").
		Where(where).
		OrderBy("a.is_pinned DESC", "a.created_at DESC", "a.id DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(uint64(limit))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list announcements query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list announcements query")
		return nil, 0, fmt.Errorf("error querying announcements: %w", err)
	}
	defer rows.Close()

	list := []*models.Announcement{}
	for rows.Next() {
		a := &models.Announcement{}
		if err := rows.Scan(announcementDest(a)...); err != nil {
			return nil, 0, fmt.Errorf("error scanning announcement row: %w", err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating announcement rows: %w", err)
	}
	return list, total, nil
}

// MarkRead stores a read receipt and reports whether a new one was created
func (r *AnnouncementRepository) MarkRead(ctx context.Context, read *models.AnnouncementRead) (bool, error) {
	sql, args, err := r.sb.Insert("announcement_reads").
		Columns("id", "announcement_id", "user_id", "read_at").
		Values(read.ID, read.AnnouncementID, read.UserID, read.ReadAt).
		Suffix("ON CONFLICT (announcement_id, user_id) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build mark read query: %w", err)
	}

	var id uuid.UUID
	err = r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	case dberrors.IsForeignKeyViolation(err):
		return false, ErrNotFound
	default:
		logger.Error().Err(err).Str("announcementId", read.AnnouncementID.String()).Msg("Error marking announcement read")
		return false, fmt.Errorf("error marking announcement read: %w", err)
	}
}

// ReadSet returns which of the given announcements the user has read
func (r *AnnouncementRepository) ReadSet(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	read := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return read, nil
	}

	sql, args, err := r.sb.Select("announcement_id").
		From("announcement_reads").
		Where(squirrel.Eq{"user_id": userID, "announcement_id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build read set query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying read receipts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning read receipt: %w", err)
		}
		read[id] = true
	}
	return read, rows.Err()
}

// CountReads returns how many users have read the announcement
func (r *AnnouncementRepository) CountReads(ctx context.Context, announcementID uuid.UUID) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("announcement_reads").
		Where(squirrel.Eq{"announcement_id": announcementID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count reads query: %w", err)
	}

	var n int64
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting reads: %w", err)
	}
	return n, nil
}
