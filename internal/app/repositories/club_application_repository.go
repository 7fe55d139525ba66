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

var applicationColumns = columns(
	"club_name", "club_name_key", "mission", "vision", "planned_activities",
	"estimated_member_count", "advisor_name", "advisor_email", "resource_needs",
	"applicant_user_id", "status", "reviewed_by_id", "reviewed_at", "coordinator_note",
)

// ClubApplicationRepository handles club application persistence
type ClubApplicationRepository struct {
	base
}

// NewClubApplicationRepository creates a new ClubApplicationRepository
func NewClubApplicationRepository(database *db.PostgresDB) *ClubApplicationRepository {
	return &ClubApplicationRepository{base: newBase(database)}
}

func applicationDest(a *models.ClubApplication) []interface{} {
	return append(auditDest(&a.Audit),
		&a.ClubName, &a.ClubNameKey, &a.Mission, &a.Vision, &a.PlannedActivities,
		&a.EstimatedMemberCount, &a.AdvisorName, &a.AdvisorEmail, &a.ResourceNeeds,
		&a.ApplicantUserID, &a.Status, &a.ReviewedByID, &a.ReviewedAt, &a.CoordinatorNote,
	)
}

// Create inserts a pending application; a second open application for the same name yields ErrDuplicate
func (r *ClubApplicationRepository) Create(ctx context.Context, app *models.ClubApplication) error {
	values := append(auditValues(&app.Audit),
		app.ClubName, app.ClubNameKey, app.Mission, app.Vision, app.PlannedActivities,
		app.EstimatedMemberCount, app.AdvisorName, app.AdvisorEmail, app.ResourceNeeds,
		app.ApplicantUserID, app.Status, app.ReviewedByID, app.ReviewedAt, app.CoordinatorNote,
	)
	sql, args, err := r.sb.Insert("club_applications").Columns(applicationColumns...).Values(values...).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create application query: %w", err)
	}

	if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "uq_club_applications_open_name") {
			return ErrDuplicate
		}
		logger.Error().Err(err).Str("clubName", app.ClubName).Msg("Error creating club application")
		return fmt.Errorf("error creating club application: %w", err)
	}
	return nil
}

// GetByID retrieves an application by ID
func (r *ClubApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ClubApplication, error) {
	sql, args, err := r.sb.Select(applicationColumns...).
		From("club_applications").
		Where(squirrel.Eq{"id": id}).
		Where(notDeleted("")).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	app := &models.ClubApplication{}
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(applicationDest(app)...); err != nil {
		return nil, mapNoRows(err)
	}
	return app, nil
}

// ExistsOpenName reports whether a pending or approved application already uses the folded name
func (r *ClubApplicationRepository) ExistsOpenName(ctx context.Context, nameKey string) (bool, error) {
	sql, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("club_applications").
		Where(squirrel.Eq{
			"club_name_key": nameKey,
			"status":        []models.ApprovalStatus{models.ApprovalPending, models.ApprovalApproved},
		}).
		Where(notDeleted("")).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build application name query: %w", err)
	}

	var exists bool
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking application name: %w", err)
	}
	return exists, nil
}

// UpdateReview persists a review outcome if the row is still pending at the expected version
func (r *ClubApplicationRepository) UpdateReview(ctx context.Context, app *models.ClubApplication, expectedVersion int) error {
	sql, args, err := r.sb.Update("club_applications").
		SetMap(map[string]interface{}{
			"status":           app.Status,
			"reviewed_by_id":   app.ReviewedByID,
			"reviewed_at":      app.ReviewedAt,
			"coordinator_note": app.CoordinatorNote,
			"updated_at":       app.UpdatedAt,
			"updated_by_id":    app.UpdatedByID,
			"version":          squirrel.Expr("version + 1"),
		}).
		Where(squirrel.Eq{"id": app.ID, "version": expectedVersion, "status": models.ApprovalPending}).
		Where(notDeleted("")).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build review application query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("applicationId", app.ID.String()).Msg("Error updating club application")
		return fmt.Errorf("error updating club application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleRecord
	}
	app.Version = expectedVersion + 1
	return nil
}

// List returns a page of applications, newest first, and the total count
func (r *ClubApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter, offset uint64, limit int) ([]*models.ClubApplication, int64, error) {
	where := squirrel.And{notDeleted("")}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}
	if filter.ApplicantID != nil {
		where = append(where, squirrel.Eq{"applicant_user_id": *filter.ApplicantID})
	}
	if filter.Search != "" {
		where = append(where, searchLike(filter.Search, "club_name", "mission"))
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("club_applications").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count applications query: %w", err)
	}
	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting applications: %w", err)
	}

	q := r.sb.Select(applicationColumns...).From("club_applications").Where(where).OrderBy("created_at DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(uint64(limit))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list applications query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list applications query")
		return nil, 0, fmt.Errorf("error querying applications: %w", err)
	}
	defer rows.Close()

	apps := []*models.ClubApplication{}
	for rows.Next() {
		app := &models.ClubApplication{}
		if err := rows.Scan(applicationDest(app)...); err != nil {
			return nil, 0, fmt.Errorf("error scanning application row: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating application rows: %w", err)
	}
	return apps, total, nil
}
