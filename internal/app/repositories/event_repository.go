package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/db"
	"github.com/yigit/clubhub/internal/pkg/logger"
)

var eventColumns = columns("club_id", "title", "description", "event_date", "estimated_budget", "status")

// EventRepository handles event and event approval persistence
type EventRepository struct {
	base
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(database *db.PostgresDB) *EventRepository {
	return &EventRepository{base: newBase(database)}
}

func eventDest(e *models.Event, club *models.Club) []interface{} {
	dest := append(auditDest(&e.Audit), &e.ClubID, &e.Title, &e.Description, &e.EventDate, &e.EstimatedBudget, &e.Status)
	if club != nil {
		dest = append(dest, &club.Name)
	}
	return dest
}

// Create inserts an event
func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	values := append(auditValues(&e.Audit), e.ClubID, e.Title, e.Description, e.EventDate.UTC(), e.EstimatedBudget, e.Status)
	sql, args, err := r.sb.Insert("events").Columns(eventColumns...).Values(values...).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create event query: %w", err)
	}

	if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("clubId", e.ClubID.String()).Msg("Error creating event")
		return fmt.Errorf("error creating event: %w", err)
	}
	return nil
}

func (r *EventRepository) selectWithClub() squirrel.SelectBuilder {
	cols := append(qualified("e", eventColumns), "c.name")
	return r.sb.Select(cols...).
		From("events e").
		Join("clubs c ON c.id = e.club_id")
}

// GetByID retrieves an event with its club name
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	sql, args, err := r.selectWithClub().
		Where(squirrel.Eq{"e.id": id}).
		Where(notDeleted("e")).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get event query: %w", err)
	}

	e := &models.Event{Club: &models.Club{}}
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(eventDest(e, e.Club)...); err != nil {
		return nil, mapNoRows(err)
	}
	e.Club.ID = e.ClubID
	return e, nil
}

// UpdateStatus persists a review outcome if the event is still pending at the expected version
func (r *EventRepository) UpdateStatus(ctx context.Context, e *models.Event, expectedVersion int) error {
	sql, args, err := r.sb.Update("events").
		SetMap(map[string]interface{}{
			"status":        e.Status,
			"updated_at":    e.UpdatedAt,
			"updated_by_id": e.UpdatedByID,
			"version":       squirrel.Expr("version + 1"),
		}).
		Where(squirrel.Eq{"id": e.ID, "version": expectedVersion, "status": models.ApprovalPending}).
		Where(notDeleted("")).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update event query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("eventId", e.ID.String()).Msg("Error updating event")
		return fmt.Errorf("error updating event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleRecord
	}
	e.Version = expectedVersion + 1
	return nil
}

// AppendApproval records one immutable review action
func (r *EventRepository) AppendApproval(ctx context.Context, a *models.EventApproval) error {
	sql, args, err := r.sb.Insert("event_approvals").
		Columns("id", "event_id", "reviewer_id", "status", "comment", "created_at").
		Values(a.ID, a.EventID, a.ReviewerID, a.Status, a.Comment, a.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build append approval query: %w", err)
	}

	if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("eventId", a.EventID.String()).Msg("Error appending event approval")
		return fmt.Errorf("error appending event approval: %w", err)
	}
	return nil
}

// ListApprovals returns the review history of an event, newest first
func (r *EventRepository) ListApprovals(ctx context.Context, eventID uuid.UUID) ([]models.EventApproval, error) {
	sql, args, err := r.sb.Select("id", "event_id", "reviewer_id", "status", "comment", "created_at").
		From("event_approvals").
		Where(squirrel.Eq{"event_id": eventID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list approvals query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying event approvals: %w", err)
	}
	defer rows.Close()

	history := []models.EventApproval{}
	for rows.Next() {
		var a models.EventApproval
		if err := rows.Scan(&a.ID, &a.EventID, &a.ReviewerID, &a.Status, &a.Comment, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning event approval row: %w", err)
		}
		history = append(history, a)
	}
	return history, rows.Err()
}

// List returns a page of events ordered by event date and the total count
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter, offset uint64, limit int) ([]*models.Event, int64, error) {
	where := squirrel.And{notDeleted("e")}
	if !filter.Scope.All {
		visible := squirrel.Or{squirrel.Eq{"e.status": models.ApprovalApproved}}
		if len(filter.Scope.ClubIDs) > 0 {
			visible = append(visible, squirrel.Eq{"e.club_id": filter.Scope.ClubIDs})
		}
		where = append(where, visible)
	}
	if filter.ClubID != nil {
		where = append(where, squirrel.Eq{"e.club_id": *filter.ClubID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"e.status": *filter.Status})
	}
	if filter.FromDate != nil {
		where = append(where, squirrel.GtOrEq{"e.event_date": filter.FromDate.UTC()})
	}
	if filter.Search != "" {
		where = append(where, searchLike(filter.Search, "e.title", "e.description"))
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").
		From("events e").
		Join("clubs c ON c.id = e.club_id").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count events query: %w", err)
	}
	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting events: %w", err)
	}

	q := r.selectWithClub().Where(where).OrderBy("e.event_date ASC", "e.id ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(uint64(limit))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list events query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list events query")
		return nil, 0, fmt.Errorf("error querying events: %w", err)
	}
	defer rows.Close()

	events := []*models.Event{}
	for rows.Next() {
		e := &models.Event{Club: &models.Club{}}
		if err := rows.Scan(eventDest(e, e.Club)...); err != nil {
			return nil, 0, fmt.Errorf("error scanning event row: %w", err)
		}
		e.Club.ID = e.ClubID
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, total, nil
}
