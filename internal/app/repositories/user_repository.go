package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/db"
	"github.com/yigit/clubhub/internal/pkg/dberrors"
	"github.com/yigit/clubhub/internal/pkg/logger"
)

var userColumns = columns("full_name", "email", "student_number", "password_hash", "is_active")

// UserRepository handles user and role persistence
type UserRepository struct {
	base
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(database *db.PostgresDB) *UserRepository {
	return &UserRepository{base: newBase(database)}
}

// Create inserts a user together with its roles
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	values := append(auditValues(&user.Audit), user.FullName, strings.ToLower(user.Email), user.StudentNumber, user.PasswordHash, user.IsActive)
	sql, args, err := r.sb.Insert("users").Columns(userColumns...).Values(values...).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	return r.db.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
			if dberrors.IsUniqueViolation(err) {
				return ErrDuplicate
			}
			logger.Error().Err(err).Str("email", user.Email).Msg("Error creating user")
			return fmt.Errorf("error creating user: %w", err)
		}
		for _, role := range user.Roles {
			if err := r.AddRole(ctx, user.ID, role); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(where).
		Where(notDeleted("")).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user := &models.User{}
	dest := append(auditDest(&user.Audit), &user.FullName, &user.Email, &user.StudentNumber, &user.PasswordHash, &user.IsActive)
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(dest...); err != nil {
		return nil, mapNoRows(err)
	}

	roles, err := r.ListRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return user, nil
}

// GetByID retrieves a user with roles by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user with roles by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Expr("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))))
}

// Update persists profile and credential changes at the expected version
func (r *UserRepository) Update(ctx context.Context, user *models.User, expectedVersion int) error {
	sql, args, err := r.sb.Update("users").
		SetMap(map[string]interface{}{
			"full_name":      user.FullName,
			"student_number": user.StudentNumber,
			"password_hash":  user.PasswordHash,
			"updated_at":     user.UpdatedAt,
			"updated_by_id":  user.UpdatedByID,
			"version":        squirrel.Expr("version + 1"),
		}).
		Where(squirrel.Eq{"id": user.ID, "version": expectedVersion}).
		Where(notDeleted("")).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("userId", user.ID.String()).Msg("Error updating user")
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleRecord
	}
	user.Version = expectedVersion + 1
	return nil
}

// ListRoles returns the roles assigned to a user
func (r *UserRepository) ListRoles(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	sql, args, err := r.sb.Select("role").
		From("user_roles").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("role").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list roles query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying roles: %w", err)
	}
	defer rows.Close()

	roles := []models.Role{}
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("error scanning role row: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// AddRole grants a role; granting an already held role is a no-op
func (r *UserRepository) AddRole(ctx context.Context, userID uuid.UUID, role models.Role) error {
	sql, args, err := r.sb.Insert("user_roles").
		Columns("user_id", "role").
		Values(userID, role).
		Suffix("ON CONFLICT (user_id, role) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build add role query: %w", err)
	}

	if _, err := r.db.Conn(ctx).Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("userId", userID.String()).Str("role", string(role)).Msg("Error adding role")
		return fmt.Errorf("error adding role: %w", err)
	}
	return nil
}

// HasRole reports whether the user holds the role
func (r *UserRepository) HasRole(ctx context.Context, userID uuid.UUID, role models.Role) (bool, error) {
	sql, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("user_roles").
		Where(squirrel.Eq{"user_id": userID, "role": role}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build has role query: %w", err)
	}

	var exists bool
	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking role: %w", err)
	}
	return exists, nil
}
