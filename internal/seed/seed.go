package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/clubhub/internal/app/models"
	appRepos "github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/auth"
)

// UserStore is the account persistence the seeder needs
type UserStore interface {
	Create(ctx context.Context, user *appModels.User) error
	GetByEmail(ctx context.Context, email string) (*appModels.User, error)
	AddRole(ctx context.Context, userID uuid.UUID, role appModels.Role) error
}

// AdminAccount describes the default administrator
type AdminAccount struct {
	Email    string
	Password string
	Name     string
}

// CreateDefaultAdmin makes sure the default administrator exists and holds the Admin role.
// An empty password disables seeding.
func CreateDefaultAdmin(ctx context.Context, users UserStore, account AdminAccount, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	if email == "" || account.Password == "" {
		lgr.Info().Msg("Admin seed credentials not configured, skipping default admin")
		return nil
	}

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.HasRole(appModels.RoleAdmin) {
			lgr.Info().Str("email", email).Msg("Admin user already exists, skipping creation")
			return nil
		}
		if err := users.AddRole(ctx, existing.ID, appModels.RoleAdmin); err != nil {
			return fmt.Errorf("error granting admin role: %w", err)
		}
		lgr.Warn().Str("email", email).Msg("Existing account promoted to admin")
		return nil
	case !errors.Is(err, appRepos.ErrNotFound):
		return fmt.Errorf("error checking admin user: %w", err)
	}

	hash, err := auth.HashPassword(account.Password)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}

	name := strings.TrimSpace(account.Name)
	if name == "" {
		name = "System Administrator"
	}
	admin := &appModels.User{
		FullName:     name,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		Roles:        []appModels.Role{appModels.RoleAdmin, appModels.RoleMember},
	}
	admin.Stamp(time.Now(), nil)

	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, appRepos.ErrDuplicate) {
			// Another instance seeded concurrently
			return nil
		}
		return fmt.Errorf("error creating admin user: %w", err)
	}

	lgr.Info().Str("adminId", admin.ID.String()).Str("email", email).Msg("Default admin user created successfully")
	return nil
}
