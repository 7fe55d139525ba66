package seed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/pkg/auth"
	"github.com/yigit/clubhub/internal/testkit/memstore"
)

func TestCreateDefaultAdmin(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	account := AdminAccount{Email: " Admin@ClubHub.local ", Password: "s3cret-pass"}

	for i := 0; i < 2; i++ {
		if err := CreateDefaultAdmin(ctx, store.Users, account, zerolog.Nop()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if n := store.Counts()["users"]; n != 1 {
		t.Fatalf("users = %d, want 1", n)
	}
	admin, err := store.Users.GetByEmail(ctx, "admin@clubhub.local")
	if err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if !admin.HasRole(models.RoleAdmin) || !admin.IsActive {
		t.Fatalf("admin = %+v", admin)
	}
	if !auth.CheckPassword(admin.PasswordHash, "s3cret-pass") {
		t.Fatalf("stored hash does not match the configured password")
	}
	if admin.FullName != "System Administrator" {
		t.Fatalf("name = %q", admin.FullName)
	}
}

func TestCreateDefaultAdminPromotesExisting(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	u := &models.User{FullName: "Dana", Email: "dana@uni.test", IsActive: true, Roles: []models.Role{models.RoleMember}}
	u.Stamp(time.Now(), nil)
	if err := store.Users.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := CreateDefaultAdmin(ctx, store.Users, AdminAccount{Email: "dana@uni.test", Password: "whatever1"}, zerolog.Nop()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := store.Users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.HasRole(models.RoleAdmin) {
		t.Fatalf("existing account not promoted: %+v", got.Roles)
	}
}

func TestCreateDefaultAdminWithoutPassword(t *testing.T) {
	store := memstore.New()
	if err := CreateDefaultAdmin(context.Background(), store.Users, AdminAccount{Email: "admin@clubhub.local"}, zerolog.Nop()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n := store.Counts()["users"]; n != 0 {
		t.Fatalf("users = %d, want 0", n)
	}
}
