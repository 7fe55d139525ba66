package services

import (
	"strings"
	"testing"

	"github.com/yigit/clubhub/internal/app/auth"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/repositories"
	pkgauth "github.com/yigit/clubhub/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

// account creates a user whose password is "old-password"
func (f *fixture) account(t *testing.T, name string) auth.Actor {
	t.Helper()
	prev := pkgauth.BcryptCost
	pkgauth.BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { pkgauth.BcryptCost = prev })

	hash, err := pkgauth.HashPassword("old-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &models.User{
		FullName:     name,
		Email:        name + "@uni.test",
		PasswordHash: hash,
		IsActive:     true,
		Roles:        []models.Role{models.RoleMember},
	}
	u.Stamp(now(), nil)
	if err := f.store.Users.Create(f.ctx, u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return f.refresh(t, u.ID)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	alice := f.account(t, "alice")

	resp, err := f.users.UpdateProfile(f.ctx, alice, &dto.UpdateProfileRequest{FullName: "  Alice Smith ", StudentNumber: "2024001"})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if resp.FullName != "Alice Smith" || resp.StudentNumber != "2024001" || resp.Email != "alice@uni.test" {
		t.Fatalf("profile = %+v", resp)
	}

	stored, err := f.store.Users.GetByID(f.ctx, alice.UserID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.FullName != "Alice Smith" || stored.UpdatedByID == nil || *stored.UpdatedByID != alice.UserID {
		t.Fatalf("stored = %+v", stored)
	}
	if len(stored.Roles) != 1 || stored.Roles[0] != models.RoleMember {
		t.Fatalf("roles changed by profile update: %v", stored.Roles)
	}

	tests := []struct {
		name  string
		actor auth.Actor
		req   *dto.UpdateProfileRequest
		kind  error
	}{
		{"anonymous", auth.Actor{}, &dto.UpdateProfileRequest{FullName: "X"}, errUnauthorized},
		{"blank name", alice, &dto.UpdateProfileRequest{FullName: "   "}, errValidation},
		{"long name", alice, &dto.UpdateProfileRequest{FullName: strings.Repeat("a", 151)}, errValidation},
		{"long student number", alice, &dto.UpdateProfileRequest{FullName: "Alice", StudentNumber: strings.Repeat("1", 21)}, errValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.users.UpdateProfile(f.ctx, tt.actor, tt.req)
			assertKind(t, err, tt.kind)
		})
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	alice := f.account(t, "alice")

	tests := []struct {
		name string
		req  *dto.ChangePasswordRequest
	}{
		{"wrong current password", &dto.ChangePasswordRequest{CurrentPassword: "guess", NewPassword: "new-password", ConfirmPassword: "new-password"}},
		{"confirmation mismatch", &dto.ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "new-password", ConfirmPassword: "new-passw0rd"}},
		{"too short", &dto.ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "short", ConfirmPassword: "short"}},
		{"too long", &dto.ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: strings.Repeat("p", 73), ConfirmPassword: strings.Repeat("p", 73)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.users.ChangePassword(f.ctx, alice, tt.req)
			assertKind(t, err, errValidation)
		})
	}

	err := f.users.ChangePassword(f.ctx, alice, &dto.ChangePasswordRequest{
		CurrentPassword: "old-password", NewPassword: "new-password", ConfirmPassword: "new-password",
	})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}

	stored, err := f.store.Users.GetByEmail(f.ctx, "alice@uni.test")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if pkgauth.CheckPassword(stored.PasswordHash, "old-password") || !pkgauth.CheckPassword(stored.PasswordHash, "new-password") {
		t.Fatalf("stored hash does not match the new password only")
	}
}

func TestAccountUpdateLostToConcurrentWrite(t *testing.T) {
	f := newFixture(t)
	alice := f.account(t, "alice")

	f.store.FailOn("users.update", repositories.ErrStaleRecord)
	_, err := f.users.UpdateProfile(f.ctx, alice, &dto.UpdateProfileRequest{FullName: "Alice Smith"})
	assertKind(t, err, errInvalidState)
	err = f.users.ChangePassword(f.ctx, alice, &dto.ChangePasswordRequest{
		CurrentPassword: "old-password", NewPassword: "new-password", ConfirmPassword: "new-password",
	})
	assertKind(t, err, errInvalidState)
	f.store.FailOn("users.update", nil)

	stored, err := f.store.Users.GetByID(f.ctx, alice.UserID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.FullName != "alice" || !pkgauth.CheckPassword(stored.PasswordHash, "old-password") {
		t.Fatalf("lost update was applied: %+v", stored)
	}
}
