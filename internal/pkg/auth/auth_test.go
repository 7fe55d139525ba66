package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "clubhub-test",
	})
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestService()
	user := &models.User{Email: "ayse@uni.edu.tr", Roles: []models.Role{models.RolePresident, models.RoleMember}}
	user.ID = uuid.New()

	token, expiresIn, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if expiresIn != 3600 {
		t.Fatalf("expiresIn = %d", expiresIn)
	}

	claims, err := svc.ValidateAndExtractClaims(token)
	if err != nil {
		t.Fatalf("ValidateAndExtractClaims: %v", err)
	}
	if claims.UserID != user.ID || len(claims.Roles) != 2 || claims.Roles[0] != "PRESIDENT" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestExpiredToken(t *testing.T) {
	svc := newTestService()
	user := &models.User{Email: "a@b.c"}
	user.ID = uuid.New()

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	svc.now = time.Now

	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	user := &models.User{Email: "a@b.c"}
	user.ID = uuid.New()
	token, _, _ := newTestService().GenerateAccessToken(user)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "clubhub-test"})
	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer a.b.c", "a.b.c", false},
		{"a.b.c", "a.b.c", false},
		{"", "", true},
		{"Basic xyz", "", true},
	}
	for _, tt := range tests {
		got, err := ExtractBearerToken(tt.header)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("ExtractBearerToken(%q) = %q, %v", tt.header, got, err)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "s3cret-pass") || CheckPassword(hash, "wrong") {
		t.Fatal("password check mismatch")
	}
	if _, err := HashPassword(strings.Repeat("x", 73)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}
