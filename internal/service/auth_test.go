package service

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/praxis-legal/praxis/internal/config"
	"github.com/praxis-legal/praxis/internal/domain/user"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestAuthService(store *mockStore) *AuthService {
	cfg := config.Auth{
		JWTSecret:       "test-secret-key-must-be-long-enough",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Issuer:          "praxis-core",
		Audience:        "praxis",
		BcryptCost:      4, // low cost for fast tests
		SeedAdminEmail:  "admin@test.local",
	}
	return NewAuthService(store, cfg, discardLogger())
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := t.Context()

	u, err := svc.Register(ctx, user.CreateRequest{
		Email:    "lawyer@example.com",
		Name:     "Test Lawyer",
		Password: "Password123",
		Role:     user.RoleLawyer,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "lawyer@example.com" {
		t.Errorf("email = %q, want lawyer@example.com", u.Email)
	}
	if u.PasswordHash == "Password123" {
		t.Error("password stored in plaintext")
	}

	resp, rawRefresh, err := svc.Login(ctx, user.LoginRequest{
		Email:    "lawyer@example.com",
		Password: "Password123",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("access token is empty")
	}
	if rawRefresh == "" {
		t.Error("refresh token is empty")
	}
	if len(store.refreshTokens) != 1 {
		t.Fatalf("refresh tokens stored = %d, want 1", len(store.refreshTokens))
	}
	if store.refreshTokens[0].TokenHash == rawRefresh {
		t.Error("refresh token stored unhashed")
	}
}

func TestAuthService_InvalidLogin(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := t.Context()

	if _, err := svc.Register(ctx, user.CreateRequest{
		Email:    "lawyer@example.com",
		Name:     "Test",
		Password: "Password123",
		Role:     user.RoleViewer,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, user.LoginRequest{
		Email:    "lawyer@example.com",
		Password: "wrongpassword",
	}); err == nil {
		t.Fatal("expected error for wrong password")
	}

	if _, _, err := svc.Login(ctx, user.LoginRequest{
		Email:    "nobody@example.com",
		Password: "Password123",
	}); err == nil {
		t.Fatal("expected error for non-existent user")
	}
}

func TestAuthService_DisabledAccount(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := t.Context()

	u, err := svc.Register(ctx, user.CreateRequest{
		Email:    "gone@example.com",
		Name:     "Gone",
		Password: "Password123",
		Role:     user.RoleViewer,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	disabled := false
	if _, err := store.UpdateUser(ctx, u.ID, user.UpdateRequest{Enabled: &disabled}); err != nil {
		t.Fatalf("disable user: %v", err)
	}

	if _, _, err := svc.Login(ctx, user.LoginRequest{
		Email:    "gone@example.com",
		Password: "Password123",
	}); err == nil {
		t.Fatal("expected error for disabled account")
	}
}

func TestAuthService_ValidateAccessToken(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := t.Context()

	u, err := svc.Register(ctx, user.CreateRequest{
		Email:    "jwt@example.com",
		Name:     "JWT User",
		Password: "Password123",
		Role:     user.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, _, err := svc.Login(ctx, user.LoginRequest{
		Email:    "jwt@example.com",
		Password: "Password123",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, resp.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != u.ID {
		t.Errorf("subject = %q, want %q", claims.Subject, u.ID)
	}
	if claims.Role != user.RoleAdmin {
		t.Errorf("role = %q, want admin", claims.Role)
	}
	if claims.User().Email != "jwt@example.com" {
		t.Errorf("claims user email = %q", claims.User().Email)
	}

	if _, err := svc.ValidateAccessToken(ctx, resp.AccessToken+"x"); err == nil {
		t.Fatal("expected error for tampered token")
	}
}

func TestAuthService_RevokedToken(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := t.Context()

	u, err := svc.Register(ctx, user.CreateRequest{
		Email:    "revoke@example.com",
		Name:     "Revoke",
		Password: "Password123",
		Role:     user.RoleLawyer,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, _, err := svc.Login(ctx, user.LoginRequest{Email: "revoke@example.com", Password: "Password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, resp.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if err := svc.Logout(ctx, u.ID, claims.ID, claims.ExpiresAt.Time); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.ValidateAccessToken(ctx, resp.AccessToken); err == nil {
		t.Fatal("expected error for revoked token")
	}
	if len(store.refreshTokens) != 0 {
		t.Errorf("refresh tokens remaining = %d, want 0", len(store.refreshTokens))
	}
}

func TestAuthService_RevocationCheckFailsClosed(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := t.Context()

	if _, err := svc.Register(ctx, user.CreateRequest{
		Email:    "closed@example.com",
		Name:     "Closed",
		Password: "Password123",
		Role:     user.RoleViewer,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	resp, _, err := svc.Login(ctx, user.LoginRequest{Email: "closed@example.com", Password: "Password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	store.isRevokedErr = errors.New("db down")
	if _, err := svc.ValidateAccessToken(ctx, resp.AccessToken); err == nil {
		t.Fatal("expected error when revocation check is unavailable")
	}
}

func TestAuthService_RefreshRotation(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := t.Context()

	if _, err := svc.Register(ctx, user.CreateRequest{
		Email:    "rotate@example.com",
		Name:     "Rotate",
		Password: "Password123",
		Role:     user.RoleLawyer,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, rawRefresh, err := svc.Login(ctx, user.LoginRequest{Email: "rotate@example.com", Password: "Password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	resp, newRefresh, err := svc.Refresh(ctx, rawRefresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("access token is empty")
	}
	if newRefresh == rawRefresh {
		t.Error("refresh token was not rotated")
	}

	// The old token must be dead after rotation.
	if _, _, err := svc.Refresh(ctx, rawRefresh); err == nil {
		t.Fatal("expected error reusing rotated refresh token")
	}
	// The new one still works.
	if _, _, err := svc.Refresh(ctx, newRefresh); err != nil {
		t.Fatalf("refresh with rotated token: %v", err)
	}
}

func TestAuthService_APIKeyLifecycle(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := t.Context()

	u, err := svc.Register(ctx, user.CreateRequest{
		Email:    "keys@example.com",
		Name:     "Keys",
		Password: "Password123",
		Role:     user.RoleLawyer,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.CreateAPIKey(ctx, u.ID, user.CreateAPIKeyRequest{Name: "ci"})
	if err != nil {
		t.Fatalf("create api key: %v", err)
	}
	if len(resp.Secret) < 12 || resp.Secret[:4] != user.APIKeyPrefix {
		t.Errorf("secret = %q, want %q prefix", resp.Secret, user.APIKeyPrefix)
	}
	if resp.Key.KeyHash == resp.Secret {
		t.Error("api key stored unhashed")
	}

	gotUser, gotKey, err := svc.ValidateAPIKey(ctx, resp.Secret)
	if err != nil {
		t.Fatalf("validate api key: %v", err)
	}
	if gotUser.ID != u.ID {
		t.Errorf("user = %q, want %q", gotUser.ID, u.ID)
	}
	if gotKey.LastUsedAt == nil {
		t.Error("last_used_at not updated")
	}

	if _, _, err := svc.ValidateAPIKey(ctx, "pxk_deadbeef"); err == nil {
		t.Fatal("expected error for unknown key")
	}
	if _, _, err := svc.ValidateAPIKey(ctx, "not-a-key"); err == nil {
		t.Fatal("expected error for missing prefix")
	}

	if err := svc.DeleteAPIKey(ctx, resp.Key.ID, u.ID); err != nil {
		t.Fatalf("delete api key: %v", err)
	}
	if _, _, err := svc.ValidateAPIKey(ctx, resp.Secret); err == nil {
		t.Fatal("expected error after key deletion")
	}
}

func TestAuthService_ExpiredAPIKey(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := t.Context()

	u, err := svc.Register(ctx, user.CreateRequest{
		Email:    "exp@example.com",
		Name:     "Exp",
		Password: "Password123",
		Role:     user.RoleLawyer,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.CreateAPIKey(ctx, u.ID, user.CreateAPIKeyRequest{Name: "old", ExpiresIn: 1})
	if err != nil {
		t.Fatalf("create api key: %v", err)
	}

	past := time.Now().Add(-time.Hour)
	store.apiKeys[0].ExpiresAt = &past

	if _, _, err := svc.ValidateAPIKey(ctx, resp.Secret); err == nil {
		t.Fatal("expected error for expired key")
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := t.Context()

	u, err := svc.Register(ctx, user.CreateRequest{
		Email:    "change@example.com",
		Name:     "Change",
		Password: "Password123",
		Role:     user.RoleLawyer,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login(ctx, user.LoginRequest{Email: "change@example.com", Password: "Password123"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.ChangePassword(ctx, u.ID, user.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "Newpassword456",
	}); err == nil {
		t.Fatal("expected error for wrong old password")
	}

	if err := svc.ChangePassword(ctx, u.ID, user.ChangePasswordRequest{
		OldPassword: "Password123",
		NewPassword: "Newpassword456",
	}); err != nil {
		t.Fatalf("change password: %v", err)
	}

	// Existing sessions are invalidated.
	if len(store.refreshTokens) != 0 {
		t.Errorf("refresh tokens remaining = %d, want 0", len(store.refreshTokens))
	}

	if _, _, err := svc.Login(ctx, user.LoginRequest{Email: "change@example.com", Password: "Password123"}); err == nil {
		t.Fatal("old password still accepted")
	}
	if _, _, err := svc.Login(ctx, user.LoginRequest{Email: "change@example.com", Password: "Newpassword456"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestAuthService_SeedAdmin(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := t.Context()

	if err := svc.SeedAdmin(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(store.users) != 1 {
		t.Fatalf("users = %d, want 1", len(store.users))
	}
	admin := store.users[0]
	if admin.Email != "admin@test.local" {
		t.Errorf("email = %q", admin.Email)
	}
	if admin.Role != user.RoleAdmin {
		t.Errorf("role = %q, want admin", admin.Role)
	}
	if !admin.MustChangePassword {
		t.Error("seeded admin not forced to change password")
	}

	// Idempotent: a second call must not add another user.
	if err := svc.SeedAdmin(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if len(store.users) != 1 {
		t.Errorf("users after second seed = %d, want 1", len(store.users))
	}
}
