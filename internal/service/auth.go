package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/praxis-legal/praxis/internal/config"
	"github.com/praxis-legal/praxis/internal/domain"
	"github.com/praxis-legal/praxis/internal/domain/user"
	"github.com/praxis-legal/praxis/internal/port/database"
)

// TokenClaims are the JWT claims carried by an access token.
type TokenClaims struct {
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Role               user.Role `json:"role"`
	TenantID           string    `json:"tenant_id"`
	MustChangePassword bool      `json:"must_change_password,omitempty"`
	jwt.RegisteredClaims
}

// User reconstructs a user value from the claims. The returned user has no
// password hash and reflects the state at token issue time.
func (c *TokenClaims) User() *user.User {
	return &user.User{
		ID:                 c.Subject,
		Email:              c.Email,
		Name:               c.Name,
		Role:               c.Role,
		TenantID:           c.TenantID,
		Enabled:            true,
		MustChangePassword: c.MustChangePassword,
	}
}

// AuthService handles authentication, JWT tokens, and API keys.
type AuthService struct {
	store  database.Store
	cfg    config.Auth
	secret []byte
	log    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store database.Store, cfg config.Auth, log *slog.Logger) *AuthService {
	return &AuthService{
		store:  store,
		cfg:    cfg,
		secret: []byte(cfg.JWTSecret),
		log:    log,
	}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, req user.CreateRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := user.User{
		Email:        strings.ToLower(req.Email),
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         req.Role,
		BarNumber:    req.BarNumber,
		Enabled:      true,
	}
	return s.store.CreateUser(ctx, u)
}

// Login authenticates a user and returns an access token plus the raw
// refresh token. The raw token is returned to the handler for the cookie
// and never stored; only its SHA-256 hash hits the database.
func (s *AuthService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	u, err := s.store.GetUserByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", errors.New("invalid credentials")
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if !u.Enabled {
		return nil, "", errors.New("account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", errors.New("invalid credentials")
	}

	return s.issueTokens(ctx, u)
}

// Refresh validates a raw refresh token, rotates it atomically, and issues
// a fresh access token.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*user.LoginResponse, string, error) {
	oldHash := hashSHA256(rawToken)

	rt, err := s.store.GetRefreshToken(ctx, oldHash)
	if err != nil {
		return nil, "", errors.New("invalid refresh token")
	}

	if time.Now().After(rt.ExpiresAt) {
		_ = s.store.DeleteRefreshToken(ctx, oldHash)
		return nil, "", errors.New("refresh token expired")
	}

	u, err := s.store.GetUser(ctx, rt.UserID)
	if err != nil {
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	if !u.Enabled {
		return nil, "", errors.New("account is disabled")
	}

	accessToken, err := s.signJWT(u)
	if err != nil {
		return nil, "", fmt.Errorf("sign jwt: %w", err)
	}

	newRaw, err := generateRandomToken(32)
	if err != nil {
		return nil, "", fmt.Errorf("generate refresh token: %w", err)
	}
	replacement := user.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		TokenHash: hashSHA256(newRaw),
		ExpiresAt: time.Now().Add(s.cfg.RefreshTokenTTL),
	}

	if err := s.store.RotateRefreshToken(ctx, oldHash, replacement); err != nil {
		return nil, "", fmt.Errorf("rotate refresh token: %w", err)
	}

	resp := &user.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.cfg.AccessTokenTTL.Seconds()),
		User:        *u,
	}
	return resp, newRaw, nil
}

// Logout deletes all refresh tokens for a user and revokes the current
// access token by JTI. Pass an empty jti to skip revocation.
func (s *AuthService) Logout(ctx context.Context, userID, jti string, tokenExpiry time.Time) error {
	if jti != "" {
		if err := s.store.RevokeToken(ctx, jti, tokenExpiry); err != nil {
			s.log.Warn("failed to revoke access token on logout", "jti", jti, "error", err)
		}
	}
	return s.store.DeleteUserRefreshTokens(ctx, userID)
}

// ValidateAccessToken verifies a JWT and returns its claims. Revocation is
// checked for tokens carrying a JTI and fails closed on store errors.
func (s *AuthService) ValidateAccessToken(ctx context.Context, tokenStr string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if claims.ID != "" {
		revoked, dbErr := s.store.IsTokenRevoked(ctx, claims.ID)
		if dbErr != nil {
			s.log.Error("token revocation check failed, denying token", "jti", claims.ID, "error", dbErr)
			return nil, errors.New("unable to verify token status")
		}
		if revoked {
			return nil, errors.New("token has been revoked")
		}
	}
	return claims, nil
}

// ValidateAPIKey looks up an API key by its SHA-256 hash and returns the
// owning user together with the key record.
func (s *AuthService) ValidateAPIKey(ctx context.Context, rawKey string) (*user.User, *user.APIKey, error) {
	if !strings.HasPrefix(rawKey, user.APIKeyPrefix) {
		return nil, nil, errors.New("invalid api key")
	}

	key, err := s.store.GetAPIKeyByHash(ctx, hashSHA256(rawKey))
	if err != nil {
		return nil, nil, errors.New("invalid api key")
	}
	if key.ExpiresAt != nil && time.Now().After(*key.ExpiresAt) {
		return nil, nil, errors.New("api key expired")
	}

	u, err := s.store.GetUser(ctx, key.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	if !u.Enabled {
		return nil, nil, errors.New("account is disabled")
	}

	if err := s.store.TouchAPIKey(ctx, key.ID); err != nil {
		s.log.Warn("failed to update api key last_used_at", "key_id", key.ID, "error", err)
	}
	return u, key, nil
}

// CreateAPIKey mints a new API key for a user. The plaintext secret is
// returned once and never stored.
func (s *AuthService) CreateAPIKey(ctx context.Context, userID string, req user.CreateAPIKeyRequest) (*user.CreateAPIKeyResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	raw, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	secret := user.APIKeyPrefix + raw

	var expiresAt *time.Time
	if req.ExpiresIn > 0 {
		t := time.Now().AddDate(0, 0, req.ExpiresIn)
		expiresAt = &t
	}

	key := user.APIKey{
		UserID:    userID,
		Name:      req.Name,
		KeyHash:   hashSHA256(secret),
		KeyPrefix: secret[:12],
		ExpiresAt: expiresAt,
	}

	created, err := s.store.CreateAPIKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}
	return &user.CreateAPIKeyResponse{Key: *created, Secret: secret}, nil
}

// ListAPIKeys returns all API keys owned by a user.
func (s *AuthService) ListAPIKeys(ctx context.Context, userID string) ([]user.APIKey, error) {
	return s.store.ListAPIKeys(ctx, userID)
}

// DeleteAPIKey removes an API key owned by the given user.
func (s *AuthService) DeleteAPIKey(ctx context.Context, id, userID string) error {
	return s.store.DeleteAPIKey(ctx, id, userID)
}

// ChangePassword verifies the old password, hashes the new one, clears the
// MustChangePassword flag, and invalidates all refresh tokens so other
// sessions have to log in again.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req user.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.OldPassword)); err != nil {
		return errors.New("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.UpdateUserPassword(ctx, userID, string(hash), false); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return s.store.DeleteUserRefreshTokens(ctx, userID)
}

// ResetPassword sets a new password without checking the old one and forces
// a change on next login. Used by the admin CLI.
func (s *AuthService) ResetPassword(ctx context.Context, userID, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdateUserPassword(ctx, userID, string(hash), true); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return s.store.DeleteUserRefreshTokens(ctx, userID)
}

// SeedAdmin creates the initial admin user when the tenant has no users.
// The generated password is logged once and must be changed at first login.
func (s *AuthService) SeedAdmin(ctx context.Context) error {
	n, err := s.store.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	password, err := generateRandomToken(12)
	if err != nil {
		return fmt.Errorf("generate password: %w", err)
	}

	u, err := s.Register(ctx, user.CreateRequest{
		Email:    s.cfg.SeedAdminEmail,
		Name:     "Admin",
		Password: password,
		Role:     user.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if err := s.store.UpdateUserPassword(ctx, u.ID, u.PasswordHash, true); err != nil {
		return fmt.Errorf("set must_change_password: %w", err)
	}

	s.log.Info("seeded admin user, change the password at first login",
		"email", s.cfg.SeedAdminEmail, "password", password)
	return nil
}

// StartTokenCleanup runs a background loop that purges expired revocation
// rows. It stops when ctx is cancelled.
func (s *AuthService) StartTokenCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.store.PurgeExpiredRevocations(ctx)
				if err != nil {
					s.log.Warn("failed to purge expired revocations", "error", err)
				} else if n > 0 {
					s.log.Info("purged expired revocations", "count", n)
				}
			}
		}
	}()
}

func (s *AuthService) issueTokens(ctx context.Context, u *user.User) (*user.LoginResponse, string, error) {
	accessToken, err := s.signJWT(u)
	if err != nil {
		return nil, "", fmt.Errorf("sign jwt: %w", err)
	}

	raw, err := generateRandomToken(32)
	if err != nil {
		return nil, "", fmt.Errorf("generate refresh token: %w", err)
	}
	rt := user.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		TokenHash: hashSHA256(raw),
		ExpiresAt: time.Now().Add(s.cfg.RefreshTokenTTL),
	}
	if err := s.store.CreateRefreshToken(ctx, rt); err != nil {
		return nil, "", fmt.Errorf("store refresh token: %w", err)
	}

	resp := &user.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.cfg.AccessTokenTTL.Seconds()),
		User:        *u,
	}
	return resp, raw, nil
}

func (s *AuthService) signJWT(u *user.User) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Email:              u.Email,
		Name:               u.Name,
		Role:               u.Role,
		TenantID:           u.TenantID,
		MustChangePassword: u.MustChangePassword,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func hashSHA256(data string) string {
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:])
}

func generateRandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
