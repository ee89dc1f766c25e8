package service

import (
	"context"
	"fmt"

	"github.com/praxis-legal/praxis/internal/domain"
	"github.com/praxis-legal/praxis/internal/domain/user"
	"github.com/praxis-legal/praxis/internal/port/database"
)

// UserService handles admin user management. Registration and password
// operations live on AuthService.
type UserService struct {
	store database.Store
}

// NewUserService creates a new UserService.
func NewUserService(store database.Store) *UserService {
	return &UserService{store: store}
}

// List returns all users in the tenant.
func (s *UserService) List(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsers(ctx)
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*user.User, error) {
	return s.store.GetUser(ctx, id)
}

// Update applies partial updates to a user.
func (s *UserService) Update(ctx context.Context, id string, req user.UpdateRequest) (*user.User, error) {
	if req.Role != "" && !user.ValidRoles[req.Role] {
		return nil, fmt.Errorf("%w: invalid role %q", domain.ErrValidation, req.Role)
	}
	return s.store.UpdateUser(ctx, id, req)
}

// Delete removes a user and invalidates their sessions.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteUserRefreshTokens(ctx, id); err != nil {
		return fmt.Errorf("delete refresh tokens: %w", err)
	}
	return s.store.DeleteUser(ctx, id)
}
