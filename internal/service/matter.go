package service

import (
	"context"
	"fmt"

	"github.com/praxis-legal/praxis/internal/domain"
	"github.com/praxis-legal/praxis/internal/domain/matter"
	"github.com/praxis-legal/praxis/internal/port/database"
)

// MatterService handles matter business logic.
type MatterService struct {
	store database.Store
}

// NewMatterService creates a new MatterService.
func NewMatterService(store database.Store) *MatterService {
	return &MatterService{store: store}
}

// List returns matters, optionally filtered by client.
func (s *MatterService) List(ctx context.Context, clientID string) ([]matter.Matter, error) {
	return s.store.ListMatters(ctx, clientID)
}

// Get returns a matter by ID.
func (s *MatterService) Get(ctx context.Context, id string) (*matter.Matter, error) {
	return s.store.GetMatter(ctx, id)
}

// Create validates and creates a new matter. The client must exist and
// must not be archived.
func (s *MatterService) Create(ctx context.Context, req matter.CreateRequest) (*matter.Matter, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	c, err := s.store.GetClient(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if c.Archived {
		return nil, fmt.Errorf("%w: client %s is archived", domain.ErrValidation, c.ID)
	}
	return s.store.CreateMatter(ctx, req)
}

// Update applies partial updates, including status transitions, under
// optimistic locking.
func (s *MatterService) Update(ctx context.Context, id string, req matter.UpdateRequest) (*matter.Matter, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	return s.store.UpdateMatter(ctx, id, req)
}

// Delete removes a matter and its dependent resources.
func (s *MatterService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteMatter(ctx, id)
}
