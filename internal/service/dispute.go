package service

import (
	"context"
	"fmt"

	"github.com/praxis-legal/praxis/internal/domain"
	"github.com/praxis-legal/praxis/internal/domain/dispute"
	"github.com/praxis-legal/praxis/internal/port/database"
)

// DisputeService handles dispute business logic.
type DisputeService struct {
	store database.Store
}

// NewDisputeService creates a new DisputeService.
func NewDisputeService(store database.Store) *DisputeService {
	return &DisputeService{store: store}
}

// List returns disputes, optionally filtered by matter.
func (s *DisputeService) List(ctx context.Context, matterID string) ([]dispute.Dispute, error) {
	return s.store.ListDisputes(ctx, matterID)
}

// Get returns a dispute by ID.
func (s *DisputeService) Get(ctx context.Context, id string) (*dispute.Dispute, error) {
	return s.store.GetDispute(ctx, id)
}

// Create validates and creates a new dispute under an existing matter.
func (s *DisputeService) Create(ctx context.Context, req dispute.CreateRequest) (*dispute.Dispute, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	if _, err := s.store.GetMatter(ctx, req.MatterID); err != nil {
		return nil, fmt.Errorf("get matter: %w", err)
	}
	return s.store.CreateDispute(ctx, req)
}

// Update applies partial updates under optimistic locking.
func (s *DisputeService) Update(ctx context.Context, id string, req dispute.UpdateRequest) (*dispute.Dispute, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	return s.store.UpdateDispute(ctx, id, req)
}

// Delete removes a dispute.
func (s *DisputeService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteDispute(ctx, id)
}
