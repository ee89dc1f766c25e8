package service

import (
	"context"
	"fmt"

	"github.com/praxis-legal/praxis/internal/domain"
	"github.com/praxis-legal/praxis/internal/domain/contract"
	"github.com/praxis-legal/praxis/internal/domain/matter"
	"github.com/praxis-legal/praxis/internal/port/database"
)

// ContractService handles contract business logic.
type ContractService struct {
	store database.Store
}

// NewContractService creates a new ContractService.
func NewContractService(store database.Store) *ContractService {
	return &ContractService{store: store}
}

// List returns contracts, optionally filtered by matter.
func (s *ContractService) List(ctx context.Context, matterID string) ([]contract.Contract, error) {
	return s.store.ListContracts(ctx, matterID)
}

// Get returns a contract by ID.
func (s *ContractService) Get(ctx context.Context, id string) (*contract.Contract, error) {
	return s.store.GetContract(ctx, id)
}

// Create validates and creates a new contract. The matter must exist
// and must not be closed.
func (s *ContractService) Create(ctx context.Context, req contract.CreateRequest) (*contract.Contract, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	m, err := s.store.GetMatter(ctx, req.MatterID)
	if err != nil {
		return nil, fmt.Errorf("get matter: %w", err)
	}
	if m.Status == matter.StatusClosed {
		return nil, fmt.Errorf("%w: matter %s is closed", domain.ErrValidation, m.ID)
	}
	return s.store.CreateContract(ctx, req)
}

// Update applies partial updates, including status transitions, under
// optimistic locking.
func (s *ContractService) Update(ctx context.Context, id string, req contract.UpdateRequest) (*contract.Contract, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	return s.store.UpdateContract(ctx, id, req)
}

// Delete removes a contract and its analyses.
func (s *ContractService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteContract(ctx, id)
}
