package service

import (
	"context"
	"fmt"

	"github.com/praxis-legal/praxis/internal/domain"
	"github.com/praxis-legal/praxis/internal/domain/client"
	"github.com/praxis-legal/praxis/internal/port/database"
)

// ClientService handles client (the firm's customer) business logic.
type ClientService struct {
	store database.Store
}

// NewClientService creates a new ClientService.
func NewClientService(store database.Store) *ClientService {
	return &ClientService{store: store}
}

// List returns all clients in the tenant.
func (s *ClientService) List(ctx context.Context) ([]client.Client, error) {
	return s.store.ListClients(ctx)
}

// Get returns a client by ID.
func (s *ClientService) Get(ctx context.Context, id string) (*client.Client, error) {
	return s.store.GetClient(ctx, id)
}

// Create validates and creates a new client.
func (s *ClientService) Create(ctx context.Context, req client.CreateRequest) (*client.Client, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	return s.store.CreateClient(ctx, req)
}

// Update applies partial updates under optimistic locking.
func (s *ClientService) Update(ctx context.Context, id string, req client.UpdateRequest) (*client.Client, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	return s.store.UpdateClient(ctx, id, req)
}

// Delete removes a client. Clients with matters cannot be deleted;
// archive them instead.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	matters, err := s.store.ListMatters(ctx, id)
	if err != nil {
		return fmt.Errorf("list matters: %w", err)
	}
	if len(matters) > 0 {
		return fmt.Errorf("%w: client has %d matters, archive instead", domain.ErrValidation, len(matters))
	}
	return s.store.DeleteClient(ctx, id)
}
