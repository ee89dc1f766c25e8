package service

import (
	"context"
	"fmt"

	"github.com/praxis-legal/praxis/internal/domain"
	"github.com/praxis-legal/praxis/internal/domain/document"
	"github.com/praxis-legal/praxis/internal/port/database"
)

// DocumentService handles document metadata business logic. Blob content
// is not stored; only metadata and extracted text.
type DocumentService struct {
	store database.Store
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(store database.Store) *DocumentService {
	return &DocumentService{store: store}
}

// List returns documents, optionally filtered by matter.
func (s *DocumentService) List(ctx context.Context, matterID string) ([]document.Document, error) {
	return s.store.ListDocuments(ctx, matterID)
}

// Get returns a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*document.Document, error) {
	return s.store.GetDocument(ctx, id)
}

// Create validates and registers a new document under an existing matter.
func (s *DocumentService) Create(ctx context.Context, req document.CreateRequest, uploadedBy string) (*document.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	if _, err := s.store.GetMatter(ctx, req.MatterID); err != nil {
		return nil, fmt.Errorf("get matter: %w", err)
	}
	return s.store.CreateDocument(ctx, req, uploadedBy)
}

// Update applies partial updates under optimistic locking.
func (s *DocumentService) Update(ctx context.Context, id string, req document.UpdateRequest) (*document.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	return s.store.UpdateDocument(ctx, id, req)
}

// Delete removes a document record.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteDocument(ctx, id)
}
