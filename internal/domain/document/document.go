// Package document defines the document metadata domain model. Document
// content lives outside the platform; only metadata and extracted text
// are stored.
package document

import (
	"errors"
	"time"
)

// ProcessingStatus tracks text extraction progress after upload.
type ProcessingStatus string

const (
	ProcessingPending  ProcessingStatus = "pending"
	ProcessingComplete ProcessingStatus = "complete"
	ProcessingFailed   ProcessingStatus = "failed"
)

// Document represents a file registered under a matter.
type Document struct {
	ID         string           `json:"id"`
	TenantID   string           `json:"tenant_id"`
	MatterID   string           `json:"matter_id"`
	Name       string           `json:"name"`
	MimeType   string           `json:"mime_type"`
	SizeBytes  int64            `json:"size_bytes"`
	Checksum   string           `json:"checksum"` // sha256 hex of the content
	Text       string           `json:"text,omitempty"`
	Processing ProcessingStatus `json:"processing"`
	UploadedBy string           `json:"uploaded_by"`
	Version    int              `json:"version"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// CreateRequest is the input for registering a new document.
type CreateRequest struct {
	MatterID  string `json:"matter_id"`
	Name      string `json:"name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
	Text      string `json:"text,omitempty"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.MatterID == "" {
		return errors.New("matter_id is required")
	}
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.MimeType == "" {
		return errors.New("mime_type is required")
	}
	if r.SizeBytes < 0 {
		return errors.New("size_bytes must not be negative")
	}
	if len(r.Checksum) != 64 {
		return errors.New("checksum must be a sha256 hex digest")
	}
	return nil
}

// UpdateRequest is the input for updating document metadata.
type UpdateRequest struct {
	Name       string           `json:"name,omitempty"`
	Text       string           `json:"text,omitempty"`
	Processing ProcessingStatus `json:"processing,omitempty"`
	Version    int              `json:"version"`
}

// Validate checks the UpdateRequest.
func (r *UpdateRequest) Validate() error {
	if r.Version < 1 {
		return errors.New("version is required for updates")
	}
	switch r.Processing {
	case "", ProcessingPending, ProcessingComplete, ProcessingFailed:
	default:
		return errors.New("invalid processing status")
	}
	return nil
}
