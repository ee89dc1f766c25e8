// Package client defines the client (represented party) domain model.
package client

import (
	"errors"
	"net/mail"
	"time"
)

// Kind distinguishes individual from organizational clients.
type Kind string

const (
	KindIndividual   Kind = "individual"
	KindOrganization Kind = "organization"
)

// Client represents a party the firm represents.
type Client struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Kind        Kind      `json:"kind"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	TaxID       string    `json:"tax_id,omitempty"`
	ContactName string    `json:"contact_name,omitempty"` // primary contact for organizations
	Notes       string    `json:"notes,omitempty"`
	Archived    bool      `json:"archived"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateRequest is the input for registering a new client.
type CreateRequest struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	TaxID       string `json:"tax_id,omitempty"`
	ContactName string `json:"contact_name,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Kind != KindIndividual && r.Kind != KindOrganization {
		return errors.New("kind must be individual or organization")
	}
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return errors.New("invalid email format")
		}
	}
	return nil
}

// UpdateRequest is the input for updating a client. Version enables
// optimistic locking: updates against a stale version are rejected.
type UpdateRequest struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	TaxID       string `json:"tax_id,omitempty"`
	ContactName string `json:"contact_name,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Archived    *bool  `json:"archived,omitempty"`
	Version     int    `json:"version"`
}

// Validate checks the UpdateRequest.
func (r *UpdateRequest) Validate() error {
	if r.Version < 1 {
		return errors.New("version is required for updates")
	}
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return errors.New("invalid email format")
		}
	}
	return nil
}
