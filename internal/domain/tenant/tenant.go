// Package tenant defines the tenant (law firm) domain model.
package tenant

import (
	"errors"
	"time"
)

// DefaultID is the tenant assigned when no X-Tenant-ID header is sent.
// Single-firm deployments run entirely under this tenant.
const DefaultID = "default"

// Tenant represents an isolated law firm within the platform. All
// resources are scoped to exactly one tenant.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan"` // free, team, enterprise
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest is the input for provisioning a new tenant.
type CreateRequest struct {
	Name string `json:"name"`
	Plan string `json:"plan,omitempty"`
}

var validPlans = map[string]bool{"free": true, "team": true, "enterprise": true}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Plan != "" && !validPlans[r.Plan] {
		return errors.New("invalid plan: must be free, team, or enterprise")
	}
	return nil
}

// UpdateRequest is the input for updating a tenant.
type UpdateRequest struct {
	Name    string `json:"name,omitempty"`
	Plan    string `json:"plan,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}

// Validate checks the UpdateRequest.
func (r *UpdateRequest) Validate() error {
	if r.Plan != "" && !validPlans[r.Plan] {
		return errors.New("invalid plan: must be free, team, or enterprise")
	}
	return nil
}
