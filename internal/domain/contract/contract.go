// Package contract defines the contract domain model and its status
// lifecycle.
package contract

import (
	"errors"
	"time"
)

// Status tracks the contract lifecycle from drafting through termination.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusInReview    Status = "in_review"
	StatusNegotiation Status = "negotiation"
	StatusExecuted    Status = "executed"
	StatusExpired     Status = "expired"
	StatusTerminated  Status = "terminated"
)

var validStatuses = map[Status]bool{
	StatusDraft:       true,
	StatusInReview:    true,
	StatusNegotiation: true,
	StatusExecuted:    true,
	StatusExpired:     true,
	StatusTerminated:  true,
}

// transitions lists the allowed status moves. Executed contracts only
// move forward to expired or terminated.
var transitions = map[Status][]Status{
	StatusDraft:       {StatusInReview},
	StatusInReview:    {StatusDraft, StatusNegotiation, StatusExecuted},
	StatusNegotiation: {StatusInReview, StatusExecuted},
	StatusExecuted:    {StatusExpired, StatusTerminated},
	StatusExpired:     {},
	StatusTerminated:  {},
}

// CanTransition reports whether a contract may move between two statuses.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Contract represents an agreement tracked under a matter.
type Contract struct {
	ID            string     `json:"id"`
	TenantID      string     `json:"tenant_id"`
	MatterID      string     `json:"matter_id"`
	Title         string     `json:"title"`
	Counterparty  string     `json:"counterparty"`
	Status        Status     `json:"status"`
	Body          string     `json:"body,omitempty"` // full contract text, used for analysis
	ValueCents    int64      `json:"value_cents,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
	RenewalDate   *time.Time `json:"renewal_date,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	SignedAt      *time.Time `json:"signed_at,omitempty"`
	Version       int        `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CreateRequest is the input for registering a new contract.
type CreateRequest struct {
	MatterID      string     `json:"matter_id"`
	Title         string     `json:"title"`
	Counterparty  string     `json:"counterparty"`
	Body          string     `json:"body,omitempty"`
	ValueCents    int64      `json:"value_cents,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
	RenewalDate   *time.Time `json:"renewal_date,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.MatterID == "" {
		return errors.New("matter_id is required")
	}
	if r.Title == "" {
		return errors.New("title is required")
	}
	if r.Counterparty == "" {
		return errors.New("counterparty is required")
	}
	if r.ValueCents < 0 {
		return errors.New("value_cents must not be negative")
	}
	if r.ValueCents > 0 && r.Currency == "" {
		return errors.New("currency is required when value_cents is set")
	}
	return nil
}

// UpdateRequest is the input for updating a contract.
type UpdateRequest struct {
	Title         string     `json:"title,omitempty"`
	Counterparty  string     `json:"counterparty,omitempty"`
	Status        Status     `json:"status,omitempty"`
	Body          string     `json:"body,omitempty"`
	ValueCents    *int64     `json:"value_cents,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
	RenewalDate   *time.Time `json:"renewal_date,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	Version       int        `json:"version"`
}

// Validate checks the UpdateRequest.
func (r *UpdateRequest) Validate() error {
	if r.Version < 1 {
		return errors.New("version is required for updates")
	}
	if r.Status != "" && !validStatuses[r.Status] {
		return errors.New("invalid status")
	}
	if r.ValueCents != nil && *r.ValueCents < 0 {
		return errors.New("value_cents must not be negative")
	}
	return nil
}
