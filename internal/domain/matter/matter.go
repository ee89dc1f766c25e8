// Package matter defines the legal matter domain model. A matter is the
// unit of engagement: every contract, dispute, and document hangs off one.
package matter

import (
	"errors"
	"time"
)

// Status tracks the matter lifecycle.
type Status string

const (
	StatusOpen   Status = "open"
	StatusOnHold Status = "on_hold"
	StatusClosed Status = "closed"
)

// PracticeArea categorizes a matter by field of law.
type PracticeArea string

const (
	AreaCorporate  PracticeArea = "corporate"
	AreaLitigation PracticeArea = "litigation"
	AreaEmployment PracticeArea = "employment"
	AreaIP         PracticeArea = "intellectual_property"
	AreaRealEstate PracticeArea = "real_estate"
	AreaTax        PracticeArea = "tax"
	AreaRegulatory PracticeArea = "regulatory"
)

var validAreas = map[PracticeArea]bool{
	AreaCorporate:  true,
	AreaLitigation: true,
	AreaEmployment: true,
	AreaIP:         true,
	AreaRealEstate: true,
	AreaTax:        true,
	AreaRegulatory: true,
}

// Matter represents a legal engagement for a client.
type Matter struct {
	ID           string       `json:"id"`
	TenantID     string       `json:"tenant_id"`
	ClientID     string       `json:"client_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	PracticeArea PracticeArea `json:"practice_area"`
	Status       Status       `json:"status"`
	LeadUserID   string       `json:"lead_user_id,omitempty"` // responsible lawyer
	OpenedAt     time.Time    `json:"opened_at"`
	ClosedAt     *time.Time   `json:"closed_at,omitempty"`
	Version      int          `json:"version"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// CreateRequest is the input for opening a new matter.
type CreateRequest struct {
	ClientID     string       `json:"client_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	PracticeArea PracticeArea `json:"practice_area"`
	LeadUserID   string       `json:"lead_user_id,omitempty"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.ClientID == "" {
		return errors.New("client_id is required")
	}
	if r.Title == "" {
		return errors.New("title is required")
	}
	if !validAreas[r.PracticeArea] {
		return errors.New("invalid practice_area")
	}
	return nil
}

// UpdateRequest is the input for updating a matter.
type UpdateRequest struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status,omitempty"`
	LeadUserID  string `json:"lead_user_id,omitempty"`
	Version     int    `json:"version"`
}

// Validate checks the UpdateRequest, including the status transition value.
func (r *UpdateRequest) Validate() error {
	if r.Version < 1 {
		return errors.New("version is required for updates")
	}
	switch r.Status {
	case "", StatusOpen, StatusOnHold, StatusClosed:
	default:
		return errors.New("invalid status: must be open, on_hold, or closed")
	}
	return nil
}

// CanTransition reports whether a matter may move from one status to
// another. Closed matters reopen only through on_hold review.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusOpen:
		return to == StatusOnHold || to == StatusClosed
	case StatusOnHold:
		return to == StatusOpen || to == StatusClosed
	case StatusClosed:
		return to == StatusOnHold
	}
	return false
}
