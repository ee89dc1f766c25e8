// Package dispute defines the dispute (litigation / arbitration) domain
// model.
package dispute

import (
	"errors"
	"time"
)

// Status tracks the dispute lifecycle.
type Status string

const (
	StatusFiled      Status = "filed"
	StatusDiscovery  Status = "discovery"
	StatusHearing    Status = "hearing"
	StatusSettlement Status = "settlement"
	StatusResolved   Status = "resolved"
	StatusDismissed  Status = "dismissed"
)

var validStatuses = map[Status]bool{
	StatusFiled:      true,
	StatusDiscovery:  true,
	StatusHearing:    true,
	StatusSettlement: true,
	StatusResolved:   true,
	StatusDismissed:  true,
}

// Forum identifies where the dispute is being heard.
type Forum string

const (
	ForumCourt       Forum = "court"
	ForumArbitration Forum = "arbitration"
	ForumMediation   Forum = "mediation"
	ForumRegulator   Forum = "regulator"
)

var validForums = map[Forum]bool{
	ForumCourt:       true,
	ForumArbitration: true,
	ForumMediation:   true,
	ForumRegulator:   true,
}

// Dispute represents an adversarial proceeding tracked under a matter.
type Dispute struct {
	ID            string     `json:"id"`
	TenantID      string     `json:"tenant_id"`
	MatterID      string     `json:"matter_id"`
	Title         string     `json:"title"`
	OpposingParty string     `json:"opposing_party"`
	Forum         Forum      `json:"forum"`
	CaseNumber    string     `json:"case_number,omitempty"`
	Status        Status     `json:"status"`
	AmountCents   int64      `json:"amount_cents,omitempty"` // amount in controversy
	Currency      string     `json:"currency,omitempty"`
	FiledAt       *time.Time `json:"filed_at,omitempty"`
	NextHearingAt *time.Time `json:"next_hearing_at,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	Outcome       string     `json:"outcome,omitempty"`
	Version       int        `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CreateRequest is the input for registering a new dispute.
type CreateRequest struct {
	MatterID      string     `json:"matter_id"`
	Title         string     `json:"title"`
	OpposingParty string     `json:"opposing_party"`
	Forum         Forum      `json:"forum"`
	CaseNumber    string     `json:"case_number,omitempty"`
	AmountCents   int64      `json:"amount_cents,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	FiledAt       *time.Time `json:"filed_at,omitempty"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.MatterID == "" {
		return errors.New("matter_id is required")
	}
	if r.Title == "" {
		return errors.New("title is required")
	}
	if r.OpposingParty == "" {
		return errors.New("opposing_party is required")
	}
	if !validForums[r.Forum] {
		return errors.New("invalid forum: must be court, arbitration, mediation, or regulator")
	}
	if r.AmountCents < 0 {
		return errors.New("amount_cents must not be negative")
	}
	return nil
}

// UpdateRequest is the input for updating a dispute.
type UpdateRequest struct {
	Title         string     `json:"title,omitempty"`
	Status        Status     `json:"status,omitempty"`
	CaseNumber    string     `json:"case_number,omitempty"`
	AmountCents   *int64     `json:"amount_cents,omitempty"`
	NextHearingAt *time.Time `json:"next_hearing_at,omitempty"`
	Outcome       string     `json:"outcome,omitempty"`
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
	if r.AmountCents != nil && *r.AmountCents < 0 {
		return errors.New("amount_cents must not be negative")
	}
	return nil
}
