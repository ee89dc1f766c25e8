// Package analysis defines AI analysis and drafting domain models:
// requests, findings, consensus results, and generated drafts.
package analysis

import (
	"errors"
	"time"
)

// Kind selects the analysis performed on a contract.
type Kind string

const (
	KindRiskReview       Kind = "risk_review"
	KindClauseExtraction Kind = "clause_extraction"
	KindSummary          Kind = "summary"
)

var validKinds = map[Kind]bool{
	KindRiskReview:       true,
	KindClauseExtraction: true,
	KindSummary:          true,
}

// Status tracks the async lifecycle of an analysis or draft job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusComplete  Status = "complete"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Severity grades a finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Finding is a single issue or extraction surfaced by an analysis.
type Finding struct {
	Title       string   `json:"title"`
	Severity    Severity `json:"severity,omitempty"`
	Clause      string   `json:"clause,omitempty"` // clause reference, e.g. "7.2 Indemnification"
	Description string   `json:"description"`
	Suggestion  string   `json:"suggestion,omitempty"`
}

// Consensus records the multi-provider agreement for a consensus-mode run.
type Consensus struct {
	Providers     []string `json:"providers"`               // providers that responded
	AgreedBy      int      `json:"agreed_by"`               // providers matching the verdict
	Quorum        int      `json:"quorum"`                  // votes required
	Verdict       string   `json:"verdict"`                 // majority answer
	Disagreements []string `json:"disagreements,omitempty"` // minority answers, one per dissenting provider
}

// Usage accounts for tokens consumed and estimated cost.
type Usage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// Analysis represents one AI analysis run against a contract.
type Analysis struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenant_id"`
	ContractID  string     `json:"contract_id"`
	Kind        Kind       `json:"kind"`
	Status      Status     `json:"status"`
	Provider    string     `json:"provider,omitempty"` // provider that produced the result
	Model       string     `json:"model,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Findings    []Finding  `json:"findings,omitempty"`
	Consensus   *Consensus `json:"consensus,omitempty"`
	Usage       Usage      `json:"usage"`
	FromCache   bool       `json:"from_cache"`
	Error       string     `json:"error,omitempty"`
	RequestedBy string     `json:"requested_by"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateRequest is the input for requesting a contract analysis.
type CreateRequest struct {
	Kind      Kind   `json:"kind"`
	Provider  string `json:"provider,omitempty"` // explicit provider, empty = auto-select
	Consensus bool   `json:"consensus,omitempty"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if !validKinds[r.Kind] {
		return errors.New("invalid kind: must be risk_review, clause_extraction, or summary")
	}
	if r.Provider != "" && r.Consensus {
		return errors.New("provider and consensus are mutually exclusive")
	}
	return nil
}

// TemplateKind selects the document template for a drafting job.
type TemplateKind string

const (
	TemplateNDA              TemplateKind = "nda"
	TemplateEngagementLetter TemplateKind = "engagement_letter"
	TemplateDemandLetter     TemplateKind = "demand_letter"
	TemplateSettlement       TemplateKind = "settlement"
)

var validTemplates = map[TemplateKind]bool{
	TemplateNDA:              true,
	TemplateEngagementLetter: true,
	TemplateDemandLetter:     true,
	TemplateSettlement:       true,
}

// Draft represents one AI drafting run for a matter.
type Draft struct {
	ID          string       `json:"id"`
	TenantID    string       `json:"tenant_id"`
	MatterID    string       `json:"matter_id"`
	Template    TemplateKind `json:"template"`
	Status      Status       `json:"status"`
	Provider    string       `json:"provider,omitempty"`
	Model       string       `json:"model,omitempty"`
	Content     string       `json:"content,omitempty"`
	Usage       Usage        `json:"usage"`
	Error       string       `json:"error,omitempty"`
	RequestedBy string       `json:"requested_by"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CreateDraftRequest is the input for requesting a document draft.
type CreateDraftRequest struct {
	Template     TemplateKind      `json:"template"`
	Provider     string            `json:"provider,omitempty"`
	Instructions string            `json:"instructions,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"` // template variables, e.g. party names
}

// Validate checks that the CreateDraftRequest has all required fields.
func (r *CreateDraftRequest) Validate() error {
	if !validTemplates[r.Template] {
		return errors.New("invalid template: must be nda, engagement_letter, demand_letter, or settlement")
	}
	return nil
}
