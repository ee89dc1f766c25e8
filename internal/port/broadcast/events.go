package broadcast

// Event type constants for real-time messages.
const (
	EventAnalysisStatus   = "analysis.status"
	EventAnalysisProgress = "analysis.progress"
	EventDraftStatus      = "draft.status"
)

// AnalysisStatusEvent is broadcast when an analysis changes lifecycle state.
type AnalysisStatusEvent struct {
	AnalysisID string `json:"analysis_id"`
	ContractID string `json:"contract_id"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// AnalysisProgressEvent is broadcast while an analysis executes.
type AnalysisProgressEvent struct {
	AnalysisID string `json:"analysis_id"`
	ContractID string `json:"contract_id"`
	Stage      string `json:"stage"` // e.g. "dispatching", "awaiting_consensus"
}

// DraftStatusEvent is broadcast when a drafting job changes lifecycle state.
type DraftStatusEvent struct {
	DraftID  string `json:"draft_id"`
	MatterID string `json:"matter_id"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}
