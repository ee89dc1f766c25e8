package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/praxis-legal/praxis/internal/domain/analysis"
	"github.com/praxis-legal/praxis/internal/domain/contract"
	"github.com/praxis-legal/praxis/internal/domain/matter"
)

const analysisSystemPrompt = `You are a senior contracts attorney reviewing documents for a law firm.
Respond with a single JSON object and nothing else:
{"summary": "...", "findings": [{"title": "...", "severity": "critical|high|medium|low|info", "clause": "...", "description": "...", "suggestion": "..."}]}`

// analysisInstructions maps each analysis kind to its task instruction.
var analysisInstructions = map[analysis.Kind]string{
	analysis.KindRiskReview: `Identify legal and commercial risks in the contract below.
Grade each finding by severity and suggest mitigating language.`,
	analysis.KindClauseExtraction: `Extract the key clauses from the contract below.
Report each clause as a finding with its reference in the "clause" field and its text in the description. Use severity "info".`,
	analysis.KindSummary: `Summarize the contract below for a partner briefing.
Put the summary in the "summary" field; list at most three notable points as findings.`,
}

// buildAnalysisPrompt produces the system and user prompts for a contract
// analysis request.
func buildAnalysisPrompt(kind analysis.Kind, c *contract.Contract) (system, prompt string) {
	var b strings.Builder
	b.WriteString(analysisInstructions[kind])
	b.WriteString("\n\nTitle: ")
	b.WriteString(c.Title)
	b.WriteString("\nCounterparty: ")
	b.WriteString(c.Counterparty)
	if c.ValueCents > 0 {
		fmt.Fprintf(&b, "\nValue: %.2f %s", float64(c.ValueCents)/100, c.Currency)
	}
	b.WriteString("\n\n---\n")
	b.WriteString(c.Body)
	return analysisSystemPrompt, b.String()
}

const draftSystemPrompt = `You are a senior attorney drafting documents for a law firm.
Produce the complete document text, ready for attorney review. Do not add commentary before or after the document.`

// draftInstructions maps each template kind to its drafting instruction.
var draftInstructions = map[analysis.TemplateKind]string{
	analysis.TemplateNDA:              "Draft a mutual non-disclosure agreement.",
	analysis.TemplateEngagementLetter: "Draft an engagement letter establishing the attorney-client relationship for the matter below.",
	analysis.TemplateDemandLetter:     "Draft a formal demand letter for the matter below.",
	analysis.TemplateSettlement:       "Draft a settlement agreement resolving the matter below.",
}

// buildDraftPrompt produces the system and user prompts for a document
// drafting request.
func buildDraftPrompt(req analysis.CreateDraftRequest, m *matter.Matter) (system, prompt string) {
	var b strings.Builder
	b.WriteString(draftInstructions[req.Template])
	b.WriteString("\n\nMatter: ")
	b.WriteString(m.Title)
	if m.Description != "" {
		b.WriteString("\nBackground: ")
		b.WriteString(m.Description)
	}
	b.WriteString("\nPractice area: ")
	b.WriteString(string(m.PracticeArea))

	if len(req.Fields) > 0 {
		b.WriteString("\n\nUse these details:")
		keys := make([]string, 0, len(req.Fields))
		for k := range req.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "\n- %s: %s", k, req.Fields[k])
		}
	}
	if req.Instructions != "" {
		b.WriteString("\n\nAdditional instructions: ")
		b.WriteString(req.Instructions)
	}
	return draftSystemPrompt, b.String()
}

// analysisPayload is the JSON shape models are instructed to return.
type analysisPayload struct {
	Summary  string             `json:"summary"`
	Findings []analysis.Finding `json:"findings"`
}

// parseAnalysisResponse extracts the structured summary and findings from
// a model response. Responses that are not valid JSON fall back to the
// raw text as the summary rather than failing the run.
func parseAnalysisResponse(text string) (string, []analysis.Finding) {
	cleaned := stripCodeFence(strings.TrimSpace(text))

	var payload analysisPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return strings.TrimSpace(text), nil
	}
	return payload.Summary, payload.Findings
}

// stripCodeFence removes a surrounding markdown code fence if present.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
