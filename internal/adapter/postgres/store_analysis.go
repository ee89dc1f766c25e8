package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/praxis-legal/praxis/internal/domain/analysis"
)

const analysisCols = `id, tenant_id, contract_id, kind, status, provider, model, summary,
	findings, consensus, input_tokens, output_tokens, cost_usd, from_cache, error,
	requested_by, started_at, completed_at, created_at, updated_at`

func (s *Store) ListAnalyses(ctx context.Context, contractID string) ([]analysis.Analysis, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+analysisCols+` FROM analyses WHERE contract_id = $1 AND tenant_id = $2 ORDER BY created_at DESC`,
		contractID, tenantFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []analysis.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}

func (s *Store) GetAnalysis(ctx context.Context, id string) (*analysis.Analysis, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+analysisCols+` FROM analyses WHERE id = $1 AND tenant_id = $2`,
		id, tenantFromCtx(ctx))

	a, err := scanAnalysis(row)
	if err != nil {
		return nil, notFoundWrap(err, "get analysis %s", id)
	}
	return &a, nil
}

func (s *Store) CreateAnalysis(ctx context.Context, a analysis.Analysis) (*analysis.Analysis, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO analyses (id, tenant_id, contract_id, kind, status, provider, requested_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+analysisCols,
		a.ID, tenantFromCtx(ctx), a.ContractID, string(a.Kind), string(a.Status),
		a.Provider, a.RequestedBy)

	created, err := scanAnalysis(row)
	if err != nil {
		return nil, fmt.Errorf("create analysis: %w", err)
	}
	return &created, nil
}

func (s *Store) UpdateAnalysis(ctx context.Context, a analysis.Analysis) error {
	findingsJSON, err := json.Marshal(a.Findings)
	if err != nil {
		return fmt.Errorf("marshal findings: %w", err)
	}
	var consensusJSON []byte
	if a.Consensus != nil {
		consensusJSON, err = json.Marshal(a.Consensus)
		if err != nil {
			return fmt.Errorf("marshal consensus: %w", err)
		}
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE analyses SET status = $2, provider = $3, model = $4, summary = $5, findings = $6,
		        consensus = $7, input_tokens = $8, output_tokens = $9, cost_usd = $10,
		        from_cache = $11, error = $12, started_at = $13, completed_at = $14, updated_at = now()
		 WHERE id = $1 AND tenant_id = $15`,
		a.ID, string(a.Status), a.Provider, a.Model, a.Summary, findingsJSON,
		consensusJSON, a.Usage.InputTokens, a.Usage.OutputTokens, a.Usage.CostUSD,
		a.FromCache, a.Error, a.StartedAt, a.CompletedAt, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "update analysis %s", a.ID)
}

func scanAnalysis(row scannable) (analysis.Analysis, error) {
	var a analysis.Analysis
	var findingsJSON, consensusJSON []byte
	err := row.Scan(&a.ID, &a.TenantID, &a.ContractID, &a.Kind, &a.Status, &a.Provider,
		&a.Model, &a.Summary, &findingsJSON, &consensusJSON,
		&a.Usage.InputTokens, &a.Usage.OutputTokens, &a.Usage.CostUSD,
		&a.FromCache, &a.Error, &a.RequestedBy, &a.StartedAt, &a.CompletedAt,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return a, err
	}
	if findingsJSON != nil {
		if err := json.Unmarshal(findingsJSON, &a.Findings); err != nil {
			return a, fmt.Errorf("unmarshal findings: %w", err)
		}
	}
	if consensusJSON != nil {
		var c analysis.Consensus
		if err := json.Unmarshal(consensusJSON, &c); err != nil {
			return a, fmt.Errorf("unmarshal consensus: %w", err)
		}
		a.Consensus = &c
	}
	return a, nil
}

// --- Drafts ---

const draftCols = `id, tenant_id, matter_id, template, status, provider, model, content,
	input_tokens, output_tokens, cost_usd, error, requested_by, completed_at, created_at, updated_at`

func (s *Store) ListDrafts(ctx context.Context, matterID string) ([]analysis.Draft, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+draftCols+` FROM drafts WHERE matter_id = $1 AND tenant_id = $2 ORDER BY created_at DESC`,
		matterID, tenantFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []analysis.Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

func (s *Store) GetDraft(ctx context.Context, id string) (*analysis.Draft, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+draftCols+` FROM drafts WHERE id = $1 AND tenant_id = $2`,
		id, tenantFromCtx(ctx))

	d, err := scanDraft(row)
	if err != nil {
		return nil, notFoundWrap(err, "get draft %s", id)
	}
	return &d, nil
}

func (s *Store) CreateDraft(ctx context.Context, d analysis.Draft) (*analysis.Draft, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO drafts (id, tenant_id, matter_id, template, status, provider, requested_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+draftCols,
		d.ID, tenantFromCtx(ctx), d.MatterID, string(d.Template), string(d.Status),
		d.Provider, d.RequestedBy)

	created, err := scanDraft(row)
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	return &created, nil
}

func (s *Store) UpdateDraft(ctx context.Context, d analysis.Draft) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE drafts SET status = $2, provider = $3, model = $4, content = $5,
		        input_tokens = $6, output_tokens = $7, cost_usd = $8, error = $9,
		        completed_at = $10, updated_at = now()
		 WHERE id = $1 AND tenant_id = $11`,
		d.ID, string(d.Status), d.Provider, d.Model, d.Content,
		d.Usage.InputTokens, d.Usage.OutputTokens, d.Usage.CostUSD, d.Error,
		d.CompletedAt, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "update draft %s", d.ID)
}

func scanDraft(row scannable) (analysis.Draft, error) {
	var d analysis.Draft
	err := row.Scan(&d.ID, &d.TenantID, &d.MatterID, &d.Template, &d.Status, &d.Provider,
		&d.Model, &d.Content, &d.Usage.InputTokens, &d.Usage.OutputTokens, &d.Usage.CostUSD,
		&d.Error, &d.RequestedBy, &d.CompletedAt, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}
