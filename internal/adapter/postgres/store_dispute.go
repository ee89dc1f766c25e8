package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/praxis-legal/praxis/internal/domain/dispute"
)

const disputeCols = `id, tenant_id, matter_id, title, opposing_party, forum, case_number, status,
	amount_cents, currency, filed_at, next_hearing_at, resolved_at, outcome, version, created_at, updated_at`

func (s *Store) ListDisputes(ctx context.Context, matterID string) ([]dispute.Dispute, error) {
	var (
		query = `SELECT ` + disputeCols + ` FROM disputes WHERE tenant_id = $1 ORDER BY created_at DESC`
		args  = []any{tenantFromCtx(ctx)}
	)
	if matterID != "" {
		query = `SELECT ` + disputeCols + ` FROM disputes WHERE tenant_id = $1 AND matter_id = $2 ORDER BY created_at DESC`
		args = append(args, matterID)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list disputes: %w", err)
	}
	defer rows.Close()

	var disputes []dispute.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		disputes = append(disputes, d)
	}
	return disputes, rows.Err()
}

func (s *Store) GetDispute(ctx context.Context, id string) (*dispute.Dispute, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+disputeCols+` FROM disputes WHERE id = $1 AND tenant_id = $2`,
		id, tenantFromCtx(ctx))

	d, err := scanDispute(row)
	if err != nil {
		return nil, notFoundWrap(err, "get dispute %s", id)
	}
	return &d, nil
}

func (s *Store) CreateDispute(ctx context.Context, req dispute.CreateRequest) (*dispute.Dispute, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO disputes (tenant_id, matter_id, title, opposing_party, forum, case_number,
		        amount_cents, currency, filed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+disputeCols,
		tenantFromCtx(ctx), req.MatterID, req.Title, req.OpposingParty, string(req.Forum),
		req.CaseNumber, req.AmountCents, req.Currency, req.FiledAt)

	d, err := scanDispute(row)
	if err != nil {
		return nil, fmt.Errorf("create dispute: %w", err)
	}
	return &d, nil
}

func (s *Store) UpdateDispute(ctx context.Context, id string, req dispute.UpdateRequest) (*dispute.Dispute, error) {
	cur, err := s.GetDispute(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		cur.Title = req.Title
	}
	if req.Status != "" {
		cur.Status = req.Status
	}
	if req.CaseNumber != "" {
		cur.CaseNumber = req.CaseNumber
	}
	if req.AmountCents != nil {
		cur.AmountCents = *req.AmountCents
	}
	if req.NextHearingAt != nil {
		cur.NextHearingAt = req.NextHearingAt
	}
	if req.Outcome != "" {
		cur.Outcome = req.Outcome
	}
	if (cur.Status == dispute.StatusResolved || cur.Status == dispute.StatusDismissed) && cur.ResolvedAt == nil {
		now := time.Now()
		cur.ResolvedAt = &now
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE disputes SET title = $2, status = $3, case_number = $4, amount_cents = $5,
		        next_hearing_at = $6, resolved_at = $7, outcome = $8, version = version + 1, updated_at = now()
		 WHERE id = $1 AND version = $9 AND tenant_id = $10`,
		id, cur.Title, string(cur.Status), cur.CaseNumber, cur.AmountCents,
		cur.NextHearingAt, cur.ResolvedAt, cur.Outcome, req.Version, tenantFromCtx(ctx))
	if err := conflictWrap(tag, err, "update dispute %s", id); err != nil {
		return nil, err
	}

	return s.GetDispute(ctx, id)
}

func (s *Store) DeleteDispute(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM disputes WHERE id = $1 AND tenant_id = $2`, id, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "delete dispute %s", id)
}

func scanDispute(row scannable) (dispute.Dispute, error) {
	var d dispute.Dispute
	err := row.Scan(&d.ID, &d.TenantID, &d.MatterID, &d.Title, &d.OpposingParty, &d.Forum,
		&d.CaseNumber, &d.Status, &d.AmountCents, &d.Currency, &d.FiledAt, &d.NextHearingAt,
		&d.ResolvedAt, &d.Outcome, &d.Version, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}
