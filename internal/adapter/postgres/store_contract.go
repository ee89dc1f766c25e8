package postgres

import (
	"context"
	"fmt"

	"github.com/praxis-legal/praxis/internal/domain"
	"github.com/praxis-legal/praxis/internal/domain/contract"
)

const contractCols = `id, tenant_id, matter_id, title, counterparty, status, body, value_cents, currency,
	effective_date, renewal_date, expiry_date, signed_at, version, created_at, updated_at`

func (s *Store) ListContracts(ctx context.Context, matterID string) ([]contract.Contract, error) {
	var (
		query = `SELECT ` + contractCols + ` FROM contracts WHERE tenant_id = $1 ORDER BY created_at DESC`
		args  = []any{tenantFromCtx(ctx)}
	)
	if matterID != "" {
		query = `SELECT ` + contractCols + ` FROM contracts WHERE tenant_id = $1 AND matter_id = $2 ORDER BY created_at DESC`
		args = append(args, matterID)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []contract.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func (s *Store) GetContract(ctx context.Context, id string) (*contract.Contract, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+contractCols+` FROM contracts WHERE id = $1 AND tenant_id = $2`,
		id, tenantFromCtx(ctx))

	c, err := scanContract(row)
	if err != nil {
		return nil, notFoundWrap(err, "get contract %s", id)
	}
	return &c, nil
}

func (s *Store) CreateContract(ctx context.Context, req contract.CreateRequest) (*contract.Contract, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO contracts (tenant_id, matter_id, title, counterparty, body, value_cents, currency,
		        effective_date, renewal_date, expiry_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+contractCols,
		tenantFromCtx(ctx), req.MatterID, req.Title, req.Counterparty, req.Body,
		req.ValueCents, req.Currency, req.EffectiveDate, req.RenewalDate, req.ExpiryDate)

	c, err := scanContract(row)
	if err != nil {
		return nil, fmt.Errorf("create contract: %w", err)
	}
	return &c, nil
}

func (s *Store) UpdateContract(ctx context.Context, id string, req contract.UpdateRequest) (*contract.Contract, error) {
	cur, err := s.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != "" && req.Status != cur.Status {
		if !contract.CanTransition(cur.Status, req.Status) {
			return nil, fmt.Errorf("contract %s: status %s to %s: %w", id, cur.Status, req.Status, domain.ErrValidation)
		}
		cur.Status = req.Status
	}
	if req.Title != "" {
		cur.Title = req.Title
	}
	if req.Counterparty != "" {
		cur.Counterparty = req.Counterparty
	}
	if req.Body != "" {
		cur.Body = req.Body
	}
	if req.ValueCents != nil {
		cur.ValueCents = *req.ValueCents
	}
	if req.Currency != "" {
		cur.Currency = req.Currency
	}
	if req.EffectiveDate != nil {
		cur.EffectiveDate = req.EffectiveDate
	}
	if req.RenewalDate != nil {
		cur.RenewalDate = req.RenewalDate
	}
	if req.ExpiryDate != nil {
		cur.ExpiryDate = req.ExpiryDate
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE contracts SET title = $2, counterparty = $3, status = $4, body = $5, value_cents = $6,
		        currency = $7, effective_date = $8, renewal_date = $9, expiry_date = $10,
		        signed_at = CASE WHEN $4 = 'executed' AND signed_at IS NULL THEN now() ELSE signed_at END,
		        version = version + 1, updated_at = now()
		 WHERE id = $1 AND version = $11 AND tenant_id = $12`,
		id, cur.Title, cur.Counterparty, string(cur.Status), cur.Body, cur.ValueCents,
		cur.Currency, cur.EffectiveDate, cur.RenewalDate, cur.ExpiryDate,
		req.Version, tenantFromCtx(ctx))
	if err := conflictWrap(tag, err, "update contract %s", id); err != nil {
		return nil, err
	}

	return s.GetContract(ctx, id)
}

func (s *Store) DeleteContract(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM contracts WHERE id = $1 AND tenant_id = $2`, id, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "delete contract %s", id)
}

func scanContract(row scannable) (contract.Contract, error) {
	var c contract.Contract
	err := row.Scan(&c.ID, &c.TenantID, &c.MatterID, &c.Title, &c.Counterparty, &c.Status,
		&c.Body, &c.ValueCents, &c.Currency, &c.EffectiveDate, &c.RenewalDate, &c.ExpiryDate,
		&c.SignedAt, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
