package postgres

import (
	"context"
	"fmt"

	"github.com/praxis-legal/praxis/internal/domain/tenant"
)

const tenantCols = `id, name, plan, enabled, created_at, updated_at`

func (s *Store) ListTenants(ctx context.Context) ([]tenant.Tenant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tenantCols+` FROM tenants ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (s *Store) GetTenant(ctx context.Context, id string) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+tenantCols+` FROM tenants WHERE id = $1`, id)

	t, err := scanTenant(row)
	if err != nil {
		return nil, notFoundWrap(err, "get tenant %s", id)
	}
	return &t, nil
}

func (s *Store) CreateTenant(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	plan := req.Plan
	if plan == "" {
		plan = "free"
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO tenants (name, plan) VALUES ($1, $2) RETURNING `+tenantCols,
		req.Name, plan)

	t, err := scanTenant(row)
	if err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	return &t, nil
}

func (s *Store) UpdateTenant(ctx context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error) {
	cur, err := s.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		cur.Name = req.Name
	}
	if req.Plan != "" {
		cur.Plan = req.Plan
	}
	if req.Enabled != nil {
		cur.Enabled = *req.Enabled
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE tenants SET name = $2, plan = $3, enabled = $4, updated_at = now() WHERE id = $1`,
		id, cur.Name, cur.Plan, cur.Enabled)
	if err := execExpectOne(tag, err, "update tenant %s", id); err != nil {
		return nil, err
	}

	return s.GetTenant(ctx, id)
}

func scanTenant(row scannable) (tenant.Tenant, error) {
	var t tenant.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Plan, &t.Enabled, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
