package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/praxis-legal/praxis/internal/domain"
	"github.com/praxis-legal/praxis/internal/domain/matter"
)

const matterCols = `id, tenant_id, client_id, title, description, practice_area, status,
	COALESCE(lead_user_id::text, ''), opened_at, closed_at, version, created_at, updated_at`

func (s *Store) ListMatters(ctx context.Context, clientID string) ([]matter.Matter, error) {
	var (
		query = `SELECT ` + matterCols + ` FROM matters WHERE tenant_id = $1 ORDER BY created_at DESC`
		args  = []any{tenantFromCtx(ctx)}
	)
	if clientID != "" {
		query = `SELECT ` + matterCols + ` FROM matters WHERE tenant_id = $1 AND client_id = $2 ORDER BY created_at DESC`
		args = append(args, clientID)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matters: %w", err)
	}
	defer rows.Close()

	var matters []matter.Matter
	for rows.Next() {
		m, err := scanMatter(rows)
		if err != nil {
			return nil, err
		}
		matters = append(matters, m)
	}
	return matters, rows.Err()
}

func (s *Store) GetMatter(ctx context.Context, id string) (*matter.Matter, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+matterCols+` FROM matters WHERE id = $1 AND tenant_id = $2`,
		id, tenantFromCtx(ctx))

	m, err := scanMatter(row)
	if err != nil {
		return nil, notFoundWrap(err, "get matter %s", id)
	}
	return &m, nil
}

func (s *Store) CreateMatter(ctx context.Context, req matter.CreateRequest) (*matter.Matter, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO matters (tenant_id, client_id, title, description, practice_area, lead_user_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+matterCols,
		tenantFromCtx(ctx), req.ClientID, req.Title, req.Description,
		string(req.PracticeArea), nullIfEmpty(req.LeadUserID))

	m, err := scanMatter(row)
	if err != nil {
		return nil, fmt.Errorf("create matter: %w", err)
	}
	return &m, nil
}

func (s *Store) UpdateMatter(ctx context.Context, id string, req matter.UpdateRequest) (*matter.Matter, error) {
	cur, err := s.GetMatter(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != "" && req.Status != cur.Status {
		if !matter.CanTransition(cur.Status, req.Status) {
			return nil, fmt.Errorf("matter %s: status %s to %s: %w", id, cur.Status, req.Status, domain.ErrValidation)
		}
		cur.Status = req.Status
	}
	if req.Title != "" {
		cur.Title = req.Title
	}
	if req.Description != "" {
		cur.Description = req.Description
	}
	if req.LeadUserID != "" {
		cur.LeadUserID = req.LeadUserID
	}

	var closedAt any
	if cur.Status == matter.StatusClosed && cur.ClosedAt == nil {
		now := time.Now()
		closedAt = now
	} else if cur.Status != matter.StatusClosed {
		closedAt = nil
	} else {
		closedAt = *cur.ClosedAt
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE matters SET title = $2, description = $3, status = $4, lead_user_id = $5,
		        closed_at = $6, version = version + 1, updated_at = now()
		 WHERE id = $1 AND version = $7 AND tenant_id = $8`,
		id, cur.Title, cur.Description, string(cur.Status), nullIfEmpty(cur.LeadUserID),
		closedAt, req.Version, tenantFromCtx(ctx))
	if err := conflictWrap(tag, err, "update matter %s", id); err != nil {
		return nil, err
	}

	return s.GetMatter(ctx, id)
}

func (s *Store) DeleteMatter(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM matters WHERE id = $1 AND tenant_id = $2`, id, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "delete matter %s", id)
}

func scanMatter(row scannable) (matter.Matter, error) {
	var m matter.Matter
	err := row.Scan(&m.ID, &m.TenantID, &m.ClientID, &m.Title, &m.Description, &m.PracticeArea,
		&m.Status, &m.LeadUserID, &m.OpenedAt, &m.ClosedAt, &m.Version, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
