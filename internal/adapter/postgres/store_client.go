package postgres

import (
	"context"
	"fmt"

	"github.com/praxis-legal/praxis/internal/domain/client"
)

const clientCols = `id, tenant_id, name, kind, email, phone, address, tax_id, contact_name, notes, archived, version, created_at, updated_at`

func (s *Store) ListClients(ctx context.Context) ([]client.Client, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+clientCols+` FROM clients WHERE tenant_id = $1 ORDER BY created_at DESC`,
		tenantFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []client.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *Store) GetClient(ctx context.Context, id string) (*client.Client, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+clientCols+` FROM clients WHERE id = $1 AND tenant_id = $2`,
		id, tenantFromCtx(ctx))

	c, err := scanClient(row)
	if err != nil {
		return nil, notFoundWrap(err, "get client %s", id)
	}
	return &c, nil
}

func (s *Store) CreateClient(ctx context.Context, req client.CreateRequest) (*client.Client, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO clients (tenant_id, name, kind, email, phone, address, tax_id, contact_name, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+clientCols,
		tenantFromCtx(ctx), req.Name, string(req.Kind), req.Email, req.Phone, req.Address,
		req.TaxID, req.ContactName, req.Notes)

	c, err := scanClient(row)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &c, nil
}

func (s *Store) UpdateClient(ctx context.Context, id string, req client.UpdateRequest) (*client.Client, error) {
	cur, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	applyClientUpdate(cur, req)

	tag, err := s.pool.Exec(ctx,
		`UPDATE clients SET name = $2, email = $3, phone = $4, address = $5, tax_id = $6,
		        contact_name = $7, notes = $8, archived = $9, version = version + 1, updated_at = now()
		 WHERE id = $1 AND version = $10 AND tenant_id = $11`,
		id, cur.Name, cur.Email, cur.Phone, cur.Address, cur.TaxID,
		cur.ContactName, cur.Notes, cur.Archived, req.Version, tenantFromCtx(ctx))
	if err := conflictWrap(tag, err, "update client %s", id); err != nil {
		return nil, err
	}

	return s.GetClient(ctx, id)
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM clients WHERE id = $1 AND tenant_id = $2`, id, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "delete client %s", id)
}

// applyClientUpdate overlays non-zero request fields onto the current row.
func applyClientUpdate(c *client.Client, req client.UpdateRequest) {
	if req.Name != "" {
		c.Name = req.Name
	}
	if req.Email != "" {
		c.Email = req.Email
	}
	if req.Phone != "" {
		c.Phone = req.Phone
	}
	if req.Address != "" {
		c.Address = req.Address
	}
	if req.TaxID != "" {
		c.TaxID = req.TaxID
	}
	if req.ContactName != "" {
		c.ContactName = req.ContactName
	}
	if req.Notes != "" {
		c.Notes = req.Notes
	}
	if req.Archived != nil {
		c.Archived = *req.Archived
	}
}

func scanClient(row scannable) (client.Client, error) {
	var c client.Client
	err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.Kind, &c.Email, &c.Phone, &c.Address,
		&c.TaxID, &c.ContactName, &c.Notes, &c.Archived, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
