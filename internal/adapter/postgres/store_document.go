package postgres

import (
	"context"
	"fmt"

	"github.com/praxis-legal/praxis/internal/domain/document"
)

const documentCols = `id, tenant_id, matter_id, name, mime_type, size_bytes, checksum, text,
	processing, uploaded_by, version, created_at, updated_at`

func (s *Store) ListDocuments(ctx context.Context, matterID string) ([]document.Document, error) {
	var (
		query = `SELECT ` + documentCols + ` FROM documents WHERE tenant_id = $1 ORDER BY created_at DESC`
		args  = []any{tenantFromCtx(ctx)}
	)
	if matterID != "" {
		query = `SELECT ` + documentCols + ` FROM documents WHERE tenant_id = $1 AND matter_id = $2 ORDER BY created_at DESC`
		args = append(args, matterID)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Store) GetDocument(ctx context.Context, id string) (*document.Document, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+documentCols+` FROM documents WHERE id = $1 AND tenant_id = $2`,
		id, tenantFromCtx(ctx))

	d, err := scanDocument(row)
	if err != nil {
		return nil, notFoundWrap(err, "get document %s", id)
	}
	return &d, nil
}

func (s *Store) CreateDocument(ctx context.Context, req document.CreateRequest, uploadedBy string) (*document.Document, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO documents (tenant_id, matter_id, name, mime_type, size_bytes, checksum, text, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+documentCols,
		tenantFromCtx(ctx), req.MatterID, req.Name, req.MimeType, req.SizeBytes,
		req.Checksum, req.Text, uploadedBy)

	d, err := scanDocument(row)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return &d, nil
}

func (s *Store) UpdateDocument(ctx context.Context, id string, req document.UpdateRequest) (*document.Document, error) {
	cur, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		cur.Name = req.Name
	}
	if req.Text != "" {
		cur.Text = req.Text
	}
	if req.Processing != "" {
		cur.Processing = req.Processing
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET name = $2, text = $3, processing = $4, version = version + 1, updated_at = now()
		 WHERE id = $1 AND version = $5 AND tenant_id = $6`,
		id, cur.Name, cur.Text, string(cur.Processing), req.Version, tenantFromCtx(ctx))
	if err := conflictWrap(tag, err, "update document %s", id); err != nil {
		return nil, err
	}

	return s.GetDocument(ctx, id)
}

func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE id = $1 AND tenant_id = $2`, id, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "delete document %s", id)
}

func scanDocument(row scannable) (document.Document, error) {
	var d document.Document
	err := row.Scan(&d.ID, &d.TenantID, &d.MatterID, &d.Name, &d.MimeType, &d.SizeBytes,
		&d.Checksum, &d.Text, &d.Processing, &d.UploadedBy, &d.Version, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}
