package postgres

import (
	"context"
	"fmt"

	"github.com/praxis-legal/praxis/internal/domain/user"
)

const apiKeyCols = `id, user_id, tenant_id, name, key_hash, key_prefix, last_used_at, expires_at, created_at`

func (s *Store) CreateAPIKey(ctx context.Context, k user.APIKey) (*user.APIKey, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO api_keys (user_id, tenant_id, name, key_hash, key_prefix, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+apiKeyCols,
		k.UserID, tenantFromCtx(ctx), k.Name, k.KeyHash, k.KeyPrefix, k.ExpiresAt)

	created, err := scanAPIKey(row)
	if err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}
	return &created, nil
}

// GetAPIKeyByHash looks up a key by its SHA-256 hash. Not tenant-scoped:
// the key itself identifies the tenant during authentication.
func (s *Store) GetAPIKeyByHash(ctx context.Context, keyHash string) (*user.APIKey, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+apiKeyCols+` FROM api_keys WHERE key_hash = $1`, keyHash)

	k, err := scanAPIKey(row)
	if err != nil {
		return nil, notFoundWrap(err, "get api key")
	}
	return &k, nil
}

func (s *Store) ListAPIKeys(ctx context.Context, userID string) ([]user.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+apiKeyCols+` FROM api_keys WHERE user_id = $1 AND tenant_id = $2 ORDER BY created_at DESC`,
		userID, tenantFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []user.APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *Store) DeleteAPIKey(ctx context.Context, id, userID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM api_keys WHERE id = $1 AND user_id = $2 AND tenant_id = $3`,
		id, userID, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "delete api key %s", id)
}

func (s *Store) TouchAPIKey(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("touch api key %s: %w", id, err)
	}
	return nil
}

func scanAPIKey(row scannable) (user.APIKey, error) {
	var k user.APIKey
	err := row.Scan(&k.ID, &k.UserID, &k.TenantID, &k.Name, &k.KeyHash, &k.KeyPrefix,
		&k.LastUsedAt, &k.ExpiresAt, &k.CreatedAt)
	return k, err
}
