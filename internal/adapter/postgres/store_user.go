package postgres

import (
	"context"
	"fmt"

	"github.com/praxis-legal/praxis/internal/domain/user"
)

const userCols = `id, email, name, password_hash, role, tenant_id, bar_number, enabled,
	must_change_password, created_at, updated_at`

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userCols+` FROM users WHERE tenant_id = $1 ORDER BY created_at ASC`,
		tenantFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) GetUser(ctx context.Context, id string) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1 AND tenant_id = $2`,
		id, tenantFromCtx(ctx))

	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundWrap(err, "get user %s", id)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE email = $1 AND tenant_id = $2`,
		email, tenantFromCtx(ctx))

	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundWrap(err, "get user by email")
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u user.User) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (tenant_id, email, name, password_hash, role, bar_number, must_change_password)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+userCols,
		tenantFromCtx(ctx), u.Email, u.Name, u.PasswordHash, string(u.Role),
		u.BarNumber, u.MustChangePassword)

	created, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &created, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, req user.UpdateRequest) (*user.User, error) {
	cur, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		cur.Name = req.Name
	}
	if req.Role != "" {
		cur.Role = req.Role
	}
	if req.BarNumber != "" {
		cur.BarNumber = req.BarNumber
	}
	if req.Enabled != nil {
		cur.Enabled = *req.Enabled
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET name = $2, role = $3, bar_number = $4, enabled = $5, updated_at = now()
		 WHERE id = $1 AND tenant_id = $6`,
		id, cur.Name, string(cur.Role), cur.BarNumber, cur.Enabled, tenantFromCtx(ctx))
	if err := execExpectOne(tag, err, "update user %s", id); err != nil {
		return nil, err
	}

	return s.GetUser(ctx, id)
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string, mustChange bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, must_change_password = $3, updated_at = now()
		 WHERE id = $1 AND tenant_id = $4`,
		id, passwordHash, mustChange, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "update user password %s", id)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM users WHERE id = $1 AND tenant_id = $2`, id, tenantFromCtx(ctx))
	return execExpectOne(tag, err, "delete user %s", id)
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE tenant_id = $1`, tenantFromCtx(ctx)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func scanUser(row scannable) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.TenantID,
		&u.BarNumber, &u.Enabled, &u.MustChangePassword, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
