// source: principals.sql

package gen

import (
	"context"
	"database/sql"
)

const countActiveAdmins = `-- name: CountActiveAdmins :one
SELECT COUNT(*) FROM principals WHERE is_admin = 1 AND active = 1
`

func (q *Queries) CountActiveAdmins(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countActiveAdmins)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createPrincipal = `-- name: CreatePrincipal :exec
INSERT INTO principals (id, email, name, is_admin, active, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreatePrincipalParams struct {
	ID        string
	Email     string
	Name      sql.NullString
	IsAdmin   bool
	Active    bool
	CreatedAt int64
}

func (q *Queries) CreatePrincipal(ctx context.Context, arg CreatePrincipalParams) error {
	_, err := q.db.ExecContext(ctx, createPrincipal,
		arg.ID,
		arg.Email,
		arg.Name,
		arg.IsAdmin,
		arg.Active,
		arg.CreatedAt,
	)
	return err
}

const deletePrincipal = `-- name: DeletePrincipal :execrows
DELETE FROM principals WHERE id = ? AND email != ?
`

type DeletePrincipalParams struct {
	ID    string
	Email string
}

func (q *Queries) DeletePrincipal(ctx context.Context, arg DeletePrincipalParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePrincipal, arg.ID, arg.Email)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getPrincipalByEmail = `-- name: GetPrincipalByEmail :one
SELECT id, email, name, is_admin, active, created_at FROM principals WHERE email = ?
`

func (q *Queries) GetPrincipalByEmail(ctx context.Context, email string) (Principal, error) {
	row := q.db.QueryRowContext(ctx, getPrincipalByEmail, email)
	var i Principal
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Name,
		&i.IsAdmin,
		&i.Active,
		&i.CreatedAt,
	)
	return i, err
}

const getPrincipalByID = `-- name: GetPrincipalByID :one
SELECT id, email, name, is_admin, active, created_at FROM principals WHERE id = ?
`

func (q *Queries) GetPrincipalByID(ctx context.Context, id string) (Principal, error) {
	row := q.db.QueryRowContext(ctx, getPrincipalByID, id)
	var i Principal
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Name,
		&i.IsAdmin,
		&i.Active,
		&i.CreatedAt,
	)
	return i, err
}

const isActiveAdmin = `-- name: IsActiveAdmin :one
SELECT EXISTS (
    SELECT 1 FROM principals WHERE email = ? AND is_admin = 1 AND active = 1
)
`

func (q *Queries) IsActiveAdmin(ctx context.Context, email string) (int64, error) {
	row := q.db.QueryRowContext(ctx, isActiveAdmin, email)
	var column_1 int64
	err := row.Scan(&column_1)
	return column_1, err
}

const listPrincipals = `-- name: ListPrincipals :many
SELECT id, email, name, is_admin, active, created_at FROM principals ORDER BY email
`

func (q *Queries) ListPrincipals(ctx context.Context) ([]Principal, error) {
	rows, err := q.db.QueryContext(ctx, listPrincipals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Principal
	for rows.Next() {
		var i Principal
		if err := rows.Scan(
			&i.ID,
			&i.Email,
			&i.Name,
			&i.IsAdmin,
			&i.Active,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const togglePrincipal = `-- name: TogglePrincipal :execrows
UPDATE principals SET active = NOT active WHERE id = ?
`

func (q *Queries) TogglePrincipal(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, togglePrincipal, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
