// source: applications.sql

package gen

import (
	"context"
)

const createApplication = `-- name: CreateApplication :exec
INSERT INTO applications (id, name, callback_url, active, created_at)
VALUES (?, ?, ?, ?, ?)
`

type CreateApplicationParams struct {
	ID          string
	Name        string
	CallbackUrl string
	Active      bool
	CreatedAt   int64
}

func (q *Queries) CreateApplication(ctx context.Context, arg CreateApplicationParams) error {
	_, err := q.db.ExecContext(ctx, createApplication,
		arg.ID,
		arg.Name,
		arg.CallbackUrl,
		arg.Active,
		arg.CreatedAt,
	)
	return err
}

const getActiveCallbackURL = `-- name: GetActiveCallbackURL :one
SELECT callback_url FROM applications WHERE name = ? AND active = 1
`

func (q *Queries) GetActiveCallbackURL(ctx context.Context, name string) (string, error) {
	row := q.db.QueryRowContext(ctx, getActiveCallbackURL, name)
	var callback_url string
	err := row.Scan(&callback_url)
	return callback_url, err
}

const getApplicationByID = `-- name: GetApplicationByID :one
SELECT id, name, callback_url, active, created_at FROM applications WHERE id = ?
`

func (q *Queries) GetApplicationByID(ctx context.Context, id string) (Application, error) {
	row := q.db.QueryRowContext(ctx, getApplicationByID, id)
	var i Application
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.CallbackUrl,
		&i.Active,
		&i.CreatedAt,
	)
	return i, err
}

const getApplicationByName = `-- name: GetApplicationByName :one
SELECT id, name, callback_url, active, created_at FROM applications WHERE name = ?
`

func (q *Queries) GetApplicationByName(ctx context.Context, name string) (Application, error) {
	row := q.db.QueryRowContext(ctx, getApplicationByName, name)
	var i Application
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.CallbackUrl,
		&i.Active,
		&i.CreatedAt,
	)
	return i, err
}

const listApplications = `-- name: ListApplications :many
SELECT id, name, callback_url, active, created_at FROM applications ORDER BY name
`

func (q *Queries) ListApplications(ctx context.Context) ([]Application, error) {
	rows, err := q.db.QueryContext(ctx, listApplications)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Application
	for rows.Next() {
		var i Application
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.CallbackUrl,
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

const toggleApplication = `-- name: ToggleApplication :execrows
UPDATE applications SET active = NOT active WHERE id = ?
`

func (q *Queries) ToggleApplication(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, toggleApplication, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
