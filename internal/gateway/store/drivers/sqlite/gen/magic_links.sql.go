// source: magic_links.sql

package gen

import (
	"context"
)

const createMagicLink = `-- name: CreateMagicLink :exec
INSERT INTO magic_links (id, token_hash, email, app_name, expires_at, created_by, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type CreateMagicLinkParams struct {
	ID        string
	TokenHash string
	Email     string
	AppName   string
	ExpiresAt int64
	CreatedBy string
	CreatedAt int64
}

func (q *Queries) CreateMagicLink(ctx context.Context, arg CreateMagicLinkParams) error {
	_, err := q.db.ExecContext(ctx, createMagicLink,
		arg.ID,
		arg.TokenHash,
		arg.Email,
		arg.AppName,
		arg.ExpiresAt,
		arg.CreatedBy,
		arg.CreatedAt,
	)
	return err
}

const deleteExpiredMagicLinks = `-- name: DeleteExpiredMagicLinks :execrows
DELETE FROM magic_links WHERE expires_at < ?
`

func (q *Queries) DeleteExpiredMagicLinks(ctx context.Context, expiresAt int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpiredMagicLinks, expiresAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getMagicLinkByTokenHash = `-- name: GetMagicLinkByTokenHash :one
SELECT id, token_hash, email, app_name, expires_at, used_at, created_by, created_at
FROM magic_links WHERE token_hash = ?
`

func (q *Queries) GetMagicLinkByTokenHash(ctx context.Context, tokenHash string) (MagicLink, error) {
	row := q.db.QueryRowContext(ctx, getMagicLinkByTokenHash, tokenHash)
	var i MagicLink
	err := row.Scan(
		&i.ID,
		&i.TokenHash,
		&i.Email,
		&i.AppName,
		&i.ExpiresAt,
		&i.UsedAt,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const listRecentMagicLinks = `-- name: ListRecentMagicLinks :many
SELECT id, token_hash, email, app_name, expires_at, used_at, created_by, created_at
FROM magic_links ORDER BY created_at DESC, id DESC LIMIT ?
`

func (q *Queries) ListRecentMagicLinks(ctx context.Context, limit int64) ([]MagicLink, error) {
	rows, err := q.db.QueryContext(ctx, listRecentMagicLinks, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MagicLink
	for rows.Next() {
		var i MagicLink
		if err := rows.Scan(
			&i.ID,
			&i.TokenHash,
			&i.Email,
			&i.AppName,
			&i.ExpiresAt,
			&i.UsedAt,
			&i.CreatedBy,
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

const markMagicLinkUsed = `-- name: MarkMagicLinkUsed :execrows
UPDATE magic_links SET used_at = ?
WHERE token_hash = ? AND used_at IS NULL AND expires_at > ?
`

type MarkMagicLinkUsedParams struct {
	UsedAt    int64
	TokenHash string
	Now       int64
}

func (q *Queries) MarkMagicLinkUsed(ctx context.Context, arg MarkMagicLinkUsedParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, markMagicLinkUsed, arg.UsedAt, arg.TokenHash, arg.Now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
