// source: access_logs.sql

package gen

import (
	"context"
)

const appendAccessLog = `-- name: AppendAccessLog :exec
INSERT INTO access_logs (id, email, app_name, method, ip_address, user_agent, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type AppendAccessLogParams struct {
	ID        string
	Email     string
	AppName   string
	Method    string
	IpAddress string
	UserAgent string
	CreatedAt int64
}

func (q *Queries) AppendAccessLog(ctx context.Context, arg AppendAccessLogParams) error {
	_, err := q.db.ExecContext(ctx, appendAccessLog,
		arg.ID,
		arg.Email,
		arg.AppName,
		arg.Method,
		arg.IpAddress,
		arg.UserAgent,
		arg.CreatedAt,
	)
	return err
}

const listRecentAccessLogs = `-- name: ListRecentAccessLogs :many
SELECT id, email, app_name, method, ip_address, user_agent, created_at
FROM access_logs ORDER BY created_at DESC, id DESC LIMIT ?
`

func (q *Queries) ListRecentAccessLogs(ctx context.Context, limit int64) ([]AccessLog, error) {
	rows, err := q.db.QueryContext(ctx, listRecentAccessLogs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AccessLog
	for rows.Next() {
		var i AccessLog
		if err := rows.Scan(
			&i.ID,
			&i.Email,
			&i.AppName,
			&i.Method,
			&i.IpAddress,
			&i.UserAgent,
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
