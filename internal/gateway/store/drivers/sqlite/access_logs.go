package sqlite

import (
	"context"

	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
	"github.com/aussiebroadwan/authgate/internal/gateway/store/drivers/sqlite/gen"
)

type accessLogsRepo struct {
	q *gen.Queries
}

func (r *accessLogsRepo) AppendAccessLog(ctx context.Context, e domain.AccessLogEntry) error {
	return r.q.AppendAccessLog(ctx, gen.AppendAccessLogParams{
		ID:        e.ID,
		Email:     normalize(e.Email),
		AppName:   normalize(e.AppName),
		Method:    e.Method,
		IpAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		CreatedAt: toUnix(e.CreatedAt),
	})
}

func (r *accessLogsRepo) ListRecentAccessLogs(ctx context.Context, limit int) ([]domain.AccessLogEntry, error) {
	rows, err := r.q.ListRecentAccessLogs(ctx, int64(limit))
	if err != nil {
		return nil, err
	}
	out := make([]domain.AccessLogEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.AccessLogEntry{
			ID:        row.ID,
			Email:     row.Email,
			AppName:   row.AppName,
			Method:    row.Method,
			IPAddress: row.IpAddress,
			UserAgent: row.UserAgent,
			CreatedAt: fromUnix(row.CreatedAt),
		})
	}
	return out, nil
}
