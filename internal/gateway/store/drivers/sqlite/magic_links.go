package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
	"github.com/aussiebroadwan/authgate/internal/gateway/store/drivers/sqlite/gen"
)

type magicLinksRepo struct {
	q *gen.Queries
}

func (r *magicLinksRepo) CreateMagicLink(ctx context.Context, m domain.MagicLink) error {
	return mapWriteErr(r.q.CreateMagicLink(ctx, gen.CreateMagicLinkParams{
		ID:        m.ID,
		TokenHash: m.TokenHash,
		Email:     normalize(m.Email),
		AppName:   normalize(m.AppName),
		ExpiresAt: toUnix(m.ExpiresAt),
		CreatedBy: normalize(m.CreatedBy),
		CreatedAt: toUnix(m.CreatedAt),
	}))
}

func (r *magicLinksRepo) GetMagicLinkByTokenHash(ctx context.Context, hash string) (domain.MagicLink, error) {
	row, err := r.q.GetMagicLinkByTokenHash(ctx, hash)
	if err != nil {
		return domain.MagicLink{}, mapNotFound(err)
	}
	return mapMagicLink(row), nil
}

// MarkMagicLinkUsed is a single autocommit UPDATE; SQLite's write lock makes
// it the only serialisation point needed between concurrent redemptions.
func (r *magicLinksRepo) MarkMagicLinkUsed(ctx context.Context, hash string, now time.Time) (bool, error) {
	n, err := r.q.MarkMagicLinkUsed(ctx, gen.MarkMagicLinkUsedParams{
		UsedAt:    toUnix(now),
		TokenHash: hash,
		Now:       toUnix(now),
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *magicLinksRepo) ListRecentMagicLinks(ctx context.Context, limit int) ([]domain.MagicLink, error) {
	rows, err := r.q.ListRecentMagicLinks(ctx, int64(limit))
	if err != nil {
		return nil, err
	}
	out := make([]domain.MagicLink, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapMagicLink(row))
	}
	return out, nil
}

func (r *magicLinksRepo) DeleteExpiredMagicLinks(ctx context.Context, before time.Time) (int64, error) {
	return r.q.DeleteExpiredMagicLinks(ctx, toUnix(before))
}

func mapMagicLink(row gen.MagicLink) domain.MagicLink {
	return domain.MagicLink{
		ID:        row.ID,
		TokenHash: row.TokenHash,
		Email:     row.Email,
		AppName:   row.AppName,
		ExpiresAt: fromUnix(row.ExpiresAt),
		UsedAt:    mapNullUnixPtr(row.UsedAt),
		CreatedBy: row.CreatedBy,
		CreatedAt: fromUnix(row.CreatedAt),
	}
}
