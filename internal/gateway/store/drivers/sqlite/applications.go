package sqlite

import (
	"context"

	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
	"github.com/aussiebroadwan/authgate/internal/gateway/store/drivers/sqlite/gen"
)

type applicationsRepo struct {
	q *gen.Queries
}

func (r *applicationsRepo) CreateApplication(ctx context.Context, a domain.Application) error {
	return mapWriteErr(r.q.CreateApplication(ctx, gen.CreateApplicationParams{
		ID:          a.ID,
		Name:        normalize(a.Name),
		CallbackUrl: a.CallbackURL,
		Active:      a.Active,
		CreatedAt:   toUnix(a.CreatedAt),
	}))
}

func (r *applicationsRepo) GetApplicationByID(ctx context.Context, id string) (domain.Application, error) {
	row, err := r.q.GetApplicationByID(ctx, id)
	if err != nil {
		return domain.Application{}, mapNotFound(err)
	}
	return mapApplication(row), nil
}

func (r *applicationsRepo) GetApplicationByName(ctx context.Context, name string) (domain.Application, error) {
	row, err := r.q.GetApplicationByName(ctx, normalize(name))
	if err != nil {
		return domain.Application{}, mapNotFound(err)
	}
	return mapApplication(row), nil
}

func (r *applicationsRepo) ListApplications(ctx context.Context) ([]domain.Application, error) {
	rows, err := r.q.ListApplications(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Application, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapApplication(row))
	}
	return out, nil
}

func (r *applicationsRepo) ToggleApplication(ctx context.Context, id string) error {
	return requireRow(r.q.ToggleApplication(ctx, id))
}

func (r *applicationsRepo) GetActiveCallbackURL(ctx context.Context, name string) (string, error) {
	url, err := r.q.GetActiveCallbackURL(ctx, normalize(name))
	if err != nil {
		return "", mapNotFound(err)
	}
	return url, nil
}

func mapApplication(row gen.Application) domain.Application {
	return domain.Application{
		ID:          row.ID,
		Name:        row.Name,
		CallbackURL: row.CallbackUrl,
		Active:      row.Active,
		CreatedAt:   fromUnix(row.CreatedAt),
	}
}
