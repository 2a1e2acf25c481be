package sqlite

import (
	"context"

	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
	"github.com/aussiebroadwan/authgate/internal/gateway/store/drivers/sqlite/gen"
)

type principalsRepo struct {
	q *gen.Queries
}

func (r *principalsRepo) CreatePrincipal(ctx context.Context, p domain.Principal) error {
	return mapWriteErr(r.q.CreatePrincipal(ctx, gen.CreatePrincipalParams{
		ID:        p.ID,
		Email:     normalize(p.Email),
		Name:      mapStringNull(p.Name),
		IsAdmin:   p.IsAdmin,
		Active:    p.Active,
		CreatedAt: toUnix(p.CreatedAt),
	}))
}

func (r *principalsRepo) GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error) {
	row, err := r.q.GetPrincipalByID(ctx, id)
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	return mapPrincipal(row), nil
}

func (r *principalsRepo) GetPrincipalByEmail(ctx context.Context, email string) (domain.Principal, error) {
	row, err := r.q.GetPrincipalByEmail(ctx, normalize(email))
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	return mapPrincipal(row), nil
}

func (r *principalsRepo) ListPrincipals(ctx context.Context) ([]domain.Principal, error) {
	rows, err := r.q.ListPrincipals(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Principal, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapPrincipal(row))
	}
	return out, nil
}

func (r *principalsRepo) TogglePrincipal(ctx context.Context, id string) error {
	return requireRow(r.q.TogglePrincipal(ctx, id))
}

func (r *principalsRepo) DeletePrincipal(ctx context.Context, id, protectedEmail string) error {
	return requireRow(r.q.DeletePrincipal(ctx, gen.DeletePrincipalParams{
		ID:    id,
		Email: normalize(protectedEmail),
	}))
}

func (r *principalsRepo) IsActiveAdmin(ctx context.Context, email string) (bool, error) {
	n, err := r.q.IsActiveAdmin(ctx, normalize(email))
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *principalsRepo) CountActiveAdmins(ctx context.Context) (int64, error) {
	return r.q.CountActiveAdmins(ctx)
}

func mapPrincipal(row gen.Principal) domain.Principal {
	return domain.Principal{
		ID:        row.ID,
		Email:     row.Email,
		Name:      mapNullString(row.Name),
		IsAdmin:   row.IsAdmin,
		Active:    row.Active,
		CreatedAt: fromUnix(row.CreatedAt),
	}
}
