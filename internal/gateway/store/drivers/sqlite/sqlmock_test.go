package sqlite

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
	"github.com/aussiebroadwan/authgate/internal/gateway/store"
	"github.com/stretchr/testify/require"
)

func TestMarkMagicLinkUsedIsConditionalUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := NewStoreFromDB(db)
	now := time.Unix(1_700_000_000, 0)

	query := regexp.QuoteMeta("UPDATE magic_links SET used_at = ?\nWHERE token_hash = ? AND used_at IS NULL AND expires_at > ?")
	mock.ExpectExec(query).WithArgs(now.Unix(), "hash", now.Unix()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(now.Unix(), "hash", now.Unix()).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := st.MagicLinks().MarkMagicLinkUsed(context.Background(), "hash", now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = st.MagicLinks().MarkMagicLinkUsed(context.Background(), "hash", now)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUniqueViolationMapsToAlreadyExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := NewStoreFromDB(db)

	mock.ExpectExec("INSERT INTO applications").
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: applications.name (2067)"))
	mock.ExpectExec("INSERT INTO applications").
		WillReturnError(errors.New("disk I/O error"))

	app := domain.Application{ID: "01", Name: "notes", CallbackURL: "https://x", Active: true}

	err = st.Applications().CreateApplication(context.Background(), app)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	err = st.Applications().CreateApplication(context.Background(), app)
	require.Error(t, err)
	require.NotErrorIs(t, err, store.ErrAlreadyExists)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePrincipalGuardsProtectedEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := NewStoreFromDB(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM principals WHERE id = ? AND email != ?")).
		WithArgs("p1", "admin@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = st.Principals().DeletePrincipal(context.Background(), "p1", " Admin@Example.com ")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
