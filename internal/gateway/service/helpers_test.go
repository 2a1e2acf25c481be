package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
	"github.com/aussiebroadwan/authgate/internal/gateway/secrets"
	"github.com/aussiebroadwan/authgate/internal/gateway/store/drivers/sqlite"
	"github.com/aussiebroadwan/authgate/pkg/idx"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const (
	testWebhookSecret   = "webhook-shared-secret"
	testAssertionSecret = "login-shared-secret"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// newFileStore opens an on-disk database so several connections can race.
func newFileStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.FileDSN(filepath.Join(t.TempDir(), "authgate.db")))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newSecrets(t *testing.T, content string) *secrets.FileSource {
	t.Helper()

	path := filepath.Join(t.TempDir(), "secrets.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return secrets.NewFileSource(path, slogx.Discard())
}

func defaultSecrets(t *testing.T) *secrets.FileSource {
	return newSecrets(t, "WEBHOOK_SECRET="+testWebhookSecret+"\nGOOGLE_INTERNAL_CLIENT_SECRET="+testAssertionSecret+"\n")
}

func seedApp(t *testing.T, st *sqlite.Store, name, callbackURL string, active bool) domain.Application {
	t.Helper()

	app := domain.Application{
		ID:          idx.New().String(),
		Name:        name,
		CallbackURL: callbackURL,
		Active:      active,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, st.Applications().CreateApplication(context.Background(), app))
	return app
}

func seedPrincipal(t *testing.T, st *sqlite.Store, email string, admin, active bool) domain.Principal {
	t.Helper()

	p := domain.Principal{
		ID:        idx.New().String(),
		Email:     email,
		IsAdmin:   admin,
		Active:    active,
		CreatedAt: time.Now(),
	}
	require.NoError(t, st.Principals().CreatePrincipal(context.Background(), p))
	return p
}

// fixedClock returns a settable clock for tests.
func fixedClock(t time.Time) (func() time.Time, func(time.Duration)) {
	now := t
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}
