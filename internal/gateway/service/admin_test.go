package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
	"github.com/aussiebroadwan/authgate/internal/gateway/store/drivers/sqlite"
	"github.com/aussiebroadwan/authgate/pkg/assertion"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

func newAdminService(t *testing.T, st *sqlite.Store) *AdminService {
	t.Helper()

	src := defaultSecrets(t)
	sessions, err := NewSessionService("session-secret", "https://auth.example.com", time.Hour, slogx.Discard())
	require.NoError(t, err)

	return &AdminService{
		Store: st,
		Assertions: &AssertionService{
			Secrets:    src,
			VerifyKey:  "GOOGLE_INTERNAL_CLIENT_SECRET",
			HandoffKey: "WEBHOOK_SECRET",
		},
		Sessions:   sessions,
		MagicLinks: &MagicLinkService{Store: st, PublicURL: "https://auth.example.com"},
		GatewayID:  "auth.example.com",
	}
}

func loginToken(t *testing.T, email string) string {
	t.Helper()
	tok, err := assertion.Sign(assertion.Claim{Email: email, Name: "Admin"}, []byte(testAssertionSecret))
	require.NoError(t, err)
	return tok
}

func TestAdminLogin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedPrincipal(t, st, "root@example.com", true, true)
	seedPrincipal(t, st, "user@example.com", false, true)
	seedPrincipal(t, st, "gone@example.com", true, false)

	svc := newAdminService(t, st)
	client := ClientInfo{IPAddress: "203.0.113.7", UserAgent: "test"}

	t.Run("active admin gets a session", func(t *testing.T) {
		sess, err := svc.Login(ctx, loginToken(t, "Root@Example.com"), client)
		require.NoError(t, err)
		require.NotEmpty(t, sess.Token)

		claims, err := svc.Authenticate(ctx, sess.Token)
		require.NoError(t, err)
		require.Equal(t, "root@example.com", claims.Subject)

		logs, err := st.AccessLogs().ListRecentAccessLogs(ctx, 10)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		require.Equal(t, domain.AccessMethodAdminLogin, logs[0].Method)
		require.Equal(t, "auth.example.com", logs[0].AppName)
		require.Equal(t, "203.0.113.7", logs[0].IPAddress)
	})

	denied := []struct {
		name  string
		token string
	}{
		{"non-admin", loginToken(t, "user@example.com")},
		{"inactive admin", loginToken(t, "gone@example.com")},
		{"unknown", loginToken(t, "nobody@example.com")},
		{"garbage", "not-a-token"},
	}
	for _, tt := range denied {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.token, client)
			require.ErrorIs(t, err, ErrAccessDenied)
		})
	}

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := assertion.Sign(assertion.Claim{Email: "root@example.com"}, []byte("other"))
		require.NoError(t, err)
		_, err = svc.Login(ctx, tok, client)
		require.ErrorIs(t, err, ErrAccessDenied)
		require.ErrorIs(t, err, assertion.ErrSignatureMismatch)
	})
}

func TestAdminAuthenticateRechecksAdmin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	root := seedPrincipal(t, st, "root@example.com", true, true)
	other := seedPrincipal(t, st, "other@example.com", true, true)

	svc := newAdminService(t, st)
	sess, err := svc.Login(ctx, loginToken(t, other.Email), ClientInfo{})
	require.NoError(t, err)

	require.NoError(t, svc.TogglePrincipal(ctx, root.Email, other.ID))

	_, err = svc.Authenticate(ctx, sess.Token)
	require.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.Authenticate(ctx, "forged")
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestAdminSelfLockout(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	root := seedPrincipal(t, st, "root@example.com", true, true)
	svc := newAdminService(t, st)

	require.ErrorIs(t, svc.DeletePrincipal(ctx, "ROOT@example.com", root.ID), ErrSelfLockout)
	require.ErrorIs(t, svc.TogglePrincipal(ctx, "root@example.com", root.ID), ErrSelfLockout)

	p, err := st.Principals().GetPrincipalByID(ctx, root.ID)
	require.NoError(t, err)
	require.True(t, p.Active)
}

func TestAdminKeepsLastActiveAdmin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	root := seedPrincipal(t, st, "root@example.com", true, true)
	svc := newAdminService(t, st)

	// The actor is not the target, so only the admin count protects root.
	require.ErrorIs(t, svc.DeletePrincipal(ctx, "cli", root.ID), ErrLastAdmin)
	require.ErrorIs(t, svc.TogglePrincipal(ctx, "cli", root.ID), ErrLastAdmin)

	p, err := st.Principals().GetPrincipalByID(ctx, root.ID)
	require.NoError(t, err)
	require.True(t, p.Active)

	second := seedPrincipal(t, st, "second@example.com", true, true)
	require.NoError(t, svc.TogglePrincipal(ctx, "cli", second.ID))
	require.ErrorIs(t, svc.TogglePrincipal(ctx, "cli", root.ID), ErrLastAdmin)

	// Inactive admins do not count, and can always be re-enabled or removed.
	require.NoError(t, svc.TogglePrincipal(ctx, "cli", second.ID))
	require.NoError(t, svc.TogglePrincipal(ctx, "cli", root.ID))
	require.ErrorIs(t, svc.DeletePrincipal(ctx, "cli", second.ID), ErrLastAdmin)
	require.NoError(t, svc.DeletePrincipal(ctx, "cli", root.ID))
}

func TestAdminPrincipalLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedPrincipal(t, st, "root@example.com", true, true)
	svc := newAdminService(t, st)

	p, err := svc.AddPrincipal(ctx, "root@example.com", " New@Example.com ", " Newcomer ", false)
	require.NoError(t, err)
	require.Equal(t, "new@example.com", p.Email)
	require.Equal(t, "Newcomer", p.Name)

	_, err = svc.AddPrincipal(ctx, "root@example.com", "NEW@example.com", "", false)
	require.ErrorIs(t, err, ErrPrincipalExists)

	_, err = svc.AddPrincipal(ctx, "root@example.com", "nope", "", false)
	require.ErrorIs(t, err, ErrInvalidPrincipal)

	require.NoError(t, svc.TogglePrincipal(ctx, "root@example.com", p.ID))
	got, err := st.Principals().GetPrincipalByID(ctx, p.ID)
	require.NoError(t, err)
	require.False(t, got.Active)

	require.NoError(t, svc.DeletePrincipal(ctx, "root@example.com", p.ID))
	require.ErrorIs(t, svc.DeletePrincipal(ctx, "root@example.com", p.ID), ErrPrincipalNotFound)
}

func TestAdminApplications(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newAdminService(t, st)

	app, err := svc.AddApplication(ctx, "root@example.com", " Notes ", "https://notes.example.com/auth")
	require.NoError(t, err)
	require.Equal(t, "notes", app.Name)

	_, err = svc.AddApplication(ctx, "root@example.com", "NOTES", "https://other.example.com")
	require.ErrorIs(t, err, ErrApplicationExists)

	for _, bad := range [][2]string{
		{"has space", "https://x.example.com"},
		{"ok", "ftp://x.example.com"},
		{"ok", "/relative"},
		{"", "https://x.example.com"},
	} {
		_, err = svc.AddApplication(ctx, "root@example.com", bad[0], bad[1])
		require.ErrorIs(t, err, ErrInvalidAppRequest, bad)
	}

	require.NoError(t, svc.ToggleApplication(ctx, "root@example.com", app.ID))
	_, err = st.Applications().GetActiveCallbackURL(ctx, "notes")
	require.Error(t, err)

	require.ErrorIs(t, svc.ToggleApplication(ctx, "root@example.com", "missing"), ErrApplicationNotFound)
}

func TestAdminCreateMagicLinkAndDashboard(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedPrincipal(t, st, "root@example.com", true, true)
	seedApp(t, st, "notes", "https://notes.example.com/auth", true)
	svc := newAdminService(t, st)

	link, err := svc.CreateMagicLink(ctx, "root@example.com", "guest@example.com", "notes", 24)
	require.NoError(t, err)
	require.Contains(t, link, "https://auth.example.com/magic?token=")

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, d.Principals, 1)
	require.Len(t, d.Applications, 1)
	require.Len(t, d.MagicLinks, 1)
	require.Equal(t, domain.MagicLinkValid, d.MagicLinks[0].Status)
	require.Equal(t, "root@example.com", d.MagicLinks[0].CreatedBy)
}
