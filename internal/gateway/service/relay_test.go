package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
	"github.com/aussiebroadwan/authgate/pkg/relaysdk"
)

var testTokens = domain.TokenSet{
	AccessToken:  "access-123",
	RefreshToken: "refresh-456",
	ExpiresIn:    3600,
	TokenType:    "Bearer",
	Scope:        "offline_access User.Read",
}

func TestRelayDelivers(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	var got relaysdk.RelayPayload
	var headers http.Header
	inner := relaysdk.Handler([]byte(testWebhookSecret), func(_ context.Context, p relaysdk.RelayPayload) error {
		got = p
		return nil
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		inner.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	seedApp(t, st, "notes", srv.URL+"/hook", true)

	svc := &RelayService{
		Store:     st,
		Secrets:   defaultSecrets(t),
		SecretKey: "WEBHOOK_SECRET",
		GatewayID: "auth.example.com",
	}

	res := svc.Deliver(ctx, "microsoft", "Notes", testTokens)
	require.Equal(t, domain.DeliveryDelivered, res.Outcome)
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	require.False(t, res.NeedsFallback())

	require.Equal(t, "microsoft", got.Provider)
	require.Equal(t, "notes", got.App)
	require.Equal(t, "refresh-456", got.Tokens.RefreshToken)
	require.NotEmpty(t, got.Timestamp)

	require.Equal(t, "application/json", headers.Get("Content-Type"))
	require.Equal(t, "auth.example.com", headers.Get(relaysdk.HeaderProvider))
	_, err := uuid.Parse(headers.Get(relaysdk.HeaderDelivery))
	require.NoError(t, err)
	require.Equal(t, res.DeliveryID, headers.Get(relaysdk.HeaderDelivery))
}

func TestRelayNoDestination(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedApp(t, st, "dormant", "https://dormant.example.com/hook", false)

	svc := &RelayService{Store: st, Secrets: defaultSecrets(t), SecretKey: "WEBHOOK_SECRET"}

	for _, app := range []string{"", "ghost", "dormant"} {
		t.Run("app="+app, func(t *testing.T) {
			res := svc.Deliver(ctx, "microsoft", app, testTokens)
			require.Equal(t, domain.DeliveryNoDestination, res.Outcome)
			require.NoError(t, res.Err)
			require.True(t, res.NeedsFallback())
		})
	}
}

func TestRelayFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("non-2xx is not retried", func(t *testing.T) {
		st := newTestStore(t)
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			_, _ = io.Copy(io.Discard, r.Body)
			w.WriteHeader(http.StatusBadGateway)
		}))
		t.Cleanup(srv.Close)
		seedApp(t, st, "notes", srv.URL, true)

		svc := &RelayService{Store: st, Secrets: defaultSecrets(t), SecretKey: "WEBHOOK_SECRET"}
		res := svc.Deliver(ctx, "microsoft", "notes", testTokens)

		require.Equal(t, domain.DeliveryFailed, res.Outcome)
		require.Equal(t, http.StatusBadGateway, res.StatusCode)
		require.Error(t, res.Err)
		require.Equal(t, 1, calls)
	})

	t.Run("wrong secret is rejected by the receiver", func(t *testing.T) {
		st := newTestStore(t)
		srv := httptest.NewServer(relaysdk.Handler([]byte("another-secret"), func(context.Context, relaysdk.RelayPayload) error {
			return nil
		}))
		t.Cleanup(srv.Close)
		seedApp(t, st, "notes", srv.URL, true)

		svc := &RelayService{Store: st, Secrets: defaultSecrets(t), SecretKey: "WEBHOOK_SECRET"}
		res := svc.Deliver(ctx, "microsoft", "notes", testTokens)

		require.Equal(t, domain.DeliveryFailed, res.Outcome)
		require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("transport error", func(t *testing.T) {
		st := newTestStore(t)
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		seedApp(t, st, "notes", url, true)

		svc := &RelayService{Store: st, Secrets: defaultSecrets(t), SecretKey: "WEBHOOK_SECRET"}
		res := svc.Deliver(ctx, "microsoft", "notes", testTokens)

		require.Equal(t, domain.DeliveryFailed, res.Outcome)
		require.Zero(t, res.StatusCode)
		require.Error(t, res.Err)
	})

	t.Run("missing secret fails closed", func(t *testing.T) {
		st := newTestStore(t)
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		t.Cleanup(srv.Close)
		seedApp(t, st, "notes", srv.URL, true)

		svc := &RelayService{Store: st, Secrets: newSecrets(t, "OTHER=1\n"), SecretKey: "WEBHOOK_SECRET"}
		res := svc.Deliver(ctx, "microsoft", "notes", testTokens)

		require.Equal(t, domain.DeliveryFailed, res.Outcome)
		require.ErrorIs(t, res.Err, ErrWebhookSecretMissing)
		require.False(t, called)
	})
}
