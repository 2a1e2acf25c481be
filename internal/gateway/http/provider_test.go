package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/authgate/pkg/relaysdk"
)

func TestProviderCallback(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing code", func(t *testing.T) {
		rec := env.do(t, httptest.NewRequest(http.MethodGet, "/acme/callback?state=notes", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("provider error", func(t *testing.T) {
		rec := env.do(t, httptest.NewRequest(http.MethodGet, "/acme/callback?error=access_denied", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upstream rejection carries diagnostics", func(t *testing.T) {
		rec := env.do(t, httptest.NewRequest(http.MethodGet, "/acme/callback?code=bad", nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		body := decodeError(t, rec)
		require.Equal(t, relaysdk.ErrorCodeUpstream, body.Error)
		require.Equal(t, http.StatusBadRequest, body.UpstreamStatus)
		require.Contains(t, body.UpstreamBody, "invalid_grant")
	})

	t.Run("no destination persists the refresh token", func(t *testing.T) {
		rec := env.do(t, httptest.NewRequest(http.MethodGet, "/acme/callback?code=good&state=nowhere", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp relaysdk.CallbackResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.True(t, resp.Success)
		require.Equal(t, "no_destination", resp.Delivery)
		require.True(t, resp.Persisted)
		require.NotEmpty(t, resp.Warning)
		require.Equal(t, "rt-new", env.secrets.Get("ACME_REFRESH"))

		rec = env.do(t, httptest.NewRequest(http.MethodGet, "/status", nil))
		var status relaysdk.StatusResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
		require.True(t, *status.Providers["acme"].HasRefreshToken)
	})
}

func TestProviderAuthorize(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/acme/authorize?app=Notes", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/authorize", loc.Path)
	require.Equal(t, "notes", loc.Query().Get("state"))
	require.Equal(t, "client", loc.Query().Get("client_id"))
	require.Equal(t, "consent", loc.Query().Get("prompt"))
	require.Equal(t, "https://auth.example.com/acme/callback", loc.Query().Get("redirect_uri"))
}
