package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AUTHGATE_PUBLIC_URL", "https://auth.example.com/")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "https://auth.example.com", cfg.PublicURL)
	require.Equal(t, "auth.example.com", cfg.GatewayID)
	require.Equal(t, 720, cfg.MaxMagicLinkHours)
	require.Equal(t, 30*24*time.Hour, cfg.MagicLinkRetention)
	require.Equal(t, "WEBHOOK_SECRET", cfg.WebhookSecretKey)
	require.Equal(t, ":8080", cfg.Addr())
	require.True(t, cfg.SecureCookies)
	require.False(t, cfg.TrustProxyHeaders)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AUTHGATE_GATEWAY_ID", "edge-1")
	t.Setenv("AUTHGATE_SESSION_TTL", "30m")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("AUTHGATE_TRUST_PROXY_HEADERS", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "edge-1", cfg.GatewayID)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.Equal(t, ":9090", cfg.Addr())
	require.Equal(t, "text", cfg.LogFormat)
	require.True(t, cfg.TrustProxyHeaders)
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"relative public url", "AUTHGATE_PUBLIC_URL", "auth.example.com"},
		{"bad duration", "AUTHGATE_SESSION_TTL", "forever"},
		{"port out of range", "PORT", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}
