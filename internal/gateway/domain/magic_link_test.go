package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMagicLinkStatusAt(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	used := now.Add(-time.Minute)

	tests := []struct {
		name string
		link MagicLink
		want MagicLinkStatus
	}{
		{"valid", MagicLink{ExpiresAt: now.Add(time.Hour)}, MagicLinkValid},
		{"used", MagicLink{ExpiresAt: now.Add(time.Hour), UsedAt: &used}, MagicLinkUsed},
		{"expired", MagicLink{ExpiresAt: now.Add(-time.Second)}, MagicLinkExpired},
		{"expired at boundary", MagicLink{ExpiresAt: now}, MagicLinkExpired},
		{"expired wins over used", MagicLink{ExpiresAt: now.Add(-time.Second), UsedAt: &used}, MagicLinkExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.link.StatusAt(now))
		})
	}
}
