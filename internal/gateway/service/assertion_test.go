package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/authgate/internal/gateway/domain"
	"github.com/aussiebroadwan/authgate/pkg/assertion"
)

func TestAssertionVerifyReadsSecretFromSource(t *testing.T) {
	ctx := context.Background()
	svc := &AssertionService{Secrets: defaultSecrets(t), VerifyKey: "GOOGLE_INTERNAL_CLIENT_SECRET"}

	tok, err := assertion.Sign(assertion.Claim{Email: "Root@Example.com"}, []byte(testAssertionSecret))
	require.NoError(t, err)

	claim, err := svc.Verify(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, "root@example.com", claim.Email)

	tampered := tok[:len(tok)-1] + "0"
	if tampered == tok {
		tampered = tok[:len(tok)-1] + "1"
	}
	_, err = svc.Verify(ctx, tampered)
	require.ErrorIs(t, err, assertion.ErrSignatureMismatch)
}

func TestAssertionWithoutSecret(t *testing.T) {
	ctx := context.Background()
	svc := &AssertionService{Secrets: newSecrets(t, ""), VerifyKey: "GOOGLE_INTERNAL_CLIENT_SECRET", HandoffKey: "WEBHOOK_SECRET"}

	tok, err := assertion.Sign(assertion.Claim{Email: "root@example.com"}, []byte(testAssertionSecret))
	require.NoError(t, err)

	_, err = svc.Verify(ctx, tok)
	require.ErrorIs(t, err, assertion.ErrNoSecret)

	_, err = svc.Handoff(ctx, domain.MagicLinkIdentity{Email: "a@b.com", AppName: "x"})
	require.ErrorIs(t, err, assertion.ErrNoSecret)
}

func TestAssertionHandoffExpires(t *testing.T) {
	ctx := context.Background()
	issued := time.Unix(1_700_000_000, 0)
	now, _ := fixedClock(issued)

	svc := &AssertionService{Secrets: defaultSecrets(t), HandoffKey: "WEBHOOK_SECRET", HandoffTTL: time.Minute, Now: now}

	tok, err := svc.Handoff(ctx, domain.MagicLinkIdentity{Email: "a@b.com", AppName: "x"})
	require.NoError(t, err)

	_, err = assertion.VerifyAt(tok, []byte(testWebhookSecret), issued.Add(30*time.Second))
	require.NoError(t, err)
	_, err = assertion.VerifyAt(tok, []byte(testWebhookSecret), issued.Add(time.Minute))
	require.ErrorIs(t, err, assertion.ErrExpiredClaim)
}
