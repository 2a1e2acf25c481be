package assertion_test

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/authgate/pkg/assertion"
	"github.com/aussiebroadwan/authgate/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

var secret = []byte("google-internal-client-secret")

func TestSignVerifyRoundTrip(t *testing.T) {
	token, err := assertion.Sign(assertion.Claim{Email: "admin@example.com", Name: "Admin"}, secret)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(token, "."))

	claim, err := assertion.Verify(token, secret)
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", claim.Email)
	require.Equal(t, "Admin", claim.Name)
}

func TestVerifyAcceptsStandardPaddedPayload(t *testing.T) {
	// Upstream login service format: std base64 payload, hex signature keyed
	// by hex(sha256(secret)).
	raw, err := json.Marshal(map[string]string{"email": "a@b.com", "picture": "https://x/y?z=1&w=>>"})
	require.NoError(t, err)
	payload := base64.StdEncoding.EncodeToString(raw)
	token := payload + "." + cryptox.SignHex(assertion.SigningKey(secret), []byte(payload))

	claim, err := assertion.Verify(token, secret)
	require.NoError(t, err)
	require.Equal(t, "a@b.com", claim.Email)
}

func TestVerifyMalformedToken(t *testing.T) {
	for _, token := range []string{"", "abc", "a.b.c", ".sig", "payload.", "."} {
		_, err := assertion.Verify(token, secret)
		require.ErrorIs(t, err, assertion.ErrMalformedToken, "token %q", token)
	}
}

func TestVerifyTamperedPayloadFails(t *testing.T) {
	token, err := assertion.Sign(assertion.Claim{Email: "user@example.com"}, secret)
	require.NoError(t, err)
	payload, sig, _ := strings.Cut(token, ".")

	// Flip each byte of the payload in turn; none may verify.
	for i := range payload {
		b := []byte(payload)
		b[i] ^= 0x01
		_, err := assertion.Verify(string(b)+"."+sig, secret)
		require.ErrorIs(t, err, assertion.ErrSignatureMismatch, "byte %d", i)
	}
}

func TestVerifyMismatchedSecretFails(t *testing.T) {
	token, err := assertion.Sign(assertion.Claim{Email: "user@example.com"}, secret)
	require.NoError(t, err)

	_, err = assertion.Verify(token, []byte("some-other-secret"))
	require.ErrorIs(t, err, assertion.ErrSignatureMismatch)
}

func TestVerifyRequiresSecret(t *testing.T) {
	_, err := assertion.Verify("a.b", nil)
	require.ErrorIs(t, err, assertion.ErrNoSecret)

	_, err = assertion.Sign(assertion.Claim{Email: "x@y.z"}, nil)
	require.ErrorIs(t, err, assertion.ErrNoSecret)
}

func TestVerifyMalformedClaim(t *testing.T) {
	sign := func(payload string) string {
		return payload + "." + cryptox.SignHex(assertion.SigningKey(secret), []byte(payload))
	}

	t.Run("missing email", func(t *testing.T) {
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"name":"nobody"}`))
		_, err := assertion.Verify(sign(payload), secret)
		require.ErrorIs(t, err, assertion.ErrMalformedClaim)
	})

	t.Run("not json", func(t *testing.T) {
		payload := base64.RawURLEncoding.EncodeToString([]byte(`not json`))
		_, err := assertion.Verify(sign(payload), secret)
		require.ErrorIs(t, err, assertion.ErrMalformedClaim)
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := assertion.Verify(sign("!!!!"), secret)
		require.ErrorIs(t, err, assertion.ErrMalformedClaim)
	})
}

func TestVerifyExpiredClaim(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	token, err := assertion.Sign(assertion.Claim{Email: "a@b.com", ExpiresAt: now.Unix()}, secret)
	require.NoError(t, err)

	_, err = assertion.VerifyAt(token, secret, now.Add(-time.Second))
	require.NoError(t, err)

	_, err = assertion.VerifyAt(token, secret, now)
	require.ErrorIs(t, err, assertion.ErrExpiredClaim)
}
