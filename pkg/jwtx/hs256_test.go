package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/authgate/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestHS256RoundTrip(t *testing.T) {
	h, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "authgate")
	require.NoError(t, err)

	now := time.Now()
	token, err := h.Sign(jwtx.NewSessionClaims("admin@example.com", "Admin", "", "authgate", time.Hour, now))
	require.NoError(t, err)

	claims, err := h.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", claims.Subject)
	require.Equal(t, "Admin", claims.Name)
	require.NotEmpty(t, claims.ID)
}

func TestHS256RejectsForeignKey(t *testing.T) {
	a, err := jwtx.NewHS256([]byte("key-a"), "authgate")
	require.NoError(t, err)
	b, err := jwtx.NewHS256([]byte("key-b"), "authgate")
	require.NoError(t, err)

	token, err := a.Sign(jwtx.NewSessionClaims("admin@example.com", "", "", "authgate", time.Hour, time.Now()))
	require.NoError(t, err)

	_, err = b.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestHS256RejectsOtherIssuer(t *testing.T) {
	h, err := jwtx.NewHS256([]byte("key"), "authgate")
	require.NoError(t, err)

	token, err := h.Sign(jwtx.NewSessionClaims("admin@example.com", "", "", "someone-else", time.Hour, time.Now()))
	require.NoError(t, err)

	_, err = h.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestHS256RejectsExpired(t *testing.T) {
	now := time.Now()
	h, err := jwtx.NewHS256([]byte("key"), "authgate")
	require.NoError(t, err)

	token, err := h.Sign(jwtx.NewSessionClaims("admin@example.com", "", "", "authgate", time.Minute, now))
	require.NoError(t, err)

	h.WithClock(func() time.Time { return now.Add(2 * time.Minute) })
	_, err = h.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestHS256RejectsNoneAlgorithm(t *testing.T) {
	h, err := jwtx.NewHS256([]byte("key"), "authgate")
	require.NoError(t, err)

	claims := jwtx.NewSessionClaims("admin@example.com", "", "", "authgate", time.Hour, time.Now())
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = h.Verify(unsigned)
	require.Error(t, err)
}

func TestNewHS256RequiresKey(t *testing.T) {
	_, err := jwtx.NewHS256(nil, "authgate")
	require.ErrorIs(t, err, jwtx.ErrNoKey)
}
