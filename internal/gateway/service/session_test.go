package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/authgate/pkg/jwtx"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

func TestSessionIssueVerify(t *testing.T) {
	ctx := context.Background()
	now, advance := fixedClock(time.Now())

	svc, err := NewSessionService("secret", "https://auth.example.com", time.Hour, slogx.Discard())
	require.NoError(t, err)
	svc.WithClock(now)

	sess, err := svc.Issue(ctx, "Root@Example.com", "Root", "")
	require.NoError(t, err)

	claims, err := svc.Verify(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, "root@example.com", claims.Subject)
	require.Equal(t, "Root", claims.Name)

	advance(2 * time.Hour)
	_, err = svc.Verify(ctx, sess.Token)
	require.ErrorIs(t, err, ErrSessionInvalid)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestSessionKeysAreBoundToSecret(t *testing.T) {
	ctx := context.Background()

	a, err := NewSessionService("one", "iss", 0, slogx.Discard())
	require.NoError(t, err)
	b, err := NewSessionService("two", "iss", 0, slogx.Discard())
	require.NoError(t, err)
	again, err := NewSessionService("one", "iss", 0, slogx.Discard())
	require.NoError(t, err)
	require.Equal(t, jwtx.DefaultSessionTTL, a.TTL())

	sess, err := a.Issue(ctx, "root@example.com", "", "")
	require.NoError(t, err)

	_, err = b.Verify(ctx, sess.Token)
	require.ErrorIs(t, err, ErrSessionInvalid)

	_, err = again.Verify(ctx, sess.Token)
	require.NoError(t, err)
}

func TestSessionEphemeralKey(t *testing.T) {
	ctx := context.Background()

	a, err := NewSessionService("", "iss", time.Hour, slogx.Discard())
	require.NoError(t, err)
	b, err := NewSessionService("", "iss", time.Hour, slogx.Discard())
	require.NoError(t, err)

	sess, err := a.Issue(ctx, "root@example.com", "", "")
	require.NoError(t, err)

	_, err = a.Verify(ctx, sess.Token)
	require.NoError(t, err)
	_, err = b.Verify(ctx, sess.Token)
	require.ErrorIs(t, err, ErrSessionInvalid)
}
