package service

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/authgate/pkg/cryptox"
	"github.com/aussiebroadwan/authgate/pkg/jwtx"
)

const sessionKeyInfo = "authgate admin session v1"

var ErrSessionInvalid = errors.New("session invalid")

// Session is an issued admin session cookie value.
type Session struct {
	Token     string
	Claims    jwtx.SessionClaims
	ExpiresAt time.Time
}

// SessionService issues and checks admin session tokens.
type SessionService struct {
	signer *jwtx.HS256
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionService derives the signing key from secret. Without a secret a
// random key is used, so sessions do not survive a restart.
func NewSessionService(secret, issuer string, ttl time.Duration, logger *slog.Logger) (*SessionService, error) {
	var key []byte
	if secret != "" {
		k, err := cryptox.DeriveKey([]byte(secret), sessionKeyInfo, 32)
		if err != nil {
			return nil, err
		}
		key = k
	} else {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
		if logger != nil {
			logger.Warn("no session secret configured, using an ephemeral key")
		}
	}

	signer, err := jwtx.NewHS256(key, issuer)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	return &SessionService{signer: signer, ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the clock. Used in tests.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	s.signer.WithClock(now)
	return s
}

func (s *SessionService) TTL() time.Duration { return s.ttl }

// Issue signs a session for email.
func (s *SessionService) Issue(_ context.Context, email, name, picture string) (Session, error) {
	now := s.now()
	claims := jwtx.NewSessionClaims(normalize(email), name, picture, s.signer.Issuer(), s.ttl, now)

	tok, err := s.signer.Sign(claims)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, Claims: claims, ExpiresAt: now.Add(s.ttl)}, nil
}

// Verify parses a session token. Any failure is reported as
// ErrSessionInvalid wrapping the cause.
func (s *SessionService) Verify(_ context.Context, token string) (*jwtx.SessionClaims, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}
	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil, errors.Join(ErrSessionInvalid, err)
	}
	return claims, nil
}
