package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HS256 signs and verifies admin session tokens with a single symmetric
// key. Sessions never leave the gateway, so there is no JWKS to publish.
type HS256 struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// NewHS256 returns a signer/verifier pair bound to issuer.
func NewHS256(key []byte, issuer string) (*HS256, error) {
	if len(key) == 0 {
		return nil, ErrNoKey
	}
	return &HS256{key: key, issuer: issuer, now: time.Now}, nil
}

// WithClock overrides the verification clock. Used in tests.
func (h *HS256) WithClock(now func() time.Time) *HS256 {
	h.now = now
	return h
}

func (h *HS256) Issuer() string { return h.issuer }

// Sign serialises claims into a compact JWT.
func (h *HS256) Sign(claims SessionClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.key)
}

// Verify validates the JWT string and returns its parsed claims.
func (h *HS256) Verify(tokenStr string) (*SessionClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(h.now),
	)

	token, err := parser.ParseWithClaims(tokenStr, &SessionClaims{}, func(*jwt.Token) (any, error) {
		return h.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}

	if err := claims.ValidateIssuer(h.issuer); err != nil {
		return nil, err
	}
	if err := claims.ValidateAudience(h.issuer); err != nil {
		return nil, err
	}
	if err := claims.ValidateExpiryAt(h.now()); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrMalformed
	}

	return claims, nil
}
