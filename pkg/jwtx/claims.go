package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is how long an admin session cookie stays valid.
const DefaultSessionTTL = 12 * time.Hour

var (
	ErrMalformed = errors.New("jwtx: malformed token")
	ErrIssuer    = errors.New("jwtx: issuer mismatch")
	ErrAudience  = errors.New("jwtx: audience mismatch")
	ErrExpired   = errors.New("jwtx: token expired")
	ErrNoKey     = errors.New("jwtx: empty signing key")
)

// SessionClaims are the claims carried by the admin session cookie. The
// subject is the administrator's lowercased email.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Name is the display name reported by the login assertion.
	Name string `json:"name,omitempty"`

	// Picture is the avatar URL reported by the login assertion.
	Picture string `json:"picture,omitempty"`
}

// NewSessionClaims builds claims for a freshly authenticated administrator.
func NewSessionClaims(email, name, picture, issuer string, ttl time.Duration, now time.Time) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   email,
			Audience:  jwt.ClaimStrings{issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Name:    name,
		Picture: picture,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *SessionClaims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks that expected is one of the token audiences.
func (c *SessionClaims) ValidateAudience(expected string) error {
	if expected == "" {
		return nil
	}
	if !slices.Contains(c.Audience, expected) {
		return ErrAudience
	}
	return nil
}

// ValidateExpiryAt ensures the session has not expired at now.
func (c *SessionClaims) ValidateExpiryAt(now time.Time) error {
	if c.ExpiresAt == nil || !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}
