// Package assertion implements the compact "payload.signature" identity
// assertions exchanged between the gateway, its upstream login service and
// the applications it hands users to.
//
// The payload segment is base64-encoded JSON. The signature segment is the
// lowercase hex HMAC-SHA256 of the payload segment, keyed with the hex
// SHA-256 digest of a pre-shared secret.
package assertion

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/authgate/pkg/cryptox"
)

var (
	ErrMalformedToken    = errors.New("assertion: malformed token")
	ErrSignatureMismatch = errors.New("assertion: signature mismatch")
	ErrMalformedClaim    = errors.New("assertion: malformed claim")
	ErrExpiredClaim      = errors.New("assertion: claim expired")
	ErrNoSecret          = errors.New("assertion: shared secret not configured")
)

// Claim is the identity carried by an assertion. Only Email is required.
type Claim struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`

	// App and Method are set by the gateway when it hands a redeemed magic
	// link over to an application.
	App    string `json:"app,omitempty"`
	Method string `json:"method,omitempty"`

	IssuedAt  int64 `json:"iat,omitempty"`
	ExpiresAt int64 `json:"exp,omitempty"`
}

// SigningKey derives the HMAC key from the shared secret.
func SigningKey(secret []byte) []byte {
	sum := sha256.Sum256(secret)
	return []byte(hex.EncodeToString(sum[:]))
}

// Sign encodes claim and signs it with secret.
func Sign(claim Claim, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoSecret
	}
	if strings.TrimSpace(claim.Email) == "" {
		return "", ErrMalformedClaim
	}

	raw, err := json.Marshal(claim)
	if err != nil {
		return "", err
	}

	payload := base64.RawURLEncoding.EncodeToString(raw)
	return payload + "." + cryptox.SignHex(SigningKey(secret), []byte(payload)), nil
}

// Verify checks token against secret using the current time.
func Verify(token string, secret []byte) (Claim, error) {
	return VerifyAt(token, secret, time.Now())
}

// VerifyAt checks the token's signature and decodes its claim. It asserts
// where the claim came from, not whether the identity is allowed in.
func VerifyAt(token string, secret []byte, now time.Time) (Claim, error) {
	if len(secret) == 0 {
		return Claim{}, ErrNoSecret
	}

	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Claim{}, ErrMalformedToken
	}
	payload, sig := parts[0], parts[1]

	if !cryptox.VerifyHex(SigningKey(secret), []byte(payload), sig) {
		return Claim{}, ErrSignatureMismatch
	}

	raw, err := decodeSegment(payload)
	if err != nil {
		return Claim{}, ErrMalformedClaim
	}

	var claim Claim
	if err := json.Unmarshal(raw, &claim); err != nil {
		return Claim{}, ErrMalformedClaim
	}
	if strings.TrimSpace(claim.Email) == "" {
		return Claim{}, ErrMalformedClaim
	}
	if claim.ExpiresAt != 0 && !now.Before(time.Unix(claim.ExpiresAt, 0)) {
		return Claim{}, ErrExpiredClaim
	}

	return claim, nil
}

// decodeSegment accepts both alphabets, padded or not. The upstream login
// service emits standard padded base64.
func decodeSegment(s string) ([]byte, error) {
	trimmed := strings.TrimRight(s, "=")
	if strings.ContainsAny(trimmed, "+/") {
		return base64.RawStdEncoding.DecodeString(trimmed)
	}
	return base64.RawURLEncoding.DecodeString(trimmed)
}
