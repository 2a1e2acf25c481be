package relaysdk

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aussiebroadwan/authgate/pkg/assertion"
	"github.com/aussiebroadwan/authgate/pkg/cryptox"
)

// MaxPayloadBytes bounds the relay body accepted by Handler.
const MaxPayloadBytes = 64 << 10

var (
	ErrMissingSignature = errors.New("relaysdk: missing signature")
	ErrBadSignature     = errors.New("relaysdk: signature mismatch")
	ErrNoSecret         = errors.New("relaysdk: webhook secret not configured")
)

// Sign returns the X-Auth-Signature value for body.
func Sign(body, secret []byte) string {
	return cryptox.SignHex(secret, body)
}

// VerifySignature checks the X-Auth-Signature of a relay body.
func VerifySignature(body []byte, signature string, secret []byte) error {
	if len(secret) == 0 {
		return ErrNoSecret
	}
	if signature == "" {
		return ErrMissingSignature
	}
	if !cryptox.VerifyHex(secret, body, signature) {
		return ErrBadSignature
	}
	return nil
}

// ParseRelay verifies and decodes a relay body.
func ParseRelay(body []byte, signature string, secret []byte) (RelayPayload, error) {
	if err := VerifySignature(body, signature, secret); err != nil {
		return RelayPayload{}, err
	}

	var p RelayPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return RelayPayload{}, err
	}
	return p, nil
}

// Handler verifies incoming relays and passes them to fn. Unsigned or
// tampered bodies are answered with 401; fn errors with 500.
func Handler(secret []byte, fn func(ctx context.Context, p RelayPayload) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, MaxPayloadBytes))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		p, err := ParseRelay(body, r.Header.Get(HeaderSignature), secret)
		switch {
		case errors.Is(err, ErrMissingSignature), errors.Is(err, ErrBadSignature), errors.Is(err, ErrNoSecret):
			w.WriteHeader(http.StatusUnauthorized)
			return
		case err != nil:
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if err := fn(r.Context(), p); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// VerifyAssertion checks the token an application receives after a magic
// link redemption. The secret is the same shared webhook secret.
func VerifyAssertion(token string, secret []byte) (assertion.Claim, error) {
	return assertion.Verify(token, secret)
}
