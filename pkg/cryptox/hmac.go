package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// SignHex returns the lowercase hex HMAC-SHA256 of msg under key.
func SignHex(key, msg []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHex recomputes the HMAC of msg and compares it to sig in constant
// time. The comparison is done on the hex text so that a signature with
// different casing or length is rejected rather than normalised.
func VerifyHex(key, msg []byte, sig string) bool {
	expected := SignHex(key, msg)
	return hmac.Equal([]byte(expected), []byte(sig))
}

// DeriveKey expands secret into a size-byte key bound to info using
// HKDF-SHA256. Different info strings yield independent keys from the
// same secret.
func DeriveKey(secret []byte, info string, size int) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("cryptox: empty secret")
	}

	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("cryptox: derive key: %w", err)
	}
	return key, nil
}
