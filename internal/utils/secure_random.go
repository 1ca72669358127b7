package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// GenerateSecureRandomString generates a cryptographically secure random string of the specified byte length,
// then hex encodes it. For example, lengthInBytes=16 will result in a 32-character hex string.
func GenerateSecureRandomString(lengthInBytes int) (string, error) {
	b, err := randomBytes(lengthInBytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateURLSafeToken generates a cryptographically secure random token of the
// specified byte length, base64url-encoded without padding. Suitable for
// embedding in links (e.g. password-reset URLs).
func GenerateURLSafeToken(lengthInBytes int) (string, error) {
	b, err := randomBytes(lengthInBytes)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func randomBytes(lengthInBytes int) ([]byte, error) {
	if lengthInBytes <= 0 {
		return nil, fmt.Errorf("lengthInBytes must be positive")
	}
	b := make([]byte, lengthInBytes)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return b, nil
}
