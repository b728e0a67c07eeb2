package utils

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
)

// RandomSecret returns a random base32 string of the given length.
func RandomSecret(length int) (string, error) {
	numBytes := (length*5 + 7) / 8
	randomBytes := make([]byte, numBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	s := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	if len(s) > length {
		s = s[:length]
	}
	return s, nil
}
