package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewSecureToken returns a 256-bit random opaque string, used as the raw
// form of device ids and reset tokens.
func NewSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms; treat as fatal.
		panic(err)
	}
	return hex.EncodeToString(b)
}

// HashToken is the deterministic digest stored in place of raw bearer
// secrets. Same input, same output; raw values are never persisted.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
