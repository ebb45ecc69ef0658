package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// SessionTokenBytes is the amount of random data behind every session token.
const SessionTokenBytes = 32

// NewSessionToken returns a 64 character hex string backed by
// SessionTokenBytes of crypto/rand output.
func NewSessionToken() (string, error) {
	return randomHex(SessionTokenBytes)
}

// randomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
