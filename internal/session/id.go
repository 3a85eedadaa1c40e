package session

import (
	"crypto/rand"
	"encoding/base64"
)

// newID generates a 128-bit, URL-safe opaque session identifier: 16 bytes
// from crypto/rand, base64url-encoded without padding (22 characters).
func newID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
