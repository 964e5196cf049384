// Package credential holds the primitives behind accounts and sessions:
// opaque random identifiers and password hashing.
package credential

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	UserIDLength    = 15
	SessionIDLength = 40
)

// GenerateUserID returns a 15-character URL-safe random identifier.
func GenerateUserID() (string, error) {
	return generateID(UserIDLength)
}

// GenerateSessionID returns a 40-character URL-safe random token. The token
// is the only secret a client holds, so it must come from crypto/rand.
func GenerateSessionID() (string, error) {
	return generateID(SessionIDLength)
}

func generateID(length int) (string, error) {
	b := make([]byte, (length*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length], nil
}
