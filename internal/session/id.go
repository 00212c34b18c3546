package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// idEntropy is the random length of a session id: 256 bits, well past
// any guessable range.
const idEntropy = 32

// GenerateID mints an unguessable session identifier, URL-safe encoded
// so it survives cookie and Redis key round trips untouched.
func GenerateID() (string, error) {
	raw := make([]byte, idEntropy)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("session: id generation: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
