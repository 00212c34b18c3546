// Package dynamic derives the one-time login secrets that stand in for a
// real password when an externally authenticated identity logs in
// locally. A secret is minted per login attempt, stored hashed, consumed
// once, and superseded by the next attempt.
package dynamic

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Password derives a high-entropy one-time secret for the given email:
// HMAC-SHA256 keyed by the email over a fresh 128-bit random message,
// hex encoded. The output is not derivable from the email alone.
//
// Entropy source failure is fatal to the process, not recoverable.
func Password(email string) string {
	msg := make([]byte, 16)
	if _, err := rand.Read(msg); err != nil {
		panic(fmt.Sprintf("dynamic: entropy source failed: %v", err))
	}

	mac := hmac.New(sha256.New, []byte(email))
	mac.Write([]byte(hex.EncodeToString(msg)))
	return hex.EncodeToString(mac.Sum(nil))
}
