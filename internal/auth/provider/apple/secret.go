package apple

import (
	"fmt"
	"os"
	"time"

	"github.com/JulianAtTheFrontend/payload-plugin-sso/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const (
	secretAudience = "https://appleid.apple.com"
	secretTTL      = 24 * time.Hour
)

// clientSecret signs the JWT Apple expects in place of a static client
// secret: ES256 over the team's .p8 key, audience appleid.apple.com,
// issuer = team id, subject = client id. An unreadable or malformed key
// is a startup failure, not a per-request one.
func clientSecret(cfg config.ProviderConfig) (string, error) {
	pemBytes, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return "", fmt.Errorf("private key file could not be read: %w", err)
	}

	key, err := jwt.ParseECPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return "", fmt.Errorf("private key file could not be parsed: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": cfg.TeamID,
		"iat": now.Unix(),
		"exp": now.Add(secretTTL).Unix(),
		"aud": secretAudience,
		"sub": cfg.ClientID,
	})
	token.Header["kid"] = cfg.KeyID

	return token.SignedString(key)
}
