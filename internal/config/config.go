package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// ProviderConfig holds the OAuth settings for a single identity provider.
// A provider is enabled by setting its client id; everything else an
// enabled provider needs is validated at startup.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string

	// ResponseMode controls how the provider delivers the callback
	// ("form_post" switches the callback route to POST).
	ResponseMode string

	// Apple-only signing material for the generated client secret.
	TeamID         string
	KeyID          string
	PrivateKeyPath string

	// NativeSignIn exposes POST /{provider}/native-sign-in for apps
	// submitting an identity token directly.
	NativeSignIn bool
}

func (p ProviderConfig) Enabled() bool {
	return p.ClientID != ""
}

type Config struct {
	AppPort      string
	AppClientURL string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string

	Google ProviderConfig
	Apple  ProviderConfig
}

func Load() Config {

	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg := Config{

		AppPort:      getenv("APP_PORT", "8080"),
		AppClientURL: os.Getenv("APP_CLIENT_URL"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		Google: ProviderConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			AuthURL:      getenv("GOOGLE_AUTH_URL", "https://accounts.google.com/o/oauth2/v2/auth"),
			TokenURL:     getenv("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token"),
			RedirectURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
		},

		Apple: ProviderConfig{
			ClientID:       os.Getenv("APPLE_CLIENT_ID"),
			AuthURL:        getenv("APPLE_AUTH_URL", "https://appleid.apple.com/auth/authorize"),
			TokenURL:       getenv("APPLE_TOKEN_URL", "https://appleid.apple.com/auth/token"),
			RedirectURL:    os.Getenv("APPLE_CALLBACK_URL"),
			ResponseMode:   "form_post",
			TeamID:         os.Getenv("APPLE_TEAM_ID"),
			KeyID:          os.Getenv("APPLE_KEY_ID"),
			PrivateKeyPath: getenv("APPLE_PRIVATE_KEY_PATH", "./keys/AppleAuthKey.p8"),
			NativeSignIn:   true,
		},
	}

	return cfg

}

// Validate enforces the startup-fatal rules: a provider that is enabled
// must carry everything its flow needs. Missing values for a disabled
// provider are fine.
func (c Config) Validate() error {
	if c.AppClientURL == "" {
		return fmt.Errorf("config: APP_CLIENT_URL is required")
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("config: DATABASE_DSN is required")
	}

	if c.Google.Enabled() {
		if c.Google.ClientSecret == "" {
			return fmt.Errorf("config: GOOGLE_CLIENT_SECRET is required when google is enabled")
		}
		if c.Google.RedirectURL == "" {
			return fmt.Errorf("config: GOOGLE_CALLBACK_URL is required when google is enabled")
		}
	}

	if c.Apple.Enabled() {
		if c.Apple.RedirectURL == "" {
			return fmt.Errorf("config: APPLE_CALLBACK_URL is required when apple is enabled")
		}
		if c.Apple.TeamID == "" || c.Apple.KeyID == "" {
			return fmt.Errorf("config: APPLE_TEAM_ID and APPLE_KEY_ID are required when apple is enabled")
		}
		if _, err := os.Stat(c.Apple.PrivateKeyPath); err != nil {
			return fmt.Errorf("config: apple private key not readable at %s: %w", c.Apple.PrivateKeyPath, err)
		}
	}

	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
