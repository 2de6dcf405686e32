package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	// Session token signing. The key is loaded once at startup and is
	// read-only for the life of the process.
	TokenSigningKey string        `env:"TOKEN_SIGNING_KEY,required"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	TokenIssuer     string        `env:"TOKEN_ISSUER" envDefault:"flfe-auth"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	// Where the browser lands after a successful OAuth callback; the issued
	// token is appended as a query parameter.
	FrontendCallbackURL string `env:"FRONTEND_CALLBACK_URL" envDefault:"http://localhost:3000/oauth/callback"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	DatabaseDSN string `env:"DATABASE_DSN,required"`

	// Welcome email delivery. Driver "log" writes mail to the log instead of
	// sending, which is the default for local development.
	EmailDriver          string `env:"EMAIL_DRIVER" envDefault:"log"`
	EmailFrom            string `env:"EMAIL_FROM"`
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	ProductName          string `env:"PRODUCT_NAME" envDefault:"FLFE"`
}

func Load() (Config, error) {
	// The .env file is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}
