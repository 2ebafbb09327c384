// Package config loads every runtime setting from the environment into
// one typed struct so nothing else in the codebase reads os.Getenv.
package config

import (
	"time"

	"github.com/caarlos0/env/v8"
)

type DB struct {
	Addr        string `env:"DB_ADDR,required"`
	MaxConns    int32  `env:"DB_MAX_CONNS" envDefault:"30"`
	MaxIdleTime string `env:"DB_MAX_IDLE_TIME" envDefault:"15m"`
}

type Token struct {
	Secret        string        `env:"AUTH_TOKEN_SECRET,required"`
	RefreshSecret string        `env:"AUTH_TOKEN_REFRESH_SECRET,required"`
	AccessExp     time.Duration `env:"AUTH_ACCESS_TOKEN_EXP" envDefault:"72h"`
	RefreshExp    time.Duration `env:"AUTH_REFRESH_TOKEN_EXP" envDefault:"216h"`
	Issuer        string        `env:"AUTH_TOKEN_ISSUER" envDefault:"voxa"`
}

type BasicAuth struct {
	User string `env:"AUTH_BASIC_USER" envDefault:"admin"`
	Pass string `env:"AUTH_BASIC_PASS" envDefault:"admin"`
}

type Mail struct {
	FromEmail      string        `env:"MAIL_FROM_EMAIL"`
	MailtrapAPIKey string        `env:"MAILTRAP_API_KEY"`
	InvitationExp  time.Duration `env:"MAIL_INVITATION_EXP" envDefault:"72h"`
}

type RateLimiter struct {
	Enabled              bool          `env:"RATE_LIMITER_ENABLED" envDefault:"false"`
	RequestsPerTimeFrame int           `env:"RATE_LIMITER_REQUESTS_COUNT" envDefault:"200"`
	TimeFrame            time.Duration `env:"RATE_LIMITER_TIME_FRAME" envDefault:"5s"`
}

type Config struct {
	Addr        string `env:"ADDR" envDefault:":8080"`
	Env         string `env:"ENV" envDefault:"development"`
	ExternalURL string `env:"EXTERNAL_URL" envDefault:"localhost:8080"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	// Empty in development; set to the parent domain in production so
	// auth cookies span the web and api subdomains.
	CookieDomain  string `env:"COOKIE_DOMAIN"`
	CloudinaryURL string `env:"CLOUDINARY_URL"`
	MapsAPIKey    string `env:"GOOGLE_MAPS_API_KEY"`

	DB          DB
	Token       Token
	Basic       BasicAuth
	Mail        Mail
	RateLimiter RateLimiter
}

// Load parses the process environment into a Config. Call godotenv.Load
// first if settings live in a .env file.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
