package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	// postgres://... または sqlite://path/to/file.db
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// Session
	SessionMaxAge        int  `env:"SESSION_MAX_AGE" envDefault:"2592000"` // 秒（30日）
	SessionRemember      bool `env:"SESSION_REMEMBER" envDefault:"true"`
	SessionRetentionDays int  `env:"SESSION_RETENTION_DAYS" envDefault:"0"`

	// Credentials
	BcryptCost          int      `env:"BCRYPT_COST" envDefault:"10"`
	AllowedEmailDomains []string `env:"ALLOWED_EMAIL_DOMAINS" envSeparator:"," envDefault:"gmail.com,seznam.cz,email.cz,centrum.cz"`

	// Listing
	YearMin             int    `env:"YEAR_MIN" envDefault:"1900"`
	YearMax             int    `env:"YEAR_MAX" envDefault:"2025"`
	ListingPriceMileage bool   `env:"LISTING_PRICE_MILEAGE" envDefault:"true"`
	CatalogPath         string `env:"CATALOG_PATH"`

	// Server
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	BaseURL    string `env:"BASE_URL,required,notEmpty"`

	// Cookie
	CookieSecure bool
	CookieDomain string `env:"COOKIE_DOMAIN"`

	// CORS
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`

	// Logging
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合や値が不正な場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")

	for i, d := range cfg.AllowedEmailDomains {
		cfg.AllowedEmailDomains[i] = strings.ToLower(strings.TrimSpace(d))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.YearMin > c.YearMax {
		errs = append(errs, fmt.Errorf("YEAR_MIN (%d) must not exceed YEAR_MAX (%d)", c.YearMin, c.YearMax))
	}
	if c.SessionMaxAge <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_MAX_AGE must be positive, got %d", c.SessionMaxAge))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost))
	}
	if len(c.AllowedEmailDomains) == 0 {
		errs = append(errs, errors.New("ALLOWED_EMAIL_DOMAINS must not be empty"))
	}
	if c.SessionRetentionDays < 0 {
		errs = append(errs, fmt.Errorf("SESSION_RETENTION_DAYS must not be negative, got %d", c.SessionRetentionDays))
	}
	return errors.Join(errs...)
}
