// Package config loads lemmabank settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every setting of the application.
type Config struct {
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite3"`
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"data/lemmabank.db"`
	AutoMigrate    bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	ViteManifest  string `env:"VITE_MANIFEST" envDefault:"web/dist/.vite/manifest.json"`
	ViteDevServer string `env:"VITE_DEV_SERVER"`
	ViteBase      string `env:"VITE_BASE" envDefault:"/static/"`

	UploadDir         string `env:"UPLOAD_DIR" envDefault:"data/uploads"`
	ImageMaxDimension int    `env:"IMAGE_MAX_DIMENSION" envDefault:"1600"`

	SupportedLanguages []string `env:"SUPPORTED_LANGUAGES" envDefault:"el,en,es,fr,de,it,ru" envSeparator:","`

	FetchTimeout     time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
	AllowPrivateURLs bool          `env:"ALLOW_PRIVATE_URLS" envDefault:"false"`

	SchedulerEnabled     bool          `env:"SCHEDULER_ENABLED" envDefault:"true"`
	StatsRefreshInterval time.Duration `env:"STATS_REFRESH_INTERVAL" envDefault:"1h"`
	TelegramBotToken     string        `env:"TELEGRAM_BOT_TOKEN"`
	DigestHour           int           `env:"DIGEST_HOUR" envDefault:"9"`
}

// Load reads the given .env files (missing files are skipped) and parses
// the environment. Variables already set in the environment win over the
// files.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	langs := make([]string, 0, len(c.SupportedLanguages))
	for _, l := range c.SupportedLanguages {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" && !slices.Contains(langs, l) {
			langs = append(langs, l)
		}
	}
	c.SupportedLanguages = langs
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
}

// Validate checks values that the types alone do not constrain.
func (c *Config) Validate() error {
	var errs []error
	switch c.DatabaseDriver {
	case "sqlite3", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be sqlite3 or postgres, got %q", c.DatabaseDriver))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if len(c.SupportedLanguages) == 0 {
		errs = append(errs, errors.New("SUPPORTED_LANGUAGES must list at least one language"))
	}
	for _, l := range c.SupportedLanguages {
		if len(l) != 2 {
			errs = append(errs, fmt.Errorf("SUPPORTED_LANGUAGES: %q is not a two-letter code", l))
		}
	}
	if c.ImageMaxDimension <= 0 {
		errs = append(errs, errors.New("IMAGE_MAX_DIMENSION must be positive"))
	}
	if c.DigestHour < 0 || c.DigestHour > 23 {
		errs = append(errs, fmt.Errorf("DIGEST_HOUR must be between 0 and 23, got %d", c.DigestHour))
	}
	if c.StatsRefreshInterval <= 0 {
		errs = append(errs, errors.New("STATS_REFRESH_INTERVAL must be positive"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("FETCH_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// IsSupported reports whether a language code is served.
func (c *Config) IsSupported(lang string) bool {
	return slices.Contains(c.SupportedLanguages, lang)
}
