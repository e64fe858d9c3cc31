// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration. A .env file, when present, is loaded
// into the environment before parsing.
type Config struct {
	Port             string        `env:"PORT" envDefault:"8080"`
	GinMode          string        `env:"GIN_MODE" envDefault:"debug"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabasePath     string        `env:"DATABASE_PATH" envDefault:"portfolio.db"`
	AdminUsername    string        `env:"ADMIN_USERNAME"`
	AdminPassword    string        `env:"ADMIN_PASSWORD"`
	ResumePath       string        `env:"RESUME_PATH" envDefault:"static/Kavisha_Resume.pdf"`
	CORSOrigins      []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	VisitorRetention time.Duration `env:"VISITOR_RETENTION" envDefault:"8760h"`
	TrackVisitors    bool          `env:"TRACK_VISITORS" envDefault:"true"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }

// Debug reports whether gin runs in debug mode.
func (c Config) Debug() bool { return c.GinMode == "debug" }

// AllowAllOrigins reports whether CORS is open to any origin.
func (c Config) AllowAllOrigins() bool {
	for _, o := range c.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return len(c.CORSOrigins) == 0
}

// OriginAllowed reports whether a browser origin may call the API and open
// streams.
func (c Config) OriginAllowed(origin string) bool {
	if c.AllowAllOrigins() {
		return true
	}
	for _, o := range c.CORSOrigins {
		if strings.EqualFold(strings.TrimSpace(o), origin) {
			return true
		}
	}
	return false
}
