// Copyright (c) 2026 ND Labs
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// defaultAdminEmails is the built-in administrator allow-list. Accounts
// with these emails are forced back into the ADMIN role at every login and
// session restore, so the designated operators can always recover control
// even if their stored role was changed.
var defaultAdminEmails = []string{
	"nhatdang10.nd@gmail.com",
	"chaunhatdangne5110@gmail.com",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"EDUSPACE_DB_PATH" envDefault:"./data/eduspace.db"`
	SessionSecret string `env:"EDUSPACE_SESSION_SECRET,required"`
	ServerHost    string `env:"EDUSPACE_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"EDUSPACE_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"EDUSPACE_ENV" envDefault:"development"`
	LogLevel      string `env:"EDUSPACE_LOG_LEVEL" envDefault:"info"`

	// AdminEmails overrides the built-in administrator allow-list.
	AdminEmails []string `env:"EDUSPACE_ADMIN_EMAILS" envSeparator:","`

	// OpenAI API access for the assistant, essay grading and thumbnails.
	// The AI surface stays disabled when the key is empty.
	OpenAIKey   string `env:"EDUSPACE_OPENAI_API_KEY"`
	ChatModel   string `env:"EDUSPACE_CHAT_MODEL" envDefault:"gpt-4o-mini"`
	ImageModel  string `env:"EDUSPACE_IMAGE_MODEL" envDefault:"gpt-image-1"`

	// Cache configuration
	RedisURL     string `env:"EDUSPACE_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"EDUSPACE_CACHE_PREFIX" envDefault:"eduspace:"`
	CacheTTL     int    `env:"EDUSPACE_CACHE_TTL" envDefault:"300"`        // Default cache TTL in seconds
	CacheMaxSize int    `env:"EDUSPACE_CACHE_MAX_SIZE" envDefault:"1000"`  // Max memory cache entries

	// Seeding configuration
	DoSeed bool `env:"EDUSPACE_DO_SEED" envDefault:"true"` // Seed bootstrap data on first run
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// AIEnabled returns true if the AI collaborator is configured.
func (c Config) AIEnabled() bool {
	return c.OpenAIKey != ""
}

// IsAdminEmail reports whether email is on the administrator allow-list.
// The comparison is case-insensitive on the email's domain conventions.
func (c Config) IsAdminEmail(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.AdminEmails) == 0 {
		cfg.AdminEmails = defaultAdminEmails
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("EDUSPACE_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("EDUSPACE_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("EDUSPACE_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
