package identity

import (
	"log/slog"
	"time"
)

// Config selects the identity backend. A non-empty URL selects the remote
// Client; otherwise the local users file is used.
type Config struct {
	URL       string        `env:"IDENTITY_URL"`
	Timeout   time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"5s"`
	UsersFile string        `env:"IDENTITY_USERS_FILE" envDefault:"data/users.json"`
}

// DefaultConfig returns the local-file defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   5 * time.Second,
		UsersFile: "data/users.json",
	}
}

// NewFromConfig builds the configured Service.
func NewFromConfig(cfg Config, log *slog.Logger) Service {
	if cfg.URL != "" {
		return NewClient(cfg.URL, WithTimeout(cfg.Timeout), WithClientLogger(log))
	}
	path := cfg.UsersFile
	if path == "" {
		path = DefaultConfig().UsersFile
	}
	return NewFileDirectory(path, WithDirectoryLogger(log))
}
