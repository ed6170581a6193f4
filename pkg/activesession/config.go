package activesession

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DriverFile  = "file"
	DriverRedis = "redis"
)

// DefaultTTL is how long a record stays valid after its last activity.
const DefaultTTL = 7 * 24 * time.Hour

// Config selects and configures the store backend.
type Config struct {
	Driver      string `env:"ACTIVE_SESSION_DRIVER" envDefault:"file"`
	Dir         string `env:"ACTIVE_SESSION_DIR" envDefault:"data/sessions/active"`
	RedisPrefix string `env:"ACTIVE_SESSION_REDIS_PREFIX" envDefault:"active_session:"`

	// TTL is not read from the environment: it must equal the session TTL,
	// which recovery uses to compute the re-issued expiry. Use WithSessionTTL.
	TTL time.Duration
}

// WithSessionTTL returns a copy of c whose record lifetime follows the
// session TTL.
func (c Config) WithSessionTTL(ttl time.Duration) Config {
	c.TTL = ttl
	return c
}

// DefaultConfig returns the file-backed defaults.
func DefaultConfig() Config {
	return Config{
		Driver:      DriverFile,
		Dir:         "data/sessions/active",
		TTL:         DefaultTTL,
		RedisPrefix: "active_session:",
	}
}

// NewFromConfig builds the configured store. client is only used by the
// redis driver and may be nil otherwise.
func NewFromConfig(cfg Config, client redis.UniversalClient, opts ...Option) (Store, error) {
	if cfg.TTL > 0 {
		opts = append([]Option{WithTTL(cfg.TTL)}, opts...)
	}

	switch cfg.Driver {
	case "", DriverFile:
		dir := cfg.Dir
		if dir == "" {
			dir = DefaultConfig().Dir
		}
		return NewFileStore(dir, opts...), nil
	case DriverRedis:
		if client == nil {
			return nil, fmt.Errorf("%w: redis driver requires a client", ErrInvalidConfig)
		}
		if cfg.RedisPrefix != "" {
			opts = append(opts, WithKeyPrefix(cfg.RedisPrefix))
		}
		return NewRedisStore(client, opts...), nil
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, cfg.Driver)
	}
}
