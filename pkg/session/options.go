package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
	"github.com/dmitrymomot/sessionkit/pkg/identity"
)

// Option configures the Manager.
type Option func(*Manager)

// WithConfig replaces the configuration. Zero fields fall back to defaults.
func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.config = cfg }
}

func WithCookieName(name string) Option {
	return func(m *Manager) { m.config.CookieName = name }
}

// WithTTL sets the login lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.config.TTL = ttl }
}

func WithSalt(salt string) Option {
	return func(m *Manager) { m.config.Salt = salt }
}

func WithDeviceRecovery(enabled bool) Option {
	return func(m *Manager) { m.config.DeviceRecovery = enabled }
}

func WithEncryptedCookie(enabled bool) Option {
	return func(m *Manager) { m.config.EncryptCookie = enabled }
}

// WithTransport replaces the default cookie transport.
func WithTransport(t Transport) Option {
	return func(m *Manager) { m.transport = t }
}

// WithCookieOptions adds attributes to the default cookie transport.
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(m *Manager) { m.cookieOptions = append(m.cookieOptions, opts...) }
}

// WithDirectory enables the user directory check on resolve: the cookie's
// user_id must match the directory record for its username.
func WithDirectory(d identity.Directory) Option {
	return func(m *Manager) { m.directory = d }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.clock = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithKeyRegistry shares a registry between managers.
func WithKeyRegistry(r *KeyRegistry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}
