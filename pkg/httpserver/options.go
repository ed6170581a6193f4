package httpserver

import (
	"log/slog"
	"time"
)

// Option configures a Server. Invalid values panic when the option is
// built: they are programming errors, not runtime conditions.
type Option func(*config)

// WithAddr sets the listen address. Use "127.0.0.1:0" for an ephemeral port
// and read it back with Server.Addr.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("httpserver: empty listen address")
	}
	return func(c *config) { c.addr = addr }
}

func WithReadTimeout(d time.Duration) Option {
	d = positive("read timeout", d)
	return func(c *config) { c.readTimeout = d }
}

func WithWriteTimeout(d time.Duration) Option {
	d = positive("write timeout", d)
	return func(c *config) { c.writeTimeout = d }
}

func WithIdleTimeout(d time.Duration) Option {
	d = positive("idle timeout", d)
	return func(c *config) { c.idleTimeout = d }
}

// WithShutdownTimeout bounds how long in-flight requests may drain.
func WithShutdownTimeout(d time.Duration) Option {
	d = positive("shutdown timeout", d)
	return func(c *config) { c.shutdownTimeout = d }
}

// WithLogger sets the logger passed to hooks. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStartHook runs h after the listener is bound and before serving.
func WithStartHook(h func(*slog.Logger)) Option {
	mustHook(h)
	return func(c *config) { c.startHooks = append(c.startHooks, h) }
}

// WithStopHook runs h once the server has drained.
func WithStopHook(h func(*slog.Logger)) Option {
	mustHook(h)
	return func(c *config) { c.stopHooks = append(c.stopHooks, h) }
}

func mustHook(h func(*slog.Logger)) {
	if h == nil {
		panic("httpserver: nil hook")
	}
}

func positive(name string, d time.Duration) time.Duration {
	if d <= 0 {
		panic("httpserver: " + name + " must be positive")
	}
	return d
}
