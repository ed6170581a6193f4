package cookie

import (
	"net/http"
	"time"
)

// Options are the attributes applied to a written cookie.
type Options struct {
	Path     string
	Domain   string
	MaxAge   int
	Expires  time.Time
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

type Option func(*Options)

func WithPath(path string) Option {
	return func(o *Options) { o.Path = path }
}

func WithDomain(domain string) Option {
	return func(o *Options) { o.Domain = domain }
}

// WithMaxAge sets the lifetime in seconds. Zero means a browser-session cookie.
func WithMaxAge(seconds int) Option {
	return func(o *Options) { o.MaxAge = seconds }
}

// WithExpires sets an absolute expiry. Use it instead of WithMaxAge when the
// expiry is already known, e.g. carried inside the cookie value.
func WithExpires(t time.Time) Option {
	return func(o *Options) { o.Expires = t }
}

func WithSecure(secure bool) Option {
	return func(o *Options) { o.Secure = secure }
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(o *Options) { o.HttpOnly = httpOnly }
}

func WithSameSite(sameSite http.SameSite) Option {
	return func(o *Options) { o.SameSite = sameSite }
}

// apply returns a copy of base with opts applied.
func (base Options) apply(opts []Option) Options {
	result := base
	for _, opt := range opts {
		opt(&result)
	}
	return result
}

func (o Options) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Expires:  o.Expires,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	}
}
