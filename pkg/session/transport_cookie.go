package session

import (
	"net/http"
	"path"
	"time"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
)

// CookieTransport stores the session value in a cookie.
type CookieTransport struct {
	cookies *cookie.Manager
	name    string
	secure  bool
	options []cookie.Option
}

// NewCookieTransport creates a transport for the named cookie. opts are
// applied on top of the cookie manager defaults.
func NewCookieTransport(cookies *cookie.Manager, name string, secure bool, opts ...cookie.Option) *CookieTransport {
	return &CookieTransport{
		cookies: cookies,
		name:    name,
		secure:  secure,
		options: opts,
	}
}

func (t *CookieTransport) Read(r *http.Request) (string, error) {
	v, err := t.cookies.Get(r, t.name)
	if err != nil || v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

func (t *CookieTransport) Write(w http.ResponseWriter, value string, expiry time.Time) error {
	opts := []cookie.Option{
		cookie.WithExpires(expiry),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
	}
	if t.secure {
		opts = append(opts, cookie.WithSecure(true))
	}
	opts = append(opts, t.options...)

	return t.cookies.Set(w, t.name, value, opts...)
}

// Clear deletes the cookie at the configured path and at the directory of
// the request path, where browsers may hold a second copy.
func (t *CookieTransport) Clear(w http.ResponseWriter, r *http.Request) error {
	var extra []string
	if r != nil && r.URL != nil && r.URL.Path != "" {
		extra = append(extra, path.Dir(r.URL.Path))
	}
	t.cookies.Delete(w, t.name, extra...)
	return nil
}
