package session

import (
	"net/http"
	"strings"
	"time"
)

// DefaultHeaderName carries the session value for non-browser clients.
const DefaultHeaderName = "X-Auth-Token"

// HeaderTransport reads the session value from a request header and
// returns new values in the response header of the same name.
type HeaderTransport struct {
	name   string
	prefix string
}

type HeaderOption func(*HeaderTransport)

// WithHeaderPrefix sets a value prefix such as "Bearer ".
func WithHeaderPrefix(prefix string) HeaderOption {
	return func(t *HeaderTransport) { t.prefix = prefix }
}

func NewHeaderTransport(name string, opts ...HeaderOption) *HeaderTransport {
	if name == "" {
		name = DefaultHeaderName
	}
	t := &HeaderTransport{name: name}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *HeaderTransport) Read(r *http.Request) (string, error) {
	v := strings.TrimSpace(r.Header.Get(t.name))
	if t.prefix != "" {
		v = strings.TrimPrefix(v, t.prefix)
	}
	if v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

func (t *HeaderTransport) Write(w http.ResponseWriter, value string, expiry time.Time) error {
	w.Header().Set(t.name, t.prefix+value)
	w.Header().Set(t.name+"-Expires", expiry.UTC().Format(time.RFC3339))
	return nil
}

// Clear sends an empty header so the client drops its stored value.
func (t *HeaderTransport) Clear(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set(t.name, "")
	w.Header().Del(t.name + "-Expires")
	return nil
}
