package cookie

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

const minSecretLength = 32

// Manager reads and writes cookies with shared defaults and secrets.
type Manager struct {
	secrets  [][]byte
	defaults Options
}

// New creates a Manager. Empty secrets are ignored; at least one secret of
// 32 or more bytes is required.
func New(secrets []string, opts ...Option) (*Manager, error) {
	keys := make([][]byte, 0, len(secrets))
	for i, s := range secrets {
		if s == "" {
			continue
		}
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
		keys = append(keys, []byte(s))
	}
	if len(keys) == 0 {
		return nil, ErrNoSecret
	}

	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		secrets:  keys,
		defaults: defaults.apply(opts),
	}, nil
}

// Defaults returns the attributes applied to every cookie.
func (m *Manager) Defaults() Options {
	return m.defaults
}

// Set writes a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	c := m.defaults.apply(opts).cookie(name, value)
	if err := c.Valid(); err != nil {
		return errors.Join(ErrInvalidName, err)
	}
	http.SetCookie(w, c)
	return nil
}

// Get returns the raw value of the named request cookie.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Delete expires the cookie at the default path and at each extra path.
func (m *Manager) Delete(w http.ResponseWriter, name string, paths ...string) {
	seen := make(map[string]struct{}, len(paths)+1)
	for _, p := range append([]string{m.defaults.Path}, paths...) {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}

		c := m.defaults.cookie(name, "")
		c.Path = p
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

// SetSigned writes value with an HMAC signature.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) error {
	return m.Set(w, name, m.Sign(value), opts...)
}

// GetSigned returns the verified value of a signed cookie.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.Verify(raw)
}

// SetEncrypted writes value encrypted with AES-GCM.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, opts ...Option) error {
	sealed, err := m.Seal(value)
	if err != nil {
		return err
	}
	return m.Set(w, name, sealed, opts...)
}

// GetEncrypted returns the decrypted value of an encrypted cookie.
func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.Open(raw)
}
