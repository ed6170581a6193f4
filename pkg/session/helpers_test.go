package session_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/activesession"
	"github.com/dmitrymomot/sessionkit/pkg/cookie"
	"github.com/dmitrymomot/sessionkit/pkg/identity"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

const testSecret = "test-secret-key-that-is-long-enough-for-hmac"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// device hands out distinct browser-session ids for a fixed device id.
type device struct {
	mu sync.Mutex
	id string
	n  int
}

func (d *device) BrowserSessionID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.n++
	return fmt.Sprintf("%s_%d_%08x", d.id, 1000+d.n%9000, d.n)
}

type stubDirectory struct {
	users map[string]*identity.User
	err   error
}

func (d stubDirectory) Lookup(_ context.Context, username string) (*identity.User, error) {
	if d.err != nil {
		return nil, d.err
	}
	u, ok := d.users[username]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return u, nil
}

type fixture struct {
	mgr     *session.Manager
	store   *activesession.FileStore
	cookies *cookie.Manager
	clock   *fakeClock
	device  *device
	dir     string
}

var t0 = time.Date(2024, 3, 1, 10, 20, 30, 0, time.Local)

func setup(t *testing.T, opts ...session.Option) *fixture {
	t.Helper()

	clock := &fakeClock{now: t0}
	dir := t.TempDir()
	store := activesession.NewFileStore(dir, activesession.WithClock(clock.Now))
	cookies, err := cookie.New([]string{testSecret})
	require.NoError(t, err)
	dev := &device{id: "deadbeef_1f0e_1700000000"}

	mgr, err := session.New(cookies, store, dev,
		append([]session.Option{session.WithClock(clock.Now)}, opts...)...,
	)
	require.NoError(t, err)

	return &fixture{mgr: mgr, store: store, cookies: cookies, clock: clock, device: dev, dir: dir}
}

// jar keeps cookies across requests the way a browser does for a single
// path.
type jar struct {
	cookies map[string]*http.Cookie
}

func newJar() *jar {
	return &jar{cookies: map[string]*http.Cookie{}}
}

func (j *jar) request(path string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range j.cookies {
		r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return r
}

func (j *jar) store(rec *httptest.ResponseRecorder) {
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(j.cookies, c.Name)
			continue
		}
		j.cookies[c.Name] = c
	}
}

// visit runs fn in a fresh scope for a request carrying the jar's cookies,
// then stores the response cookies in the jar.
func (f *fixture) visit(j *jar, fn func(ctx context.Context, s *session.Scope)) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s := f.mgr.NewScope(rec, j.request("/"))
	fn(context.Background(), s)
	j.store(rec)
	return rec
}

// payloadOf decodes the session cookie set in rec.
func (f *fixture) payloadOf(t *testing.T, rec *httptest.ResponseRecorder) (session.Payload, bool) {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name != f.mgr.Config().CookieName || c.MaxAge < 0 {
			continue
		}
		plain, err := f.cookies.Verify(c.Value)
		require.NoError(t, err)
		p, err := session.DecodePayload(plain)
		require.NoError(t, err)
		return p, true
	}
	return session.Payload{}, false
}

func deleted(rec *httptest.ResponseRecorder, name string) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name && c.MaxAge < 0 {
			return true
		}
	}
	return false
}
