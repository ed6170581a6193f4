package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sessionkit/pkg/activesession"
	"github.com/dmitrymomot/sessionkit/pkg/cookie"
	"github.com/dmitrymomot/sessionkit/pkg/identity"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/timestamp"
)

// Device issues browser-session ids. *device.Identity implements it.
type Device interface {
	BrowserSessionID() string
}

// Manager reconciles the scope cache, the session cookie and the active
// session store. It is the only writer of cookie payloads and session
// records.
type Manager struct {
	cookies       *cookie.Manager
	cookieOptions []cookie.Option
	transport     Transport
	deviceCookie  Transport
	store         activesession.Store
	device        Device
	directory     identity.Directory
	config        Config
	clock         timestamp.Clock
	logger        *slog.Logger
	metrics       *Metrics
	registry      *KeyRegistry
}

// New creates a Manager. The cookie manager signs (or encrypts) payloads
// and, unless WithTransport is given, also carries them.
func New(cookies *cookie.Manager, store activesession.Store, device Device, opts ...Option) (*Manager, error) {
	if cookies == nil {
		return nil, ErrNoCookieManager
	}
	if store == nil {
		return nil, ErrNoStore
	}
	if device == nil {
		return nil, ErrNoDevice
	}

	m := &Manager{
		cookies:  cookies,
		store:    store,
		device:   device,
		config:   DefaultConfig(),
		logger:   logger.Discard(),
		registry: NewKeyRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.config = m.config.withDefaults()
	if m.config.DeviceRecovery && m.config.DeviceCookieName == m.config.CookieName {
		return nil, fmt.Errorf("%w: device cookie name %q is the session cookie name", ErrInvalidConfig, m.config.DeviceCookieName)
	}

	if m.transport == nil {
		m.transport = NewCookieTransport(cookies, m.config.CookieName, m.config.SecureCookies, m.cookieOptions...)
	}
	if m.config.DeviceRecovery {
		m.deviceCookie = NewCookieTransport(cookies, m.config.DeviceCookieName, m.config.SecureCookies, m.cookieOptions...)
	}
	return m, nil
}

// NewFromConfig creates a Manager from cfg.
func NewFromConfig(cfg Config, cookies *cookie.Manager, store activesession.Store, device Device, opts ...Option) (*Manager, error) {
	return New(cookies, store, device, append([]Option{WithConfig(cfg)}, opts...)...)
}

// Config returns the effective configuration.
func (m *Manager) Config() Config {
	return m.config
}

// Registry returns the key registry owned by the Manager.
func (m *Manager) Registry() *KeyRegistry {
	return m.registry
}

// SessionID derives the session id of an account: sha256 of
// "{username}:{userID}:{salt}". It is recorded but not checked on resolve.
func (m *Manager) SessionID(username, userID string) string {
	sum := sha256.Sum256([]byte(username + ":" + userID + ":" + m.config.Salt))
	return hex.EncodeToString(sum[:])
}

// Resolve establishes who the client of s is. The first call does the
// work; later calls return the cached outcome. Errors never authenticate:
// every failure resolves to StateAnonymous and is only logged.
func (m *Manager) Resolve(ctx context.Context, s *Scope) (*Identity, State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loggedOut {
		s.setState(StateAnonymous)
		return nil, StateAnonymous
	}
	if s.resolved != nil {
		return s.resolved.clone(), StateAuthenticated
	}
	if s.state == StateAnonymous {
		return nil, StateAnonymous
	}

	s.setState(StateResolving)
	id, err := m.resolve(ctx, s)
	if err != nil {
		s.setState(StateAnonymous)
		m.metrics.resolved(StateAnonymous, reason(err))
		m.logResolveFailure(ctx, s, err)
		return nil, StateAnonymous
	}

	s.setResolved(id)
	s.setState(StateAuthenticated)
	m.metrics.resolved(StateAuthenticated, id.Source)
	return id.clone(), StateAuthenticated
}

func (m *Manager) resolve(ctx context.Context, s *Scope) (*Identity, error) {
	p, err := m.readPayload(s)
	if errors.Is(err, ErrNotFound) {
		if m.config.DeviceRecovery {
			return m.recover(ctx, s)
		}
		return nil, err
	}
	if err != nil {
		m.purge(ctx, s)
		return nil, err
	}

	now := m.clock.Now()
	if p.Expired(now.Time) {
		m.purge(ctx, s)
		return nil, ErrExpired
	}

	user, err := m.lookupUser(ctx, p.Username, p.UserID)
	if err != nil {
		if errors.Is(err, ErrUserMismatch) {
			m.purge(ctx, s)
		}
		return nil, err
	}

	p = m.touch(ctx, s, p)
	return newIdentity(p, user, SourceCookie), nil
}

// recover re-attaches the client to the session stored for its device. The
// client must present the browser-session id the record was written for;
// a record that is missing, expired or written for another browser session
// leaves the scope anonymous.
func (m *Manager) recover(ctx context.Context, s *Scope) (*Identity, error) {
	if !s.presented {
		return nil, ErrNotFound
	}
	rec, err := m.store.Load(ctx, s.browserID)
	if err != nil {
		return nil, errors.Join(ErrNotFound, err)
	}
	if rec.DeviceID != s.browserID {
		return nil, errors.Join(ErrNotFound, ErrDeviceMismatch)
	}

	now := m.clock.Now()
	p := Payload{
		Username: rec.Username,
		UserID:   rec.UserID,
		Expiry:   timestamp.From(rec.LastActive.Add(m.config.TTL)),
	}
	if p.Expired(now.Time) {
		return nil, ErrExpired
	}

	user, err := m.lookupUser(ctx, p.Username, p.UserID)
	if err != nil {
		return nil, err
	}

	p = m.touch(ctx, s, p)
	m.logger.InfoContext(ctx, "session recovered from device record",
		logger.Component("session"),
		logger.Username(p.Username),
		logger.DeviceID(s.browserID),
	)
	return newIdentity(p, user, SourceRecovery), nil
}

// Login starts a session for the account on s: a complete new payload with
// a fixed expiry of now+TTL replaces whatever cookie the client had.
func (m *Manager) Login(ctx context.Context, s *Scope, username, userID string) (Invalidation, error) {
	return m.login(ctx, s, username, userID, nil)
}

// LoginUser is Login for a user record returned by the identity service.
// The record is kept on the resolved identity.
func (m *Manager) LoginUser(ctx context.Context, s *Scope, user *identity.User) (Invalidation, error) {
	if user == nil {
		return Invalidation{}, ErrInvalidIdentity
	}
	return m.login(ctx, s, user.Username, user.ID, user)
}

func (m *Manager) login(ctx context.Context, s *Scope, username, userID string, user *identity.User) (Invalidation, error) {
	if username == "" || userID == "" {
		m.metrics.login("invalid")
		return Invalidation{}, ErrInvalidIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, err := m.readPayload(s); err == nil && prev.UserID != userID {
		m.logger.InfoContext(ctx, "replacing session of another user",
			logger.Component("session"),
			logger.Group("previous", logger.Username(prev.Username), logger.UserID(prev.UserID)),
			logger.Username(username),
			logger.UserID(userID),
		)
	}

	now := m.clock.Now()
	p := Payload{
		Username:     username,
		UserID:       userID,
		Expiry:       timestamp.From(now.Add(m.config.TTL)),
		LastActivity: now,
	}
	if err := m.writePayload(s, p); err != nil {
		m.metrics.login("error")
		m.logger.ErrorContext(ctx, "session cookie not written",
			logger.Component("session"),
			logger.Username(username),
			logger.Error(err),
		)
		return Invalidation{}, errors.Join(ErrCookieWrite, err)
	}
	m.saveRecord(ctx, s, p)
	m.bindDevice(ctx, s, now)

	s.setResolved(newIdentity(p, user, SourceLogin))
	s.setState(StateAuthenticated)
	s.loggedOut = false

	m.metrics.login("success")
	m.logger.InfoContext(ctx, "user logged in",
		logger.Component("session"),
		logger.Username(username),
		logger.UserID(userID),
		logger.DeviceID(s.browserID),
	)
	return Invalidation{Reason: ReasonLogin, At: now.Time}, nil
}

// Logout ends the session on s: the cookie is deleted, the device record
// cleared and the key registry reset. The scope stays anonymous afterwards
// regardless of what the request carried.
func (m *Manager) Logout(ctx context.Context, s *Scope) Invalidation {
	s.mu.Lock()
	defer s.mu.Unlock()

	var username string
	if s.resolved != nil {
		username = s.resolved.Username
	}

	m.clearCookie(ctx, s)
	if m.deviceCookie != nil {
		_ = m.deviceCookie.Clear(s.w, s.r)
	}
	s.setResolved(nil)
	s.loggedOut = true
	s.setState(StateAnonymous)

	if err := m.store.Clear(ctx, s.browserID); err != nil {
		m.logger.WarnContext(ctx, "active session not cleared",
			logger.Component("session"),
			logger.DeviceID(s.browserID),
			logger.Error(err),
		)
	}
	m.registry.Reset()

	m.metrics.logout()
	m.logger.InfoContext(ctx, "user logged out",
		logger.Component("session"),
		logger.Username(username),
	)
	return Invalidation{Reason: ReasonLogout, At: m.clock.Now().Time}
}

// touch advances last activity in the cookie and the device record. The
// expiry is left as is.
func (m *Manager) touch(ctx context.Context, s *Scope, p Payload) Payload {
	p.LastActivity = m.clock.Now()
	if err := m.writePayload(s, p); err != nil {
		m.logger.WarnContext(ctx, "session cookie not refreshed",
			logger.Component("session"),
			logger.Username(p.Username),
			logger.Error(err),
		)
	}
	m.saveRecord(ctx, s, p)
	m.bindDevice(ctx, s, p.LastActivity)
	return p
}

// bindDevice hands the client its browser-session id so a later request
// without a session cookie can be matched to the device record. Only used
// with device recovery enabled.
func (m *Manager) bindDevice(ctx context.Context, s *Scope, now timestamp.Time) {
	if m.deviceCookie == nil {
		return
	}
	sealed, err := m.seal(s.browserID)
	if err == nil {
		err = m.deviceCookie.Write(s.w, sealed, now.Add(m.config.TTL))
	}
	if err != nil {
		m.logger.WarnContext(ctx, "device cookie not written",
			logger.Component("session"),
			logger.DeviceID(s.browserID),
			logger.Error(err),
		)
	}
}

// presentedDevice returns the browser-session id carried by the device
// cookie, or "" when there is none or it does not verify.
func (m *Manager) presentedDevice(r *http.Request) string {
	if m.deviceCookie == nil || r == nil {
		return ""
	}
	raw, err := m.deviceCookie.Read(r)
	if err != nil {
		return ""
	}
	id, err := m.open(raw)
	if err != nil {
		return ""
	}
	return id
}

func (m *Manager) saveRecord(ctx context.Context, s *Scope, p Payload) {
	err := m.store.Save(ctx, m.SessionID(p.Username, p.UserID), p.Username, p.UserID, s.browserID)
	if err != nil {
		m.logger.WarnContext(ctx, "active session not saved",
			logger.Component("session"),
			logger.Username(p.Username),
			logger.DeviceID(s.browserID),
			logger.Error(err),
		)
	}
}

// lookupUser checks the payload against the user directory, if any.
func (m *Manager) lookupUser(ctx context.Context, username, userID string) (*identity.User, error) {
	if m.directory == nil {
		return nil, nil
	}
	u, err := m.directory.Lookup(ctx, username)
	if errors.Is(err, identity.ErrUserNotFound) {
		return nil, errors.Join(ErrUserMismatch, err)
	}
	if err != nil {
		return nil, errors.Join(ErrDirectory, err)
	}
	if u.ID != userID {
		return nil, ErrUserMismatch
	}
	return u, nil
}

// readPayload returns the payload visible to s: one written earlier in the
// same scope, or else the one the request carried.
func (m *Manager) readPayload(s *Scope) (Payload, error) {
	if s.pending != nil {
		return *s.pending, nil
	}
	if s.cleared {
		return Payload{}, ErrNotFound
	}

	raw, err := m.transport.Read(s.r)
	if err != nil {
		return Payload{}, ErrNotFound
	}
	plain, err := m.open(raw)
	if err != nil {
		return Payload{}, errors.Join(ErrMalformed, err)
	}
	return DecodePayload(plain)
}

func (m *Manager) writePayload(s *Scope, p Payload) error {
	encoded, err := EncodePayload(p)
	if err != nil {
		return err
	}
	sealed, err := m.seal(encoded)
	if err != nil {
		return err
	}
	if err := m.transport.Write(s.w, sealed, p.Expiry.Time); err != nil {
		return err
	}
	s.pending = &p
	s.cleared = false
	return nil
}

// purge removes an unusable cookie. Unlike Logout it leaves the device
// record alone and signals no invalidation.
func (m *Manager) purge(ctx context.Context, s *Scope) {
	m.clearCookie(ctx, s)
}

func (m *Manager) clearCookie(ctx context.Context, s *Scope) {
	if err := m.transport.Clear(s.w, s.r); err != nil {
		m.logger.WarnContext(ctx, "session cookie not cleared",
			logger.Component("session"),
			logger.Error(err),
		)
	}
	s.pending = nil
	s.cleared = true
}

func (m *Manager) seal(value string) (string, error) {
	if m.config.EncryptCookie {
		return m.cookies.Seal(value)
	}
	return m.cookies.Sign(value), nil
}

func (m *Manager) open(value string) (string, error) {
	if m.config.EncryptCookie {
		return m.cookies.Open(value)
	}
	return m.cookies.Verify(value)
}

func (m *Manager) logResolveFailure(ctx context.Context, s *Scope, err error) {
	level := slog.LevelWarn
	if errors.Is(err, ErrNotFound) && !errors.Is(err, activesession.ErrStoreIO) {
		level = slog.LevelDebug
	}
	m.logger.Log(ctx, level, "session resolved anonymous",
		logger.Component("session"),
		logger.SessionState(StateAnonymous.String()),
		logger.DeviceID(s.browserID),
		logger.OpKey(s.key),
		logger.Error(err),
	)
}

func newIdentity(p Payload, user *identity.User, source string) *Identity {
	return &Identity{
		Username:     p.Username,
		UserID:       p.UserID,
		User:         user,
		Expiry:       p.Expiry,
		LastActivity: p.LastActivity,
		Source:       source,
	}
}

// reason maps a resolve failure to a metrics label.
func reason(err error) string {
	switch {
	case errors.Is(err, ErrExpired), errors.Is(err, activesession.ErrExpired):
		return "expired"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrUserMismatch), errors.Is(err, ErrDeviceMismatch), errors.Is(err, activesession.ErrDeviceMismatch):
		return "mismatch"
	case errors.Is(err, ErrDirectory), errors.Is(err, activesession.ErrStoreIO):
		return "error"
	default:
		return "absent"
	}
}

