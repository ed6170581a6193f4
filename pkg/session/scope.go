package session

import (
	"net/http"
	"sync"
	"sync/atomic"
)

// Scope is the per-client context a session is resolved in: one HTTP
// request/response pair. It caches the browser-session id and the resolved
// identity, and remembers cookie writes made during the request so later
// reads in the same request see them.
type Scope struct {
	w         http.ResponseWriter
	r         *http.Request
	key       string
	browserID string
	presented bool

	// Guarded by mu, which the Manager holds for a whole operation.
	mu        sync.Mutex
	state     State
	resolved  *Identity
	pending   *Payload
	cleared   bool
	loggedOut bool

	// Snapshots for readers that may run while mu is held, such as log
	// context extractors.
	stateView    atomic.Int32
	identityView atomic.Pointer[Identity]
}

// NewScope starts a new client context for w and r.
// With device recovery enabled, a browser-session id presented in the
// device cookie is kept; otherwise the device issues a fresh one.
func (m *Manager) NewScope(w http.ResponseWriter, r *http.Request) *Scope {
	s := &Scope{
		w:   w,
		r:   r,
		key: m.registry.Key(m.config.CookieName),
	}
	if id := m.presentedDevice(r); id != "" {
		s.browserID, s.presented = id, true
	} else {
		s.browserID = m.device.BrowserSessionID()
	}
	return s
}

// State returns the current resolution state.
func (s *Scope) State() State {
	return State(s.stateView.Load())
}

// Identity returns a copy of the cached identity, or nil.
func (s *Scope) Identity() *Identity {
	return s.identityView.Load().clone()
}

// BrowserSessionID returns the browser-session id assigned to this scope.
func (s *Scope) BrowserSessionID() string {
	return s.browserID
}

// Key returns the registry key of this scope's cookie binding.
func (s *Scope) Key() string {
	return s.key
}

func (s *Scope) setState(st State) {
	s.state = st
	s.stateView.Store(int32(st))
}

func (s *Scope) setResolved(id *Identity) {
	s.resolved = id
	s.identityView.Store(id.clone())
}
