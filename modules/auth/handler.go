package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/sessionkit/pkg/clientip"
	"github.com/dmitrymomot/sessionkit/pkg/identity"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/ratelimiter"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

// Handler serves login, logout, registration and session status on top of
// a session.Manager and an identity.Service.
type Handler struct {
	sessions   *session.Manager
	identities identity.Service
	log        *slog.Logger
	redirectTo string
	limiter    *ratelimiter.Bucket
}

type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithRedirect sets where browsers are sent after a login or logout.
// Defaults to "/".
func WithRedirect(path string) Option {
	return func(h *Handler) {
		if path != "" {
			h.redirectTo = path
		}
	}
}

// WithLimiter throttles login attempts per client IP and username, and
// registrations per client IP.
func WithLimiter(b *ratelimiter.Bucket) Option {
	return func(h *Handler) { h.limiter = b }
}

func New(sessions *session.Manager, identities identity.Service, opts ...Option) *Handler {
	h := &Handler{
		sessions:   sessions,
		identities: identities,
		log:        logger.Discard(),
		redirectTo: "/",
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.With(logger.Component("auth"))
	return h
}

// Handle returns the module router. Every route runs inside a session scope.
func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(h.sessions.Middleware)

	r.Get("/status", h.status)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(ratelimiter.Middleware(h.limiter, ratelimiter.Composite(ratelimiter.Static("register"), remoteIP)))
		}
		r.Post("/register", h.register)
	})

	return r
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, state := h.sessions.Resolve(ctx, session.MustScopeFromContext(ctx))
	writeJSON(w, http.StatusOK, newStatus(id, state))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := session.MustScopeFromContext(ctx)

	var req LoginRequest
	if err := bind(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	throttleKey := ratelimiter.JoinKey("login", remoteIP(r), strings.ToLower(req.Username))
	if !h.allow(w, r, throttleKey) {
		return
	}

	res, err := h.identities.Verify(ctx, req.Username, identity.CredentialHash(req.Password))
	switch {
	case errors.Is(err, identity.ErrUnavailable):
		h.log.WarnContext(ctx, "identity service unavailable", logger.Username(req.Username), logger.Error(err))
		writeError(w, http.StatusServiceUnavailable, "identity service unavailable")
		return
	case err != nil:
		h.log.ErrorContext(ctx, "credential check failed", logger.Username(req.Username), logger.Error(err))
		writeError(w, http.StatusBadGateway, "credential check failed")
		return
	case !res.Success || res.User == nil:
		h.log.InfoContext(ctx, "login rejected", logger.Username(req.Username))
		writeError(w, http.StatusUnauthorized, res.Message)
		return
	}

	inv, err := h.sessions.LoginUser(ctx, scope, res.User)
	if err != nil {
		h.log.ErrorContext(ctx, "session login failed", logger.Username(req.Username), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "could not start session")
		return
	}
	if h.limiter != nil {
		_ = h.limiter.Reset(ctx, throttleKey)
	}

	h.respond(w, r, inv)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	inv := h.sessions.Logout(ctx, session.MustScopeFromContext(ctx))
	h.respond(w, r, inv)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterRequest
	if err := bind(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	user, err := h.identities.Register(ctx, identity.Registration{
		Username:       req.Username,
		CredentialHash: identity.CredentialHash(req.Password),
		Email:          req.Email,
		Gender:         req.Gender,
	})
	switch {
	case errors.Is(err, identity.ErrUserExists), errors.Is(err, identity.ErrEmailTaken):
		writeError(w, http.StatusConflict, "username or email already registered")
		return
	case errors.Is(err, identity.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid registration")
		return
	case errors.Is(err, identity.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "identity service unavailable")
		return
	case err != nil:
		h.log.ErrorContext(ctx, "registration failed", logger.Username(req.Username), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	h.log.InfoContext(ctx, "user registered", logger.Username(user.Username), logger.UserID(user.ID))
	writeJSON(w, http.StatusCreated, user)
}

// respond sends browsers a 303 when the visible identity changed so the next
// page is rendered for the new identity. JSON clients get the new status.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, inv session.Invalidation) {
	if inv.Required() && !wantsJSON(r) {
		http.Redirect(w, r, h.redirectTo, http.StatusSeeOther)
		return
	}
	id, state := h.sessions.Resolve(r.Context(), session.MustScopeFromContext(r.Context()))
	writeJSON(w, http.StatusOK, newStatus(id, state))
}

// allow takes a login token for key. Limiter failures let the attempt through.
func (h *Handler) allow(w http.ResponseWriter, r *http.Request, key string) bool {
	if h.limiter == nil {
		return true
	}
	res, err := h.limiter.Allow(r.Context(), key)
	if err != nil {
		h.log.WarnContext(r.Context(), "login limiter failed", logger.Error(err))
		return true
	}
	ratelimiter.SetHeaders(w, res)
	if !res.Allowed() {
		h.log.WarnContext(r.Context(), "login throttled", logger.OpKey(key))
		writeError(w, http.StatusTooManyRequests, "too many login attempts")
		return false
	}
	return true
}

func remoteIP(r *http.Request) string {
	if ip := clientip.FromContext(r.Context()); ip != "" {
		return ip
	}
	return clientip.FromRequest(r)
}

func (h *Handler) badRequest(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrUnsupportedMediaType) {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported content type")
		return
	}
	writeError(w, http.StatusBadRequest, "username and password are required")
}
