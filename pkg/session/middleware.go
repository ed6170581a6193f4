package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

// Middleware opens a Scope for every request, resolves it and stores it in
// the request context. Handlers get the scope with ScopeFromContext and
// pass it to Login and Logout.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.NewScope(w, r)
		ctx := WithScope(r.Context(), s)
		m.Resolve(ctx, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests whose scope is not authenticated. It opens a
// scope itself when Middleware did not run.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		s, ok := ScopeFromContext(ctx)
		if !ok {
			s = m.NewScope(w, r)
			ctx = WithScope(ctx, s)
		}

		if _, state := m.Resolve(ctx, s); state != StateAuthenticated {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LogExtractor adds the username of the request scope to log records.
// Use it with logger.WithContextExtractors.
func LogExtractor(ctx context.Context) (slog.Attr, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return logger.Username(id.Username), true
}
