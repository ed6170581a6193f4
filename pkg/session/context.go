package session

import "context"

type scopeContextKey struct{}

// WithScope adds a scope to the context.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// ScopeFromContext retrieves the scope from the context.
func ScopeFromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeContextKey{}).(*Scope)
	return s, ok && s != nil
}

// MustScopeFromContext retrieves the scope from the context or panics.
func MustScopeFromContext(ctx context.Context) *Scope {
	s, ok := ScopeFromContext(ctx)
	if !ok {
		panic("session: scope not found in context")
	}
	return s
}

// IdentityFromContext returns the resolved identity of the request, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	s, ok := ScopeFromContext(ctx)
	if !ok {
		return nil, false
	}
	id := s.Identity()
	return id, id != nil
}

// UserIDFromContext returns the authenticated user id of the request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return "", false
	}
	return id.UserID, true
}
