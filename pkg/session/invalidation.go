package session

import "time"

const (
	ReasonLogin  = "login"
	ReasonLogout = "logout"
)

// Invalidation tells the presentation layer that the identity visible to
// the client changed and anything rendered for the old identity is stale.
// The zero value means nothing changed.
type Invalidation struct {
	Reason string
	At     time.Time
}

// Required reports whether the caller should re-render.
func (i Invalidation) Required() bool {
	return i.Reason != ""
}
