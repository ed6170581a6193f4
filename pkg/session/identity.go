package session

import (
	"github.com/dmitrymomot/sessionkit/pkg/identity"
	"github.com/dmitrymomot/sessionkit/pkg/timestamp"
)

// How an Identity was established.
const (
	SourceLogin    = "login"
	SourceCookie   = "cookie"
	SourceRecovery = "recovery"
)

// Identity is the resolved identity cached on a Scope. User is set when
// the identity came from the user directory or from LoginUser.
type Identity struct {
	Username     string
	UserID       string
	User         *identity.User
	Expiry       timestamp.Time
	LastActivity timestamp.Time
	Source       string
}

func (i *Identity) clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	if i.User != nil {
		u := *i.User
		c.User = &u
	}
	return &c
}
