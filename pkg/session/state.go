package session

// State is the resolution state of a Scope.
type State int

const (
	StateUnresolved State = iota
	StateResolving
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolving:
		return "resolving"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions happen within the scope.
func (s State) Terminal() bool {
	return s == StateAuthenticated || s == StateAnonymous
}
