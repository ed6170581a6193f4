package session

import (
	"net/http"
	"time"
)

// Transport moves the sealed session payload between client and server.
// Values are opaque to the transport; the Manager signs or encrypts them.
type Transport interface {
	// Read returns the raw value or ErrNotFound.
	Read(r *http.Request) (string, error)

	// Write sends value to the client, valid until expiry.
	Write(w http.ResponseWriter, value string, expiry time.Time) error

	// Clear removes the value from the client. It is unconditional and
	// idempotent.
	Clear(w http.ResponseWriter, r *http.Request) error
}
