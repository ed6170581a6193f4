package session

import (
	"errors"
	"net/http"
	"time"
)

// CompositeTransport reads from the first transport that has a value and
// writes to and clears all of them.
type CompositeTransport struct {
	transports []Transport
}

func NewCompositeTransport(transports ...Transport) *CompositeTransport {
	return &CompositeTransport{transports: transports}
}

func (c *CompositeTransport) Read(r *http.Request) (string, error) {
	for _, t := range c.transports {
		if v, err := t.Read(r); err == nil {
			return v, nil
		}
	}
	return "", ErrNotFound
}

func (c *CompositeTransport) Write(w http.ResponseWriter, value string, expiry time.Time) error {
	var errs []error
	for _, t := range c.transports {
		if err := t.Write(w, value, expiry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *CompositeTransport) Clear(w http.ResponseWriter, r *http.Request) error {
	var errs []error
	for _, t := range c.transports {
		if err := t.Clear(w, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
