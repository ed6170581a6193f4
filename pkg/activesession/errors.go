package activesession

import "errors"

var (
	// ErrNotFound is satisfied by every Load failure.
	ErrNotFound = errors.New("activesession.not_found")

	// ErrExpired indicates the record was inactive for longer than the TTL.
	ErrExpired = errors.New("activesession.expired")

	// ErrDeviceMismatch indicates the stored device prefix differs from the caller's.
	ErrDeviceMismatch = errors.New("activesession.device_mismatch")

	// ErrMalformed indicates the stored record could not be parsed.
	ErrMalformed = errors.New("activesession.malformed")

	// ErrStoreIO wraps filesystem or network failures.
	ErrStoreIO = errors.New("activesession.store_io")

	// ErrInvalidRecord is returned by Save for incomplete input.
	ErrInvalidRecord = errors.New("activesession.invalid_record")

	// ErrInvalidConfig is returned by NewFromConfig.
	ErrInvalidConfig = errors.New("activesession.invalid_config")
)

// notFound joins cause with ErrNotFound so callers can test either.
func notFound(cause ...error) error {
	return errors.Join(append([]error{ErrNotFound}, cause...)...)
}
