package session

import "errors"

var (
	// ErrNotFound indicates no session payload was presented.
	ErrNotFound = errors.New("session.not_found")

	// ErrExpired indicates the payload is past its expiry.
	ErrExpired = errors.New("session.expired")

	// ErrMalformed indicates the payload could not be verified or parsed.
	ErrMalformed = errors.New("session.malformed")

	// ErrUserMismatch indicates the payload does not match the user directory.
	ErrUserMismatch = errors.New("session.user_mismatch")

	// ErrDirectory indicates the user directory could not be consulted.
	ErrDirectory = errors.New("session.directory_unavailable")

	// ErrInvalidIdentity is returned by Login for an empty username or user id.
	ErrInvalidIdentity = errors.New("session.invalid_identity")

	// ErrCookieWrite indicates the session cookie could not be written.
	ErrCookieWrite = errors.New("session.cookie_write_failed")

	// ErrDeviceMismatch indicates the device record belongs to another
	// browser session than the one the client presented.
	ErrDeviceMismatch = errors.New("session.device_mismatch")

	// ErrInvalidConfig indicates conflicting configuration.
	ErrInvalidConfig = errors.New("session.invalid_config")

	ErrNoCookieManager = errors.New("session.no_cookie_manager")
	ErrNoStore         = errors.New("session.no_store")
	ErrNoDevice        = errors.New("session.no_device")
)
