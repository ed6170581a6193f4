package identity

import "errors"

var (
	ErrUserNotFound       = errors.New("identity.user_not_found")
	ErrUserExists         = errors.New("identity.user_exists")
	ErrEmailTaken         = errors.New("identity.email_taken")
	ErrInvalidCredentials = errors.New("identity.invalid_credentials")
	ErrInvalidInput       = errors.New("identity.invalid_input")
	ErrUnavailable        = errors.New("identity.unavailable")
	ErrStore              = errors.New("identity.store_failed")
)
