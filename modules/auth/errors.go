package auth

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("auth.unsupported_media_type")
	ErrInvalidRequest       = errors.New("auth.invalid_request")
)
