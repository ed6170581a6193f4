package device

import "errors"

var (
	// ErrEmptyIDFile is returned by ReadID for a missing or blank id file.
	ErrEmptyIDFile = errors.New("device.empty_id_file")

	// ErrPersist wraps failures to write the id file.
	ErrPersist = errors.New("device.persist_failed")
)
