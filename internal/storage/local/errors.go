package local

import "errors"

var (
	// ErrNotFound is returned when the document does not exist
	ErrNotFound = errors.New("not found")

	// ErrCorrupt is returned when the document exists but cannot be decoded
	ErrCorrupt = errors.New("corrupt document")
)
