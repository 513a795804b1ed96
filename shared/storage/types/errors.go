package types

import "errors"

// Common storage errors
var (
	// ErrPathRejected is returned when an identifier would resolve outside
	// its container root or is otherwise unusable as a relative path
	ErrPathRejected = errors.New("path rejected")

	// ErrInvalidContainer is returned when a container name is not a single
	// safe path segment
	ErrInvalidContainer = errors.New("invalid container name")

	// ErrObjectNotFound is returned when an object is not found in storage
	ErrObjectNotFound = errors.New("object not found")
)
