package config

import "errors"

var (
	// ErrInvalidConfiguration is returned for unknown or malformed options
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrTargetNotFound is returned when the target root is missing or not a directory
	ErrTargetNotFound = errors.New("target not found")
	// ErrWriteFailed is returned when an output file or directory can't be written
	ErrWriteFailed = errors.New("write failed")
	// ErrProbeFailed is returned when update can't recover the previous compiler family
	ErrProbeFailed = errors.New("probe failed")
)
