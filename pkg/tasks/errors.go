package tasks

import "errors"

var (
	ErrUnknownFilter    = errors.New("unknown task filter")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidPage      = errors.New("page must not be negative")
	ErrInvalidTaskID    = errors.New("task id must be positive")
)
