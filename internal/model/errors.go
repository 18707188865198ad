package model

import (
	"errors"
	"fmt"
)

// Validation errors. Callers wrap them with context using %w.
var (
	ErrInvalidPreset     = errors.New("invalid preset")
	ErrInvalidStarCount  = errors.New("invalid star count")
	ErrInvalidHistory    = errors.New("invalid history")
	ErrIncompleteMetrics = errors.New("incomplete metrics")
)

// IsValidation reports whether err is a recoverable input validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidPreset) ||
		errors.Is(err, ErrInvalidStarCount) ||
		errors.Is(err, ErrInvalidHistory) ||
		errors.Is(err, ErrIncompleteMetrics)
}

// InternalError signals a broken invariant inside the hint core.
// It is never the caller's fault and must abort the request.
type InternalError struct {
	Op  string
	Msg string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in %s: %s", e.Op, e.Msg)
}

// IsInternal reports whether err wraps an *InternalError.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
