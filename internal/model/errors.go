package model

import (
	"errors"
	"fmt"
)

// ─── Error kinds ─────────────────────────────────────────────────────────────

// Every error returned by the services wraps exactly one of these kinds so the
// transports can map them with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrFetchFailed  = errors.New("feed fetch failed")
)

// ─── Specific errors ─────────────────────────────────────────────────────────

var (
	ErrSourceNotFound         = fmt.Errorf("job source %w", ErrNotFound)
	ErrSourceDisabled         = fmt.Errorf("job source is disabled: %w", ErrInvalidInput)
	ErrDuplicateSource        = fmt.Errorf("job source with this url %w", ErrDuplicate)
	ErrListingNotFound        = fmt.Errorf("job listing %w", ErrNotFound)
	ErrProfileNotFound        = fmt.Errorf("search profile %w", ErrNotFound)
	ErrDuplicateProfile       = fmt.Errorf("search profile %w", ErrDuplicate)
	ErrRecommendationNotFound = fmt.Errorf("recommendation %w", ErrNotFound)
	ErrApplicationNotFound    = fmt.Errorf("application %w", ErrNotFound)
	ErrForbidden              = fmt.Errorf("resource belongs to another user: %w", ErrUnauthorized)
	ErrInvalidWeights         = fmt.Errorf("scoring weights must sum to 1: %w", ErrInvalidInput)
	ErrInvalidRecommendation  = fmt.Errorf("recommendation out of bounds: %w", ErrInvalidInput)
)

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Unwrap lets errors.Is(err, ErrInvalidInput) match validation failures.
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
