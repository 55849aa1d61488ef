package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrSelfReferral       = fmt.Errorf("%w: sellers cannot share their own listing", ErrForbidden)
	ErrValidation         = errors.New("validation failed")
	ErrRetryable          = errors.New("temporarily unavailable, retry the request")
	ErrShareCodeExhausted = errors.New("could not allocate a unique share code")
	ErrCouponExhausted    = errors.New("could not allocate a unique coupon code")
)

// ValidationError names the offending request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
