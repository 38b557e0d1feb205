package generator

import (
	"errors"
	"fmt"
)

// Kind classifies a generation failure.
type Kind int

const (
	KindOther Kind = iota
	KindRateLimit
	KindTimeout
	KindAuthentication
	KindRequest
)

// Error is a typed generation failure. The executor keys its retry and
// exclusion policy off Kind, so backends must map their transport errors
// into one of the kinds above.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.KindString(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.KindString(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) KindString() string {
	switch e.Kind {
	case KindRateLimit:
		return "RateLimitError"
	case KindTimeout:
		return "TimeoutError"
	case KindAuthentication:
		return "AuthenticationError"
	case KindRequest:
		return "RequestError"
	default:
		return "GenerationError"
	}
}

// NewError creates a new typed generation error.
func NewError(kind Kind, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// IsRateLimit reports whether err (or anything it wraps) is a rate-limit
// failure.
func IsRateLimit(err error) bool {
	return hasKind(err, KindRateLimit)
}

// IsTimeout reports whether err (or anything it wraps) is a timeout.
func IsTimeout(err error) bool {
	return hasKind(err, KindTimeout)
}

func hasKind(err error, kind Kind) bool {
	var genErr *Error
	return errors.As(err, &genErr) && genErr.Kind == kind
}
