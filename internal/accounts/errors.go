package accounts

import (
	"fmt"
	"strings"
)

// Kind is the machine-checkable classification of an account error.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidInput      Kind = "invalid_input"
	KindAuthFailure       Kind = "auth_failure"
	KindPermissionDenied  Kind = "permission_denied"
	KindIncompleteProfile Kind = "incomplete_profile"
)

// Error is the account domain error. Validation failures (malformed email,
// incomplete profile) are produced before any storage access; storage
// failures are wrapped with the original kept as Err.
type Error struct {
	Kind    Kind
	Context string
	Err     error

	// MissingFields is populated for KindIncompleteProfile.
	MissingFields []string
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if len(e.MissingFields) > 0 {
		msg += ": missing " + strings.Join(e.MissingFields, ", ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Description returns a human-readable summary suitable for display.
func (e *Error) Description() string {
	switch e.Kind {
	case KindNotFound:
		return "That account could not be found."
	case KindInvalidInput:
		return "The account details were invalid."
	case KindAuthFailure:
		return "The account could not be verified."
	case KindPermissionDenied:
		return "You don't have permission to do that."
	case KindIncompleteProfile:
		return "Your profile is missing required details."
	default:
		return "Something went wrong with your account."
	}
}

// RecoverySuggestion returns a next step the presentation layer can show.
func (e *Error) RecoverySuggestion() string {
	switch e.Kind {
	case KindInvalidInput:
		return "Check the details and try again."
	case KindIncompleteProfile:
		return "Fill in the missing fields to continue."
	case KindNotFound:
		return "The account may have been deleted on another device."
	default:
		return "If the problem persists, contact support."
	}
}

func wrapf(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Context: fmt.Sprintf(format, args...), Err: err}
}
