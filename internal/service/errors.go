// Package service implements the raffle's business operations on top of the
// repositories.  Every error it returns is either a *Error carrying a Kind or
// an unexpected failure that callers treat as internal.
package service

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the transport layer can pick a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified failure.  Message is safe to show to clients; Err is
// the cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func validationErr(msg string, cause error, details ...string) error {
	return &Error{Kind: KindValidation, Message: msg, Details: details, Err: cause}
}

func authErr(msg string) error {
	return &Error{Kind: KindAuth, Message: msg}
}

func notFoundErr(msg string, cause error) error {
	return &Error{Kind: KindNotFound, Message: msg, Err: cause}
}

func conflictErr(msg string, cause error) error {
	return &Error{Kind: KindConflict, Message: msg, Err: cause}
}

func internalErr(msg string, cause error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}
