// Package apperror defines the error taxonomy shared by services and HTTP
// handlers. Every error that reaches a handler is converted with From, so no
// failure leaves the API without a status code and a user-visible message.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for translation into an HTTP status.
type Kind int

const (
	Internal     Kind = iota // Store/config failure or anything unexpected.
	BadRequest               // Malformed or missing input.
	Unauthorized             // Missing/invalid token or bad credentials.
	Forbidden                // Authenticated but not the owner.
	NotFound                 // Well-formed id, no such resource.
	Conflict                 // Duplicate unique field.
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "bad request"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not found"
	case Conflict:
		return "conflict"
	}
	return "internal error"
}

// Error is a classified, user-presentable error. Err holds the cause and is
// only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error's kind.
func (e *Error) Status() int {
	switch e.Kind {
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func NewBadRequest(msg string) *Error   { return &Error{Kind: BadRequest, Message: msg} }
func NewUnauthorized(msg string) *Error { return &Error{Kind: Unauthorized, Message: msg} }
func NewForbidden(msg string) *Error    { return &Error{Kind: Forbidden, Message: msg} }
func NewNotFound(msg string) *Error     { return &Error{Kind: NotFound, Message: msg} }
func NewConflict(msg string) *Error     { return &Error{Kind: Conflict, Message: msg} }

// NewValidation is a BadRequest carrying one message per failed rule.
func NewValidation(details []string) *Error {
	return &Error{Kind: BadRequest, Message: "Validation failed", Details: details}
}

// NewInternal wraps an unexpected failure behind a generic message.
func NewInternal(msg string, err error) *Error {
	return &Error{Kind: Internal, Message: msg, Err: err}
}

// From returns err as an *Error, wrapping unclassified errors as Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewInternal("Server error", err)
}

// Is reports whether err is an *Error of the given kind.
func Is(kind Kind, err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
