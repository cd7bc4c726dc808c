// Package apperr defines the stable error-kind taxonomy shared by the
// catalog and graph layers. Handlers map kinds to HTTP status codes and
// echo the kind to clients as a machine-readable code, so consumers never
// have to parse raw error strings.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation  Kind = "validation_failed"
	KindConflict    Kind = "conflict"
	KindNotFound    Kind = "not_found"
	KindUnavailable Kind = "store_unavailable"
	KindInternal    Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error. err may be nil.
func E(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, walking the wrap chain.
// Errors outside the taxonomy report KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// HTTPStatus maps a kind to the wire status. Validation and conflict both
// surface as 400 per the public contract; the code field tells them apart.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
