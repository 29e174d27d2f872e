package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of semantic failures the data layer and the API agree on.
type Kind uint8

const (
	// KindInternal covers every failure that is not one of the kinds below
	KindInternal Kind = iota
	// KindValidation means the client omitted or malformed a required field
	KindValidation
	// KindUniqueViolation means a unique key (user email) is already taken
	KindUniqueViolation
	// KindNotFound means the addressed entity does not exist
	KindNotFound
	// KindForeignKeyViolation means a referenced related entity does not exist
	KindForeignKeyViolation
)

// String returns the canonical name of the kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_failure"
	case KindUniqueViolation:
		return "unique_violation"
	case KindNotFound:
		return "not_found"
	case KindForeignKeyViolation:
		return "foreign_key_violation"
	default:
		return "internal_failure"
	}
}

// HTTPStatus returns the status code a kind is reported with
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUniqueViolation:
		return http.StatusConflict
	case KindNotFound, KindForeignKeyViolation:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// KindError tags an underlying failure with its semantic kind.
// Op names the operation that failed, e.g. "user.create".
type KindError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *KindError) Unwrap() error { return e.Err }

// E builds a KindError
func E(kind Kind, op string, err error) error {
	return &KindError{Kind: kind, Op: op, Err: err}
}

// KindOf reports the kind carried by err, looking through wrapping.
// Untagged errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var ke *KindError
	if stderrors.As(err, &ke) {
		return ke.Kind
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
