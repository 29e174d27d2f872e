package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// FromError converts a standard error to an AppError
// If the error is already an AppError, it is returned as-is
// Otherwise the kind is taken from any KindError in the chain
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	kind := KindOf(err)
	return FromKind(kind, http.StatusText(kind.HTTPStatus()), err)
}

// Describe renders the cause chain of an error for logs
func Describe(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", appErr.Message, appErr.Cause)
	}
	return err.Error()
}
