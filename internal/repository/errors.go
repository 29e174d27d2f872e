package repository

import (
	"errors"
	"fmt"
	"strings"

	apperrors "ice-breakun/backend/pkg/errors"

	"gorm.io/gorm"
)

// translate normalises a storage failure into the semantic taxonomy.
// Anything not recognised keeps its original error and reads as KindInternal.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	if kind, ok := classify(err); ok {
		return apperrors.E(kind, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func classify(err error) (apperrors.Kind, bool) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.KindNotFound, true
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.KindUniqueViolation, true
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.KindForeignKeyViolation, true
	}

	// Dialects without an error translator still report the constraint in the message
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "SQLSTATE 23505"),
		strings.Contains(msg, "duplicate key value"):
		return apperrors.KindUniqueViolation, true
	case strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "SQLSTATE 23503"):
		return apperrors.KindForeignKeyViolation, true
	}
	return apperrors.KindInternal, false
}
