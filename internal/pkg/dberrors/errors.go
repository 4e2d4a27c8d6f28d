package dberrors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

// PostgreSQL error codes we translate
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeUniqueViolation && pgErr.ConstraintName == constraintName
}

// Map converts pgx/pgconn errors into application error kinds.
// Context cancellation passes through unchanged.
func Map(err error, entity string, id int64) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %d: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError(fmt.Sprintf("%s %d not found", entity, id))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case CodeUniqueViolation:
			return apperrors.NewConflictError(fmt.Sprintf("%s already exists", entity))
		case CodeForeignKeyViolation:
			if parentRefused(pgErr) {
				return apperrors.NewConflictError(fmt.Sprintf("%s %d is still referenced by %s", entity, id, pgErr.TableName))
			}
			return apperrors.NewNotFoundError(fmt.Sprintf("%s references a missing row (%s)", entity, pgErr.ConstraintName))
		case CodeCheckViolation:
			return apperrors.NewValidationError(fmt.Sprintf("%s violates %s", entity, pgErr.ConstraintName))
		}
	}

	return fmt.Errorf("%s %d: %w", entity, id, err)
}

// parentRefused reports whether a foreign key violation came from deleting or
// updating a referenced row, as opposed to inserting a row whose parent is missing.
func parentRefused(pgErr *pgconn.PgError) bool {
	return strings.HasPrefix(pgErr.Message, "update or delete on table")
}
