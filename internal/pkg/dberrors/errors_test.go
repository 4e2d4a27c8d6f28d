package dberrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

func TestMap(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, apperrors.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), apperrors.ErrNotFound},
		{"unique", &pgconn.PgError{Code: CodeUniqueViolation}, apperrors.ErrConflictInvariant},
		{"foreign key on insert", &pgconn.PgError{
			Code:    CodeForeignKeyViolation,
			Message: `insert or update on table "rsvps" violates foreign key constraint "rsvps_event_id_fkey"`,
		}, apperrors.ErrNotFound},
		{"foreign key on parent delete", &pgconn.PgError{
			Code:      CodeForeignKeyViolation,
			Message:   `update or delete on table "events" violates foreign key constraint "rsvps_event_id_fkey" on table "rsvps"`,
			TableName: "rsvps",
		}, apperrors.ErrConflictInvariant},
		{"check", &pgconn.PgError{Code: CodeCheckViolation}, apperrors.ErrValidationFailed},
		{"deadline", context.DeadlineExceeded, context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Map(tt.err, "club", 3)
			assert.True(t, errors.Is(got, tt.want), "got %v", got)
		})
	}
}

func TestMap_Nil(t *testing.T) {
	assert.NoError(t, Map(nil, "club", 1))
}

func TestMap_UnknownPassesThrough(t *testing.T) {
	base := errors.New("connection reset")
	got := Map(base, "event", 8)

	assert.True(t, errors.Is(got, base))
	assert.False(t, errors.Is(got, apperrors.ErrNotFound))
}

func TestIsDuplicateConstraintError(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "clubs_name_key"})

	assert.True(t, IsDuplicateConstraintError(err, "clubs_name_key"))
	assert.False(t, IsDuplicateConstraintError(err, "users_email_key"))
}
