package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate lead")
	// ErrRejected is returned when the store refuses a value (check, not-null,
	// foreign key or data exceptions).
	ErrRejected = errors.New("rejected by store")
)

const (
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgDataException       = "22"
)

// translateError maps driver errors onto the repository sentinels while
// keeping the driver detail in the message.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	detail := pgErr.Message
	if pgErr.Detail != "" {
		detail = pgErr.Detail
	}

	switch {
	case pgErr.Code == pgUniqueViolation:
		return fmt.Errorf("%w: %s", ErrDuplicate, detail)
	case pgErr.Code == pgCheckViolation, pgErr.Code == pgNotNullViolation, pgErr.Code == pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrRejected, constraintMessage(pgErr))
	case strings.HasPrefix(pgErr.Code, pgDataException):
		return fmt.Errorf("%w: %s", ErrRejected, detail)
	default:
		return err
	}
}

func constraintMessage(pgErr *pgconn.PgError) string {
	if pgErr.ConstraintName != "" {
		return fmt.Sprintf("%s (%s)", pgErr.Message, pgErr.ConstraintName)
	}
	if pgErr.ColumnName != "" {
		return fmt.Sprintf("%s (%s)", pgErr.Message, pgErr.ColumnName)
	}
	return pgErr.Message
}
