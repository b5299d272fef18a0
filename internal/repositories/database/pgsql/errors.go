package pgsql

import (
	"errors"
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the ledger reacts to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeLockNotAvailable     = "55P03"
	codeDeadlockDetected     = "40P01"
	codeSerializationFailure = "40001"
)

// mapError translates driver errors into the apperrors taxonomy.
func mapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)

	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError(msg)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return apperrors.NewAppError(apperrors.ErrConflict, msg, err)
		case codeForeignKeyViolation:
			return apperrors.NewAppError(apperrors.ErrNotFound, msg, err)
		case codeLockNotAvailable, codeDeadlockDetected, codeSerializationFailure:
			return apperrors.NewAppError(apperrors.ErrBusy, msg, err)
		}
	}
	return apperrors.NewInternalError(msg, err)
}
