package persistence

import (
	"errors"
	"fmt"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes that mean "try again later"
const (
	pgLockNotAvailable     = "55P03"
	pgDeadlockDetected     = "40P01"
	pgSerializationFailure = "40001"
)

// Integrity violations that reach the database despite domain checks
const (
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// translateError maps driver errors onto domain sentinels. Lock timeouts,
// deadlocks and serialization failures become shared.ErrLockTimeout so callers
// can retry them. A row still referenced elsewhere is ErrInvalidState and a
// violated CHECK is ErrInvalidInput. Everything else is returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: row is still referenced", shared.ErrInvalidState)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%w: check constraint violated", shared.ErrInvalidInput)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgDeadlockDetected, pgSerializationFailure:
			return fmt.Errorf("%w: %s", shared.ErrLockTimeout, pgErr.Message)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", shared.ErrInvalidState, pgErr.Message)
		case pgCheckViolation:
			return fmt.Errorf("%w: %s", shared.ErrInvalidInput, pgErr.Message)
		}
	}
	return err
}

// IsTransient reports whether err is worth retrying
func IsTransient(err error) bool {
	return errors.Is(translateError(err), shared.ErrLockTimeout)
}

// isDuplicate reports a unique constraint violation. The DB is opened with
// TranslateError so both Postgres and SQLite surface gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
