package postgres

import (
	"errors"
	"fmt"

	"custody/settlement/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// classify turns driver errors the runner can retry into
// domain.ErrTransientConflict. notFound replaces gorm.ErrRecordNotFound.
func classify(err error, notFound error) error {
	if err == nil {
		return nil
	}

	if IsNotFound(err) && notFound != nil {
		return notFound
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", domain.ErrTransientConflict, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgUniqueViolation:
			return fmt.Errorf("%w: %s: %w", domain.ErrTransientConflict, pgErr.Code, err)
		}
	}
	return err
}
