package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wolfeidau/tenantd/internal/docstore"
)

// mapPostgresError maps PostgreSQL-specific errors to docstore sentinels.
// Returns the original error when it is not a PostgreSQL error or does not
// match a known pattern.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		// The unique index on the document field rejected the write. This
		// is the store-level safety net behind the directories'
		// check-then-act uniqueness checks.
		return fmt.Errorf("%w: %s", docstore.ErrDuplicateKey, pgErr.ConstraintName)

	case pgerrcode.UndefinedTable:
		return fmt.Errorf("collection does not exist: %w", err)

	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure,
		pgerrcode.CannotConnectNow,
		pgerrcode.SQLClientUnableToEstablishSQLConnection:
		return fmt.Errorf("database connection error: %w", err)

	case pgerrcode.QueryCanceled:
		return fmt.Errorf("query canceled: %w", err)

	default:
		return fmt.Errorf("postgres error [%s]: %s: %w", pgErr.Code, pgErr.Message, err)
	}
}
