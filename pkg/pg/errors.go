package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToParseConfig     = errors.New("failed to parse database config")
	ErrFailedToConnect         = errors.New("failed to connect to database")
	ErrHealthcheckFailed       = errors.New("database healthcheck failed")
	ErrFailedToApplyMigrations = errors.New("failed to apply database migrations")
	ErrMigrationsDirNotFound   = errors.New("migrations directory not found")
)

// IsNotFoundError reports whether a query returned no rows, so stores
// can translate it into their own not-found sentinel.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError reports a unique constraint violation
// (SQLSTATE 23505).
func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
