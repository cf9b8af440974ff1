package errx

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

// WrapPostgres maps Postgres errors to the unified AppError type. Server-side
// errors (malformed SQL, missing relations) carry a distinct message so that
// failures of model-generated statements are recognizable in logs.
func WrapPostgres(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return New(err, http.StatusBadRequest, SQLExecutionMessage)
	}

	return New(err, http.StatusBadGateway, PostgresErrorMessage)
}
