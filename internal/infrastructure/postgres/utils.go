package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation detecta la violación de un constraint único. pgx v5
// siempre entrega los errores del servidor como *pgconn.PgError, así que
// basta con inspeccionar el código SQLSTATE.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" // unique_violation
}
