package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgCheckViolation  = "23514"
	pgUniqueViolation = "23505"
)

func isCheckViolation(err error) bool {
	return hasCode(err, pgCheckViolation)
}

func isUniqueViolation(err error) bool {
	return hasCode(err, pgUniqueViolation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
