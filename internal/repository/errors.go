package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when no row matches the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrConstraint is returned when the store rejects a row (NOT NULL, CHECK, ...).
	ErrConstraint = errors.New("constraint violated")
)

// integrityViolationClass is the SQLSTATE class for integrity constraint violations.
const integrityViolationClass = "23"

func translatePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == integrityViolationClass {
		return errors.Join(ErrConstraint, err)
	}
	return err
}
