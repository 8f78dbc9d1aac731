package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes mapped by MapError.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// MapError translates database errors to domain errors. A missing row, or a
// write referencing a row that does not exist, maps to notFoundErr. A unique
// violation maps to duplicateErr. Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	switch Code(err) {
	case pgForeignKeyViolation:
		return notFoundErr
	case pgUniqueViolation:
		return duplicateErr
	}
	return err
}

// Code returns the SQLSTATE of a PostgreSQL error, or "" for anything else.
func Code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
