package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
)

// Classify maps driver errors onto the contest error taxonomy. Already classified errors pass through.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		contest.ErrNotFound,
		contest.ErrInvalidArgument,
		contest.ErrConflict,
		contest.ErrStoreUnavailable,
	} {
		if errors.Is(err, known) {
			return err
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", contest.ErrNotFound, err)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %w", contest.ErrConflict, err)
		case sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
			return fmt.Errorf("%w: %w", contest.ErrInvalidArgument, err)
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %w", contest.ErrConflict, err)
		case "23503", "23514", "23502", "22P02":
			return fmt.Errorf("%w: %w", contest.ErrInvalidArgument, err)
		}
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", contest.ErrStoreUnavailable, err)
}

// expectOne turns a zero-row UPDATE into ErrNotFound.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return contest.ErrNotFound
	}
	return nil
}
