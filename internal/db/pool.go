package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/Flarenzy/node-inventory/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

const (
	uniqueViolation          = "23505"
	foreignKeyViolation      = "23503"
	checkViolation           = "23514"
	invalidRegularExpression = "2201B"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapError translates driver errors into domain sentinels.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if isNoRows(err) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	switch pgCode(err) {
	case uniqueViolation:
		return fmt.Errorf("%w: %s exists", domain.ErrConflict, what)
	case foreignKeyViolation:
		return fmt.Errorf("%w: %s references a missing row", domain.ErrNotFound, what)
	case checkViolation:
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, what)
	}
	return fmt.Errorf("%s: %w", what, err)
}
