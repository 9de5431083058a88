package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bluebuchu/collect-sub000/internal/domain"
)

// constraintErrors maps SQLSTATE integrity codes onto domain errors. A
// foreign key failure means the referenced user, sentence or community
// is gone, so it surfaces as not found.
var constraintErrors = map[string]error{
	"23505": domain.ErrAlreadyExists, // unique_violation
	"23503": domain.ErrNotFound,      // foreign_key_violation
	"23514": domain.ErrValidation,    // check_violation
}

// MapError translates a pgx error into a domain error labelled with the
// entity and id. Context cancellation and unknown database errors keep
// their original chain. id 0 means the query was not about one row.
func MapError(err error, entity string, id int64) error {
	if err == nil {
		return nil
	}

	label := entity
	if id != 0 {
		label = fmt.Sprintf("%s %d", entity, id)
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", label, err)
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", label, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if mapped, ok := constraintErrors[pgErr.Code]; ok {
			if pgErr.ConstraintName != "" {
				return fmt.Errorf("%s (%s): %w", label, pgErr.ConstraintName, mapped)
			}
			return fmt.Errorf("%s: %w", label, mapped)
		}
	}
	return fmt.Errorf("%s: %w", label, err)
}
