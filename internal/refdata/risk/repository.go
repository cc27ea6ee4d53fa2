// Package risk looks up historical risk-assessment outcomes by instruction
// reference.
package risk

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides risk-assessment lookups against the local dataset.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a risk-assessment repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ResultByReference returns the most recent risk-assessment result recorded
// for the instruction reference (case-insensitive match). A missing result
// is not an error; ok reports whether one was found.
func (r *Repository) ResultByReference(ctx context.Context, instructionRef string) (result string, ok bool, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT result FROM risk_assessments
		 WHERE lower(instruction_ref) = lower($1)
		 ORDER BY assessed_at DESC
		 LIMIT 1`,
		strings.TrimSpace(instructionRef),
	).Scan(&result)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return result, true, nil
}
