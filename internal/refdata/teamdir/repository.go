// Package teamdir looks up team members by their initials in the team
// directory store. The directory is shared reference data: reads only, one
// connection per call from the injected pool.
package teamdir

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUnknownInitials is returned when no team member carries the initials.
var ErrUnknownInitials = errors.New("unknown team member initials")

// Repository provides team-directory lookups.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a team-directory repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UserIDByInitials resolves a team member's registry user id.
func (r *Repository) UserIDByInitials(ctx context.Context, initials string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT registry_user_id FROM team_members WHERE lower(initials) = lower($1)`,
		strings.TrimSpace(initials),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUnknownInitials
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// EmailByInitials resolves a team member's email address.
func (r *Repository) EmailByInitials(ctx context.Context, initials string) (string, error) {
	var email string
	err := r.pool.QueryRow(ctx,
		`SELECT email FROM team_members WHERE lower(initials) = lower($1)`,
		strings.TrimSpace(initials),
	).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUnknownInitials
	}
	if err != nil {
		return "", err
	}
	return email, nil
}
