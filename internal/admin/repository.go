package admin

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Totals holds platform-wide counters for the admin dashboard.
type Totals struct {
	Webinars      int `json:"total_webinars"`
	Registrations int `json:"total_registrations"`
}

// Repository reads cross-entity counts for platform stats.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an admin stats repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Totals returns platform-wide webinar and registration counts.
func (r *Repository) Totals(ctx context.Context) (*Totals, error) {
	var t Totals
	err := r.pool.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM webinars), (SELECT COUNT(*) FROM attendees)`).
		Scan(&t.Webinars, &t.Registrations)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
