package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saemahesh/webinar-ai/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, password_hash, full_name, COALESCE(company,''), role, status,
	approved_at, approved_by, rejected_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.Company, &u.Role, &u.Status,
		&u.ApprovedAt, &u.ApprovedBy, &u.RejectedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// Create inserts a new host account in pending status.
func (r *Repository) Create(ctx context.Context, email, passwordHash, fullName, company string) (*models.User, error) {
	const q = `INSERT INTO users (id, email, password_hash, full_name, company, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q,
		uuid.New(), email, passwordHash, fullName, company, models.RoleHost, models.StatusPending))
}

// ListByStatus returns users filtered by approval status, newest first.
func (r *Repository) ListByStatus(ctx context.Context, status models.Status) ([]models.UserPublic, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email, full_name, COALESCE(company,''), role, status, created_at
		FROM users WHERE status = $1 ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Company, &u.Role, &u.Status, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Approve marks a pending host as approved and records who approved them.
func (r *Repository) Approve(ctx context.Context, id, adminID uuid.UUID) (*models.User, error) {
	const q = `UPDATE users SET status = $1, approved_at = $2, approved_by = $3, rejected_at = NULL, updated_at = NOW()
		WHERE id = $4 AND role = $5
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, models.StatusApproved, time.Now(), adminID, id, models.RoleHost))
}

// Reject marks a host as rejected.
func (r *Repository) Reject(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `UPDATE users SET status = $1, rejected_at = $2, updated_at = NOW()
		WHERE id = $3 AND role = $4
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, models.StatusRejected, time.Now(), id, models.RoleHost))
}

// Delete removes a host account and, through the schema cascade, their
// webinars and registrations. Admin accounts are never deleted here.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1 AND role = $2`, id, models.RoleHost)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountByStatus returns how many users hold each approval status.
func (r *Repository) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM users WHERE role = $1 GROUP BY status`, models.RoleHost)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[models.Status]int)
	for rows.Next() {
		var s models.Status
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[s] = n
	}
	return counts, rows.Err()
}
