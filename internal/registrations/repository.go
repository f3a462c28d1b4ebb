package registrations

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saemahesh/webinar-ai/internal/models"
)

// Repository handles attendee registration persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const attendeeColumns = `id, webinar_id, email, full_name, COALESCE(company,''), custom_fields, attended_at, created_at, updated_at`

func scanAttendee(row interface{ Scan(...any) error }) (*models.Attendee, error) {
	var a models.Attendee
	var customFields []byte
	err := row.Scan(&a.ID, &a.WebinarID, &a.Email, &a.FullName, &a.Company, &customFields,
		&a.AttendedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(customFields) > 0 {
		a.CustomFields = json.RawMessage(customFields)
	}
	return &a, nil
}

// Create inserts an attendee registration.
func (r *Repository) Create(ctx context.Context, a *models.Attendee) error {
	var customFields interface{}
	if len(a.CustomFields) > 0 {
		customFields = []byte(a.CustomFields)
	}
	const q = `INSERT INTO attendees (id, webinar_id, email, full_name, company, custom_fields)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, a.WebinarID, a.Email, a.FullName, a.Company, customFields).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// GetByWebinarAndEmail returns the registration for (webinar, email).
// A missing registration is (nil, nil); an error means the lookup itself
// failed, so callers can tell "not registered" from a transient outage.
func (r *Repository) GetByWebinarAndEmail(ctx context.Context, webinarID uuid.UUID, email string) (*models.Attendee, error) {
	a, err := scanAttendee(r.pool.QueryRow(ctx,
		`SELECT `+attendeeColumns+` FROM attendees WHERE webinar_id = $1 AND LOWER(email) = LOWER($2)`,
		webinarID, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// ListByWebinar returns all registrations for a webinar, newest first.
func (r *Repository) ListByWebinar(ctx context.Context, webinarID uuid.UUID) ([]models.Attendee, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attendeeColumns+` FROM attendees WHERE webinar_id = $1 ORDER BY created_at DESC`, webinarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Attendee
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

// CountByWebinar returns total and attended registration counts for a webinar.
func (r *Repository) CountByWebinar(ctx context.Context, webinarID uuid.UUID) (total, attended int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(attended_at) FROM attendees WHERE webinar_id = $1`, webinarID).
		Scan(&total, &attended)
	return total, attended, err
}

// MarkAttended records the first time a registrant actually entered the room.
func (r *Repository) MarkAttended(ctx context.Context, webinarID uuid.UUID, email string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE attendees SET attended_at = NOW(), updated_at = NOW()
		WHERE webinar_id = $1 AND LOWER(email) = LOWER($2) AND attended_at IS NULL`,
		webinarID, email)
	return err
}
