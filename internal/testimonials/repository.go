package testimonials

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lahiru-voiceai/site/internal/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Repository handles testimonial persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a testimonials repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a testimonial; id and created_at are assigned by the database.
func (r *Repository) Create(ctx context.Context, t *models.Testimonial) error {
	const q = `INSERT INTO testimonials (full_name, role, type, testimonial, video_url, video_key, status)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, t.FullName, t.Role, string(t.Kind), t.Body, t.VideoURL, t.VideoKey, string(t.Status)).
		Scan(&t.ID, &t.CreatedAt)
}

// GetByID returns a testimonial by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	const q = `SELECT id, full_name, role, type, testimonial, video_url, COALESCE(video_key,''), status, created_at
		FROM testimonials WHERE id = $1`
	t, err := scanTestimonial(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// List returns testimonials newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Testimonial, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	const base = `SELECT id, full_name, role, type, testimonial, video_url, COALESCE(video_key,''), status, created_at
		FROM testimonials`
	var (
		rows pgx.Rows
		err  error
	)
	if filter.Status != nil {
		rows, err = r.pool.Query(ctx, base+` WHERE status = $1 ORDER BY created_at DESC LIMIT $2`, string(*filter.Status), limit)
	} else {
		rows, err = r.pool.Query(ctx, base+` ORDER BY created_at DESC LIMIT $1`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Testimonial
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

func scanTestimonial(row pgx.Row) (*models.Testimonial, error) {
	var t models.Testimonial
	var kind, status string
	if err := row.Scan(&t.ID, &t.FullName, &t.Role, &kind, &t.Body, &t.VideoURL, &t.VideoKey, &status, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Kind = models.TestimonialKind(kind)
	t.Status = models.ReviewStatus(status)
	return &t, nil
}
