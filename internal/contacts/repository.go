package contacts

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lahiru-voiceai/site/internal/models"
)

// Repository handles contacts persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a contacts repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a contact message and sets ID and CreatedAt.
func (r *Repository) Create(ctx context.Context, m *models.ContactMessage) error {
	q := `INSERT INTO contacts (name, email, message, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, m.Name, m.Email, m.Message, m.Status).Scan(&m.ID, &m.CreatedAt)
}

// List returns contact messages, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, message, status, created_at FROM contacts ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ContactMessage
	for rows.Next() {
		var m models.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
