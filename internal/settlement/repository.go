package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const settlementColumns = `id, trip_id, from_user_id, to_user_id, amount, currency, method, settled_at, created_at`

// Repository handles settlement data persistence
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new settlement repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new settlement
func (r *Repository) Create(ctx context.Context, s *Settlement) error {
	query := `
		INSERT INTO settlements (id, trip_id, from_user_id, to_user_id, amount, currency, method, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.db.GetContext(ctx, &s.CreatedAt, query,
		s.ID, s.TripID, s.FromUserID, s.ToUserID, s.Amount, s.Currency, s.Method, s.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create settlement: %w", err)
	}
	return nil
}

// GetByID retrieves a settlement by its ID, or nil if it does not exist
func (r *Repository) GetByID(ctx context.Context, id string) (*Settlement, error) {
	s := &Settlement{}
	err := r.db.GetContext(ctx, s, `SELECT `+settlementColumns+` FROM settlements WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return s, nil
}

// ListByTrip retrieves every settlement of a trip in recording order
func (r *Repository) ListByTrip(ctx context.Context, tripID string) ([]*Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE trip_id = $1 ORDER BY created_at, id`

	var settlements []*Settlement
	if err := r.db.SelectContext(ctx, &settlements, query, tripID); err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	return settlements, nil
}
