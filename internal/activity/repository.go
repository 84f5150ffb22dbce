package activity

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository handles activity data persistence
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new activity repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes one activity item
func (r *Repository) Insert(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO activity_items (id, trip_id, user_id, action, entity_type, entity_id, metadata)
		VALUES (:id, :trip_id, :user_id, :action, :entity_type, :entity_id, :metadata)
	`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListByTrip retrieves the most recent activity of a trip
func (r *Repository) ListByTrip(ctx context.Context, tripID string, limit int) ([]*Item, error) {
	query := `
		SELECT id, trip_id, user_id, action, entity_type, entity_id, metadata, created_at
		FROM activity_items
		WHERE trip_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	var items []*Item
	if err := r.db.SelectContext(ctx, &items, query, tripID, limit); err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return items, nil
}
