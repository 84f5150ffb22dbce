package trip

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fkhayef/tripsplit/internal/database"
)

const tripColumns = `id, name, destination, currency, start_date, end_date, budget, budget_currency, created_by, created_at`

// Repository handles trip and membership persistence
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new trip repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithOwner inserts a trip and its creator's owner membership together
func (r *Repository) CreateWithOwner(ctx context.Context, t *Trip) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO trips (id, name, destination, currency, start_date, end_date, budget, budget_currency, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at
		`
		err := tx.GetContext(ctx, &t.CreatedAt, query,
			t.ID, t.Name, t.Destination, t.Currency, t.StartDate, t.EndDate, t.Budget, t.BudgetCurrency, t.CreatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to create trip: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO trip_members (trip_id, user_id, role) VALUES ($1, $2, $3)`,
			t.ID, t.CreatedBy, RoleOwner,
		)
		if err != nil {
			return fmt.Errorf("failed to add trip owner: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a trip by its ID, or nil if it does not exist
func (r *Repository) GetByID(ctx context.Context, id string) (*Trip, error) {
	t := &Trip{}
	err := r.db.GetContext(ctx, t, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return t, nil
}

// ListByUser retrieves a page of the trips a user belongs to
func (r *Repository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Trip, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM trip_members WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	query := `
		SELECT t.id, t.name, t.destination, t.currency, t.start_date, t.end_date,
		       t.budget, t.budget_currency, t.created_by, t.created_at
		FROM trips t
		JOIN trip_members tm ON t.id = tm.trip_id
		WHERE tm.user_id = $1
		ORDER BY t.start_date DESC NULLS LAST, t.created_at DESC
		LIMIT $2 OFFSET $3
	`
	var trips []*Trip
	if err := r.db.SelectContext(ctx, &trips, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, total, nil
}

// Update saves the editable trip fields
func (r *Repository) Update(ctx context.Context, t *Trip) error {
	query := `
		UPDATE trips
		SET name = $2, destination = $3, start_date = $4, end_date = $5,
		    budget = $6, budget_currency = $7
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		t.ID, t.Name, t.Destination, t.StartDate, t.EndDate, t.Budget, t.BudgetCurrency,
	)
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrTripNotFound
	}
	return nil
}

// Delete removes a trip; members, expenses, settlements and activity cascade
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrTripNotFound
	}
	return nil
}

// GetMember retrieves a membership, or nil if the user is not on the trip
func (r *Repository) GetMember(ctx context.Context, tripID, userID string) (*Member, error) {
	query := `
		SELECT trip_id, user_id, role, joined_at
		FROM trip_members
		WHERE trip_id = $1 AND user_id = $2
	`
	m := &Member{}
	if err := r.db.GetContext(ctx, m, query, tripID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

// ListMembers retrieves all members of a trip in join order
func (r *Repository) ListMembers(ctx context.Context, tripID string) ([]*Member, error) {
	query := `
		SELECT trip_id, user_id, role, joined_at
		FROM trip_members
		WHERE trip_id = $1
		ORDER BY joined_at, user_id
	`
	var members []*Member
	if err := r.db.SelectContext(ctx, &members, query, tripID); err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// AddMember inserts a membership
func (r *Repository) AddMember(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO trip_members (trip_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING joined_at
	`
	if err := r.db.GetContext(ctx, &m.JoinedAt, query, m.TripID, m.UserID, m.Role); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrMemberAlreadyExists
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// UpdateMemberRole changes a member's role
func (r *Repository) UpdateMemberRole(ctx context.Context, tripID, userID string, role Role) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE trip_members SET role = $3 WHERE trip_id = $1 AND user_id = $2`,
		tripID, userID, role,
	)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// RemoveMember removes a user from a trip
func (r *Repository) RemoveMember(ctx context.Context, tripID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM trip_members WHERE trip_id = $1 AND user_id = $2`,
		tripID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrMemberNotFound
	}
	return nil
}
