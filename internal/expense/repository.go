package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fkhayef/tripsplit/internal/database"
)

const expenseColumns = `id, trip_id, title, amount, currency, category, paid_by, date, notes, created_at`

// Repository handles expense and split data persistence
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithSplits inserts an expense and its splits in one transaction
func (r *Repository) CreateWithSplits(ctx context.Context, e *Expense, splits []*Split) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO expenses (id, trip_id, title, amount, currency, category, paid_by, date, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at
		`
		err := tx.GetContext(ctx, &e.CreatedAt, query,
			e.ID, e.TripID, e.Title, e.Amount, e.Currency, e.Category, e.PaidBy, e.Date, e.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to create expense: %w", err)
		}
		return insertSplits(ctx, tx, splits)
	})
}

// GetByID retrieves an expense by its ID, or nil if it does not exist
func (r *Repository) GetByID(ctx context.Context, id string) (*Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	e := &Expense{}
	if err := r.db.GetContext(ctx, e, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

// ListByTrip retrieves a page of a trip's expenses, newest first
func (r *Repository) ListByTrip(ctx context.Context, tripID string, limit, offset int) ([]*Expense, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM expenses WHERE trip_id = $1`, tripID); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE trip_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`
	var expenses []*Expense
	if err := r.db.SelectContext(ctx, &expenses, query, tripID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, total, nil
}

// ListAllByTrip retrieves every expense of a trip for balance computation
func (r *Repository) ListAllByTrip(ctx context.Context, tripID string) ([]*Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE trip_id = $1 ORDER BY created_at`

	var expenses []*Expense
	if err := r.db.SelectContext(ctx, &expenses, query, tripID); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

// SplitsByExpense retrieves all splits for an expense
func (r *Repository) SplitsByExpense(ctx context.Context, expenseID string) ([]*Split, error) {
	query := `
		SELECT id, expense_id, user_id, amount, split_mode
		FROM expense_splits
		WHERE expense_id = $1
		ORDER BY user_id
	`
	var splits []*Split
	if err := r.db.SelectContext(ctx, &splits, query, expenseID); err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	return splits, nil
}

// SplitsByTrip retrieves every split of a trip, grouped by expense ID
func (r *Repository) SplitsByTrip(ctx context.Context, tripID string) (map[string][]*Split, error) {
	query := `
		SELECT s.id, s.expense_id, s.user_id, s.amount, s.split_mode
		FROM expense_splits s
		JOIN expenses e ON s.expense_id = e.id
		WHERE e.trip_id = $1
		ORDER BY s.expense_id, s.user_id
	`
	var splits []*Split
	if err := r.db.SelectContext(ctx, &splits, query, tripID); err != nil {
		return nil, fmt.Errorf("failed to get trip splits: %w", err)
	}
	return groupByExpense(splits), nil
}

// UpdateWithSplits saves the expense fields and, when splits is non-nil,
// replaces the expense's splits in the same transaction
func (r *Repository) UpdateWithSplits(ctx context.Context, e *Expense, splits []*Split) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE expenses
			SET title = $2, amount = $3, currency = $4, category = $5, paid_by = $6, date = $7, notes = $8
			WHERE id = $1
		`
		result, err := tx.ExecContext(ctx, query,
			e.ID, e.Title, e.Amount, e.Currency, e.Category, e.PaidBy, e.Date, e.Notes,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return ErrExpenseNotFound
		}

		if splits == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM expense_splits WHERE expense_id = $1`, e.ID); err != nil {
			return fmt.Errorf("failed to delete splits: %w", err)
		}
		return insertSplits(ctx, tx, splits)
	})
}

// Delete removes an expense and its splits
func (r *Repository) Delete(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// Splits first so none are orphaned even without the cascade
		if _, err := tx.ExecContext(ctx, `DELETE FROM expense_splits WHERE expense_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete splits: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return ErrExpenseNotFound
		}
		return nil
	})
}

func insertSplits(ctx context.Context, tx *sqlx.Tx, splits []*Split) error {
	query := `
		INSERT INTO expense_splits (id, expense_id, user_id, amount, split_mode)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, s := range splits {
		if _, err := tx.ExecContext(ctx, query, s.ID, s.ExpenseID, s.UserID, s.Amount, s.SplitMode); err != nil {
			return fmt.Errorf("failed to create split for %s: %w", s.UserID, err)
		}
	}
	return nil
}

func groupByExpense(splits []*Split) map[string][]*Split {
	grouped := make(map[string][]*Split)
	for _, s := range splits {
		grouped[s.ExpenseID] = append(grouped[s.ExpenseID], s)
	}
	return grouped
}
