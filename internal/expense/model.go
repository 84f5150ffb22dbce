package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/expense/split"
)

// Category groups expenses on the budget page
type Category string

const (
	CategoryFlights       Category = "flights"
	CategoryAccommodation Category = "accommodation"
	CategoryFood          Category = "food"
	CategoryActivities    Category = "activities"
	CategoryTransport     Category = "transport"
	CategoryMisc          Category = "misc"
)

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryFlights, CategoryAccommodation, CategoryFood, CategoryActivities, CategoryTransport, CategoryMisc:
		return true
	}
	return false
}

// Expense is a shared cost fronted by one trip member
type Expense struct {
	ID        string          `db:"id" json:"id"`
	TripID    string          `db:"trip_id" json:"trip_id"`
	Title     string          `db:"title" json:"title"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Currency  string          `db:"currency" json:"currency"`
	Category  Category        `db:"category" json:"category"`
	PaidBy    string          `db:"paid_by" json:"paid_by"`
	Date      time.Time       `db:"date" json:"date"`
	Notes     *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Split is one participant's persisted share of an expense
type Split struct {
	ID        string          `db:"id" json:"id"`
	ExpenseID string          `db:"expense_id" json:"expense_id"`
	UserID    string          `db:"user_id" json:"user_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	SplitMode split.Mode      `db:"split_mode" json:"split_mode"`
}

// ExpenseWithSplits combines an expense with its splits
type ExpenseWithSplits struct {
	Expense *Expense
	Splits  []*Split
}
