package trip

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role represents a member's permission level on a trip
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleOwner  Role = "owner"
)

var roleRank = map[Role]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleOwner:  3,
}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants everything min grants
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min] && r.Valid()
}

// Trip represents a trip in the system
type Trip struct {
	ID             string              `db:"id" json:"id"`
	Name           string              `db:"name" json:"name"`
	Destination    *string             `db:"destination" json:"destination,omitempty"`
	Currency       string              `db:"currency" json:"currency"`
	StartDate      *time.Time          `db:"start_date" json:"start_date,omitempty"`
	EndDate        *time.Time          `db:"end_date" json:"end_date,omitempty"`
	Budget         decimal.NullDecimal `db:"budget" json:"budget"`
	BudgetCurrency *string             `db:"budget_currency" json:"budget_currency,omitempty"`
	CreatedBy      string              `db:"created_by" json:"created_by"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
}

// SpendingCurrency is the currency the budget is tracked in, falling back to
// the trip currency
func (t *Trip) SpendingCurrency() string {
	if t.BudgetCurrency != nil && *t.BudgetCurrency != "" {
		return *t.BudgetCurrency
	}
	return t.Currency
}

// Member represents a user's membership in a trip
type Member struct {
	TripID   string    `db:"trip_id" json:"trip_id"`
	UserID   string    `db:"user_id" json:"user_id"`
	Role     Role      `db:"role" json:"role"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}
