package settlement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement records that one member paid another outside the app.
// Settlements are immutable once recorded.
type Settlement struct {
	ID         string          `db:"id" json:"id"`
	TripID     string          `db:"trip_id" json:"trip_id"`
	FromUserID string          `db:"from_user_id" json:"from_user_id"` // Who sent the money
	ToUserID   string          `db:"to_user_id" json:"to_user_id"`     // Who received it
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Currency   string          `db:"currency" json:"currency"`
	Method     *string         `db:"method" json:"method,omitempty"` // e.g. "cash", "bank transfer"
	SettledAt  time.Time       `db:"settled_at" json:"settled_at"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
