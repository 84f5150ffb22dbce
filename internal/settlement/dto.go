package settlement

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Validation errors
var (
	ErrToUserRequired  = errors.New("to_user_id is required")
	ErrSelfSettlement  = errors.New("cannot record a settlement with yourself")
	ErrInvalidAmount   = errors.New("amount must be greater than zero with at most 2 decimal places")
	ErrInvalidCurrency = errors.New("currency must be a 3-letter ISO 4217 code")
	ErrMethodTooLong   = errors.New("method must be at most 64 characters")
)

// CreateSettlementRequest represents the request to record a settlement.
// from_user_id defaults to the caller.
type CreateSettlementRequest struct {
	FromUserID string          `json:"from_user_id,omitempty"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency,omitempty"`
	Method     *string         `json:"method,omitempty"`
}

// Normalize fills defaults and validates the request
func (r *CreateSettlementRequest) Normalize(currentUserID, defaultCurrency string) error {
	if r.FromUserID == "" {
		r.FromUserID = currentUserID
	}
	if r.ToUserID == "" {
		return ErrToUserRequired
	}
	if r.FromUserID == r.ToUserID {
		return ErrSelfSettlement
	}
	if !r.Amount.IsPositive() || !r.Amount.Equal(r.Amount.Round(2)) {
		return ErrInvalidAmount
	}

	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	if r.Currency == "" {
		r.Currency = defaultCurrency
	}
	if !currencyCode.MatchString(r.Currency) {
		return ErrInvalidCurrency
	}

	if r.Method != nil {
		m := strings.TrimSpace(*r.Method)
		if len(m) > 64 {
			return ErrMethodTooLong
		}
		if m == "" {
			r.Method = nil
		} else {
			r.Method = &m
		}
	}
	return nil
}

// SettlementResponse represents the response for a settlement
type SettlementResponse struct {
	ID         string          `json:"id"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Method     *string         `json:"method,omitempty"`
	SettledAt  string          `json:"settled_at"`
	CreatedAt  string          `json:"created_at"`
}

// ToResponse converts a Settlement model to a SettlementResponse DTO
func (s *Settlement) ToResponse() *SettlementResponse {
	return &SettlementResponse{
		ID:         s.ID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount,
		Currency:   s.Currency,
		Method:     s.Method,
		SettledAt:  s.SettledAt.Format(time.RFC3339),
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
	}
}
