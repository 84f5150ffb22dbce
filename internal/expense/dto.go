package expense

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/expense/split"
)

const dateLayout = "2006-01-02"

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Validation errors returned before any split is computed
var (
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title must be at most 255 characters")
	ErrInvalidAmount   = errors.New("amount must be greater than zero with at most 2 decimal places")
	ErrInvalidCurrency = errors.New("currency must be a 3-letter ISO 4217 code")
	ErrInvalidCategory = errors.New("unknown expense category")
	ErrInvalidDate     = errors.New("date must be formatted as YYYY-MM-DD")
	ErrMembersRequired = errors.New("member_ids are required")
	ErrPayerRequired   = errors.New("paid_by is required")
)

// CreateExpenseRequest represents the request to create an expense
type CreateExpenseRequest struct {
	Title       string                     `json:"title"`
	Amount      decimal.Decimal            `json:"amount"`
	Currency    string                     `json:"currency,omitempty"`
	Category    Category                   `json:"category,omitempty"`
	PaidBy      string                     `json:"paid_by,omitempty"`
	Date        string                     `json:"date,omitempty"`
	Notes       *string                    `json:"notes,omitempty"`
	MemberIDs   []string                   `json:"member_ids"`
	SplitMode   string                     `json:"split_mode,omitempty"`
	SplitValues map[string]decimal.Decimal `json:"split_values,omitempty"`
}

// Normalize fills defaults and validates the request fields.
// Split values are checked later by the calculator.
func (r *CreateExpenseRequest) Normalize(defaultCurrency, currentUserID string, now time.Time) (time.Time, error) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return time.Time{}, ErrTitleRequired
	}
	if len(r.Title) > 255 {
		return time.Time{}, ErrTitleTooLong
	}
	if !validAmount(r.Amount) {
		return time.Time{}, ErrInvalidAmount
	}

	if r.Currency == "" {
		r.Currency = defaultCurrency
	}
	r.Currency = strings.ToUpper(r.Currency)
	if !currencyCode.MatchString(r.Currency) {
		return time.Time{}, ErrInvalidCurrency
	}

	if r.Category == "" {
		r.Category = CategoryMisc
	}
	if !r.Category.Valid() {
		return time.Time{}, ErrInvalidCategory
	}

	if r.PaidBy == "" {
		r.PaidBy = currentUserID
	}
	if r.PaidBy == "" {
		return time.Time{}, ErrPayerRequired
	}
	if len(r.MemberIDs) == 0 {
		return time.Time{}, ErrMembersRequired
	}

	if r.Date == "" {
		return now.UTC().Truncate(24 * time.Hour), nil
	}
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

// validAmount reports whether d is positive and already in whole cents
func validAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(2))
}

// UpdateExpenseRequest represents a partial update. Splits are recomputed only
// when MemberIDs is supplied.
type UpdateExpenseRequest struct {
	Title       *string                    `json:"title,omitempty"`
	Amount      *decimal.Decimal           `json:"amount,omitempty"`
	Currency    *string                    `json:"currency,omitempty"`
	Category    *Category                  `json:"category,omitempty"`
	PaidBy      *string                    `json:"paid_by,omitempty"`
	Date        *string                    `json:"date,omitempty"`
	Notes       *string                    `json:"notes,omitempty"`
	MemberIDs   []string                   `json:"member_ids,omitempty"`
	SplitMode   string                     `json:"split_mode,omitempty"`
	SplitValues map[string]decimal.Decimal `json:"split_values,omitempty"`
}

// Apply copies the supplied fields onto e after validating them
func (r *UpdateExpenseRequest) Apply(e *Expense) error {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			return ErrTitleRequired
		}
		if len(title) > 255 {
			return ErrTitleTooLong
		}
		e.Title = title
	}
	if r.Amount != nil {
		if !validAmount(*r.Amount) {
			return ErrInvalidAmount
		}
		e.Amount = *r.Amount
	}
	if r.Currency != nil {
		c := strings.ToUpper(*r.Currency)
		if !currencyCode.MatchString(c) {
			return ErrInvalidCurrency
		}
		e.Currency = c
	}
	if r.Category != nil {
		if !r.Category.Valid() {
			return ErrInvalidCategory
		}
		e.Category = *r.Category
	}
	if r.PaidBy != nil {
		if *r.PaidBy == "" {
			return ErrPayerRequired
		}
		e.PaidBy = *r.PaidBy
	}
	if r.Date != nil {
		date, err := time.Parse(dateLayout, *r.Date)
		if err != nil {
			return ErrInvalidDate
		}
		e.Date = date
	}
	if r.Notes != nil {
		e.Notes = r.Notes
	}
	return nil
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID        string           `json:"id"`
	TripID    string           `json:"trip_id"`
	Title     string           `json:"title"`
	Amount    decimal.Decimal  `json:"amount"`
	Currency  string           `json:"currency"`
	Category  Category         `json:"category"`
	PaidBy    string           `json:"paid_by"`
	Date      string           `json:"date"`
	Notes     *string          `json:"notes,omitempty"`
	CreatedAt string           `json:"created_at"`
	Splits    []*SplitResponse `json:"splits,omitempty"`
}

// SplitResponse represents the response for a split
type SplitResponse struct {
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	SplitMode split.Mode      `json:"split_mode"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:        e.ID,
		TripID:    e.TripID,
		Title:     e.Title,
		Amount:    e.Amount,
		Currency:  e.Currency,
		Category:  e.Category,
		PaidBy:    e.PaidBy,
		Date:      e.Date.Format(dateLayout),
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

// ToResponse converts a Split model to a SplitResponse DTO
func (s *Split) ToResponse() *SplitResponse {
	return &SplitResponse{
		UserID:    s.UserID,
		Amount:    s.Amount,
		SplitMode: s.SplitMode,
	}
}

// ToResponse converts an expense and its splits to a single DTO
func (ews *ExpenseWithSplits) ToResponse() *ExpenseResponse {
	resp := ews.Expense.ToResponse()
	resp.Splits = make([]*SplitResponse, len(ews.Splits))
	for i, s := range ews.Splits {
		resp.Splits[i] = s.ToResponse()
	}
	return resp
}
