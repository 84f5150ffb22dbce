package trip

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Validation errors
var (
	ErrNameRequired    = errors.New("name is required")
	ErrNameTooLong     = errors.New("name must be at most 200 characters")
	ErrInvalidCurrency = errors.New("currency must be a 3-letter ISO 4217 code")
	ErrInvalidDate     = errors.New("dates must be formatted as YYYY-MM-DD")
	ErrDateRange       = errors.New("end_date cannot be before start_date")
	ErrInvalidRole     = errors.New("role must be viewer, editor or owner")
	ErrUserIDRequired  = errors.New("user_id is required")
	ErrInvalidBudget   = errors.New("budget cannot be negative or have more than 2 decimal places")
)

// CreateTripRequest represents the request to create a new trip
type CreateTripRequest struct {
	Name           string           `json:"name"`
	Destination    *string          `json:"destination,omitempty"`
	Currency       string           `json:"currency,omitempty"`
	StartDate      *string          `json:"start_date,omitempty"`
	EndDate        *string          `json:"end_date,omitempty"`
	Budget         *decimal.Decimal `json:"budget,omitempty"`
	BudgetCurrency *string          `json:"budget_currency,omitempty"`
}

// toTrip validates the request and builds the trip it describes
func (r *CreateTripRequest) toTrip(defaultCurrency string) (*Trip, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if len(name) > 200 {
		return nil, ErrNameTooLong
	}

	currency := strings.ToUpper(r.Currency)
	if currency == "" {
		currency = defaultCurrency
	}
	if !currencyCode.MatchString(currency) {
		return nil, ErrInvalidCurrency
	}

	t := &Trip{Name: name, Destination: r.Destination, Currency: currency}
	if err := setDates(t, r.StartDate, r.EndDate); err != nil {
		return nil, err
	}
	if err := setBudget(t, r.Budget, r.BudgetCurrency); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTripRequest represents the request to update a trip. A budget of
// zero removes the budget.
type UpdateTripRequest struct {
	Name           *string          `json:"name,omitempty"`
	Destination    *string          `json:"destination,omitempty"`
	StartDate      *string          `json:"start_date,omitempty"`
	EndDate        *string          `json:"end_date,omitempty"`
	Budget         *decimal.Decimal `json:"budget,omitempty"`
	BudgetCurrency *string          `json:"budget_currency,omitempty"`
}

// apply copies the supplied fields onto t after validating them
func (r *UpdateTripRequest) apply(t *Trip) error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return ErrNameRequired
		}
		if len(name) > 200 {
			return ErrNameTooLong
		}
		t.Name = name
	}
	if r.Destination != nil {
		t.Destination = r.Destination
	}
	if err := setDates(t, r.StartDate, r.EndDate); err != nil {
		return err
	}
	return setBudget(t, r.Budget, r.BudgetCurrency)
}

func setBudget(t *Trip, budget *decimal.Decimal, currency *string) error {
	if budget != nil {
		if budget.IsNegative() || !budget.Equal(budget.Round(2)) {
			return ErrInvalidBudget
		}
		if budget.IsZero() {
			t.Budget = decimal.NullDecimal{}
		} else {
			t.Budget = decimal.NewNullDecimal(budget.Round(2))
		}
	}
	if currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*currency))
		if c == "" {
			t.BudgetCurrency = nil
		} else if !currencyCode.MatchString(c) {
			return ErrInvalidCurrency
		} else {
			t.BudgetCurrency = &c
		}
	}
	return nil
}

func setDates(t *Trip, start, end *string) error {
	if start != nil {
		d, err := parseDate(*start)
		if err != nil {
			return err
		}
		t.StartDate = d
	}
	if end != nil {
		d, err := parseDate(*end)
		if err != nil {
			return err
		}
		t.EndDate = d
	}
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return ErrDateRange
	}
	return nil
}

// parseDate treats an empty string as clearing the date
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &d, nil
}

// AddMemberRequest represents the request to add a member to a trip
type AddMemberRequest struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role,omitempty"`
}

// UpdateMemberRequest represents the request to change a member's role
type UpdateMemberRequest struct {
	Role Role `json:"role"`
}

// TripResponse represents the response for a trip. BudgetCurrency falls back
// to the trip currency.
type TripResponse struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Destination    *string           `json:"destination,omitempty"`
	Currency       string            `json:"currency"`
	StartDate      *string           `json:"start_date,omitempty"`
	EndDate        *string           `json:"end_date,omitempty"`
	Budget         *decimal.Decimal  `json:"budget,omitempty"`
	BudgetCurrency string            `json:"budget_currency"`
	CreatedBy      string            `json:"created_by"`
	CreatedAt      string            `json:"created_at"`
	Members        []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a trip response
type MemberResponse struct {
	UserID   string `json:"user_id"`
	Role     Role   `json:"role"`
	JoinedAt string `json:"joined_at"`
}

// ToResponse converts a Trip model to a TripResponse DTO
func (t *Trip) ToResponse() *TripResponse {
	return &TripResponse{
		ID:             t.ID,
		Name:           t.Name,
		Destination:    t.Destination,
		Currency:       t.Currency,
		StartDate:      formatDate(t.StartDate),
		EndDate:        formatDate(t.EndDate),
		Budget:         budgetOf(t),
		BudgetCurrency: t.SpendingCurrency(),
		CreatedBy:      t.CreatedBy,
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
	}
}

func budgetOf(t *Trip) *decimal.Decimal {
	if !t.Budget.Valid {
		return nil
	}
	b := t.Budget.Decimal
	return &b
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		UserID:   m.UserID,
		Role:     m.Role,
		JoinedAt: m.JoinedAt.Format(time.RFC3339),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
