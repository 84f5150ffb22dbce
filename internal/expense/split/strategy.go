package split

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Mode defines the policy used to divide an expense
type Mode string

const (
	ModeEqual      Mode = "equal"
	ModeExact      Mode = "exact"
	ModePercentage Mode = "percentage"
	ModeShares     Mode = "shares"
)

// Split is one participant's owed share of an expense
type Split struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
	Mode   Mode            `json:"split_mode"`
}

// Strategy is the interface that all split policies implement
type Strategy interface {
	// Calculate computes one split per participant, in participant order
	Calculate(total decimal.Decimal, participants []string, values map[string]decimal.Decimal) []Split

	// Mode returns the policy identifier for this strategy
	Mode() Mode

	// Validate checks values for strict callers. Base checks on total and
	// participants have already run when it is called.
	Validate(total decimal.Decimal, participants []string, values map[string]decimal.Decimal) error
}

// Factory creates split strategies based on the requested mode
type Factory struct{}

// NewSplitStrategyFactory creates a new factory instance
func NewSplitStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy implementation for the given mode
func (f *Factory) Create(mode Mode) (Strategy, error) {
	switch mode {
	case ModeEqual:
		return &EqualStrategy{}, nil
	case ModeExact:
		return &ExactStrategy{}, nil
	case ModePercentage:
		return &PercentageStrategy{}, nil
	case ModeShares:
		return &SharesStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// ParseMode converts a request string into a Mode. An empty string means equal.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeEqual, nil
	}
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeEqual, ModeExact, ModePercentage, ModeShares:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// ErrInvalidSplit matches every InvalidSplitError via errors.Is
var ErrInvalidSplit = errors.New("invalid split")

// InvalidSplitError reports input the calculator refuses to split
type InvalidSplitError struct {
	Reason string
}

func (e *InvalidSplitError) Error() string {
	return "invalid split: " + e.Reason
}

// Is lets errors.Is(err, ErrInvalidSplit) match any InvalidSplitError
func (e *InvalidSplitError) Is(target error) bool {
	return target == ErrInvalidSplit
}

var (
	ErrNoParticipants       = &InvalidSplitError{Reason: "at least one participant required"}
	ErrNonPositiveTotal     = &InvalidSplitError{Reason: "total must be greater than zero"}
	ErrUnknownMode          = &InvalidSplitError{Reason: "unknown split mode"}
	ErrMissingValue         = &InvalidSplitError{Reason: "value required for every participant"}
	ErrNegativeValue        = &InvalidSplitError{Reason: "values cannot be negative"}
	ErrUnexpectedValue      = &InvalidSplitError{Reason: "value given for a non-participant"}
	ErrExactSumMismatch     = &InvalidSplitError{Reason: "exact amounts must sum to the total"}
	ErrPercentageOutOfRange = &InvalidSplitError{Reason: "percentage must be between 0 and 100"}
	ErrPercentageSum        = &InvalidSplitError{Reason: "percentages must sum to 100"}
	ErrZeroShares           = &InvalidSplitError{Reason: "share weights cannot all be zero"}
)

var (
	hundred = decimal.NewFromInt(100)

	exactTolerance      = decimal.RequireFromString("0.02")
	percentageTolerance = decimal.RequireFromString("0.1")
)

// roundCents rounds half away from zero to the minor currency unit
func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// requireValues is the shared strict check for modes that take per-participant values
func requireValues(participants []string, values map[string]decimal.Decimal) error {
	seen := make(map[string]struct{}, len(participants))
	for _, id := range participants {
		seen[id] = struct{}{}
		v, ok := values[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingValue, id)
		}
		if v.IsNegative() {
			return fmt.Errorf("%w: %s", ErrNegativeValue, id)
		}
	}
	for id := range values {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnexpectedValue, id)
		}
	}
	return nil
}
