package split

import "github.com/shopspring/decimal"

// =============================================================================
// EQUAL SPLIT STRATEGY
// Divides the expense equally among all participants
// =============================================================================

// EqualStrategy implements the Strategy interface for equal splits
type EqualStrategy struct{}

// Mode returns the split policy identifier
func (s *EqualStrategy) Mode() Mode {
	return ModeEqual
}

// Validate has nothing to check beyond the base checks; values are ignored
func (s *EqualStrategy) Validate(total decimal.Decimal, participants []string, values map[string]decimal.Decimal) error {
	return nil
}

// Calculate gives every participant total/n rounded to cents.
// The residual cent drift (at most n * 0.005) is left uncorrected, so
// 10.00 across three people is 3.33 each.
func (s *EqualStrategy) Calculate(total decimal.Decimal, participants []string, _ map[string]decimal.Decimal) []Split {
	share := total.DivRound(decimal.NewFromInt(int64(len(participants))), 2)

	outputs := make([]Split, len(participants))
	for i, id := range participants {
		outputs[i] = Split{UserID: id, Amount: share, Mode: ModeEqual}
	}
	return outputs
}
