package split

import "github.com/shopspring/decimal"

// =============================================================================
// EXACT SPLIT STRATEGY
// Each participant owes a literal amount
// =============================================================================

// ExactStrategy implements the Strategy interface for exact amount splits
type ExactStrategy struct{}

// Mode returns the split policy identifier
func (s *ExactStrategy) Mode() Mode {
	return ModeExact
}

// Validate requires an amount for every participant and a sum within 0.02 of the total
func (s *ExactStrategy) Validate(total decimal.Decimal, participants []string, values map[string]decimal.Decimal) error {
	if err := requireValues(participants, values); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, id := range participants {
		sum = sum.Add(values[id])
	}
	if sum.Sub(total).Abs().GreaterThan(exactTolerance) {
		return ErrExactSumMismatch
	}
	return nil
}

// Calculate passes each participant's amount through, rounded to cents.
// A missing amount is treated as zero.
func (s *ExactStrategy) Calculate(_ decimal.Decimal, participants []string, values map[string]decimal.Decimal) []Split {
	outputs := make([]Split, len(participants))
	for i, id := range participants {
		outputs[i] = Split{UserID: id, Amount: roundCents(values[id]), Mode: ModeExact}
	}
	return outputs
}
