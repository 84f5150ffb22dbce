package split

import "github.com/shopspring/decimal"

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense based on each participant's percentage
// =============================================================================

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Mode returns the split policy identifier
func (s *PercentageStrategy) Mode() Mode {
	return ModePercentage
}

// Validate requires a 0-100 percentage for every participant, summing to 100 within 0.1
func (s *PercentageStrategy) Validate(total decimal.Decimal, participants []string, values map[string]decimal.Decimal) error {
	if err := requireValues(participants, values); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, id := range participants {
		pct := values[id]
		if pct.GreaterThan(hundred) {
			return ErrPercentageOutOfRange
		}
		sum = sum.Add(pct)
	}
	if sum.Sub(hundred).Abs().GreaterThan(percentageTolerance) {
		return ErrPercentageSum
	}
	return nil
}

// Calculate computes total * pct / 100 for each participant, rounded to cents.
// A missing percentage is treated as zero.
func (s *PercentageStrategy) Calculate(total decimal.Decimal, participants []string, values map[string]decimal.Decimal) []Split {
	outputs := make([]Split, len(participants))
	for i, id := range participants {
		outputs[i] = Split{
			UserID: id,
			Amount: total.Mul(values[id]).DivRound(hundred, 2),
			Mode:   ModePercentage,
		}
	}
	return outputs
}
