package split

import "github.com/shopspring/decimal"

// =============================================================================
// SHARES SPLIT STRATEGY
// Divides the expense by ratio weights ("2 shares for Alice, 1 for Bob")
// =============================================================================

var defaultWeight = decimal.NewFromInt(1)

// SharesStrategy implements the Strategy interface for weighted splits
type SharesStrategy struct{}

// Mode returns the split policy identifier
func (s *SharesStrategy) Mode() Mode {
	return ModeShares
}

// Validate requires a non-negative weight for every participant, not all zero
func (s *SharesStrategy) Validate(total decimal.Decimal, participants []string, values map[string]decimal.Decimal) error {
	if err := requireValues(participants, values); err != nil {
		return err
	}
	if sumWeights(participants, values).IsZero() {
		return ErrZeroShares
	}
	return nil
}

// Calculate computes total * weight / sum(weights) for each participant.
// A missing weight counts as one share. When the weights sum to zero every
// share is zero.
func (s *SharesStrategy) Calculate(total decimal.Decimal, participants []string, values map[string]decimal.Decimal) []Split {
	sum := sumWeights(participants, values)

	outputs := make([]Split, len(participants))
	for i, id := range participants {
		amount := decimal.Zero
		if !sum.IsZero() {
			amount = total.Mul(weight(id, values)).DivRound(sum, 2)
		}
		outputs[i] = Split{UserID: id, Amount: amount, Mode: ModeShares}
	}
	return outputs
}

func weight(id string, values map[string]decimal.Decimal) decimal.Decimal {
	if w, ok := values[id]; ok {
		return w
	}
	return defaultWeight
}

func sumWeights(participants []string, values map[string]decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, id := range participants {
		sum = sum.Add(weight(id, values))
	}
	return sum
}
