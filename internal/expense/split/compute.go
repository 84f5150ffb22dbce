package split

import "github.com/shopspring/decimal"

// Options tunes Compute. The zero value is the permissive behaviour: missing
// values default (0 for exact/percentage, 1 for shares) and sums are not checked.
type Options struct {
	// Strict runs the mode's Validate before calculating
	Strict bool
}

var defaultFactory = NewSplitStrategyFactory()

// Compute divides total among participantIDs under mode. participantIDs is
// treated as a set: duplicates collapse and first-seen order is the output order.
// Every returned amount is rounded to cents and tagged with mode.
func Compute(total decimal.Decimal, participantIDs []string, mode Mode, values map[string]decimal.Decimal, opts Options) ([]Split, error) {
	participants := dedupe(participantIDs)
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if !total.IsPositive() {
		return nil, ErrNonPositiveTotal
	}

	strategy, err := defaultFactory.Create(mode)
	if err != nil {
		return nil, err
	}

	if opts.Strict {
		if err := strategy.Validate(total, participants, values); err != nil {
			return nil, err
		}
	}

	return strategy.Calculate(total, participants, values), nil
}

// Sum adds up split amounts
func Sum(splits []Split) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range splits {
		sum = sum.Add(s.Amount)
	}
	return sum
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
