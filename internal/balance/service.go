package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fkhayef/tripsplit/internal/expense"
	"github.com/fkhayef/tripsplit/internal/settlement"
)

// ExpenseSource returns every expense of a trip with its splits
type ExpenseSource interface {
	ListAllByTrip(ctx context.Context, tripID string) ([]*expense.Expense, error)
	SplitsByTrip(ctx context.Context, tripID string) (map[string][]*expense.Split, error)
}

// SettlementSource returns every settlement of a trip in recording order
type SettlementSource interface {
	ListByTrip(ctx context.Context, tripID string) ([]*settlement.Settlement, error)
}

// Observer is told how long each computation took and how many input issues it saw
type Observer interface {
	BalanceComputed(elapsed time.Duration, issues int)
}

// Service loads a trip's ledger and computes its balances on demand
type Service struct {
	expenses    ExpenseSource
	settlements SettlementSource
	log         zerolog.Logger
	observer    Observer
}

// NewService creates a new balance service
func NewService(expenses ExpenseSource, settlements SettlementSource, log zerolog.Logger, observer Observer) *Service {
	return &Service{
		expenses:    expenses,
		settlements: settlements,
		log:         log,
		observer:    observer,
	}
}

// TripBalances computes the balances of a trip. A trip with no expenses and
// no settlements has an empty, non-nil map.
func (s *Service) TripBalances(ctx context.Context, tripID string) (Balances, error) {
	expenses, err := s.expenses.ListAllByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	splits, err := s.expenses.SplitsByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load splits: %w", err)
	}
	settlements, err := s.settlements.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlements: %w", err)
	}

	start := time.Now()

	issues := Inspect(expenses, splits, settlements)
	for _, issue := range issues {
		s.log.Warn().
			Str("trip_id", tripID).
			Str("kind", string(issue.Kind)).
			Str("entity_id", issue.EntityID).
			Msg(issue.Detail)
	}

	balances := Compute(expenses, splits, settlements)
	if err := Verify(balances); err != nil {
		s.log.Error().Err(err).Str("trip_id", tripID).Msg("balance invariant violated")
		return nil, err
	}

	if s.observer != nil {
		s.observer.BalanceComputed(time.Since(start), len(issues))
	}
	return balances, nil
}
