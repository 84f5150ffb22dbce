package budget

import (
	"context"
	"fmt"

	"github.com/fkhayef/tripsplit/internal/expense"
	"github.com/fkhayef/tripsplit/internal/trip"
)

// TripSource returns a trip or trip.ErrTripNotFound
type TripSource interface {
	GetByID(ctx context.Context, id string) (*trip.Trip, error)
}

// ExpenseSource returns every expense of a trip
type ExpenseSource interface {
	ListAllByTrip(ctx context.Context, tripID string) ([]*expense.Expense, error)
}

// Service builds budget reports on demand
type Service struct {
	trips    TripSource
	expenses ExpenseSource
}

// NewService creates a new budget service
func NewService(trips TripSource, expenses ExpenseSource) *Service {
	return &Service{trips: trips, expenses: expenses}
}

// TripReport loads a trip and its expenses and totals them
func (s *Service) TripReport(ctx context.Context, tripID string) (*Report, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListAllByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	return Build(t, expenses), nil
}
