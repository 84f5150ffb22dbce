// Package budget reports a trip's spending against its budget target.
package budget

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/expense"
	"github.com/fkhayef/tripsplit/internal/trip"
)

var hundred = decimal.NewFromInt(100)

// CategoryTotal is the spending of one expense category. PercentOfBudget is
// set only when the trip has a budget.
type CategoryTotal struct {
	Category        expense.Category `json:"category"`
	Amount          decimal.Decimal  `json:"amount"`
	Count           int              `json:"count"`
	PercentOfBudget *decimal.Decimal `json:"percent_of_budget,omitempty"`
}

// Report is spent-vs-budget for a trip. Only expenses in Currency count
// towards Spent; the rest are totalled per currency in OtherCurrencies.
type Report struct {
	TripID          string                     `json:"trip_id"`
	Currency        string                     `json:"currency"`
	Budget          *decimal.Decimal           `json:"budget,omitempty"`
	Spent           decimal.Decimal            `json:"spent"`
	Remaining       *decimal.Decimal           `json:"remaining,omitempty"`
	PercentUsed     *decimal.Decimal           `json:"percent_used,omitempty"`
	OverBudget      bool                       `json:"over_budget"`
	ExpenseCount    int                        `json:"expense_count"`
	Categories      []CategoryTotal            `json:"categories"`
	OtherCurrencies map[string]decimal.Decimal `json:"other_currencies,omitempty"`
}

// Build totals expenses for t. Categories with no spending are left out and
// the rest are ordered by amount, largest first.
func Build(t *trip.Trip, expenses []*expense.Expense) *Report {
	r := &Report{
		TripID:     t.ID,
		Currency:   t.SpendingCurrency(),
		Spent:      decimal.Zero,
		Categories: []CategoryTotal{},
	}

	byCategory := map[expense.Category]*CategoryTotal{}
	for _, e := range expenses {
		if e.Currency != r.Currency {
			if r.OtherCurrencies == nil {
				r.OtherCurrencies = map[string]decimal.Decimal{}
			}
			r.OtherCurrencies[e.Currency] = r.OtherCurrencies[e.Currency].Add(e.Amount)
			continue
		}

		r.Spent = r.Spent.Add(e.Amount)
		r.ExpenseCount++

		ct, ok := byCategory[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category, Amount: decimal.Zero}
			byCategory[e.Category] = ct
		}
		ct.Amount = ct.Amount.Add(e.Amount)
		ct.Count++
	}

	for _, ct := range byCategory {
		if ct.Amount.IsPositive() {
			r.Categories = append(r.Categories, *ct)
		}
	}
	sort.Slice(r.Categories, func(i, j int) bool {
		a, b := r.Categories[i], r.Categories[j]
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c > 0
		}
		return a.Category < b.Category
	})

	if t.Budget.Valid && t.Budget.Decimal.IsPositive() {
		budget := t.Budget.Decimal
		remaining := budget.Sub(r.Spent)
		used := percentOf(r.Spent, budget)

		r.Budget = &budget
		r.Remaining = &remaining
		r.PercentUsed = &used
		r.OverBudget = r.Spent.GreaterThan(budget)

		for i := range r.Categories {
			p := percentOf(r.Categories[i].Amount, budget)
			r.Categories[i].PercentOfBudget = &p
		}
	}

	return r
}

func percentOf(amount, budget decimal.Decimal) decimal.Decimal {
	return amount.Mul(hundred).DivRound(budget, 2)
}
