// Package balance derives who owes whom on a trip from its expenses, their
// splits and the settlements recorded between members.
package balance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/expense"
	"github.com/fkhayef/tripsplit/internal/settlement"
)

// Errors reported by Verify. Any of them means Compute has a defect.
var (
	ErrAsymmetric      = errors.New("balances are not mirrored")
	ErrNetNotConserved = errors.New("nets do not sum to zero")
	ErrNetInconsistent = errors.New("net does not match owed minus owes")
)

// Balance is one member's directional debts and net position.
// Owes[B] is what this member owes B; Owed[B] is what B owes this member.
type Balance struct {
	UserID string                     `json:"user_id"`
	Owes   map[string]decimal.Decimal `json:"owes"`
	Owed   map[string]decimal.Decimal `json:"owed"`
	Net    decimal.Decimal            `json:"net"`
}

// Balances maps a member id to their balance
type Balances map[string]*Balance

func (b Balances) ensure(id string) *Balance {
	bal, ok := b[id]
	if !ok {
		bal = &Balance{
			UserID: id,
			Owes:   map[string]decimal.Decimal{},
			Owed:   map[string]decimal.Decimal{},
		}
		b[id] = bal
	}
	return bal
}

// Compute reduces a trip's expenses, splits and settlements into balances.
//
// Debts accumulate per debtor/creditor pair and are never netted against the
// reverse direction. A settlement reduces the pair it names, floored at zero,
// so over-payment is absorbed instead of flipping the debt. Inputs are not
// modified and the result depends only on them.
func Compute(expenses []*expense.Expense, splitsByExpense map[string][]*expense.Split, settlements []*settlement.Settlement) Balances {
	balances := Balances{}

	for _, e := range expenses {
		payer := balances.ensure(e.PaidBy)
		for _, s := range splitsByExpense[e.ID] {
			if s.UserID == e.PaidBy {
				continue
			}
			debtor := balances.ensure(s.UserID)
			debtor.Owes[e.PaidBy] = debtor.Owes[e.PaidBy].Add(s.Amount)
			payer.Owed[s.UserID] = payer.Owed[s.UserID].Add(s.Amount)
		}
	}

	for _, st := range settlements {
		from := balances.ensure(st.FromUserID)
		to := balances.ensure(st.ToUserID)
		from.Owes[st.ToUserID] = decimal.Max(decimal.Zero, from.Owes[st.ToUserID].Sub(st.Amount))
		to.Owed[st.FromUserID] = decimal.Max(decimal.Zero, to.Owed[st.FromUserID].Sub(st.Amount))
	}

	for _, bal := range balances {
		bal.Net = sum(bal.Owed).Sub(sum(bal.Owes))
	}

	return balances
}

// Verify checks that every debt is mirrored by the matching credit and that
// the nets add up to exactly zero.
func Verify(balances Balances) error {
	total := decimal.Zero
	for id, bal := range balances {
		for other, amount := range bal.Owes {
			mirror, ok := balances[other]
			if !ok {
				return fmt.Errorf("%w: %s owes unknown member %s", ErrAsymmetric, id, other)
			}
			if owed, ok := mirror.Owed[id]; !ok || !owed.Equal(amount) {
				return fmt.Errorf("%w: %s owes %s %s but %s is owed %s", ErrAsymmetric, id, other, amount, other, owed)
			}
		}
		for other, amount := range bal.Owed {
			mirror, ok := balances[other]
			if !ok {
				return fmt.Errorf("%w: %s is owed by unknown member %s", ErrAsymmetric, id, other)
			}
			if owes, ok := mirror.Owes[id]; !ok || !owes.Equal(amount) {
				return fmt.Errorf("%w: %s is owed %s by %s but %s owes %s", ErrAsymmetric, id, amount, other, other, owes)
			}
		}
		if !bal.Net.Equal(sum(bal.Owed).Sub(sum(bal.Owes))) {
			return fmt.Errorf("%w: %s", ErrNetInconsistent, id)
		}
		total = total.Add(bal.Net)
	}

	if !total.IsZero() {
		return fmt.Errorf("%w: %s", ErrNetNotConserved, total)
	}
	return nil
}

func sum(amounts map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
