package balance

import (
	"encoding/csv"
	"io"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Status describes a member's overall position
type Status string

const (
	StatusSettledUp Status = "settled_up"
	StatusGetsBack  Status = "gets_back"
	StatusOwes      Status = "owes"
)

// cent is the smallest amount still worth showing or paying
var cent = decimal.New(1, -2)

// Debt is one outstanding directional debt
type Debt struct {
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// MemberSummary is the budget-page line for one member
type MemberSummary struct {
	UserID    string          `json:"user_id"`
	TotalOwed decimal.Decimal `json:"total_owed"`
	TotalOwes decimal.Decimal `json:"total_owes"`
	Net       decimal.Decimal `json:"net"`
	Status    Status          `json:"status"`
}

// Debts lists every debt of at least a cent, sorted by debtor then creditor
func Debts(balances Balances) []Debt {
	debts := []Debt{}
	for id, bal := range balances {
		for to, amount := range bal.Owes {
			if amount.GreaterThanOrEqual(cent) {
				debts = append(debts, Debt{FromUserID: id, ToUserID: to, Amount: amount})
			}
		}
	}

	slices.SortFunc(debts, func(a, b Debt) int {
		if c := strings.Compare(a.FromUserID, b.FromUserID); c != 0 {
			return c
		}
		return strings.Compare(a.ToUserID, b.ToUserID)
	})
	return debts
}

// Summarize gives one line per member sorted by user id
func Summarize(balances Balances) []MemberSummary {
	out := make([]MemberSummary, 0, len(balances))
	for id, bal := range balances {
		out = append(out, MemberSummary{
			UserID:    id,
			TotalOwed: sum(bal.Owed),
			TotalOwes: sum(bal.Owes),
			Net:       bal.Net,
			Status:    statusOf(bal.Net),
		})
	}

	slices.SortFunc(out, func(a, b MemberSummary) int {
		return strings.Compare(a.UserID, b.UserID)
	})
	return out
}

func statusOf(net decimal.Decimal) Status {
	switch {
	case net.Abs().LessThan(cent):
		return StatusSettledUp
	case net.IsPositive():
		return StatusGetsBack
	default:
		return StatusOwes
	}
}

// WriteCSV writes the member summary followed by the debts as one CSV table.
// The record column tells the two row kinds apart.
func WriteCSV(w io.Writer, balances Balances) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"record", "user_id", "counterparty_id", "amount", "status"}); err != nil {
		return err
	}
	for _, m := range Summarize(balances) {
		if err := cw.Write([]string{"member", m.UserID, "", m.Net.StringFixed(2), string(m.Status)}); err != nil {
			return err
		}
	}
	for _, d := range Debts(balances) {
		if err := cw.Write([]string{"debt", d.FromUserID, d.ToUserID, d.Amount.StringFixed(2), ""}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
