package balance

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/expense"
	"github.com/fkhayef/tripsplit/internal/settlement"
)

// IssueKind classifies input that Compute accepts but should not receive
type IssueKind string

const (
	IssueNegativeAmount IssueKind = "negative_amount"
	IssueSelfSettlement IssueKind = "self_settlement"
	IssueSplitDrift     IssueKind = "split_drift"
	IssueOrphanedSplit  IssueKind = "orphaned_split"
)

// Issue is one suspicious input record
type Issue struct {
	Kind     IssueKind
	EntityID string
	Detail   string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Kind, i.EntityID, i.Detail)
}

// Inspect looks for inputs that violate what Compute assumes: negative
// amounts, settlements to oneself, splits that drift from their expense
// total by more than a cent per participant, and splits without an expense.
// It only reports; Compute still runs on the same data.
func Inspect(expenses []*expense.Expense, splitsByExpense map[string][]*expense.Split, settlements []*settlement.Settlement) []Issue {
	var issues []Issue

	known := make(map[string]struct{}, len(expenses))
	for _, e := range expenses {
		known[e.ID] = struct{}{}
		if e.Amount.IsNegative() {
			issues = append(issues, Issue{IssueNegativeAmount, e.ID, "expense amount " + e.Amount.String()})
		}

		splits := splitsByExpense[e.ID]
		if len(splits) == 0 {
			continue
		}
		total := decimal.Zero
		for _, s := range splits {
			if s.Amount.IsNegative() {
				issues = append(issues, Issue{IssueNegativeAmount, s.ID, "split amount " + s.Amount.String()})
			}
			total = total.Add(s.Amount)
		}
		allowed := cent.Mul(decimal.NewFromInt(int64(len(splits))))
		if drift := total.Sub(e.Amount).Abs(); drift.GreaterThan(allowed) {
			issues = append(issues, Issue{IssueSplitDrift, e.ID, fmt.Sprintf("splits sum to %s of %s", total, e.Amount)})
		}
	}

	orphans := make([]string, 0)
	for id, splits := range splitsByExpense {
		if _, ok := known[id]; !ok && len(splits) > 0 {
			orphans = append(orphans, id)
		}
	}
	slices.Sort(orphans)
	for _, id := range orphans {
		issues = append(issues, Issue{IssueOrphanedSplit, id, fmt.Sprintf("%d splits for unknown expense", len(splitsByExpense[id]))})
	}

	for _, st := range settlements {
		if st.Amount.IsNegative() {
			issues = append(issues, Issue{IssueNegativeAmount, st.ID, "settlement amount " + st.Amount.String()})
		}
		if st.FromUserID == st.ToUserID {
			issues = append(issues, Issue{IssueSelfSettlement, st.ID, "from and to are " + st.FromUserID})
		}
	}

	return issues
}
