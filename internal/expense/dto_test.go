package expense

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 7, 9, 23, 59, 0, 0, time.UTC)

	req := &CreateExpenseRequest{Title: "Hotel", Amount: d("300"), Currency: "eur", Date: "2026-07-01", MemberIDs: []string{"a"}}
	date, err := req.Normalize("USD", "a", now)
	require.NoError(t, err)
	require.Equal(t, "EUR", req.Currency)
	require.Equal(t, "a", req.PaidBy)
	require.Equal(t, "2026-07-01", date.Format(dateLayout))

	req = &CreateExpenseRequest{Title: "Hotel", Amount: d("300"), MemberIDs: []string{"a"}}
	date, err = req.Normalize("USD", "a", now)
	require.NoError(t, err)
	require.Equal(t, "USD", req.Currency)
	require.Equal(t, "2026-07-09", date.Format(dateLayout))

	req = &CreateExpenseRequest{Title: "Hotel", Amount: d("300"), MemberIDs: []string{"a"}}
	_, err = req.Normalize("USD", "", now)
	require.ErrorIs(t, err, ErrPayerRequired)
}

func TestApply(t *testing.T) {
	t.Parallel()

	e := &Expense{Title: "Bus", Amount: d("8"), Currency: "USD", Category: CategoryTransport, PaidBy: "a"}

	category := CategoryFood
	currency := "gbp"
	date := "2026-01-31"
	require.NoError(t, (&UpdateExpenseRequest{Category: &category, Currency: &currency, Date: &date}).Apply(e))
	require.Equal(t, CategoryFood, e.Category)
	require.Equal(t, "GBP", e.Currency)
	require.Equal(t, "2026-01-31", e.Date.Format(dateLayout))
	require.Equal(t, "Bus", e.Title)

	negative := d("-1")
	require.ErrorIs(t, (&UpdateExpenseRequest{Amount: &negative}).Apply(e), ErrInvalidAmount)

	fractional := d("8.125")
	require.ErrorIs(t, (&UpdateExpenseRequest{Amount: &fractional}).Apply(e), ErrInvalidAmount)
	require.Equal(t, "8", e.Amount.String())

	empty := ""
	require.ErrorIs(t, (&UpdateExpenseRequest{PaidBy: &empty}).Apply(e), ErrPayerRequired)

	bad := Category("gifts")
	require.ErrorIs(t, (&UpdateExpenseRequest{Category: &bad}).Apply(e), ErrInvalidCategory)
}
