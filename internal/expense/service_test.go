package expense

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/tripsplit/internal/activity"
	"github.com/fkhayef/tripsplit/internal/expense/split"
	"github.com/fkhayef/tripsplit/internal/trip"
	"github.com/fkhayef/tripsplit/pkg/middleware"
)

type memStore struct {
	mu       sync.Mutex
	expenses []*Expense
	splits   map[string][]*Split
}

func newMemStore() *memStore {
	return &memStore{splits: map[string][]*Split{}}
}

func (m *memStore) CreateWithSplits(_ context.Context, e *Expense, splits []*Split) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.CreatedAt = time.Now()
	cp := *e
	m.expenses = append(m.expenses, &cp)
	m.splits[e.ID] = splits
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.expenses {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListByTrip(_ context.Context, tripID string, limit, offset int) ([]*Expense, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*Expense
	for _, e := range m.expenses {
		if e.TripID == tripID {
			all = append(all, e)
		}
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}

func (m *memStore) SplitsByExpense(_ context.Context, expenseID string) ([]*Split, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.splits[expenseID], nil
}

func (m *memStore) UpdateWithSplits(_ context.Context, e *Expense, splits []*Split) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, stored := range m.expenses {
		if stored.ID == e.ID {
			cp := *e
			m.expenses[i] = &cp
			if splits != nil {
				m.splits[e.ID] = splits
			}
			return nil
		}
	}
	return ErrExpenseNotFound
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.expenses {
		if e.ID == id {
			m.expenses = append(m.expenses[:i], m.expenses[i+1:]...)
			delete(m.splits, id)
			return nil
		}
	}
	return ErrExpenseNotFound
}

type members []string

func (m members) MemberIDs(context.Context, string) ([]string, error) { return m, nil }

type recorder struct{ entries []activity.Entry }

func (r *recorder) Record(_ context.Context, e activity.Entry) { r.entries = append(r.entries, e) }

type notifier struct{ trips []string }

func (n *notifier) TripChanged(_ context.Context, tripID string) { n.trips = append(n.trips, tripID) }

type observer map[string]int

func (o observer) SplitComputed(mode string) { o[mode]++ }

type fixture struct {
	svc   *Service
	store *memStore
	rec   *recorder
	note  *notifier
	obs   observer
}

func newFixture(strict bool) *fixture {
	f := &fixture{store: newMemStore(), rec: &recorder{}, note: &notifier{}, obs: observer{}}
	f.svc = NewService(f.store, members{"x", "y", "z"}, f.rec, f.note, f.obs, Settings{StrictSplits: strict, DefaultCurrency: "USD"})
	f.svc.now = func() time.Time { return time.Date(2026, 5, 2, 15, 30, 0, 0, time.UTC) }
	return f
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func amounts(splits []*Split) map[string]string {
	out := make(map[string]string, len(splits))
	for _, s := range splits {
		out[s.UserID] = s.Amount.StringFixed(2)
	}
	return out
}

func TestCreateExpense(t *testing.T) {
	t.Parallel()

	f := newFixture(true)
	result, err := f.svc.CreateExpense(context.Background(), "trip-1", "x", &CreateExpenseRequest{
		Title:     "  Dinner ",
		Amount:    d("90"),
		MemberIDs: []string{"x", "y", "z"},
	})
	require.NoError(t, err)

	e := result.Expense
	require.Equal(t, "Dinner", e.Title)
	require.Equal(t, "USD", e.Currency)
	require.Equal(t, CategoryMisc, e.Category)
	require.Equal(t, "x", e.PaidBy)
	require.Equal(t, "2026-05-02", e.Date.Format(dateLayout))

	require.Equal(t, map[string]string{"x": "30.00", "y": "30.00", "z": "30.00"}, amounts(result.Splits))
	for _, s := range result.Splits {
		require.Equal(t, e.ID, s.ExpenseID)
		require.Equal(t, split.ModeEqual, s.SplitMode)
		require.NotEmpty(t, s.ID)
	}

	require.Equal(t, 1, f.obs["equal"])
	require.Len(t, f.rec.entries, 1)
	require.Equal(t, activity.ActionAddedExpense, f.rec.entries[0].Action)
	require.Equal(t, "90", f.rec.entries[0].Metadata["amount"])
	require.Equal(t, []string{"trip-1"}, f.note.trips)
}

func TestCreateExpenseModes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mode   string
		values map[string]decimal.Decimal
		want   map[string]string
	}{
		{
			name:   "exact",
			mode:   "exact",
			values: map[string]decimal.Decimal{"x": d("50"), "y": d("30"), "z": d("20")},
			want:   map[string]string{"x": "50.00", "y": "30.00", "z": "20.00"},
		},
		{
			name:   "percentage",
			mode:   "percentage",
			values: map[string]decimal.Decimal{"x": d("50"), "y": d("25"), "z": d("25")},
			want:   map[string]string{"x": "50.00", "y": "25.00", "z": "25.00"},
		},
		{
			name:   "shares",
			mode:   "shares",
			values: map[string]decimal.Decimal{"x": d("2"), "y": d("1"), "z": d("1")},
			want:   map[string]string{"x": "50.00", "y": "25.00", "z": "25.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(true)
			result, err := f.svc.CreateExpense(context.Background(), "trip-1", "x", &CreateExpenseRequest{
				Title:       "Villa",
				Amount:      d("100"),
				MemberIDs:   []string{"x", "y", "z"},
				SplitMode:   tt.mode,
				SplitValues: tt.values,
			})
			require.NoError(t, err)
			require.Equal(t, tt.want, amounts(result.Splits))
			require.Equal(t, 1, f.obs[tt.mode])
		})
	}
}

func TestCreateExpenseRejects(t *testing.T) {
	t.Parallel()

	base := func() *CreateExpenseRequest {
		return &CreateExpenseRequest{Title: "Taxi", Amount: d("40"), MemberIDs: []string{"x", "y"}}
	}

	tests := []struct {
		name    string
		mutate  func(r *CreateExpenseRequest)
		wantErr error
	}{
		{"blank title", func(r *CreateExpenseRequest) { r.Title = "  " }, ErrTitleRequired},
		{"zero amount", func(r *CreateExpenseRequest) { r.Amount = decimal.Zero }, ErrInvalidAmount},
		{"sub-cent amount", func(r *CreateExpenseRequest) { r.Amount = d("0.004") }, ErrInvalidAmount},
		{"fractional cent", func(r *CreateExpenseRequest) { r.Amount = d("10.005") }, ErrInvalidAmount},
		{"bad currency", func(r *CreateExpenseRequest) { r.Currency = "dollars" }, ErrInvalidCurrency},
		{"bad category", func(r *CreateExpenseRequest) { r.Category = "souvenirs" }, ErrInvalidCategory},
		{"bad date", func(r *CreateExpenseRequest) { r.Date = "02/05/2026" }, ErrInvalidDate},
		{"no members", func(r *CreateExpenseRequest) { r.MemberIDs = nil }, ErrMembersRequired},
		{"unknown mode", func(r *CreateExpenseRequest) { r.SplitMode = "random" }, split.ErrInvalidSplit},
		{"outsider participant", func(r *CreateExpenseRequest) { r.MemberIDs = []string{"x", "w"} }, ErrNotTripMember},
		{"outsider payer", func(r *CreateExpenseRequest) { r.PaidBy = "w" }, ErrNotTripMember},
		{"exact mismatch", func(r *CreateExpenseRequest) {
			r.SplitMode = "exact"
			r.SplitValues = map[string]decimal.Decimal{"x": d("10"), "y": d("10")}
		}, split.ErrExactSumMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(true)
			req := base()
			tt.mutate(req)

			_, err := f.svc.CreateExpense(context.Background(), "trip-1", "x", req)
			require.ErrorIs(t, err, tt.wantErr)
			require.Empty(t, f.store.expenses)
			require.Empty(t, f.rec.entries)
			require.Empty(t, f.note.trips)
		})
	}
}

func TestCreateExpensePermissive(t *testing.T) {
	t.Parallel()

	f := newFixture(false)
	result, err := f.svc.CreateExpense(context.Background(), "trip-1", "x", &CreateExpenseRequest{
		Title:       "Tickets",
		Amount:      d("100"),
		MemberIDs:   []string{"x", "y"},
		SplitMode:   "exact",
		SplitValues: map[string]decimal.Decimal{"x": d("60")},
	})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"x": "60.00", "y": "0.00"}, amounts(result.Splits))
}

func TestGetExpenseHidesOtherTrips(t *testing.T) {
	t.Parallel()

	f := newFixture(true)
	created, err := f.svc.CreateExpense(context.Background(), "trip-1", "x", &CreateExpenseRequest{
		Title: "Museum", Amount: d("30"), MemberIDs: []string{"x", "y"},
	})
	require.NoError(t, err)

	got, err := f.svc.GetExpense(context.Background(), "trip-1", created.Expense.ID)
	require.NoError(t, err)
	require.Len(t, got.Splits, 2)

	_, err = f.svc.GetExpense(context.Background(), "trip-2", created.Expense.ID)
	require.ErrorIs(t, err, ErrExpenseNotFound)

	err = f.svc.DeleteExpense(context.Background(), "trip-2", "x", created.Expense.ID)
	require.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestUpdateExpense(t *testing.T) {
	t.Parallel()

	f := newFixture(true)
	created, err := f.svc.CreateExpense(context.Background(), "trip-1", "x", &CreateExpenseRequest{
		Title: "Groceries", Amount: d("60"), MemberIDs: []string{"x", "y", "z"},
	})
	require.NoError(t, err)
	id := created.Expense.ID

	t.Run("fields only keeps splits", func(t *testing.T) {
		title := "Market"
		updated, err := f.svc.UpdateExpense(context.Background(), "trip-1", "y", id, &UpdateExpenseRequest{Title: &title})
		require.NoError(t, err)
		require.Equal(t, "Market", updated.Expense.Title)
		require.Equal(t, map[string]string{"x": "20.00", "y": "20.00", "z": "20.00"}, amounts(updated.Splits))
	})

	t.Run("member_ids recomputes", func(t *testing.T) {
		amount := d("50")
		updated, err := f.svc.UpdateExpense(context.Background(), "trip-1", "y", id, &UpdateExpenseRequest{
			Amount:    &amount,
			MemberIDs: []string{"x", "y"},
		})
		require.NoError(t, err)
		require.Equal(t, map[string]string{"x": "25.00", "y": "25.00"}, amounts(updated.Splits))
		require.Equal(t, amounts(updated.Splits), amounts(f.store.splits[id]))
	})

	t.Run("empty member_ids rejected", func(t *testing.T) {
		_, err := f.svc.UpdateExpense(context.Background(), "trip-1", "y", id, &UpdateExpenseRequest{MemberIDs: []string{}})
		require.ErrorIs(t, err, ErrMembersRequired)
	})

	t.Run("outsider payer rejected", func(t *testing.T) {
		payer := "w"
		_, err := f.svc.UpdateExpense(context.Background(), "trip-1", "y", id, &UpdateExpenseRequest{PaidBy: &payer})
		require.ErrorIs(t, err, ErrNotTripMember)
	})

	var actions []activity.Action
	for _, e := range f.rec.entries {
		actions = append(actions, e.Action)
	}
	require.Equal(t, []activity.Action{activity.ActionAddedExpense, activity.ActionUpdatedExpense, activity.ActionUpdatedExpense}, actions)
}

func TestDeleteExpense(t *testing.T) {
	t.Parallel()

	f := newFixture(true)
	created, err := f.svc.CreateExpense(context.Background(), "trip-1", "x", &CreateExpenseRequest{
		Title: "Ferry", Amount: d("12"), MemberIDs: []string{"x", "y"},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteExpense(context.Background(), "trip-1", "y", created.Expense.ID))
	require.Empty(t, f.store.expenses)
	require.Equal(t, activity.ActionDeletedExpense, f.rec.entries[len(f.rec.entries)-1].Action)
	require.Equal(t, []string{"trip-1", "trip-1"}, f.note.trips)

	_, err = f.svc.GetExpense(context.Background(), "trip-1", created.Expense.ID)
	require.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestListExpensesPaginates(t *testing.T) {
	t.Parallel()

	f := newFixture(true)
	for range 5 {
		_, err := f.svc.CreateExpense(context.Background(), "trip-1", "x", &CreateExpenseRequest{
			Title: "Coffee", Amount: d("4.50"), MemberIDs: []string{"x", "y"},
		})
		require.NoError(t, err)
	}

	page, total, err := f.svc.ListExpenses(context.Background(), "trip-1", 2, 2)
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, page, 2)

	page, _, err = f.svc.ListExpenses(context.Background(), "trip-1", 3, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
}

func TestHandlerRoutes(t *testing.T) {
	t.Parallel()

	f := newFixture(true)
	router := chi.NewRouter()
	router.Route("/trips/{tripId}", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := middleware.WithUserID(r.Context(), "x")
				next.ServeHTTP(w, r.WithContext(trip.WithRole(ctx, trip.Role(r.Header.Get("X-Role")))))
			})
		})
		r.Mount("/expenses", NewHandler(f.svc).Routes())
	})

	do := func(method, path, role string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("X-Role", role)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	body := map[string]any{"title": "Lunch", "amount": "10", "member_ids": []string{"x", "y", "z"}}

	rr := do(http.MethodPost, "/trips/t1/expenses", "viewer", body)
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(http.MethodPost, "/trips/t1/expenses", "editor", body)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created struct {
		Data ExpenseResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Len(t, created.Data.Splits, 3)
	require.Equal(t, "3.33", created.Data.Splits[0].Amount.StringFixed(2))

	rr = do(http.MethodPost, "/trips/t1/expenses", "editor", map[string]any{
		"title": "Lunch", "amount": "10", "member_ids": []string{"x"}, "split_mode": "exact",
		"split_values": map[string]string{"x": "9"},
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(http.MethodGet, "/trips/t1/expenses?per_page=1", "viewer", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Data []ExpenseResponse `json:"data"`
		Meta struct {
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	require.Equal(t, 1, list.Meta.Total)

	path := "/trips/t1/expenses/" + created.Data.ID
	require.Equal(t, http.StatusOK, do(http.MethodGet, path, "viewer", nil).Code)
	require.Equal(t, http.StatusForbidden, do(http.MethodPatch, path, "viewer", map[string]any{"title": "x"}).Code)
	require.Equal(t, http.StatusOK, do(http.MethodPatch, path, "editor", map[string]any{"title": "Brunch"}).Code)
	require.Equal(t, http.StatusBadRequest, do(http.MethodGet, "/trips/t1/expenses/abc", "viewer", nil).Code)
	require.Equal(t, http.StatusNotFound, do(http.MethodGet, "/trips/t1/expenses/"+uuid.NewString(), "viewer", nil).Code)
	require.Equal(t, http.StatusOK, do(http.MethodDelete, path, "owner", nil).Code)
	require.Equal(t, http.StatusNotFound, do(http.MethodDelete, path, "owner", nil).Code)
}
