package trip

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/tripsplit/internal/activity"
	"github.com/fkhayef/tripsplit/pkg/middleware"
)

type memStore struct {
	mu      sync.Mutex
	trips   map[string]*Trip
	members map[string]map[string]*Member
	seq     int
}

func newMemStore() *memStore {
	return &memStore{trips: map[string]*Trip{}, members: map[string]map[string]*Member{}}
}

func (m *memStore) CreateWithOwner(_ context.Context, t *Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.CreatedAt = time.Now()
	cp := *t
	m.trips[t.ID] = &cp
	m.members[t.ID] = map[string]*Member{}
	m.addLocked(&Member{TripID: t.ID, UserID: t.CreatedBy, Role: RoleOwner})
	return nil
}

func (m *memStore) addLocked(mem *Member) {
	m.seq++
	mem.JoinedAt = time.Unix(int64(m.seq), 0)
	cp := *mem
	m.members[mem.TripID][mem.UserID] = &cp
}

func (m *memStore) GetByID(_ context.Context, id string) (*Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) ListByUser(_ context.Context, userID string, limit, offset int) ([]*Trip, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Trip
	for id, members := range m.members {
		if _, ok := members[userID]; ok {
			out = append(out, m.trips[id])
		}
	}
	return out, len(out), nil
}

func (m *memStore) Update(_ context.Context, t *Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[t.ID]; !ok {
		return ErrTripNotFound
	}
	cp := *t
	m.trips[t.ID] = &cp
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[id]; !ok {
		return ErrTripNotFound
	}
	delete(m.trips, id)
	delete(m.members, id)
	return nil
}

func (m *memStore) GetMember(_ context.Context, tripID, userID string) (*Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[tripID][userID]
	if !ok {
		return nil, nil
	}
	cp := *mem
	return &cp, nil
}

func (m *memStore) ListMembers(_ context.Context, tripID string) ([]*Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Member
	for _, mem := range m.members[tripID] {
		cp := *mem
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (m *memStore) AddMember(_ context.Context, mem *Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.members[mem.TripID][mem.UserID]; ok {
		return ErrMemberAlreadyExists
	}
	m.addLocked(mem)
	return nil
}

func (m *memStore) UpdateMemberRole(_ context.Context, tripID, userID string, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[tripID][userID]
	if !ok {
		return ErrMemberNotFound
	}
	mem.Role = role
	return nil
}

func (m *memStore) RemoveMember(_ context.Context, tripID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.members[tripID][userID]; !ok {
		return ErrMemberNotFound
	}
	delete(m.members[tripID], userID)
	return nil
}

type recorder struct {
	mu      sync.Mutex
	entries []activity.Entry
}

func (r *recorder) Record(_ context.Context, e activity.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func newService(t *testing.T) (*Service, *memStore, *recorder) {
	t.Helper()
	store := newMemStore()
	rec := &recorder{}
	return NewService(store, rec, "USD"), store, rec
}

func TestRoleAtLeast(t *testing.T) {
	t.Parallel()

	require.True(t, RoleOwner.AtLeast(RoleEditor))
	require.True(t, RoleEditor.AtLeast(RoleEditor))
	require.True(t, RoleEditor.AtLeast(RoleViewer))
	require.False(t, RoleViewer.AtLeast(RoleEditor))
	require.False(t, RoleEditor.AtLeast(RoleOwner))
	require.False(t, Role("admin").AtLeast(RoleViewer))
}

func TestCreateMakesCreatorOwner(t *testing.T) {
	t.Parallel()

	svc, _, rec := newService(t)
	ctx := context.Background()

	trip, err := svc.Create(ctx, "alice", &CreateTripRequest{Name: "  Lisbon  "})
	require.NoError(t, err)
	require.Equal(t, "Lisbon", trip.Name)
	require.Equal(t, "USD", trip.Currency)

	role, err := svc.RequireRole(ctx, trip.ID, "alice", RoleOwner)
	require.NoError(t, err)
	require.Equal(t, RoleOwner, role)

	require.Len(t, rec.entries, 1)
	require.Equal(t, activity.ActionCreatedTrip, rec.entries[0].Action)

	currency, err := svc.TripCurrency(ctx, trip.ID)
	require.NoError(t, err)
	require.Equal(t, "USD", currency)

	_, err = svc.TripCurrency(ctx, uuid.NewString())
	require.ErrorIs(t, err, ErrTripNotFound)
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	start, end, bad := "2026-05-10", "2026-05-01", "10/05/2026"
	negative, fraction := decimal.NewFromInt(-1), decimal.RequireFromString("99.999")
	euro := "EURO"

	tests := []struct {
		name    string
		req     CreateTripRequest
		wantErr error
	}{
		{"blank name", CreateTripRequest{Name: " "}, ErrNameRequired},
		{"bad currency", CreateTripRequest{Name: "x", Currency: "EURO"}, ErrInvalidCurrency},
		{"bad date", CreateTripRequest{Name: "x", StartDate: &bad}, ErrInvalidDate},
		{"end before start", CreateTripRequest{Name: "x", StartDate: &start, EndDate: &end}, ErrDateRange},
		{"negative budget", CreateTripRequest{Name: "x", Budget: &negative}, ErrInvalidBudget},
		{"sub-cent budget", CreateTripRequest{Name: "x", Budget: &fraction}, ErrInvalidBudget},
		{"bad budget currency", CreateTripRequest{Name: "x", BudgetCurrency: &euro}, ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, _, _ := newService(t)
			_, err := svc.Create(context.Background(), "alice", &tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBudget(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	ctx := context.Background()

	budget := decimal.RequireFromString("1500.50")
	created, err := svc.Create(ctx, "alice", &CreateTripRequest{Name: "Porto", Currency: "eur", Budget: &budget})
	require.NoError(t, err)
	require.True(t, created.Budget.Valid)
	require.Equal(t, "1500.50", created.Budget.Decimal.StringFixed(2))
	require.Equal(t, "EUR", created.SpendingCurrency())

	t.Run("budget currency overrides trip currency", func(t *testing.T) {
		usd := " usd "
		updated, err := svc.Update(ctx, created.ID, &UpdateTripRequest{BudgetCurrency: &usd})
		require.NoError(t, err)
		require.Equal(t, "USD", updated.SpendingCurrency())
		require.Equal(t, "1500.50", updated.ToResponse().Budget.StringFixed(2))
	})

	t.Run("zero clears the budget", func(t *testing.T) {
		zero := decimal.Zero
		blank := ""
		updated, err := svc.Update(ctx, created.ID, &UpdateTripRequest{Budget: &zero, BudgetCurrency: &blank})
		require.NoError(t, err)
		require.False(t, updated.Budget.Valid)
		require.Nil(t, updated.ToResponse().Budget)
		require.Equal(t, "EUR", updated.ToResponse().BudgetCurrency)

		stored, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.False(t, stored.Budget.Valid)
	})

	t.Run("invalid budget leaves trip unchanged", func(t *testing.T) {
		bad := decimal.RequireFromString("10.001")
		_, err := svc.Update(ctx, created.ID, &UpdateTripRequest{Budget: &bad})
		require.ErrorIs(t, err, ErrInvalidBudget)
	})
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	ctx := context.Background()

	trip, err := svc.Create(ctx, "alice", &CreateTripRequest{Name: "Alps"})
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, trip.ID, "alice", &AddMemberRequest{UserID: "bob"})
	require.NoError(t, err)

	_, err = svc.RequireRole(ctx, trip.ID, "bob", RoleViewer)
	require.NoError(t, err)

	role, err := svc.RequireRole(ctx, trip.ID, "bob", RoleEditor)
	require.ErrorIs(t, err, ErrInsufficientRole)
	require.Equal(t, RoleViewer, role)

	_, err = svc.RequireRole(ctx, trip.ID, "carol", RoleViewer)
	require.ErrorIs(t, err, ErrNotMember)

	_, err = svc.RequireRole(ctx, uuid.NewString(), "alice", RoleViewer)
	require.ErrorIs(t, err, ErrTripNotFound)
}

func TestMembers(t *testing.T) {
	t.Parallel()

	svc, _, rec := newService(t)
	ctx := context.Background()

	trip, err := svc.Create(ctx, "alice", &CreateTripRequest{Name: "Rome"})
	require.NoError(t, err)

	_, err = svc.AddMember(ctx, trip.ID, "alice", &AddMemberRequest{UserID: "bob", Role: RoleEditor})
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, trip.ID, "alice", &AddMemberRequest{UserID: "bob"})
	require.ErrorIs(t, err, ErrMemberAlreadyExists)
	_, err = svc.AddMember(ctx, trip.ID, "alice", &AddMemberRequest{UserID: "carol", Role: "admin"})
	require.ErrorIs(t, err, ErrInvalidRole)

	ids, err := svc.MemberIDs(ctx, trip.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, ids)

	t.Run("last owner cannot be demoted or removed", func(t *testing.T) {
		_, err := svc.UpdateMemberRole(ctx, trip.ID, "alice", "alice", &UpdateMemberRequest{Role: RoleEditor})
		require.ErrorIs(t, err, ErrLastOwner)
		require.ErrorIs(t, svc.RemoveMember(ctx, trip.ID, "alice", "alice"), ErrLastOwner)
	})

	t.Run("owner can step down once another owner exists", func(t *testing.T) {
		_, err := svc.UpdateMemberRole(ctx, trip.ID, "alice", "bob", &UpdateMemberRequest{Role: RoleOwner})
		require.NoError(t, err)
		m, err := svc.UpdateMemberRole(ctx, trip.ID, "bob", "alice", &UpdateMemberRequest{Role: RoleViewer})
		require.NoError(t, err)
		require.Equal(t, RoleViewer, m.Role)
	})

	t.Run("remove member", func(t *testing.T) {
		require.NoError(t, svc.RemoveMember(ctx, trip.ID, "bob", "alice"))
		require.ErrorIs(t, svc.RemoveMember(ctx, trip.ID, "bob", "alice"), ErrMemberNotFound)
	})

	var actions []activity.Action
	for _, e := range rec.entries {
		actions = append(actions, e.Action)
	}
	require.Contains(t, actions, activity.ActionAddedMember)
	require.Contains(t, actions, activity.ActionUpdatedMemberRole)
	require.Contains(t, actions, activity.ActionRemovedMember)
}

func serve(t *testing.T, h http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), user))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRoutesAuthorization(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	ctx := context.Background()
	trip, err := svc.Create(ctx, "alice", &CreateTripRequest{Name: "Oslo"})
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, trip.ID, "alice", &AddMemberRequest{UserID: "bob", Role: RoleEditor})
	require.NoError(t, err)

	var sawRole Role
	router := NewHandler(svc).Routes(func(r chi.Router) {
		r.With(Allow(RoleEditor)).Post("/things", func(w http.ResponseWriter, r *http.Request) {
			sawRole, _ = RoleFromContext(r.Context())
			w.WriteHeader(http.StatusCreated)
		})
	})

	base := "/" + trip.ID

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   any
		status int
	}{
		{"member reads trip", http.MethodGet, base, "bob", nil, http.StatusOK},
		{"stranger is forbidden", http.MethodGet, base, "mallory", nil, http.StatusForbidden},
		{"malformed trip id", http.MethodGet, "/not-a-uuid", "alice", nil, http.StatusNotFound},
		{"unknown trip", http.MethodGet, "/" + uuid.NewString(), "alice", nil, http.StatusNotFound},
		{"no user", http.MethodGet, base, "", nil, http.StatusUnauthorized},
		{"editor cannot add members", http.MethodPost, base + "/members", "bob", AddMemberRequest{UserID: "carol"}, http.StatusForbidden},
		{"owner adds member", http.MethodPost, base + "/members", "alice", AddMemberRequest{UserID: "carol"}, http.StatusCreated},
		{"duplicate member", http.MethodPost, base + "/members", "alice", AddMemberRequest{UserID: "carol"}, http.StatusConflict},
		{"viewer blocked from mounted editor route", http.MethodPost, base + "/things", "carol", nil, http.StatusForbidden},
		{"editor reaches mounted route", http.MethodPost, base + "/things", "bob", nil, http.StatusCreated},
	}

	for _, tt := range tests {
		rr := serve(t, router, tt.method, tt.path, tt.user, tt.body)
		require.Equal(t, tt.status, rr.Code, tt.name)
	}
	require.Equal(t, RoleEditor, sawRole)
}

func TestHandlerCreateAndGet(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	router := NewHandler(svc).Routes(nil)

	rr := serve(t, router, http.MethodPost, "/", "alice", map[string]any{
		"name":       "Kyoto",
		"currency":   "jpy",
		"start_date": "2026-04-01",
		"end_date":   "2026-04-09",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var created struct {
		Data TripResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, "JPY", created.Data.Currency)
	require.Equal(t, "2026-04-01", *created.Data.StartDate)

	rr = serve(t, router, http.MethodGet, "/"+created.Data.ID, "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got struct {
		Data TripResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.Data.Members, 1)
	require.Equal(t, RoleOwner, got.Data.Members[0].Role)

	rr = serve(t, router, http.MethodPost, "/", "alice", map[string]any{"name": ""})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(t, router, http.MethodPatch, "/"+created.Data.ID, "alice", map[string]any{"budget": "250000"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"budget":"250000"`)
	require.Contains(t, rr.Body.String(), `"budget_currency":"JPY"`)

	rr = serve(t, router, http.MethodPatch, "/"+created.Data.ID, "alice", map[string]any{"budget": "-5"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
