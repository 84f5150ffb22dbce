package expense

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/tripsplit/internal/activity"
	"github.com/fkhayef/tripsplit/internal/expense/split"
)

// Common errors
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrNotTripMember   = errors.New("user is not a member of this trip")
)

// Store is the persistence the service needs; *Repository implements it
type Store interface {
	CreateWithSplits(ctx context.Context, e *Expense, splits []*Split) error
	GetByID(ctx context.Context, id string) (*Expense, error)
	ListByTrip(ctx context.Context, tripID string, limit, offset int) ([]*Expense, int, error)
	SplitsByExpense(ctx context.Context, expenseID string) ([]*Split, error)
	UpdateWithSplits(ctx context.Context, e *Expense, splits []*Split) error
	Delete(ctx context.Context, id string) error
}

// MemberLister returns the user IDs that belong to a trip
type MemberLister interface {
	MemberIDs(ctx context.Context, tripID string) ([]string, error)
}

// ActivityRecorder logs a mutation without blocking or failing the caller
type ActivityRecorder interface {
	Record(ctx context.Context, entry activity.Entry)
}

// Notifier is told when a trip's expenses change
type Notifier interface {
	TripChanged(ctx context.Context, tripID string)
}

// SplitObserver counts split computations per mode
type SplitObserver interface {
	SplitComputed(mode string)
}

// Settings are the validation knobs of the accepting endpoint
type Settings struct {
	// StrictSplits rejects split values that do not add up
	StrictSplits    bool
	DefaultCurrency string
}

// Service handles expense business logic
type Service struct {
	repo     Store
	members  MemberLister
	activity ActivityRecorder
	notifier Notifier
	observer SplitObserver
	settings Settings
	now      func() time.Time
}

// NewService creates a new expense service with dependencies injected
func NewService(repo Store, members MemberLister, recorder ActivityRecorder, notifier Notifier, observer SplitObserver, settings Settings) *Service {
	return &Service{
		repo:     repo,
		members:  members,
		activity: recorder,
		notifier: notifier,
		observer: observer,
		settings: settings,
		now:      time.Now,
	}
}

// CreateExpense validates the request, computes splits and persists both
func (s *Service) CreateExpense(ctx context.Context, tripID, userID string, req *CreateExpenseRequest) (*ExpenseWithSplits, error) {
	date, err := req.Normalize(s.settings.DefaultCurrency, userID, s.now())
	if err != nil {
		return nil, err
	}

	mode, err := split.ParseMode(req.SplitMode)
	if err != nil {
		return nil, err
	}

	if err := s.ensureMembers(ctx, tripID, append([]string{req.PaidBy}, req.MemberIDs...)); err != nil {
		return nil, err
	}

	e := &Expense{
		ID:       uuid.NewString(),
		TripID:   tripID,
		Title:    req.Title,
		Amount:   req.Amount,
		Currency: req.Currency,
		Category: req.Category,
		PaidBy:   req.PaidBy,
		Date:     date,
		Notes:    req.Notes,
	}

	splits, err := s.buildSplits(e, req.MemberIDs, mode, req.SplitValues)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateWithSplits(ctx, e, splits); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		TripID:     tripID,
		UserID:     userID,
		Action:     activity.ActionAddedExpense,
		EntityType: activity.EntityExpense,
		EntityID:   e.ID,
		Metadata: map[string]any{
			"title":      e.Title,
			"amount":     e.Amount.String(),
			"currency":   e.Currency,
			"split_mode": string(mode),
		},
	})
	s.notifier.TripChanged(ctx, tripID)

	return &ExpenseWithSplits{Expense: e, Splits: splits}, nil
}

// GetExpense retrieves an expense of the trip with its splits
func (s *Service) GetExpense(ctx context.Context, tripID, id string) (*ExpenseWithSplits, error) {
	e, err := s.load(ctx, tripID, id)
	if err != nil {
		return nil, err
	}

	splits, err := s.repo.SplitsByExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ExpenseWithSplits{Expense: e, Splits: splits}, nil
}

// ListExpenses retrieves a page of the trip's expenses
func (s *Service) ListExpenses(ctx context.Context, tripID string, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByTrip(ctx, tripID, perPage, offset)
}

// UpdateExpense applies field edits. Splits are recomputed only when the
// request resupplies member_ids; otherwise the stored splits are kept as-is.
func (s *Service) UpdateExpense(ctx context.Context, tripID, userID, id string, req *UpdateExpenseRequest) (*ExpenseWithSplits, error) {
	e, err := s.load(ctx, tripID, id)
	if err != nil {
		return nil, err
	}

	if err := req.Apply(e); err != nil {
		return nil, err
	}

	check := []string{e.PaidBy}
	var splits []*Split
	if req.MemberIDs != nil {
		if len(req.MemberIDs) == 0 {
			return nil, ErrMembersRequired
		}
		mode, err := split.ParseMode(req.SplitMode)
		if err != nil {
			return nil, err
		}
		if splits, err = s.buildSplits(e, req.MemberIDs, mode, req.SplitValues); err != nil {
			return nil, err
		}
		check = append(check, req.MemberIDs...)
	}

	if err := s.ensureMembers(ctx, tripID, check); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateWithSplits(ctx, e, splits); err != nil {
		return nil, err
	}

	if splits == nil {
		if splits, err = s.repo.SplitsByExpense(ctx, id); err != nil {
			return nil, err
		}
	}

	s.activity.Record(ctx, activity.Entry{
		TripID:     tripID,
		UserID:     userID,
		Action:     activity.ActionUpdatedExpense,
		EntityType: activity.EntityExpense,
		EntityID:   e.ID,
		Metadata: map[string]any{
			"title":           e.Title,
			"amount":          e.Amount.String(),
			"splits_replaced": req.MemberIDs != nil,
		},
	})
	s.notifier.TripChanged(ctx, tripID)

	return &ExpenseWithSplits{Expense: e, Splits: splits}, nil
}

// DeleteExpense removes an expense and its splits
func (s *Service) DeleteExpense(ctx context.Context, tripID, userID, id string) error {
	e, err := s.load(ctx, tripID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		TripID:     tripID,
		UserID:     userID,
		Action:     activity.ActionDeletedExpense,
		EntityType: activity.EntityExpense,
		EntityID:   e.ID,
		Metadata:   map[string]any{"title": e.Title, "amount": e.Amount.String()},
	})
	s.notifier.TripChanged(ctx, tripID)

	return nil
}

// load fetches an expense and hides expenses of other trips
func (s *Service) load(ctx context.Context, tripID, id string) (*Expense, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil || e.TripID != tripID {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

func (s *Service) buildSplits(e *Expense, memberIDs []string, mode split.Mode, values map[string]decimal.Decimal) ([]*Split, error) {
	computed, err := split.Compute(e.Amount, memberIDs, mode, values, split.Options{Strict: s.settings.StrictSplits})
	if err != nil {
		return nil, err
	}
	if s.observer != nil {
		s.observer.SplitComputed(string(mode))
	}

	splits := make([]*Split, len(computed))
	for i, c := range computed {
		splits[i] = &Split{
			ID:        uuid.NewString(),
			ExpenseID: e.ID,
			UserID:    c.UserID,
			Amount:    c.Amount,
			SplitMode: c.Mode,
		}
	}
	return splits, nil
}

func (s *Service) ensureMembers(ctx context.Context, tripID string, userIDs []string) error {
	ids, err := s.members.MemberIDs(ctx, tripID)
	if err != nil {
		return err
	}

	members := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		members[id] = struct{}{}
	}
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if _, ok := members[id]; !ok {
			return fmt.Errorf("%w: %s", ErrNotTripMember, id)
		}
	}
	return nil
}
