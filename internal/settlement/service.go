package settlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/tripsplit/internal/activity"
)

// Common errors
var (
	ErrSettlementNotFound = errors.New("settlement not found")
	ErrNotTripMember      = errors.New("user is not a member of this trip")
)

// Store is the persistence the service needs; *Repository implements it
type Store interface {
	Create(ctx context.Context, s *Settlement) error
	GetByID(ctx context.Context, id string) (*Settlement, error)
	ListByTrip(ctx context.Context, tripID string) ([]*Settlement, error)
}

// TripDirectory answers membership and currency questions about a trip.
// An empty currency means the trip has none and the configured default applies.
type TripDirectory interface {
	MemberIDs(ctx context.Context, tripID string) ([]string, error)
	TripCurrency(ctx context.Context, tripID string) (string, error)
}

// ActivityRecorder logs a mutation without blocking or failing the caller
type ActivityRecorder interface {
	Record(ctx context.Context, entry activity.Entry)
}

// Notifier is told when a trip's settlements change
type Notifier interface {
	TripChanged(ctx context.Context, tripID string)
}

// Service handles settlement business logic
type Service struct {
	repo            Store
	trips           TripDirectory
	activity        ActivityRecorder
	notifier        Notifier
	defaultCurrency string
	now             func() time.Time
}

// NewService creates a new settlement service
func NewService(repo Store, trips TripDirectory, recorder ActivityRecorder, notifier Notifier, defaultCurrency string) *Service {
	return &Service{
		repo:            repo,
		trips:           trips,
		activity:        recorder,
		notifier:        notifier,
		defaultCurrency: defaultCurrency,
		now:             time.Now,
	}
}

// Record stores a payment from one trip member to another. Without an
// explicit currency the trip's currency is used.
func (s *Service) Record(ctx context.Context, tripID, userID string, req *CreateSettlementRequest) (*Settlement, error) {
	currency := s.defaultCurrency
	if strings.TrimSpace(req.Currency) == "" {
		c, err := s.trips.TripCurrency(ctx, tripID)
		if err != nil {
			return nil, err
		}
		if c != "" {
			currency = c
		}
	}

	if err := req.Normalize(userID, currency); err != nil {
		return nil, err
	}
	if err := s.ensureMembers(ctx, tripID, req.FromUserID, req.ToUserID); err != nil {
		return nil, err
	}

	st := &Settlement{
		ID:         uuid.NewString(),
		TripID:     tripID,
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Amount:     req.Amount.Round(2),
		Currency:   req.Currency,
		Method:     req.Method,
		SettledAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}

	metadata := map[string]any{
		"amount":     st.Amount.String(),
		"currency":   st.Currency,
		"to_user_id": st.ToUserID,
	}
	if st.Method != nil {
		metadata["method"] = *st.Method
	}
	s.activity.Record(ctx, activity.Entry{
		TripID:     tripID,
		UserID:     userID,
		Action:     activity.ActionRecordedSettlement,
		EntityType: activity.EntitySettlement,
		EntityID:   st.ID,
		Metadata:   metadata,
	})
	s.notifier.TripChanged(ctx, tripID)

	return st, nil
}

// Get retrieves a settlement of the trip
func (s *Service) Get(ctx context.Context, tripID, id string) (*Settlement, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil || st.TripID != tripID {
		return nil, ErrSettlementNotFound
	}
	return st, nil
}

// List retrieves every settlement of the trip in recording order
func (s *Service) List(ctx context.Context, tripID string) ([]*Settlement, error) {
	return s.repo.ListByTrip(ctx, tripID)
}

func (s *Service) ensureMembers(ctx context.Context, tripID string, userIDs ...string) error {
	ids, err := s.trips.MemberIDs(ctx, tripID)
	if err != nil {
		return err
	}

	members := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		members[id] = struct{}{}
	}
	for _, id := range userIDs {
		if _, ok := members[id]; !ok {
			return fmt.Errorf("%w: %s", ErrNotTripMember, id)
		}
	}
	return nil
}
