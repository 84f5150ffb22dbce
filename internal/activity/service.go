package activity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200

	defaultRecordTimeout = 5 * time.Second
)

// Store is the persistence the activity log needs
type Store interface {
	Insert(ctx context.Context, item *Item) error
	ListByTrip(ctx context.Context, tripID string, limit int) ([]*Item, error)
}

// FailureCounter is told about every entry that could not be written
type FailureCounter interface {
	ActivityFailed()
}

// Service records and lists trip activity. Record never blocks the caller
// and never fails it; write errors are logged and counted.
type Service struct {
	repo     Store
	log      zerolog.Logger
	failures FailureCounter
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewService creates a new activity service
func NewService(repo Store, log zerolog.Logger, failures FailureCounter) *Service {
	return &Service{
		repo:     repo,
		log:      log,
		failures: failures,
		timeout:  defaultRecordTimeout,
	}
}

// Record writes entry in the background. The write outlives the request
// context but is bounded by the service timeout.
func (s *Service) Record(ctx context.Context, entry Entry) {
	item := &Item{
		ID:         uuid.NewString(),
		TripID:     entry.TripID,
		UserID:     entry.UserID,
		Action:     entry.Action,
		EntityType: optional(entry.EntityType),
		EntityID:   optional(entry.EntityID),
		Metadata:   Metadata(entry.Metadata),
	}

	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(bg, s.timeout)
		defer cancel()

		if err := s.repo.Insert(ctx, item); err != nil {
			s.log.Warn().
				Err(err).
				Str("trip_id", item.TripID).
				Str("action", string(item.Action)).
				Msg("failed to record activity")
			if s.failures != nil {
				s.failures.ActivityFailed()
			}
		}
	}()
}

// Wait blocks until every pending Record has finished
func (s *Service) Wait() {
	s.wg.Wait()
}

// List returns the latest entries of a trip, newest first
func (s *Service) List(ctx context.Context, tripID string, limit int) ([]*Item, error) {
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return s.repo.ListByTrip(ctx, tripID, limit)
}
