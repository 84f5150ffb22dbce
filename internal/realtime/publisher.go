package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fkhayef/tripsplit/internal/balance"
)

const defaultPublishTimeout = 5 * time.Second

// BalanceSource computes the current balances of a trip
type BalanceSource interface {
	TripBalances(ctx context.Context, tripID string) (balance.Balances, error)
}

// Message is the payload sent to trip clients
type Message struct {
	Type     string           `json:"type"`
	TripID   string           `json:"trip_id"`
	Balances balance.Balances `json:"balances"`
}

// Publisher recomputes and broadcasts balances when a trip changes. It
// implements the Notifier interfaces of the expense and settlement services.
type Publisher struct {
	hub      *Hub
	balances BalanceSource
	log      zerolog.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewPublisher creates a publisher broadcasting through hub
func NewPublisher(hub *Hub, balances BalanceSource, log zerolog.Logger) *Publisher {
	return &Publisher{
		hub:      hub,
		balances: balances,
		log:      log,
		timeout:  defaultPublishTimeout,
	}
}

// TripChanged broadcasts the trip's balances in the background. Nothing is
// computed when no client is watching the trip.
func (p *Publisher) TripChanged(ctx context.Context, tripID string) {
	if p.hub.Clients(tripID) == 0 {
		return
	}

	bg := context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(bg, p.timeout)
		defer cancel()

		if err := p.publish(ctx, tripID); err != nil {
			p.log.Warn().Err(err).Str("trip_id", tripID).Msg("failed to publish balances")
		}
	}()
}

func (p *Publisher) publish(ctx context.Context, tripID string) error {
	balances, err := p.balances.TripBalances(ctx, tripID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(Message{Type: "balances", TripID: tripID, Balances: balances})
	if err != nil {
		return err
	}

	delivered := p.hub.Broadcast(tripID, payload)
	p.log.Debug().Str("trip_id", tripID).Int("clients", delivered).Msg("published balances")
	return nil
}

// Wait blocks until every pending broadcast has finished
func (p *Publisher) Wait() {
	p.wg.Wait()
}
