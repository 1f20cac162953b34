package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/chronomate/chronomate/internal/metrics"
	inats "github.com/chronomate/chronomate/internal/nats"
)

var errMalformedEvent = errors.New("malformed domain event")

// Consumer persists domain events from the event stream.
type Consumer struct {
	repo        Repository
	consumerMgr *inats.ConsumerManager
}

func NewConsumer(repo Repository, consumerMgr *inats.ConsumerManager) *Consumer {
	return &Consumer{repo: repo, consumerMgr: consumerMgr}
}

// Start begins the consume loop. Blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	consumer, err := c.consumerMgr.EnsureConsumer(ctx, inats.StreamEvents, inats.ConsumerActivityLog, inats.SubjectEventPrefix+".>")
	if err != nil {
		return err
	}

	slog.Info("activity consumer started", "consumer", inats.ConsumerActivityLog)

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("activity consumer: fetching events", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			c.handleEvent(ctx, msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) handleEvent(ctx context.Context, msg jetstream.Msg) {
	err := c.store(ctx, msg.Data())
	switch {
	case err == nil:
		metrics.ActivityEventsTotal.WithLabelValues("stored").Inc()
		_ = msg.Ack()
	case errors.Is(err, errMalformedEvent):
		slog.Error("activity consumer: dropping event", "error", err, "subject", msg.Subject())
		metrics.ActivityEventsTotal.WithLabelValues("malformed").Inc()
		_ = msg.Term()
	default:
		slog.Error("activity consumer: persisting event", "error", err, "subject", msg.Subject())
		metrics.ActivityEventsTotal.WithLabelValues("store_error").Inc()
		_ = msg.Nak()
	}
}

func (c *Consumer) store(ctx context.Context, data []byte) error {
	e, err := toEntry(data)
	if err != nil {
		return err
	}
	return c.repo.Insert(ctx, e)
}

func toEntry(data []byte) (*Entry, error) {
	var ev inats.DomainEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedEvent, err)
	}
	if ev.UserID == uuid.Nil || ev.Type == "" {
		return nil, fmt.Errorf("%w: missing user or type", errMalformedEvent)
	}

	e := &Entry{
		ID:        ev.ID,
		UserID:    ev.UserID,
		EventType: ev.Type,
		Payload:   ev.Payload,
		CreatedAt: ev.Timestamp,
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return e, nil
}
