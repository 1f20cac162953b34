package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/chronomate/chronomate/internal/metrics"
)

// JetStreamPublisher is the subset of jetstream.JetStream the Publisher uses.
type JetStreamPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher provides typed methods for publishing to NATS JetStream.
type Publisher struct {
	js  JetStreamPublisher
	now func() time.Time
}

func NewPublisher(js JetStreamPublisher) *Publisher {
	return &Publisher{js: js, now: time.Now}
}

// PublishInboundMessage publishes an inbound chat message for orchestrator processing.
func (p *Publisher) PublishInboundMessage(ctx context.Context, msg InboundMessage) error {
	return p.publish(ctx, SubjectInboundMessage, msg)
}

// PublishOutboundMessage publishes a reply for gateway delivery.
func (p *Publisher) PublishOutboundMessage(ctx context.Context, msg OutboundMessage) error {
	return p.publish(ctx, SubjectOutboundMessage, msg)
}

func (p *Publisher) PublishEvent(ctx context.Context, ev DomainEvent) error {
	return p.publish(ctx, EventSubject(ev.Type), ev)
}

// Emit publishes a domain event and only logs failures, so planner writes
// never fail because the bus is down.
func (p *Publisher) Emit(ctx context.Context, userID uuid.UUID, eventType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("marshaling domain event", "type", eventType, "error", err)
		return
	}
	err = p.PublishEvent(ctx, DomainEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      eventType,
		Payload:   raw,
		Timestamp: p.now().UTC(),
	})
	if err != nil {
		metrics.ActivityEventsTotal.WithLabelValues("publish_error").Inc()
		slog.Warn("publishing domain event", "type", eventType, "user_id", userID, "error", err)
		return
	}
	metrics.ActivityEventsTotal.WithLabelValues("published").Inc()
}

func (p *Publisher) publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
