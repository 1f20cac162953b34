package nats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// Durable consumer names, one per reader.
const (
	ConsumerOrchestrator  = "chronomate-orchestrator"
	ConsumerOutboundRelay = "chronomate-outbound-relay"
	ConsumerActivityLog   = "chronomate-activity-log"
)

const (
	consumerAckWait = 30 * time.Second
	// Messages are dropped after this many deliveries.
	consumerMaxDeliver = 5
)

// ConsumerManager owns the durable consumers the service reads from.
type ConsumerManager struct {
	js jetstream.JetStream
}

func NewConsumerManager(js jetstream.JetStream) *ConsumerManager {
	return &ConsumerManager{js: js}
}

// EnsureConsumer creates or updates an explicitly acked durable consumer
// on stream, filtered to filterSubject.
func (cm *ConsumerManager) EnsureConsumer(ctx context.Context, stream, name, filterSubject string) (jetstream.Consumer, error) {
	cfg := jetstream.ConsumerConfig{
		Durable:       name,
		Description:   "chronomate " + strings.TrimPrefix(name, "chronomate-"),
		FilterSubject: filterSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       consumerAckWait,
		MaxDeliver:    consumerMaxDeliver,
	}

	consumer, err := cm.js.CreateOrUpdateConsumer(ctx, stream, cfg)
	if err != nil {
		return nil, fmt.Errorf("ensuring consumer %s on stream %s: %w", name, stream, err)
	}
	return consumer, nil
}
