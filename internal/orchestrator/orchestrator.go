package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/chronomate/chronomate/internal/chat"
	inats "github.com/chronomate/chronomate/internal/nats"
)

const (
	unlinkedReply = "Hi! I don't recognize this chat address yet. Link it to your ChronoMate account " +
		"(PUT /api/v1/me/jid) and message me again."
	failureReply = "Sorry, I couldn't process that just now. Please try again in a moment."
)

// Messenger runs one chat turn for a user.
type Messenger interface {
	Send(ctx context.Context, userID uuid.UUID, channel, message string) (*chat.Reply, error)
}

// OutboundPublisher queues replies for the chat gateway.
type OutboundPublisher interface {
	PublishOutboundMessage(ctx context.Context, msg inats.OutboundMessage) error
}

// Orchestrator consumes inbound chat messages, resolves the sender, runs
// the assistant and publishes the reply.
type Orchestrator struct {
	publisher   OutboundPublisher
	consumerMgr *inats.ConsumerManager
	validator   *Validator
	router      *Router
	chat        Messenger
}

func NewOrchestrator(
	publisher OutboundPublisher,
	consumerMgr *inats.ConsumerManager,
	validator *Validator,
	router *Router,
	messenger Messenger,
) *Orchestrator {
	return &Orchestrator{
		publisher:   publisher,
		consumerMgr: consumerMgr,
		validator:   validator,
		router:      router,
		chat:        messenger,
	}
}

// Start begins the orchestrator event loop. It returns when ctx is done.
func (o *Orchestrator) Start(ctx context.Context) error {
	consumer, err := o.consumerMgr.EnsureConsumer(ctx, inats.StreamMessages, inats.ConsumerOrchestrator, inats.SubjectInboundMessage)
	if err != nil {
		return err
	}

	slog.Info("orchestrator started", "consumer", inats.ConsumerOrchestrator)

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("fetching inbound messages", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			o.processMessage(ctx, msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (o *Orchestrator) processMessage(ctx context.Context, msg jetstream.Msg) {
	var inbound inats.InboundMessage
	if err := json.Unmarshal(msg.Data(), &inbound); err != nil {
		slog.Error("unmarshaling inbound message", "error", err)
		_ = msg.Term()
		return
	}

	reply, ok := o.Handle(ctx, inbound)
	if ok {
		if err := o.publisher.PublishOutboundMessage(ctx, reply); err != nil {
			slog.Error("publishing outbound message", "error", err, "to", reply.ToJID)
			_ = msg.Nak()
			return
		}
	}
	_ = msg.Ack()
}

// Handle turns one inbound message into the reply to send. ok is false
// when the message should be dropped silently.
func (o *Orchestrator) Handle(ctx context.Context, inbound inats.InboundMessage) (inats.OutboundMessage, bool) {
	if err := o.validator.Validate(inbound); err != nil {
		slog.Debug("dropping inbound message", "id", inbound.ID, "from", inbound.FromJID, "reason", err)
		return inats.OutboundMessage{}, false
	}

	route, err := o.router.Route(ctx, inbound.FromJID)
	if err != nil {
		if errors.Is(err, ErrUnlinked) {
			slog.Info("message from unlinked address", "from", inbound.FromJID)
			return replyTo(inbound, unlinkedReply), true
		}
		slog.Error("routing inbound message", "error", err, "from", inbound.FromJID)
		return replyTo(inbound, failureReply), true
	}

	res, err := o.chat.Send(ctx, route.UserID, chat.ChannelXMPP, inbound.Body)
	if err != nil {
		slog.Error("processing chat message", "error", err, "user_id", route.UserID)
		return replyTo(inbound, failureReply), true
	}

	return replyTo(inbound, res.Response.Text), true
}

func replyTo(inbound inats.InboundMessage, body string) inats.OutboundMessage {
	return inats.OutboundMessage{
		ID:        uuid.New().String(),
		ToJID:     inbound.FromJID,
		FromJID:   inbound.ToJID,
		Body:      body,
		InReplyTo: inbound.ID,
	}
}
