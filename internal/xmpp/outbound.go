package xmpp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"

	inats "github.com/chronomate/chronomate/internal/nats"
)

// OutboundRelay consumes assistant replies from NATS and sends them over XMPP.
type OutboundRelay struct {
	handler     *Handler
	sender      StanzaSender
	consumerMgr *inats.ConsumerManager
}

func NewOutboundRelay(handler *Handler, sender StanzaSender, consumerMgr *inats.ConsumerManager) *OutboundRelay {
	return &OutboundRelay{
		handler:     handler,
		sender:      sender,
		consumerMgr: consumerMgr,
	}
}

// Start runs the relay loop until ctx is done.
func (r *OutboundRelay) Start(ctx context.Context) error {
	consumer, err := r.consumerMgr.EnsureConsumer(ctx, inats.StreamMessages, inats.ConsumerOutboundRelay, inats.SubjectOutboundMessage)
	if err != nil {
		return err
	}

	slog.Info("outbound relay started", "consumer", inats.ConsumerOutboundRelay)

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(inats.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("fetching outbound messages", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			r.deliver(msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (r *OutboundRelay) deliver(msg jetstream.Msg) {
	var outbound inats.OutboundMessage
	if err := json.Unmarshal(msg.Data(), &outbound); err != nil {
		slog.Error("unmarshaling outbound message", "error", err)
		_ = msg.Term()
		return
	}

	if err := r.handler.SendOutboundMessage(r.sender, outbound); err != nil {
		slog.Error("sending outbound XMPP message", "error", err, "to", outbound.ToJID)
		_ = msg.Nak()
		return
	}

	slog.Debug("sent outbound XMPP message", "to", outbound.ToJID, "in_reply_to", outbound.InReplyTo)
	_ = msg.Ack()
}
