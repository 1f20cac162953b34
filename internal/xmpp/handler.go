package xmpp

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gosrc.io/xmpp"
	"gosrc.io/xmpp/stanza"

	inats "github.com/chronomate/chronomate/internal/nats"
)

const publishTimeout = 5 * time.Second

// StanzaSender is the part of xmpp.Sender the gateway uses.
type StanzaSender interface {
	Send(packet stanza.Packet) error
}

// InboundPublisher queues chat messages for the orchestrator.
type InboundPublisher interface {
	PublishInboundMessage(ctx context.Context, msg inats.InboundMessage) error
}

// Handler processes incoming stanzas and bridges chat messages to NATS.
type Handler struct {
	publisher InboundPublisher
	now       func() time.Time
}

func NewHandler(publisher InboundPublisher) *Handler {
	return &Handler{publisher: publisher, now: time.Now}
}

func (h *Handler) HandleMessage(s xmpp.Sender, p stanza.Packet) {
	h.handleMessage(s, p)
}

func (h *Handler) handleMessage(s StanzaSender, p stanza.Packet) {
	msg, ok := p.(stanza.Message)
	if !ok || msg.Body == "" {
		return
	}

	slog.Debug("XMPP message received",
		"from", msg.From,
		"to", msg.To,
		"type", string(msg.Type),
	)

	inbound := inats.InboundMessage{
		ID:         uuid.New().String(),
		FromJID:    msg.From,
		ToJID:      msg.To,
		Body:       msg.Body,
		StanzaType: string(msg.Type),
		ReceivedAt: h.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := h.publisher.PublishInboundMessage(ctx, inbound); err != nil {
		slog.Error("publishing inbound message", "error", err, "from", msg.From)
		h.sendChat(s, inats.OutboundMessage{
			FromJID: msg.To,
			ToJID:   msg.From,
			Body:    "Sorry, I can't take messages right now. Please try again shortly.",
		})
	}
}

// HandlePresence approves subscription requests so users can add the
// assistant to their roster.
func (h *Handler) HandlePresence(s xmpp.Sender, p stanza.Packet) {
	h.handlePresence(s, p)
}

func (h *Handler) handlePresence(s StanzaSender, p stanza.Packet) {
	pres, ok := p.(stanza.Presence)
	if !ok {
		return
	}

	slog.Debug("XMPP presence received", "from", pres.From, "to", pres.To, "type", string(pres.Type))

	if pres.Type != "subscribe" {
		return
	}
	for _, t := range []stanza.StanzaType{"subscribed", ""} {
		reply := stanza.Presence{Attrs: stanza.Attrs{From: pres.To, To: pres.From, Type: t}}
		if err := s.Send(reply); err != nil {
			slog.Error("answering presence subscription", "error", err, "to", pres.From)
			return
		}
	}
}

func (h *Handler) HandleIQ(_ xmpp.Sender, p stanza.Packet) {
	iq, ok := p.(*stanza.IQ)
	if !ok {
		return
	}
	slog.Debug("XMPP IQ received", "from", iq.From, "to", iq.To, "type", string(iq.Type))
}

// SendOutboundMessage delivers a queued reply as a chat message.
func (h *Handler) SendOutboundMessage(s StanzaSender, outbound inats.OutboundMessage) error {
	return s.Send(chatMessage(outbound))
}

func (h *Handler) sendChat(s StanzaSender, outbound inats.OutboundMessage) {
	if err := s.Send(chatMessage(outbound)); err != nil {
		slog.Error("sending chat message", "error", err, "to", outbound.ToJID)
	}
}

func chatMessage(m inats.OutboundMessage) stanza.Message {
	return stanza.Message{
		Attrs: stanza.Attrs{
			From: m.FromJID,
			To:   m.ToJID,
			Type: "chat",
			Id:   m.ID,
		},
		Body: m.Body,
	}
}
