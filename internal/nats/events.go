package nats

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

const (
	StreamMessages = "CHRONOMATE_MESSAGES"
	StreamEvents   = "CHRONOMATE_EVENTS"
)

const (
	SubjectInboundMessage  = "chronomate.messages.inbound"
	SubjectOutboundMessage = "chronomate.messages.outbound"
	SubjectEventPrefix     = "chronomate.events" // chronomate.events.{type}
)

// InboundMessage is published when a chat message arrives at the gateway.
type InboundMessage struct {
	ID         string    `json:"id"`
	FromJID    string    `json:"from_jid"`
	ToJID      string    `json:"to_jid"`
	Body       string    `json:"body"`
	StanzaType string    `json:"stanza_type"`
	ReceivedAt time.Time `json:"received_at"`
}

// OutboundMessage is published to send a reply back through the gateway.
type OutboundMessage struct {
	ID        string `json:"id"`
	ToJID     string `json:"to_jid"`
	FromJID   string `json:"from_jid"`
	Body      string `json:"body"`
	InReplyTo string `json:"in_reply_to,omitempty"`
}

// DomainEvent records a change to a user's planner data.
type DomainEvent struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// EventSubject returns the subject a domain event of the given type is published on.
func EventSubject(eventType string) string {
	return SubjectEventPrefix + "." + eventType
}
