package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	inats "github.com/chronomate/chronomate/internal/nats"
)

var (
	ErrUnsupportedType = errors.New("unsupported stanza type")
	ErrForeignDomain   = errors.New("message not addressed to this gateway")
	ErrEmptyBody       = errors.New("message body is empty")
)

// Validator decides whether an inbound message is something the assistant
// should answer. Messages that fail are dropped without a reply.
type Validator struct {
	domain string
}

// NewValidator accepts messages addressed to domain. An empty domain
// accepts any address.
func NewValidator(domain string) *Validator {
	return &Validator{domain: domain}
}

func (v *Validator) Validate(msg inats.InboundMessage) error {
	switch msg.StanzaType {
	case "", "chat", "normal":
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedType, msg.StanzaType)
	}

	if v.domain != "" {
		if d := extractDomain(msg.ToJID); !strings.EqualFold(d, v.domain) {
			return fmt.Errorf("%w: %q", ErrForeignDomain, d)
		}
	}

	if strings.TrimSpace(msg.Body) == "" {
		return ErrEmptyBody
	}
	return nil
}

func extractDomain(jid string) string {
	bare, _, _ := strings.Cut(jid, "/")
	if _, domain, ok := strings.Cut(bare, "@"); ok {
		return domain
	}
	return bare
}
