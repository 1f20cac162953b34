package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	inats "github.com/chronomate/chronomate/internal/nats"
)

func TestValidator_Validate(t *testing.T) {
	v := NewValidator("assistant.chronomate.local")

	tests := []struct {
		name    string
		msg     inats.InboundMessage
		wantErr error
	}{
		{
			name: "chat message",
			msg:  inats.InboundMessage{ToJID: "assistant.chronomate.local", StanzaType: "chat", Body: "hi"},
		},
		{
			name: "normal message to a node with resource",
			msg:  inats.InboundMessage{ToJID: "bot@Assistant.Chronomate.Local/web", StanzaType: "normal", Body: "hi"},
		},
		{
			name: "missing type is treated as normal",
			msg:  inats.InboundMessage{ToJID: "assistant.chronomate.local", Body: "hi"},
		},
		{
			name:    "groupchat is ignored",
			msg:     inats.InboundMessage{ToJID: "assistant.chronomate.local", StanzaType: "groupchat", Body: "hi"},
			wantErr: ErrUnsupportedType,
		},
		{
			name:    "error stanza is ignored",
			msg:     inats.InboundMessage{ToJID: "assistant.chronomate.local", StanzaType: "error", Body: "hi"},
			wantErr: ErrUnsupportedType,
		},
		{
			name:    "other domain",
			msg:     inats.InboundMessage{ToJID: "someone@example.com", StanzaType: "chat", Body: "hi"},
			wantErr: ErrForeignDomain,
		},
		{
			name:    "blank body",
			msg:     inats.InboundMessage{ToJID: "assistant.chronomate.local", StanzaType: "chat", Body: " \n "},
			wantErr: ErrEmptyBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.msg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidator_AnyDomain(t *testing.T) {
	v := NewValidator("")
	assert.NoError(t, v.Validate(inats.InboundMessage{ToJID: "x@anywhere.org", Body: "hi"}))
}

func TestExtractDomain(t *testing.T) {
	assert.Equal(t, "example.com", extractDomain("ana@example.com/phone"))
	assert.Equal(t, "example.com", extractDomain("example.com"))
	assert.Equal(t, "example.com", extractDomain("example.com/res"))
}
