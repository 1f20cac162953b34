package xmpp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gosrc.io/xmpp/stanza"

	inats "github.com/chronomate/chronomate/internal/nats"
)

type fakeSender struct {
	packets []stanza.Packet
}

func (f *fakeSender) Send(p stanza.Packet) error {
	f.packets = append(f.packets, p)
	return nil
}

type fakePublisher struct {
	msgs []inats.InboundMessage
	err  error
}

func (f *fakePublisher) PublishInboundMessage(_ context.Context, msg inats.InboundMessage) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func chatFrom(from, body string) stanza.Message {
	return stanza.Message{
		Attrs: stanza.Attrs{From: from, To: "assistant.chronomate.local", Type: "chat"},
		Body:  body,
	}
}

func TestHandleMessage_Publishes(t *testing.T) {
	pub := &fakePublisher{}
	h := NewHandler(pub)
	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return at }
	s := &fakeSender{}

	h.handleMessage(s, chatFrom("ana@example.com/phone", "remind me to stretch in 10 minutes"))

	require.Len(t, pub.msgs, 1)
	got := pub.msgs[0]
	assert.Equal(t, "ana@example.com/phone", got.FromJID)
	assert.Equal(t, "assistant.chronomate.local", got.ToJID)
	assert.Equal(t, "remind me to stretch in 10 minutes", got.Body)
	assert.Equal(t, "chat", got.StanzaType)
	assert.Equal(t, at, got.ReceivedAt)
	assert.NotEmpty(t, got.ID)
	assert.Empty(t, s.packets)
}

func TestHandleMessage_SkipsEmptyBody(t *testing.T) {
	pub := &fakePublisher{}
	h := NewHandler(pub)

	h.handleMessage(&fakeSender{}, chatFrom("ana@example.com", ""))
	h.handleMessage(&fakeSender{}, stanza.Presence{})
	assert.Empty(t, pub.msgs)
}

func TestHandleMessage_PublishFailureRepliesToSender(t *testing.T) {
	h := NewHandler(&fakePublisher{err: errors.New("nats down")})
	s := &fakeSender{}

	h.handleMessage(s, chatFrom("ana@example.com/phone", "hi"))

	require.Len(t, s.packets, 1)
	reply, ok := s.packets[0].(stanza.Message)
	require.True(t, ok)
	assert.Equal(t, "ana@example.com/phone", reply.To)
	assert.Equal(t, "assistant.chronomate.local", reply.From)
	assert.Contains(t, reply.Body, "try again")
}

func TestHandlePresence_ApprovesSubscription(t *testing.T) {
	h := NewHandler(&fakePublisher{})
	s := &fakeSender{}

	h.handlePresence(s, stanza.Presence{Attrs: stanza.Attrs{From: "ana@example.com", To: "assistant.chronomate.local", Type: "subscribe"}})

	require.Len(t, s.packets, 2)
	subscribed := s.packets[0].(stanza.Presence)
	assert.Equal(t, stanza.StanzaType("subscribed"), subscribed.Type)
	assert.Equal(t, "ana@example.com", subscribed.To)
	available := s.packets[1].(stanza.Presence)
	assert.Equal(t, stanza.StanzaType(""), available.Type)

	s.packets = nil
	h.handlePresence(s, stanza.Presence{Attrs: stanza.Attrs{From: "ana@example.com", Type: "unavailable"}})
	assert.Empty(t, s.packets)
}

func TestSendOutboundMessage(t *testing.T) {
	h := NewHandler(&fakePublisher{})
	s := &fakeSender{}

	err := h.SendOutboundMessage(s, inats.OutboundMessage{
		ID:      "out-1",
		FromJID: "assistant.chronomate.local",
		ToJID:   "ana@example.com/phone",
		Body:    "Got it!",
	})
	require.NoError(t, err)

	msg := s.packets[0].(stanza.Message)
	assert.Equal(t, "out-1", msg.Id)
	assert.Equal(t, stanza.StanzaType("chat"), msg.Type)
	assert.Equal(t, "Got it!", msg.Body)
}
