package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronomate/chronomate/internal/assistant"
	"github.com/chronomate/chronomate/internal/chat"
	inats "github.com/chronomate/chronomate/internal/nats"
	"github.com/chronomate/chronomate/internal/users"
)

type fakeResolver struct {
	byJID map[string]*users.User
	err   error
}

func (f *fakeResolver) ResolveJID(_ context.Context, jid string) (*users.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	bare, err := users.BareJID(jid)
	if err != nil {
		return nil, err
	}
	u, ok := f.byJID[bare]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

type sent struct {
	userID  uuid.UUID
	channel string
	message string
}

type fakeMessenger struct {
	calls []sent
	err   error
}

func (f *fakeMessenger) Send(_ context.Context, userID uuid.UUID, channel, message string) (*chat.Reply, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, sent{userID, channel, message})
	return &chat.Reply{Response: assistant.Response{Text: "reply to " + message}}, nil
}

const gateway = "assistant.chronomate.local"

func newTestOrchestrator(resolver *fakeResolver, messenger *fakeMessenger) *Orchestrator {
	return NewOrchestrator(nil, nil, NewValidator(gateway), NewRouter(resolver), messenger)
}

func inbound(from, body string) inats.InboundMessage {
	return inats.InboundMessage{ID: "in-1", FromJID: from, ToJID: gateway, Body: body, StanzaType: "chat"}
}

func TestHandle_LinkedUser(t *testing.T) {
	ana := &users.User{ID: uuid.New(), Email: "ana@example.com"}
	messenger := &fakeMessenger{}
	o := newTestOrchestrator(&fakeResolver{byJID: map[string]*users.User{"ana@example.com": ana}}, messenger)

	reply, ok := o.Handle(context.Background(), inbound("Ana@Example.com/phone", "remind me to stretch"))
	require.True(t, ok)

	assert.Equal(t, "reply to remind me to stretch", reply.Body)
	assert.Equal(t, "Ana@Example.com/phone", reply.ToJID)
	assert.Equal(t, gateway, reply.FromJID)
	assert.Equal(t, "in-1", reply.InReplyTo)
	assert.NotEmpty(t, reply.ID)

	require.Len(t, messenger.calls, 1)
	assert.Equal(t, ana.ID, messenger.calls[0].userID)
	assert.Equal(t, chat.ChannelXMPP, messenger.calls[0].channel)
}

func TestHandle_UnlinkedSenderGetsHint(t *testing.T) {
	messenger := &fakeMessenger{}
	o := newTestOrchestrator(&fakeResolver{byJID: map[string]*users.User{}}, messenger)

	reply, ok := o.Handle(context.Background(), inbound("stranger@example.com", "hello"))
	require.True(t, ok)
	assert.Equal(t, unlinkedReply, reply.Body)
	assert.Empty(t, messenger.calls)
}

func TestHandle_Failures(t *testing.T) {
	ana := &users.User{ID: uuid.New()}

	t.Run("resolver error", func(t *testing.T) {
		o := newTestOrchestrator(&fakeResolver{err: errors.New("db down")}, &fakeMessenger{})
		reply, ok := o.Handle(context.Background(), inbound("ana@example.com", "hi"))
		require.True(t, ok)
		assert.Equal(t, failureReply, reply.Body)
	})

	t.Run("chat error", func(t *testing.T) {
		resolver := &fakeResolver{byJID: map[string]*users.User{"ana@example.com": ana}}
		o := newTestOrchestrator(resolver, &fakeMessenger{err: errors.New("boom")})
		reply, ok := o.Handle(context.Background(), inbound("ana@example.com", "hi"))
		require.True(t, ok)
		assert.Equal(t, failureReply, reply.Body)
	})
}

func TestHandle_DropsInvalidMessages(t *testing.T) {
	messenger := &fakeMessenger{}
	o := newTestOrchestrator(&fakeResolver{}, messenger)

	msg := inbound("room@conference.example.com/ana", "hi all")
	msg.StanzaType = "groupchat"
	_, ok := o.Handle(context.Background(), msg)
	assert.False(t, ok)

	_, ok = o.Handle(context.Background(), inbound("ana@example.com", "   "))
	assert.False(t, ok)
	assert.Empty(t, messenger.calls)
}

func TestRouter_InvalidSenderIsUnlinked(t *testing.T) {
	r := NewRouter(&fakeResolver{byJID: map[string]*users.User{}})
	_, err := r.Route(context.Background(), "not-a-jid")
	assert.ErrorIs(t, err, ErrUnlinked)
}
