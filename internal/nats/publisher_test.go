package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

type fakeJetStream struct {
	msgs []published
	err  error
}

func (f *fakeJetStream) Publish(_ context.Context, subject string, data []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.msgs = append(f.msgs, published{subject: subject, data: data})
	return &jetstream.PubAck{Stream: "test"}, nil
}

func TestPublisher_Emit(t *testing.T) {
	js := &fakeJetStream{}
	p := NewPublisher(js)
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return at }
	userID := uuid.New()

	p.Emit(context.Background(), userID, "task.created", map[string]string{"title": "buy milk"})

	require.Len(t, js.msgs, 1)
	assert.Equal(t, "chronomate.events.task.created", js.msgs[0].subject)

	var ev DomainEvent
	require.NoError(t, json.Unmarshal(js.msgs[0].data, &ev))
	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.Equal(t, userID, ev.UserID)
	assert.Equal(t, "task.created", ev.Type)
	assert.True(t, at.Equal(ev.Timestamp))
	assert.JSONEq(t, `{"title":"buy milk"}`, string(ev.Payload))
}

func TestPublisher_EmitSwallowsErrors(t *testing.T) {
	js := &fakeJetStream{err: errors.New("no responders")}
	p := NewPublisher(js)

	assert.NotPanics(t, func() {
		p.Emit(context.Background(), uuid.New(), "mood.updated", map[string]string{"mood": "tired"})
	})
	assert.Empty(t, js.msgs)
}

func TestPublisher_Messages(t *testing.T) {
	js := &fakeJetStream{}
	p := NewPublisher(js)
	ctx := context.Background()

	require.NoError(t, p.PublishInboundMessage(ctx, InboundMessage{ID: "1", FromJID: "ana@example.com", Body: "hi"}))
	require.NoError(t, p.PublishOutboundMessage(ctx, OutboundMessage{ID: "2", ToJID: "ana@example.com", Body: "hello"}))

	require.Len(t, js.msgs, 2)
	assert.Equal(t, SubjectInboundMessage, js.msgs[0].subject)
	assert.Equal(t, SubjectOutboundMessage, js.msgs[1].subject)

	js.err = errors.New("down")
	err := p.PublishOutboundMessage(ctx, OutboundMessage{ID: "3"})
	assert.ErrorContains(t, err, "publishing to chronomate.messages.outbound")
}
