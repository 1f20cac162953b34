// Package assistant composes chat replies from extracted intents, using a
// generative backend when one is available and fixed templates otherwise.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/chronomate/chronomate/internal/action"
	"github.com/chronomate/chronomate/internal/intent"
)

// Backend produces free text for a prompt.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var errEmptyCompletion = errors.New("backend returned an empty completion")

// Composer turns an intent and its actions into a Response.
type Composer struct {
	backend Backend
}

// NewComposer creates a Composer. A nil backend means every reply is
// templated.
func NewComposer(backend Backend) *Composer {
	return &Composer{backend: backend}
}

// Compose never fails. The generative path runs only with both a backend
// and a conversation context; any backend failure degrades to the
// templated reply.
func (c *Composer) Compose(ctx context.Context, in intent.Intent, actions []action.Action, conv *ConversationContext) Response {
	if c.backend != nil && conv != nil {
		resp, err := c.generate(ctx, in, actions, conv)
		if err == nil {
			return resp
		}
		slog.Warn("generative reply failed, using template",
			"user_id", conv.UserID,
			"intent", in.Kind,
			"error", err,
		)
	}
	return templated(in, actions, conv.mood())
}

func (c *Composer) generate(ctx context.Context, in intent.Intent, actions []action.Action, conv *ConversationContext) (Response, error) {
	raw, err := c.backend.Complete(ctx, buildPrompt(conv, in.Utterance))
	if err != nil {
		return Response{}, err
	}
	if strings.TrimSpace(raw) == "" {
		return Response{}, errEmptyCompletion
	}

	resp := parseReply(raw, actions)
	resp.Intent = in.Kind
	return resp, nil
}
