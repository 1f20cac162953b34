package assistant

import (
	"context"

	"github.com/chronomate/chronomate/internal/action"
	"github.com/chronomate/chronomate/internal/intent"
)

// Assistant runs the extract, synthesize and compose pipeline.
type Assistant struct {
	extractor *intent.Extractor
	composer  *Composer
}

// New creates an Assistant. A nil extractor uses the default matchers and a
// nil backend keeps every reply templated.
func New(extractor *intent.Extractor, backend Backend) *Assistant {
	if extractor == nil {
		extractor = intent.NewExtractor(nil)
	}
	return &Assistant{
		extractor: extractor,
		composer:  NewComposer(backend),
	}
}

// WithoutBackend returns a copy that only uses templated replies.
func (a *Assistant) WithoutBackend() *Assistant {
	return &Assistant{extractor: a.extractor, composer: NewComposer(nil)}
}

// Process handles one utterance and always returns a reply with text. conv
// may be nil, in which case the reply is templated with a neutral mood.
func (a *Assistant) Process(ctx context.Context, conv *ConversationContext, utterance string) Response {
	in := a.extractor.Extract(utterance)
	actions := action.Synthesize(in)
	return a.composer.Compose(ctx, in, actions, conv)
}

// Parse exposes the deterministic half of the pipeline.
func (a *Assistant) Parse(utterance string) (intent.Intent, []action.Action) {
	in := a.extractor.Extract(utterance)
	return in, action.Synthesize(in)
}
