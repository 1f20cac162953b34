package assistant

import (
	"github.com/chronomate/chronomate/internal/action"
	"github.com/chronomate/chronomate/internal/intent"
)

// Sentiment is the emotional tone of a reply.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

func (s Sentiment) valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// Category tags what a reply is about.
type Category string

const (
	CategoryReminder         Category = "reminder"
	CategoryTask             Category = "task"
	CategoryReflection       Category = "reflection"
	CategoryGeneral          Category = "general"
	CategoryEmotionalSupport Category = "emotional_support"
)

func (c Category) valid() bool {
	switch c {
	case CategoryReminder, CategoryTask, CategoryReflection, CategoryGeneral, CategoryEmotionalSupport:
		return true
	}
	return false
}

// Response is what the assistant hands back for one utterance. Text is
// never empty.
type Response struct {
	Text      string          `json:"text"`
	Actions   []action.Action `json:"actions"`
	Sentiment Sentiment       `json:"sentiment"`
	Category  Category        `json:"category"`
	Intent    intent.Kind     `json:"intent"`
	Generated bool            `json:"generated"`
}
