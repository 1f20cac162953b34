package assistant

import (
	"time"

	"github.com/chronomate/chronomate/internal/intent"
)

// ConversationContext is the per-session state the composer reads. It is
// owned by a single session and is not safe for concurrent use.
type ConversationContext struct {
	UserID      string
	Mood        intent.Mood
	RecentTasks []string
	Habits      []string
	Preferences map[string]any
	History     History
}

// NewConversationContext returns an empty context with a neutral mood.
func NewConversationContext(userID string) *ConversationContext {
	return &ConversationContext{
		UserID:      userID,
		Mood:        intent.MoodNeutral,
		Preferences: map[string]any{},
	}
}

// AddToHistory records a turn, evicting the oldest once the cap is reached.
func (c *ConversationContext) AddToHistory(role Role, content string) {
	c.History.Append(Entry{Role: role, Content: content, Timestamp: time.Now().UTC()})
}

func (c *ConversationContext) mood() intent.Mood {
	if c == nil || c.Mood == "" {
		return intent.MoodNeutral
	}
	return c.Mood
}
