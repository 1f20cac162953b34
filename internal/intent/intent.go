// Package intent classifies free-text chat messages into structured intents
// using an ordered cascade of regular expressions.
package intent

import "strings"

// Kind identifies what the user asked for.
type Kind string

const (
	KindCreateReminder Kind = "create_reminder"
	KindCreateTask     Kind = "create_task"
	KindScheduleEvent  Kind = "schedule_event"
	KindUpdateMood     Kind = "update_mood"
	KindGeneral        Kind = "general"
)

// Priority is the urgency inferred from the message wording.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Mood is the user's self-reported emotional state.
type Mood string

const (
	MoodNeutral  Mood = "neutral"
	MoodHappy    Mood = "happy"
	MoodSad      Mood = "sad"
	MoodStressed Mood = "stressed"
	MoodTired    Mood = "tired"
)

// Moods lists every supported mood.
var Moods = []Mood{MoodNeutral, MoodHappy, MoodSad, MoodStressed, MoodTired}

// ParseMood maps free text onto a Mood, defaulting to neutral.
func ParseMood(s string) Mood {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Moods {
		if m == known {
			return m
		}
	}
	return MoodNeutral
}

// Intent is the structured reading of one utterance.
//
// Content holds the reminder or task text, the event title, the reported
// mood for KindUpdateMood, or the whole utterance for KindGeneral. Time is
// the raw time fragment; resolving it to an instant is left to whoever
// executes the resulting action.
type Intent struct {
	Kind      Kind     `json:"kind"`
	Content   string   `json:"content"`
	Time      string   `json:"time,omitempty"`
	Priority  Priority `json:"priority,omitempty"`
	Repeat    *Repeat  `json:"repeat,omitempty"`
	Utterance string   `json:"utterance"`
}

// General wraps an utterance that matched no pattern.
func General(utterance string) Intent {
	return Intent{Kind: KindGeneral, Content: utterance, Utterance: utterance}
}
