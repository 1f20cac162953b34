// Package action turns extracted intents into store-agnostic action records.
package action

import "github.com/chronomate/chronomate/internal/intent"

// Data is the flattened payload of an action. Which fields are set depends
// on the action kind; the executing side validates them.
type Data struct {
	Title       string          `json:"title,omitempty"`
	Time        string          `json:"time,omitempty"`
	DueDate     string          `json:"dueDate,omitempty"`
	Repeat      *intent.Repeat  `json:"repeat,omitempty"`
	Priority    intent.Priority `json:"priority,omitempty"`
	Mood        intent.Mood     `json:"mood,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
}

// Action is one mutation the caller should apply to its store.
type Action struct {
	Kind intent.Kind `json:"type"`
	Data Data        `json:"data"`
}

// Synthesize maps an intent to its actions. General intents yield an empty,
// non-nil slice; every other kind yields exactly one action.
func Synthesize(in intent.Intent) []Action {
	switch in.Kind {
	case intent.KindGeneral, "":
		return []Action{}
	case intent.KindUpdateMood:
		return []Action{{
			Kind: in.Kind,
			Data: Data{
				Mood:  intent.ParseMood(in.Content),
				Notes: in.Utterance,
			},
		}}
	}

	priority := in.Priority
	if priority == "" {
		priority = intent.PriorityMedium
	}

	return []Action{{
		Kind: in.Kind,
		Data: Data{
			Title:    in.Content,
			Time:     in.Time,
			Repeat:   in.Repeat,
			Priority: priority,
		},
	}}
}
