package assistant

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/chronomate/chronomate/internal/action"
	"github.com/chronomate/chronomate/internal/intent"
)

type generatedReply struct {
	Text      string            `json:"text"`
	Actions   []json.RawMessage `json:"actions"`
	Sentiment Sentiment         `json:"sentiment"`
	Category  Category          `json:"category"`
}

// parseReply folds a backend completion into a Response. A reply that is not
// the expected JSON object becomes plain text carrying the synthesized
// actions.
func parseReply(raw string, synthesized []action.Action) Response {
	text := strings.TrimSpace(raw)
	resp := Response{
		Text:      text,
		Actions:   synthesized,
		Sentiment: SentimentNeutral,
		Category:  CategoryGeneral,
		Generated: true,
	}

	reply, ok := decodeReply(text)
	if !ok {
		return resp
	}

	if t := strings.TrimSpace(reply.Text); t != "" {
		resp.Text = t
	}
	if reply.Actions != nil {
		resp.Actions = decodeActions(reply.Actions)
	}
	if reply.Sentiment.valid() {
		resp.Sentiment = reply.Sentiment
	}
	if reply.Category.valid() {
		resp.Category = reply.Category
	}
	return resp
}

func decodeReply(text string) (generatedReply, bool) {
	var reply generatedReply
	if err := json.Unmarshal([]byte(text), &reply); err == nil {
		return reply, true
	}

	block := extractJSON(text)
	if block == "" {
		return reply, false
	}

	repaired, err := jsonrepair.JSONRepair(block)
	if err != nil {
		return reply, false
	}
	reply = generatedReply{}
	if err := json.Unmarshal([]byte(repaired), &reply); err != nil {
		return reply, false
	}
	return reply, true
}

// decodeActions keeps the well-formed actions of a known kind and drops
// the rest.
func decodeActions(raw []json.RawMessage) []action.Action {
	out := make([]action.Action, 0, len(raw))
	for _, r := range raw {
		var a action.Action
		if err := json.Unmarshal(r, &a); err != nil {
			continue
		}
		switch a.Kind {
		case intent.KindCreateReminder, intent.KindCreateTask, intent.KindScheduleEvent, intent.KindUpdateMood:
			out = append(out, a)
		}
	}
	return out
}

func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return strings.TrimSpace(content[start : end+1])
}
