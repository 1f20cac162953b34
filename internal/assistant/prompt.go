package assistant

import (
	"fmt"
	"strings"
)

func buildPrompt(conv *ConversationContext, utterance string) string {
	var sb strings.Builder
	sb.WriteString("You are ChronoMate, a warm and well-organized personal assistant for time management, health and emotional well-being.\n\n")

	sb.WriteString("User context:\n")
	fmt.Fprintf(&sb, "- Current mood: %s\n", conv.mood())
	fmt.Fprintf(&sb, "- Recent tasks: %s\n", joinOrNone(conv.RecentTasks))
	fmt.Fprintf(&sb, "- Habits: %s\n", joinOrNone(conv.Habits))

	if history := conv.History.All(); len(history) > 0 {
		sb.WriteString("\nConversation so far:\n")
		for _, e := range history {
			fmt.Fprintf(&sb, "%s: %s\n", e.Role, e.Content)
		}
	}

	sb.WriteString("\nMatch your tone to the mood: energetic when happy, gentle when sad, calming when stressed, restful when tired.\n")
	sb.WriteString("When the user asks for a reminder, task or event, extract the details.\n\n")
	sb.WriteString("Reply with JSON only:\n")
	sb.WriteString(`{"text": "...", "actions": [{"type": "create_reminder|create_task|schedule_event|update_mood", "data": {"title": "...", "time": "...", "priority": "low|medium|high"}}], "sentiment": "positive|negative|neutral", "category": "reminder|task|reflection|general|emotional_support"}`)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "User message: %q\n", utterance)

	return sb.String()
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
