package assistant

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/chronomate/chronomate/internal/action"
	"github.com/chronomate/chronomate/internal/intent"
)

// moodPrefix returns the reply opener for a mood. ok is false for a mood
// with no case here, so a new mood must be added to this switch.
func moodPrefix(m intent.Mood) (prefix string, ok bool) {
	switch m {
	case intent.MoodHappy:
		return "Love the energy! ✨ ", true
	case intent.MoodSad:
		return "I'm right here with you, one step at a time. 💙 ", true
	case intent.MoodStressed:
		return "Deep breath. We'll sort this out together. 🌸 ", true
	case intent.MoodTired:
		return "You've been working hard, so let's keep this light. 😴 ", true
	case intent.MoodNeutral:
		return "", true
	default:
		return "", false
	}
}

var (
	greetingRe = regexp.MustCompile(`(?i)\b(hi|hello|hey)\b|how are you`)
	weekdayRe  = regexp.MustCompile(`(?i)^(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

// templated builds the dependency-free reply.
func templated(in intent.Intent, actions []action.Action, mood intent.Mood) Response {
	prefix, _ := moodPrefix(mood)
	resp := Response{Actions: actions, Intent: in.Kind}

	switch in.Kind {
	case intent.KindCreateReminder:
		var b strings.Builder
		fmt.Fprintf(&b, "Got it! I'll remind you to %s", in.Content)
		if in.Time != "" {
			b.WriteString(" " + timePhrase(in.Time))
		}
		if in.Repeat != nil {
			b.WriteString(" " + in.Repeat.String())
		}
		b.WriteString(". Looking after yourself matters! 🎯")
		resp.Text = b.String()
		resp.Sentiment, resp.Category = SentimentPositive, CategoryReminder

	case intent.KindCreateTask:
		resp.Text = fmt.Sprintf("Added %q to your tasks", in.Content)
		if in.Time != "" {
			resp.Text += ", due " + timePhrase(in.Time)
		}
		resp.Text += ". Nicely organized! ✅"
		resp.Sentiment, resp.Category = SentimentPositive, CategoryTask

	case intent.KindScheduleEvent:
		if in.Time != "" {
			resp.Text = fmt.Sprintf("Scheduled %q %s. Your calendar is in good shape! 📅", in.Content, timePhrase(in.Time))
		} else {
			resp.Text = fmt.Sprintf("Added %q to your calendar. Your calendar is in good shape! 📅", in.Content)
		}
		resp.Sentiment, resp.Category = SentimentPositive, CategoryGeneral

	case intent.KindUpdateMood:
		// The reported mood replaces the session's stale one for the prefix.
		reported := intent.ParseMood(in.Content)
		prefix, _ = moodPrefix(reported)
		switch reported {
		case intent.MoodSad, intent.MoodStressed, intent.MoodTired:
			resp.Text = fmt.Sprintf("Thanks for telling me you're feeling %s. I've noted it, and I'm here if you want to talk or lighten today's load.", reported)
			resp.Sentiment, resp.Category = SentimentPositive, CategoryEmotionalSupport
		case intent.MoodHappy:
			resp.Text = "So glad you're feeling good! I've noted your mood. Let's make the most of it."
			resp.Sentiment, resp.Category = SentimentPositive, CategoryReflection
		default:
			resp.Text = "Thanks for checking in. I've noted your mood."
			resp.Sentiment, resp.Category = SentimentNeutral, CategoryReflection
		}

	default:
		resp.Text, resp.Sentiment, resp.Category = conversational(in.Utterance)
	}

	resp.Text = prefix + resp.Text
	return resp
}

func conversational(utterance string) (string, Sentiment, Category) {
	lower := strings.ToLower(utterance)

	switch {
	case greetingRe.MatchString(lower):
		return "Hello! I'm doing great, thanks for asking. How can I help you today? 🤗",
			SentimentPositive, CategoryGeneral
	case strings.Contains(lower, "thank"):
		return "You're very welcome! I'm always here when you need me. 💫",
			SentimentPositive, CategoryGeneral
	case strings.Contains(lower, "stressed") || strings.Contains(lower, "overwhelmed"):
		return "That sounds like a lot, and it's completely valid. Breaking things down usually helps. Want me to help you prioritize your tasks? 🌱",
			SentimentPositive, CategoryEmotionalSupport
	}

	return "I'm listening! Tell me more about what you'd like to work on. I can set reminders, track tasks, schedule events, or just chat. 💙",
		SentimentNeutral, CategoryGeneral
}

// timePhrase makes a raw fragment read naturally after a verb: bare clock
// times get "at", bare weekdays get "on".
func timePhrase(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	if unicode.IsDigit(rune(fragment[0])) {
		return "at " + fragment
	}
	if weekdayRe.MatchString(fragment) {
		return "on " + fragment
	}
	return fragment
}
