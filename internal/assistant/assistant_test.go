package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronomate/chronomate/internal/intent"
)

type fakeBackend struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeBackend) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func TestHistory_EvictsOldestAtCapacity(t *testing.T) {
	conv := NewConversationContext("u1")
	for i := 0; i < 25; i++ {
		conv.AddToHistory(RoleUser, fmt.Sprintf("msg %d", i))
	}

	all := conv.History.All()
	require.Len(t, all, HistoryLimit)
	assert.Equal(t, HistoryLimit, conv.History.Len())
	assert.Equal(t, "msg 5", all[0].Content)
	assert.Equal(t, "msg 24", all[HistoryLimit-1].Content)
}

func TestHistory_ZeroValue(t *testing.T) {
	var h History
	assert.Empty(t, h.All())

	h.Append(Entry{Role: RoleAssistant, Content: "hello"})
	assert.Equal(t, []Entry{{Role: RoleAssistant, Content: "hello"}}, h.All())
}

func TestHistory_AllReturnsCopy(t *testing.T) {
	var h History
	h.Append(Entry{Content: "a"})

	all := h.All()
	all[0].Content = "changed"
	assert.Equal(t, "a", h.All()[0].Content)
}

func TestMoodPrefixes_CoverEveryMood(t *testing.T) {
	for _, m := range intent.Moods {
		prefix, ok := moodPrefix(m)
		assert.True(t, ok, "missing prefix for mood %q", m)
		if m != intent.MoodNeutral {
			assert.NotEmpty(t, prefix, "mood %q", m)
		}
	}

	_, ok := moodPrefix("ecstatic")
	assert.False(t, ok)
}

func TestProcess_Templated(t *testing.T) {
	a := New(nil, nil)

	tests := []struct {
		name      string
		utterance string
		contains  string
		sentiment Sentiment
		category  Category
		actions   int
	}{
		{"reminder", "remind me to call mom at 5 pm", "remind you to call mom at 5 pm", SentimentPositive, CategoryReminder, 1},
		{"reminder with repeat", "remind me to stretch every 2 hours", "stretch every 2 hours", SentimentPositive, CategoryReminder, 1},
		{"task", "add buy milk to my todo list", `Added "buy milk" to your tasks`, SentimentPositive, CategoryTask, 1},
		{"event", "schedule team sync for tomorrow", `Scheduled "team sync" tomorrow`, SentimentPositive, CategoryGeneral, 1},
		{"event with weekday", "book a haircut on friday at 3pm", `"haircut" on friday at 3pm`, SentimentPositive, CategoryGeneral, 1},
		{"event without time", "add team lunch to my calendar", `Added "team lunch" to your calendar`, SentimentPositive, CategoryGeneral, 1},
		{"i'm phrasing stays chat", "Hi! I'm good, how are you?", "Hello!", SentimentPositive, CategoryGeneral, 0},
		{"thanks with mood word", "thanks, I'm fine", "welcome", SentimentPositive, CategoryGeneral, 0},
		{"overwhelm with i'm", "I'm so overwhelmed with work", "prioritize", SentimentPositive, CategoryEmotionalSupport, 0},
		{"mood word is not a mood", "I'm down to meet at 5pm", "I'm listening", SentimentNeutral, CategoryGeneral, 0},
		{"greeting", "hi there", "Hello!", SentimentPositive, CategoryGeneral, 0},
		{"how are you", "How are you today?", "Hello!", SentimentPositive, CategoryGeneral, 0},
		{"thanks", "thanks a lot", "welcome", SentimentPositive, CategoryGeneral, 0},
		{"overwhelm", "everything is overwhelming, so overwhelmed", "prioritize", SentimentPositive, CategoryEmotionalSupport, 0},
		{"default", "what's the capital of peru", "I'm listening", SentimentNeutral, CategoryGeneral, 0},
		{"hi inside a word", "this is history", "I'm listening", SentimentNeutral, CategoryGeneral, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := a.Process(context.Background(), NewConversationContext("u1"), tt.utterance)
			assert.Contains(t, resp.Text, tt.contains)
			assert.Equal(t, tt.sentiment, resp.Sentiment)
			assert.Equal(t, tt.category, resp.Category)
			assert.Len(t, resp.Actions, tt.actions)
			assert.False(t, resp.Generated)
		})
	}
}

func TestProcess_OptInMoodReports(t *testing.T) {
	a := New(intent.NewExtractor(append(intent.DefaultMatchers(), intent.MoodMatchers()...)), nil)

	tests := []struct {
		utterance string
		contains  string
		category  Category
	}{
		{"I'm so stressed", "feeling stressed", CategoryEmotionalSupport},
		{"I feel great", "feeling good", CategoryReflection},
		{"my mood is okay", "noted your mood", CategoryReflection},
	}
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			resp := a.Process(context.Background(), NewConversationContext("u1"), tt.utterance)
			assert.Equal(t, intent.KindUpdateMood, resp.Intent)
			assert.Contains(t, resp.Text, tt.contains)
			assert.Equal(t, tt.category, resp.Category)
			assert.Len(t, resp.Actions, 1)
		})
	}
}

func TestProcess_MoodPrefix(t *testing.T) {
	a := New(nil, nil)
	conv := NewConversationContext("u1")
	conv.Mood = intent.MoodTired

	resp := a.Process(context.Background(), conv, "add laundry to my todo list")
	tired, _ := moodPrefix(intent.MoodTired)
	assert.True(t, strings.HasPrefix(resp.Text, tired))

	conv.Mood = intent.MoodNeutral
	resp = a.Process(context.Background(), conv, "add laundry to my todo list")
	assert.True(t, strings.HasPrefix(resp.Text, "Added"))
}

func TestProcess_AlwaysHasText(t *testing.T) {
	a := New(nil, &fakeBackend{err: errors.New("down")})
	for _, u := range []string{"", "   ", "remind me to", "???", "I am fine", "schedule for"} {
		resp := a.Process(context.Background(), NewConversationContext("u1"), u)
		assert.NotEmpty(t, resp.Text, "utterance %q", u)
	}
}

func TestProcess_NilContextSkipsBackend(t *testing.T) {
	backend := &fakeBackend{reply: `{"text":"generated"}`}
	a := New(nil, backend)

	resp := a.Process(context.Background(), nil, "hello")
	assert.Empty(t, backend.prompts)
	assert.False(t, resp.Generated)
	assert.Contains(t, resp.Text, "Hello!")
}

func TestCompose_Generative(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		text      string
		sentiment Sentiment
		category  Category
		actions   int
	}{
		{
			name:      "strict json without actions keeps synthesized",
			reply:     `{"text":"On it!","sentiment":"positive","category":"reminder"}`,
			text:      "On it!",
			sentiment: SentimentPositive,
			category:  CategoryReminder,
			actions:   1,
		},
		{
			name:      "explicit empty actions",
			reply:     `{"text":"Noted.","actions":[],"sentiment":"neutral","category":"general"}`,
			text:      "Noted.",
			sentiment: SentimentNeutral,
			category:  CategoryGeneral,
			actions:   0,
		},
		{
			name:      "fenced json with trailing comma",
			reply:     "```json\n{\"text\": \"Okay!\", \"sentiment\": \"positive\",}\n```",
			text:      "Okay!",
			sentiment: SentimentPositive,
			category:  CategoryGeneral,
			actions:   1,
		},
		{
			name:      "plain text",
			reply:     "Sure, I will remind you.",
			text:      "Sure, I will remind you.",
			sentiment: SentimentNeutral,
			category:  CategoryGeneral,
			actions:   1,
		},
		{
			name:      "unknown enum values",
			reply:     `{"text":"Hey","sentiment":"ecstatic","category":"chitchat"}`,
			text:      "Hey",
			sentiment: SentimentNeutral,
			category:  CategoryGeneral,
			actions:   1,
		},
		{
			name:      "drops unknown action kinds",
			reply:     `{"text":"Done","actions":[{"type":"launch_rocket","data":{}},{"type":"create_task","data":{"title":"x"}}]}`,
			text:      "Done",
			sentiment: SentimentNeutral,
			category:  CategoryGeneral,
			actions:   1,
		},
		{
			name:      "missing text uses raw reply",
			reply:     `{"sentiment":"positive"}`,
			text:      `{"sentiment":"positive"}`,
			sentiment: SentimentPositive,
			category:  CategoryGeneral,
			actions:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(nil, &fakeBackend{reply: tt.reply})
			resp := a.Process(context.Background(), NewConversationContext("u1"), "remind me to call mom at 5 pm")

			assert.True(t, resp.Generated)
			assert.Equal(t, tt.text, resp.Text)
			assert.Equal(t, tt.sentiment, resp.Sentiment)
			assert.Equal(t, tt.category, resp.Category)
			assert.Len(t, resp.Actions, tt.actions)
			assert.Equal(t, intent.KindCreateReminder, resp.Intent)
		})
	}
}

func TestCompose_BackendFailureFallsBack(t *testing.T) {
	for name, backend := range map[string]*fakeBackend{
		"transport error":  {err: errors.New("connection refused")},
		"empty completion": {reply: "  \n"},
	} {
		t.Run(name, func(t *testing.T) {
			a := New(nil, backend)
			resp := a.Process(context.Background(), NewConversationContext("u1"), "add buy milk to my todo list")

			require.Len(t, backend.prompts, 1)
			assert.False(t, resp.Generated)
			assert.Equal(t, CategoryTask, resp.Category)
			assert.Contains(t, resp.Text, "buy milk")
		})
	}
}

func TestCompose_PromptCarriesContext(t *testing.T) {
	backend := &fakeBackend{reply: `{"text":"ok"}`}
	a := New(nil, backend)

	conv := NewConversationContext("u1")
	conv.Mood = intent.MoodStressed
	conv.RecentTasks = []string{"buy milk", "file taxes"}
	conv.AddToHistory(RoleUser, "hello")
	conv.AddToHistory(RoleAssistant, "hi, how can I help?")

	a.Process(context.Background(), conv, "what should I do first?")

	require.Len(t, backend.prompts, 1)
	prompt := backend.prompts[0]
	assert.Contains(t, prompt, "Current mood: stressed")
	assert.Contains(t, prompt, "Recent tasks: buy milk, file taxes")
	assert.Contains(t, prompt, "Habits: none")
	assert.Contains(t, prompt, "user: hello")
	assert.Contains(t, prompt, "assistant: hi, how can I help?")
	assert.Contains(t, prompt, `User message: "what should I do first?"`)
}

func TestWithoutBackend(t *testing.T) {
	backend := &fakeBackend{reply: `{"text":"generated"}`}
	a := New(nil, backend).WithoutBackend()

	resp := a.Process(context.Background(), NewConversationContext("u1"), "hello")
	assert.Empty(t, backend.prompts)
	assert.False(t, resp.Generated)
}

func TestParse(t *testing.T) {
	in, actions := New(nil, nil).Parse("how's the weather")
	assert.Equal(t, intent.KindGeneral, in.Kind)
	assert.Empty(t, actions)
}
