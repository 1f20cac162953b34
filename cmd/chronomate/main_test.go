package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronomate/chronomate/internal/intent"
	"github.com/chronomate/chronomate/internal/planner"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseCmd(t *testing.T) {
	out, err := execute(t, "", "parse", "--now", "2026-03-02T10:00:00Z", "remind", "me", "to", "call", "mom", "in", "10", "minutes")
	require.NoError(t, err)

	var got parseOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, intent.KindCreateReminder, got.Intent.Kind)
	assert.Equal(t, "call mom", got.Intent.Content)
	require.Len(t, got.Actions, 1)
	require.NotNil(t, got.Resolved)
	assert.Equal(t, "2026-03-02T10:10:00Z", got.Resolved.UTC().Format("2006-01-02T15:04:05Z"))
}

func TestParseCmd_General(t *testing.T) {
	out, err := execute(t, "", "parse", "hello")
	require.NoError(t, err)

	var got parseOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, intent.KindGeneral, got.Intent.Kind)
	assert.Empty(t, got.Actions)
	assert.Nil(t, got.Resolved)
}

func TestResolveCmd(t *testing.T) {
	out, err := execute(t, "", "resolve", "--now", "2026-03-02T10:00:00Z", "tomorrow")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-03T09:00:00Z\n", out)

	_, err = execute(t, "", "resolve", "--now", "yesterday", "tomorrow")
	assert.ErrorContains(t, err, "invalid --now")
}

func TestChatCmd(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	out, err := execute(t, "hi\n\nadd buy milk to my todo list\nexit\nnever read\n", "chat")
	require.NoError(t, err)

	assert.Contains(t, out, "Hello!")
	assert.Contains(t, out, `Added "buy milk"`)
	assert.Contains(t, out, `✓ task "buy milk"`)
	assert.NotContains(t, out, "never read")
}

func TestSession_TracksMoodAndTasks(t *testing.T) {
	s := newSession(nil, true)
	ctx := context.Background()

	_, outcomes := s.turn(ctx, "I'm feeling tired")
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].OK)

	resp, _ := s.turn(ctx, "add file taxes to my todo list")
	assert.Equal(t, intent.MoodTired, s.conv.Mood)
	assert.True(t, strings.HasPrefix(resp.Text, "You've been working hard"))

	s.turn(ctx, "thanks")
	assert.Equal(t, []string{"file taxes"}, s.conv.RecentTasks)
	assert.Equal(t, 6, s.conv.History.Len())
}

func TestSession_MoodPhrasesAreChatByDefault(t *testing.T) {
	s := newSession(nil, false)
	ctx := context.Background()

	resp, outcomes := s.turn(ctx, "Hi! I'm good, how are you?")
	assert.Empty(t, outcomes)
	assert.Contains(t, resp.Text, "Hello!")

	state, err := s.planner.Mood(ctx, s.userID)
	require.NoError(t, err)
	assert.Equal(t, intent.MoodNeutral, state.Current)
	assert.Empty(t, state.History)
}

func TestChatCmd_TrackMood(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	out, err := execute(t, "I feel exhausted\nexit\n", "chat", "--track-mood")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ mood set to tired")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "✗ create_task: title required", describe(planner.Outcome{Kind: intent.KindCreateTask, Error: "title required"}))
	assert.Equal(t, "✓ update_mood", describe(planner.Outcome{Kind: intent.KindUpdateMood, OK: true}))
}
