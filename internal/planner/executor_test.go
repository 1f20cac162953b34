package planner

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronomate/chronomate/internal/action"
	"github.com/chronomate/chronomate/internal/intent"
)

// Wednesday 2026-10-14 10:00:00 UTC.
var fixedNow = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

type recordingSink struct {
	events []string
}

func (r *recordingSink) Emit(_ context.Context, _ uuid.UUID, eventType string, _ any) {
	r.events = append(r.events, eventType)
}

func newTestExecutor(t *testing.T) (*Executor, *Service, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	svc := NewService(NewMemoryRepository(), sink)
	svc.now = func() time.Time { return fixedNow }
	exec := NewExecutor(svc)
	exec.now = func() time.Time { return fixedNow }
	return exec, svc, sink
}

func TestExecutor_Reminder(t *testing.T) {
	exec, _, sink := newTestExecutor(t)
	userID := uuid.New()

	out := exec.Execute(context.Background(), userID, []action.Action{{
		Kind: intent.KindCreateReminder,
		Data: action.Data{
			Title:    "call mom",
			Time:     "at 5 pm",
			Priority: intent.PriorityHigh,
			Repeat:   &intent.Repeat{Cadence: intent.CadenceDaily, Interval: 1},
		},
	}})

	require.Len(t, out, 1)
	require.True(t, out[0].OK, out[0].Error)
	r := out[0].Result.(*Reminder)
	assert.Equal(t, "call mom", r.Title)
	assert.True(t, r.ScheduledTime.Equal(time.Date(2026, 10, 14, 17, 0, 0, 0, time.UTC)))
	assert.Equal(t, intent.PriorityHigh, r.Priority)
	assert.Equal(t, "general", r.Category)
	assert.Equal(t, &RepeatRule{Type: intent.CadenceDaily, Interval: 1}, r.Repeat)
	assert.Equal(t, []string{EventReminderCreated}, sink.events)
}

func TestExecutor_ReminderDefaultsToOneMinute(t *testing.T) {
	exec, _, _ := newTestExecutor(t)

	out := exec.Execute(context.Background(), uuid.New(), []action.Action{{
		Kind: intent.KindCreateReminder,
		Data: action.Data{Title: "stretch"},
	}})

	require.True(t, out[0].OK)
	r := out[0].Result.(*Reminder)
	assert.True(t, r.ScheduledTime.Equal(fixedNow.Add(time.Minute)))
	assert.Equal(t, intent.PriorityMedium, r.Priority)
}

func TestExecutor_Task(t *testing.T) {
	exec, _, _ := newTestExecutor(t)
	userID := uuid.New()

	out := exec.Execute(context.Background(), userID, []action.Action{
		{Kind: intent.KindCreateTask, Data: action.Data{Title: "buy milk"}},
		{Kind: intent.KindCreateTask, Data: action.Data{Title: "file taxes", Time: "tomorrow"}},
		{Kind: intent.KindCreateTask, Data: action.Data{Title: "call bank", DueDate: "in 2 hours"}},
	})

	require.Len(t, out, 3)
	for _, o := range out {
		require.True(t, o.OK, o.Error)
	}
	assert.Nil(t, out[0].Result.(*Task).DueDate)
	assert.True(t, out[1].Result.(*Task).DueDate.Equal(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)))
	assert.True(t, out[2].Result.(*Task).DueDate.Equal(fixedNow.Add(2*time.Hour)))
}

func TestExecutor_Event(t *testing.T) {
	exec, _, _ := newTestExecutor(t)

	out := exec.Execute(context.Background(), uuid.New(), []action.Action{
		{Kind: intent.KindScheduleEvent, Data: action.Data{Title: "dentist", Time: "friday at 3pm"}},
		{Kind: intent.KindScheduleEvent, Data: action.Data{Title: "team lunch"}},
	})

	require.True(t, out[0].OK, out[0].Error)
	e := out[0].Result.(*Event)
	assert.True(t, e.Start.Equal(time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Hour, e.End.Sub(e.Start))
	assert.Equal(t, EventPersonal, e.Category)
	assert.Equal(t, "#10b981", e.Color)

	require.True(t, out[1].OK, out[1].Error)
	assert.True(t, out[1].Result.(*Event).Start.Equal(fixedNow.Add(time.Minute)))
}

func TestExecutor_Mood(t *testing.T) {
	exec, svc, _ := newTestExecutor(t)
	userID := uuid.New()

	out := exec.Execute(context.Background(), userID, []action.Action{{
		Kind: intent.KindUpdateMood,
		Data: action.Data{Mood: intent.MoodStressed, Notes: "I'm so stressed"},
	}})
	require.True(t, out[0].OK, out[0].Error)

	state, err := svc.Mood(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, intent.MoodStressed, state.Current)
	require.Len(t, state.History, 1)
	assert.Equal(t, "I'm so stressed", state.History[0].Notes)
}

func TestExecutor_Failures(t *testing.T) {
	exec, _, sink := newTestExecutor(t)

	out := exec.Execute(context.Background(), uuid.New(), []action.Action{
		{Kind: intent.KindCreateReminder, Data: action.Data{Title: "  "}},
		{Kind: intent.KindCreateTask, Data: action.Data{Title: "x", Priority: "extreme"}},
		{Kind: intent.KindScheduleEvent, Data: action.Data{Title: "x", Category: "party"}},
		{Kind: intent.KindUpdateMood, Data: action.Data{Mood: "ecstatic"}},
		{Kind: "launch_rocket"},
		{Kind: intent.KindCreateTask, Data: action.Data{Title: "still runs"}},
	})

	require.Len(t, out, 6)
	for _, o := range out[:5] {
		assert.False(t, o.OK)
		assert.Contains(t, o.Error, "invalid input")
	}
	assert.True(t, out[5].OK)
	assert.Equal(t, []string{EventTaskCreated}, sink.events)
}

func TestExecutor_UsesUserTimezone(t *testing.T) {
	exec, svc, _ := newTestExecutor(t)
	userID := uuid.New()

	tz := "America/Sao_Paulo"
	_, err := svc.UpdateProfile(context.Background(), userID, UpdateProfileRequest{Timezone: &tz})
	require.NoError(t, err)

	out := exec.Execute(context.Background(), userID, []action.Action{{
		Kind: intent.KindCreateReminder,
		Data: action.Data{Title: "call mom", Time: "5 pm"},
	}})

	require.True(t, out[0].OK, out[0].Error)
	// 17:00 in UTC-3 is 20:00 UTC.
	assert.True(t, out[0].Result.(*Reminder).ScheduledTime.Equal(time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC)))
}

func TestExecutor_Empty(t *testing.T) {
	exec, _, _ := newTestExecutor(t)
	out := exec.Execute(context.Background(), uuid.New(), nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
