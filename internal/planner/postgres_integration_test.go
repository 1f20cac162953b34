//go:build integration

package planner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/chronomate/chronomate/internal/action"
	"github.com/chronomate/chronomate/internal/database"
	"github.com/chronomate/chronomate/internal/intent"
	"github.com/chronomate/chronomate/migrations"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "chronomate_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/chronomate_test?sslmode=disable", host, port.Port())
	require.NoError(t, database.RunMigrations(dsn, migrations.FS))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func createUser(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, 'x')`, id, id.String()+"@example.com")
	require.NoError(t, err)
	return id
}

func TestPostgresRepository(t *testing.T) {
	pool := setupPostgres(t)
	svc := NewService(NewRepository(pool), nil)
	exec := NewExecutor(svc)
	ctx := context.Background()
	userID := createUser(t, pool)

	t.Run("tasks", func(t *testing.T) {
		due := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Microsecond)
		high, err := svc.CreateTask(ctx, userID, CreateTaskRequest{Title: "urgent", Priority: intent.PriorityHigh, DueDate: &due, Tags: []string{"work"}})
		require.NoError(t, err)
		_, err = svc.CreateTask(ctx, userID, CreateTaskRequest{Title: "later", Priority: intent.PriorityLow})
		require.NoError(t, err)

		tasks, err := svc.ListTasks(ctx, userID, TaskQuery{})
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "urgent", tasks[0].Title)
		assert.Equal(t, []string{"work"}, tasks[0].Tags)

		done, err := svc.CompleteTask(ctx, userID, high.ID)
		require.NoError(t, err)
		assert.True(t, done.Completed)
		require.NotNil(t, done.CompletedAt)

		ins, err := svc.Insights(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 2, ins.TotalTasks)
		assert.Equal(t, 50, ins.WeeklyCompletionRate)

		assert.ErrorIs(t, svc.DeleteTask(ctx, uuid.New(), high.ID), ErrNotFound)
		assert.NoError(t, svc.DeleteTask(ctx, userID, high.ID))
	})

	t.Run("reminders with repeat", func(t *testing.T) {
		r, err := svc.CreateReminder(ctx, userID, CreateReminderRequest{
			Title:  "water",
			Repeat: &RepeatRule{Type: intent.CadenceHours, Interval: 2},
		})
		require.NoError(t, err)

		got, err := NewRepository(pool).GetReminder(ctx, userID, r.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Repeat)
		assert.Equal(t, intent.CadenceHours, got.Repeat.Type)
		assert.Equal(t, 2, got.Repeat.Interval)

		snoozed, err := svc.SnoozeReminder(ctx, userID, r.ID, 5)
		require.NoError(t, err)
		assert.True(t, snoozed.Snoozed)

		_, err = svc.SnoozeReminder(ctx, uuid.New(), r.ID, 5)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("actions", func(t *testing.T) {
		outcomes := exec.Execute(ctx, userID, []action.Action{
			{Kind: intent.KindCreateReminder, Data: action.Data{Title: "call mom", Time: "in 10 minutes"}},
			{Kind: intent.KindScheduleEvent, Data: action.Data{Title: "team sync", Time: "tomorrow"}},
			{Kind: intent.KindUpdateMood, Data: action.Data{Mood: intent.MoodTired}},
		})
		for _, o := range outcomes {
			require.True(t, o.OK, o.Error)
		}

		events, err := svc.ListEvents(ctx, userID, EventFilter{})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, time.Hour, events[0].End.Sub(events[0].Start))

		state, err := svc.Mood(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, intent.MoodTired, state.Current)
		assert.Len(t, state.History, 1)
	})

	t.Run("profile and habits", func(t *testing.T) {
		tz := "Asia/Tokyo"
		_, err := svc.UpdateProfile(ctx, userID, UpdateProfileRequest{Timezone: &tz, Preferences: map[string]any{"voice": true}})
		require.NoError(t, err)

		p, err := svc.Profile(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "Asia/Tokyo", p.Timezone)
		assert.Equal(t, intent.MoodTired, p.Mood)
		assert.Equal(t, true, p.Preferences["voice"])

		h, err := svc.CreateHabit(ctx, userID, CreateHabitRequest{Name: "read", Frequency: "weekly"})
		require.NoError(t, err)
		h, err = svc.CompleteHabit(ctx, userID, h.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, h.Streak)

		habits, err := svc.ListHabits(ctx, userID)
		require.NoError(t, err)
		require.Len(t, habits, 1)
		assert.NotNil(t, habits[0].LastCompleted)
	})
}
