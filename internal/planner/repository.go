package planner

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists planner data. Lookups scoped to a user that find no
// row return ErrNotFound.
type Repository interface {
	CreateTask(ctx context.Context, t *Task) error
	ListTasks(ctx context.Context, userID uuid.UUID, f TaskFilter) ([]*Task, error)
	CompleteTask(ctx context.Context, userID, id uuid.UUID, at time.Time) (*Task, error)
	DeleteTask(ctx context.Context, userID, id uuid.UUID) error
	TaskInsights(ctx context.Context, userID uuid.UUID, now time.Time) (*Insights, error)

	CreateEvent(ctx context.Context, e *Event) error
	ListEvents(ctx context.Context, userID uuid.UUID, f EventFilter) ([]*Event, error)
	DeleteEvent(ctx context.Context, userID, id uuid.UUID) error

	CreateReminder(ctx context.Context, r *Reminder) error
	GetReminder(ctx context.Context, userID, id uuid.UUID) (*Reminder, error)
	ListReminders(ctx context.Context, userID uuid.UUID, completed *bool) ([]*Reminder, error)
	UpdateReminder(ctx context.Context, r *Reminder) error

	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpsertProfile(ctx context.Context, p *Profile) error
	RecordMood(ctx context.Context, entry *MoodEntry, pruneBefore time.Time) error
	MoodHistory(ctx context.Context, userID uuid.UUID, since time.Time) ([]*MoodEntry, error)

	CreateHabit(ctx context.Context, h *Habit) error
	GetHabit(ctx context.Context, userID, id uuid.UUID) (*Habit, error)
	ListHabits(ctx context.Context, userID uuid.UUID) ([]*Habit, error)
	UpdateHabit(ctx context.Context, h *Habit) error
}
