// Package planner stores tasks, events, reminders, moods and habits, and
// executes assistant actions against them.
package planner

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/chronomate/chronomate/internal/intent"
)

var ErrNotFound = errors.New("not found")

type Task struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Completed   bool            `json:"completed"`
	Priority    intent.Priority `json:"priority"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// EventCategory groups calendar events; each has a display color.
type EventCategory string

const (
	EventWork     EventCategory = "work"
	EventPersonal EventCategory = "personal"
	EventHealth   EventCategory = "health"
	EventSocial   EventCategory = "social"
	EventOther    EventCategory = "other"
)

var eventColors = map[EventCategory]string{
	EventWork:     "#3b82f6",
	EventPersonal: "#10b981",
	EventHealth:   "#f59e0b",
	EventSocial:   "#8b5cf6",
	EventOther:    "#6b7280",
}

// Color returns the display color, falling back to the "other" color.
func (c EventCategory) Color() string {
	if col, ok := eventColors[c]; ok {
		return col
	}
	return eventColors[EventOther]
}

type Event struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	AllDay      bool          `json:"all_day"`
	Category    EventCategory `json:"category"`
	Color       string        `json:"color"`
	Location    string        `json:"location,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// RepeatRule is a reminder's recurrence.
type RepeatRule struct {
	Type     intent.Cadence `json:"type"`
	Interval int            `json:"interval"`
	EndDate  *time.Time     `json:"end_date,omitempty"`
}

// Next returns the occurrence after t, or false when the rule has ended.
func (r RepeatRule) Next(t time.Time) (time.Time, bool) {
	n := r.Interval
	if n < 1 {
		n = 1
	}

	var next time.Time
	switch r.Type {
	case intent.CadenceMinutes:
		next = t.Add(time.Duration(n) * time.Minute)
	case intent.CadenceHours:
		next = t.Add(time.Duration(n) * time.Hour)
	case intent.CadenceDaily:
		next = t.AddDate(0, 0, n)
	case intent.CadenceWeekly:
		next = t.AddDate(0, 0, 7*n)
	case intent.CadenceMonthly:
		next = t.AddDate(0, n, 0)
	default:
		return time.Time{}, false
	}

	if r.EndDate != nil && next.After(*r.EndDate) {
		return time.Time{}, false
	}
	return next, true
}

type Reminder struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	ScheduledTime time.Time       `json:"scheduled_time"`
	Completed     bool            `json:"completed"`
	Snoozed       bool            `json:"snoozed"`
	SnoozeUntil   *time.Time      `json:"snooze_until,omitempty"`
	Priority      intent.Priority `json:"priority"`
	Category      string          `json:"category"`
	Repeat        *RepeatRule     `json:"repeat,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Due reports whether the reminder should fire at now.
func (r *Reminder) Due(now time.Time) bool {
	if r.Completed || r.ScheduledTime.After(now) {
		return false
	}
	if r.Snoozed && r.SnoozeUntil != nil && r.SnoozeUntil.After(now) {
		return false
	}
	return true
}

type MoodEntry struct {
	ID         uuid.UUID   `json:"id"`
	UserID     uuid.UUID   `json:"user_id"`
	Mood       intent.Mood `json:"mood"`
	Notes      string      `json:"notes,omitempty"`
	RecordedAt time.Time   `json:"recorded_at"`
}

// MoodState is the current mood plus its recent history.
type MoodState struct {
	Current intent.Mood  `json:"current"`
	History []*MoodEntry `json:"history"`
}

type Habit struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Name          string     `json:"name"`
	Frequency     string     `json:"frequency"`
	Streak        int        `json:"streak"`
	LastCompleted *time.Time `json:"last_completed,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Profile holds per-user assistant settings.
type Profile struct {
	UserID      uuid.UUID      `json:"user_id"`
	Mood        intent.Mood    `json:"mood"`
	Timezone    string         `json:"timezone"`
	Preferences map[string]any `json:"preferences"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Location resolves the profile's time zone, defaulting to UTC.
func (p *Profile) Location() *time.Location {
	if p == nil || p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type Insights struct {
	WeeklyCompletionRate int `json:"weekly_completion_rate"`
	TotalTasks           int `json:"total_tasks"`
	CompletedTasks       int `json:"completed_tasks"`
	PendingTasks         int `json:"pending_tasks"`
	OverdueTasks         int `json:"overdue_tasks"`
}

// TaskFilter narrows ListTasks. DueFrom/DueTo bound the due date, half-open.
type TaskFilter struct {
	Completed *bool
	Category  string
	DueFrom   *time.Time
	DueTo     *time.Time
}

// EventFilter narrows ListEvents by start time, inclusive.
type EventFilter struct {
	From     *time.Time
	To       *time.Time
	Category string
}

// Request bodies.

type CreateTaskRequest struct {
	Title       string          `json:"title" validate:"required,max=500"`
	Description string          `json:"description" validate:"max=2000"`
	Priority    intent.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time      `json:"due_date"`
	Category    string          `json:"category" validate:"max=100"`
	Tags        []string        `json:"tags" validate:"max=20,dive,max=50"`
}

type CreateEventRequest struct {
	Title       string        `json:"title" validate:"required,max=500"`
	Description string        `json:"description" validate:"max=2000"`
	Start       time.Time     `json:"start" validate:"required"`
	End         *time.Time    `json:"end"`
	AllDay      bool          `json:"all_day"`
	Category    EventCategory `json:"category" validate:"omitempty,oneof=work personal health social other"`
	Location    string        `json:"location" validate:"max=500"`
}

type CreateReminderRequest struct {
	Title         string          `json:"title" validate:"required,max=500"`
	Description   string          `json:"description" validate:"max=2000"`
	ScheduledTime *time.Time      `json:"scheduled_time"`
	Priority      intent.Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Category      string          `json:"category" validate:"max=100"`
	Repeat        *RepeatRule     `json:"repeat"`
}

type SnoozeRequest struct {
	Minutes int `json:"minutes" validate:"required,min=1,max=1440"`
}

type UpdateMoodRequest struct {
	Mood  intent.Mood `json:"mood" validate:"required,oneof=neutral happy sad stressed tired"`
	Notes string      `json:"notes" validate:"max=1000"`
}

type CreateHabitRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Frequency string `json:"frequency" validate:"omitempty,oneof=daily weekly monthly"`
}

type UpdateProfileRequest struct {
	Timezone    *string        `json:"timezone" validate:"omitempty,timezone"`
	Preferences map[string]any `json:"preferences"`
}
