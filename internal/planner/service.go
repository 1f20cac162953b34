package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/chronomate/chronomate/internal/intent"
)

const (
	moodRetention         = 30 // days
	defaultReminderOffset = 60 * time.Second
	defaultEventLength    = time.Hour
)

var ErrInvalidInput = errors.New("invalid input")

// Domain event types emitted after successful mutations.
const (
	EventTaskCreated       = "task.created"
	EventTaskCompleted     = "task.completed"
	EventTaskDeleted       = "task.deleted"
	EventEventCreated      = "event.created"
	EventEventDeleted      = "event.deleted"
	EventReminderCreated   = "reminder.created"
	EventReminderSnoozed   = "reminder.snoozed"
	EventReminderCompleted = "reminder.completed"
	EventMoodUpdated       = "mood.updated"
	EventHabitCreated      = "habit.created"
	EventHabitCompleted    = "habit.completed"
)

// EventSink receives domain events. Emit must not block for long; failures
// are the sink's to log.
type EventSink interface {
	Emit(ctx context.Context, userID uuid.UUID, eventType string, payload any)
}

// TaskQuery is the caller-facing task filter.
type TaskQuery struct {
	Completed *bool
	Category  string
	DueToday  bool
}

type Service struct {
	repo Repository
	sink EventSink
	now  func() time.Time
}

// NewService creates a Service. sink may be nil.
func NewService(repo Repository, sink EventSink) *Service {
	return &Service{repo: repo, sink: sink, now: time.Now}
}

func (s *Service) emit(ctx context.Context, userID uuid.UUID, eventType string, payload any) {
	if s.sink != nil {
		s.sink.Emit(ctx, userID, eventType, payload)
	}
}

// Tasks

func (s *Service) CreateTask(ctx context.Context, userID uuid.UUID, req CreateTaskRequest) (*Task, error) {
	t := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Category:    req.Category,
		Tags:        req.Tags,
		CreatedAt:   s.now().UTC(),
	}
	if !t.Priority.Valid() {
		t.Priority = intent.PriorityMedium
	}
	if t.Category == "" {
		t.Category = "general"
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}

	if err := s.repo.CreateTask(ctx, t); err != nil {
		return nil, err
	}
	s.emit(ctx, userID, EventTaskCreated, t)
	return t, nil
}

func (s *Service) ListTasks(ctx context.Context, userID uuid.UUID, q TaskQuery) ([]*Task, error) {
	f := TaskFilter{Completed: q.Completed, Category: q.Category}
	if q.DueToday {
		now := s.now().In(s.Location(ctx, userID))
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 0, 1)
		f.DueFrom, f.DueTo = &start, &end
	}
	return s.repo.ListTasks(ctx, userID, f)
}

func (s *Service) CompleteTask(ctx context.Context, userID, id uuid.UUID) (*Task, error) {
	t, err := s.repo.CompleteTask(ctx, userID, id, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.emit(ctx, userID, EventTaskCompleted, t)
	return t, nil
}

func (s *Service) DeleteTask(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.DeleteTask(ctx, userID, id); err != nil {
		return err
	}
	s.emit(ctx, userID, EventTaskDeleted, map[string]string{"id": id.String()})
	return nil
}

// Insights summarizes task completion over the last week and overall.
func (s *Service) Insights(ctx context.Context, userID uuid.UUID) (*Insights, error) {
	return s.repo.TaskInsights(ctx, userID, s.now().UTC())
}

// Events

func (s *Service) CreateEvent(ctx context.Context, userID uuid.UUID, req CreateEventRequest) (*Event, error) {
	end := req.Start.Add(defaultEventLength)
	if req.End != nil {
		if req.End.Before(req.Start) {
			return nil, fmt.Errorf("%w: event ends before it starts", ErrInvalidInput)
		}
		end = *req.End
	}

	category := req.Category
	if category == "" {
		category = EventPersonal
	}

	e := &Event{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Start:       req.Start,
		End:         end,
		AllDay:      req.AllDay,
		Category:    category,
		Color:       category.Color(),
		Location:    req.Location,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.CreateEvent(ctx, e); err != nil {
		return nil, err
	}
	s.emit(ctx, userID, EventEventCreated, e)
	return e, nil
}

func (s *Service) ListEvents(ctx context.Context, userID uuid.UUID, f EventFilter) ([]*Event, error) {
	return s.repo.ListEvents(ctx, userID, f)
}

func (s *Service) DeleteEvent(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.DeleteEvent(ctx, userID, id); err != nil {
		return err
	}
	s.emit(ctx, userID, EventEventDeleted, map[string]string{"id": id.String()})
	return nil
}

// Reminders

func (s *Service) CreateReminder(ctx context.Context, userID uuid.UUID, req CreateReminderRequest) (*Reminder, error) {
	now := s.now().UTC()

	scheduled := now.Add(defaultReminderOffset)
	if req.ScheduledTime != nil {
		scheduled = *req.ScheduledTime
	}

	r := &Reminder{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         req.Title,
		Description:   req.Description,
		ScheduledTime: scheduled,
		Priority:      req.Priority,
		Category:      req.Category,
		Repeat:        req.Repeat,
		CreatedAt:     now,
	}
	if !r.Priority.Valid() {
		r.Priority = intent.PriorityMedium
	}
	if r.Category == "" {
		r.Category = "general"
	}
	if r.Repeat != nil && r.Repeat.Interval < 1 {
		r.Repeat.Interval = 1
	}

	if err := s.repo.CreateReminder(ctx, r); err != nil {
		return nil, err
	}
	s.emit(ctx, userID, EventReminderCreated, r)
	return r, nil
}

func (s *Service) ListReminders(ctx context.Context, userID uuid.UUID, completed *bool) ([]*Reminder, error) {
	return s.repo.ListReminders(ctx, userID, completed)
}

func (s *Service) SnoozeReminder(ctx context.Context, userID, id uuid.UUID, minutes int) (*Reminder, error) {
	if minutes < 1 {
		return nil, fmt.Errorf("%w: snooze minutes must be positive", ErrInvalidInput)
	}

	r, err := s.repo.GetReminder(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	until := s.now().UTC().Add(time.Duration(minutes) * time.Minute)
	r.Snoozed = true
	r.SnoozeUntil = &until

	if err := s.repo.UpdateReminder(ctx, r); err != nil {
		return nil, err
	}
	s.emit(ctx, userID, EventReminderSnoozed, r)
	return r, nil
}

// CompleteReminder marks a one-off reminder done. A repeating reminder is
// moved to its next occurrence after now instead, until its rule ends.
func (s *Service) CompleteReminder(ctx context.Context, userID, id uuid.UUID) (*Reminder, error) {
	r, err := s.repo.GetReminder(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	r.Snoozed = false
	r.SnoozeUntil = nil

	if next, ok := nextOccurrence(r, now); ok {
		r.ScheduledTime = next
	} else {
		r.Completed = true
	}

	if err := s.repo.UpdateReminder(ctx, r); err != nil {
		return nil, err
	}
	s.emit(ctx, userID, EventReminderCompleted, r)
	return r, nil
}

func nextOccurrence(r *Reminder, now time.Time) (time.Time, bool) {
	if r.Repeat == nil {
		return time.Time{}, false
	}
	next := r.ScheduledTime
	for i := 0; i < 100000; i++ {
		var ok bool
		next, ok = r.Repeat.Next(next)
		if !ok {
			return time.Time{}, false
		}
		if next.After(now) {
			return next, true
		}
	}
	return time.Time{}, false
}

// DueReminders lists pending reminders whose time has come. It only
// reports; delivery belongs to the caller.
func (s *Service) DueReminders(ctx context.Context, userID uuid.UUID) ([]*Reminder, error) {
	pending := false
	all, err := s.repo.ListReminders(ctx, userID, &pending)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	due := make([]*Reminder, 0, len(all))
	for _, r := range all {
		if r.Due(now) {
			due = append(due, r)
		}
	}
	return due, nil
}

// Profile and mood

// Profile returns the stored profile or a neutral default.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &Profile{
			UserID:      userID,
			Mood:        intent.MoodNeutral,
			Timezone:    "UTC",
			Preferences: map[string]any{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	if p.Preferences == nil {
		p.Preferences = map[string]any{}
	}
	return p, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*Profile, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, fmt.Errorf("%w: unknown time zone %q", ErrInvalidInput, *req.Timezone)
		}
		p.Timezone = *req.Timezone
	}
	for k, v := range req.Preferences {
		p.Preferences[k] = v
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Location returns the user's time zone, UTC when unknown.
func (s *Service) Location(ctx context.Context, userID uuid.UUID) *time.Location {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		slog.Warn("loading profile for time zone", "user_id", userID, "error", err)
		return time.UTC
	}
	return p.Location()
}

// UpdateMood sets the current mood, appends it to the history and drops
// history older than 30 days.
func (s *Service) UpdateMood(ctx context.Context, userID uuid.UUID, mood intent.Mood, notes string) (*MoodEntry, error) {
	if intent.ParseMood(string(mood)) != mood {
		return nil, fmt.Errorf("%w: unknown mood %q", ErrInvalidInput, mood)
	}

	now := s.now().UTC()
	entry := &MoodEntry{
		ID:         uuid.New(),
		UserID:     userID,
		Mood:       mood,
		Notes:      notes,
		RecordedAt: now,
	}

	if err := s.repo.RecordMood(ctx, entry, now.AddDate(0, 0, -moodRetention)); err != nil {
		return nil, err
	}
	s.emit(ctx, userID, EventMoodUpdated, entry)
	return entry, nil
}

func (s *Service) Mood(ctx context.Context, userID uuid.UUID) (*MoodState, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.MoodHistory(ctx, userID, s.now().UTC().AddDate(0, 0, -moodRetention))
	if err != nil {
		return nil, err
	}
	return &MoodState{Current: p.Mood, History: history}, nil
}

// Habits

func (s *Service) CreateHabit(ctx context.Context, userID uuid.UUID, req CreateHabitRequest) (*Habit, error) {
	h := &Habit{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      req.Name,
		Frequency: req.Frequency,
		CreatedAt: s.now().UTC(),
	}
	if h.Frequency == "" {
		h.Frequency = "daily"
	}

	if err := s.repo.CreateHabit(ctx, h); err != nil {
		return nil, err
	}
	s.emit(ctx, userID, EventHabitCreated, h)
	return h, nil
}

func (s *Service) ListHabits(ctx context.Context, userID uuid.UUID) ([]*Habit, error) {
	return s.repo.ListHabits(ctx, userID)
}

// CompleteHabit records a completion. Completing again in the same period
// is a no-op; completing in the following period extends the streak; a
// longer gap restarts it at one.
func (s *Service) CompleteHabit(ctx context.Context, userID, id uuid.UUID) (*Habit, error) {
	h, err := s.repo.GetHabit(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	loc := s.Location(ctx, userID)
	now := s.now().In(loc)

	if h.LastCompleted != nil {
		switch periodIndex(h.Frequency, now) - periodIndex(h.Frequency, h.LastCompleted.In(loc)) {
		case 0:
			return h, nil
		case 1:
			h.Streak++
		default:
			h.Streak = 1
		}
	} else {
		h.Streak = 1
	}

	at := now.UTC()
	h.LastCompleted = &at

	if err := s.repo.UpdateHabit(ctx, h); err != nil {
		return nil, err
	}
	s.emit(ctx, userID, EventHabitCompleted, h)
	return h, nil
}

// periodIndex numbers calendar periods so consecutive periods differ by one.
func periodIndex(frequency string, t time.Time) int {
	days := int(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400)
	switch frequency {
	case "weekly":
		// 1970-01-01 was a Thursday; shift so weeks start on Monday.
		return (days + 3) / 7
	case "monthly":
		return t.Year()*12 + int(t.Month())
	default:
		return days
	}
}

func priorityRank(p intent.Priority) int {
	switch p {
	case intent.PriorityHigh:
		return 3
	case intent.PriorityMedium:
		return 2
	default:
		return 1
	}
}

func completionRate(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
