package planner

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository for the CLI and tests.
type MemoryRepository struct {
	mu        sync.RWMutex
	tasks     map[uuid.UUID]*Task
	events    map[uuid.UUID]*Event
	reminders map[uuid.UUID]*Reminder
	profiles  map[uuid.UUID]*Profile
	moods     []*MoodEntry
	habits    map[uuid.UUID]*Habit
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tasks:     make(map[uuid.UUID]*Task),
		events:    make(map[uuid.UUID]*Event),
		reminders: make(map[uuid.UUID]*Reminder),
		profiles:  make(map[uuid.UUID]*Profile),
		habits:    make(map[uuid.UUID]*Habit),
	}
}

func (m *MemoryRepository) CreateTask(_ context.Context, t *Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *MemoryRepository) ListTasks(_ context.Context, userID uuid.UUID, f TaskFilter) ([]*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Task, 0)
	for _, t := range m.tasks {
		if t.UserID != userID {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.DueFrom != nil && (t.DueDate == nil || t.DueDate.Before(*f.DueFrom)) {
			continue
		}
		if f.DueTo != nil && (t.DueDate == nil || !t.DueDate.Before(*f.DueTo)) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}

	sort.SliceStable(out, func(i, j int) bool { return taskLess(out[i], out[j]) })
	return out, nil
}

// taskLess orders by priority (high first), then due date (unset last),
// then creation time.
func taskLess(a, b *Task) bool {
	if pa, pb := priorityRank(a.Priority), priorityRank(b.Priority); pa != pb {
		return pa > pb
	}
	switch {
	case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
		return a.DueDate.Before(*b.DueDate)
	case a.DueDate != nil && b.DueDate == nil:
		return true
	case a.DueDate == nil && b.DueDate != nil:
		return false
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func (m *MemoryRepository) CompleteTask(_ context.Context, userID, id uuid.UUID, at time.Time) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, ErrNotFound
	}
	if !t.Completed {
		t.Completed = true
		t.CompletedAt = &at
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryRepository) DeleteTask(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *MemoryRepository) TaskInsights(_ context.Context, userID uuid.UUID, now time.Time) (*Insights, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	weekAgo := now.Add(-7 * 24 * time.Hour)
	var ins Insights
	var recent, recentDone int
	for _, t := range m.tasks {
		if t.UserID != userID {
			continue
		}
		ins.TotalTasks++
		if t.Completed {
			ins.CompletedTasks++
		} else {
			ins.PendingTasks++
			if t.DueDate != nil && t.DueDate.Before(now) {
				ins.OverdueTasks++
			}
		}
		if !t.CreatedAt.Before(weekAgo) {
			recent++
			if t.Completed {
				recentDone++
			}
		}
	}
	ins.WeeklyCompletionRate = completionRate(recentDone, recent)
	return &ins, nil
}

func (m *MemoryRepository) CreateEvent(_ context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.events[e.ID] = &cp
	return nil
}

func (m *MemoryRepository) ListEvents(_ context.Context, userID uuid.UUID, f EventFilter) ([]*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Event, 0)
	for _, e := range m.events {
		if e.UserID != userID {
			continue
		}
		if f.From != nil && e.Start.Before(*f.From) {
			continue
		}
		if f.To != nil && e.Start.After(*f.To) {
			continue
		}
		if f.Category != "" && string(e.Category) != f.Category {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *MemoryRepository) DeleteEvent(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[id]
	if !ok || e.UserID != userID {
		return ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *MemoryRepository) CreateReminder(_ context.Context, r *Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.reminders[r.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetReminder(_ context.Context, userID, id uuid.UUID) (*Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reminders[id]
	if !ok || r.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryRepository) ListReminders(_ context.Context, userID uuid.UUID, completed *bool) ([]*Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Reminder, 0)
	for _, r := range m.reminders {
		if r.UserID != userID {
			continue
		}
		if completed != nil && r.Completed != *completed {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledTime.Before(out[j].ScheduledTime) })
	return out, nil
}

func (m *MemoryRepository) UpdateReminder(_ context.Context, r *Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.reminders[r.ID]
	if !ok || existing.UserID != r.UserID {
		return ErrNotFound
	}
	cp := *r
	m.reminders[r.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetProfile(_ context.Context, userID uuid.UUID) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) UpsertProfile(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.profiles[p.UserID] = &cp
	return nil
}

func (m *MemoryRepository) RecordMood(_ context.Context, entry *MoodEntry, pruneBefore time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[entry.UserID]
	if !ok {
		p = &Profile{UserID: entry.UserID, Preferences: map[string]any{}}
		m.profiles[entry.UserID] = p
	}
	p.Mood = entry.Mood
	p.UpdatedAt = entry.RecordedAt

	cp := *entry
	all := append(m.moods, &cp)
	kept := make([]*MoodEntry, 0, len(all))
	for _, e := range all {
		if e.UserID == entry.UserID && e.RecordedAt.Before(pruneBefore) {
			continue
		}
		kept = append(kept, e)
	}
	m.moods = kept
	return nil
}

func (m *MemoryRepository) MoodHistory(_ context.Context, userID uuid.UUID, since time.Time) ([]*MoodEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*MoodEntry, 0)
	for _, e := range m.moods {
		if e.UserID == userID && !e.RecordedAt.Before(since) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

func (m *MemoryRepository) CreateHabit(_ context.Context, h *Habit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *h
	m.habits[h.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetHabit(_ context.Context, userID, id uuid.UUID) (*Habit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.habits[id]
	if !ok || h.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (m *MemoryRepository) ListHabits(_ context.Context, userID uuid.UUID) ([]*Habit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Habit, 0)
	for _, h := range m.habits {
		if h.UserID == userID {
			cp := *h
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) UpdateHabit(_ context.Context, h *Habit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.habits[h.ID]
	if !ok || existing.UserID != h.UserID {
		return ErrNotFound
	}
	cp := *h
	m.habits[h.ID] = &cp
	return nil
}
