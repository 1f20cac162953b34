package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chronomate/chronomate/internal/intent"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// where accumulates AND-ed predicates with positional arguments.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(clause, len(w.args)))
}

func (w *where) String() string {
	return strings.Join(w.clauses, " AND ")
}

const taskColumns = `id, user_id, title, description, completed, priority, due_date, category, tags, created_at, completed_at`

func scanTask(row pgx.Row) (*Task, error) {
	t := &Task{}
	var priority string
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed,
		&priority, &t.DueDate, &t.Category, &t.Tags, &t.CreatedAt, &t.CompletedAt)
	if err != nil {
		return nil, err
	}
	t.Priority = intent.Priority(priority)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

func (r *postgresRepository) CreateTask(ctx context.Context, t *Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.Title, t.Description, t.Completed,
		string(t.Priority), t.DueDate, t.Category, t.Tags, t.CreatedAt, t.CompletedAt)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListTasks(ctx context.Context, userID uuid.UUID, f TaskFilter) ([]*Task, error) {
	w := &where{}
	w.add("user_id = $%d", userID)
	if f.Completed != nil {
		w.add("completed = $%d", *f.Completed)
	}
	if f.Category != "" {
		w.add("category = $%d", f.Category)
	}
	if f.DueFrom != nil {
		w.add("due_date >= $%d", *f.DueFrom)
	}
	if f.DueTo != nil {
		w.add("due_date < $%d", *f.DueTo)
	}

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE ` + w.String() + `
		ORDER BY CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC,
			due_date ASC NULLS LAST,
			created_at ASC`

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *postgresRepository) CompleteTask(ctx context.Context, userID, id uuid.UUID, at time.Time) (*Task, error) {
	query := `
		UPDATE tasks
		SET completed = TRUE, completed_at = COALESCE(completed_at, $3)
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns

	t, err := scanTask(r.pool.QueryRow(ctx, query, id, userID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("completing task: %w", err)
	}
	return t, nil
}

func (r *postgresRepository) DeleteTask(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) TaskInsights(ctx context.Context, userID uuid.UUID, now time.Time) (*Insights, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE completed),
			COUNT(*) FILTER (WHERE NOT completed),
			COUNT(*) FILTER (WHERE NOT completed AND due_date < $2),
			COUNT(*) FILTER (WHERE created_at >= $3),
			COUNT(*) FILTER (WHERE created_at >= $3 AND completed)
		FROM tasks
		WHERE user_id = $1`

	var ins Insights
	var recent, recentDone int
	err := r.pool.QueryRow(ctx, query, userID, now, now.Add(-7*24*time.Hour)).Scan(
		&ins.TotalTasks, &ins.CompletedTasks, &ins.PendingTasks, &ins.OverdueTasks,
		&recent, &recentDone)
	if err != nil {
		return nil, fmt.Errorf("computing task insights: %w", err)
	}
	ins.WeeklyCompletionRate = completionRate(recentDone, recent)
	return &ins, nil
}

const eventColumns = `id, user_id, title, description, starts_at, ends_at, all_day, category, color, location, created_at`

func scanEvent(row pgx.Row) (*Event, error) {
	e := &Event{}
	var category string
	err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.Start, &e.End,
		&e.AllDay, &category, &e.Color, &e.Location, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Category = EventCategory(category)
	return e, nil
}

func (r *postgresRepository) CreateEvent(ctx context.Context, e *Event) error {
	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.UserID, e.Title, e.Description, e.Start, e.End,
		e.AllDay, string(e.Category), e.Color, e.Location, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListEvents(ctx context.Context, userID uuid.UUID, f EventFilter) ([]*Event, error) {
	w := &where{}
	w.add("user_id = $%d", userID)
	if f.From != nil {
		w.add("starts_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("starts_at <= $%d", *f.To)
	}
	if f.Category != "" {
		w.add("category = $%d", f.Category)
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE ` + w.String() + ` ORDER BY starts_at ASC`

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	events := make([]*Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *postgresRepository) DeleteEvent(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const reminderColumns = `id, user_id, title, description, scheduled_time, completed, snoozed, snooze_until, priority, category, repeat_rule, created_at`

func scanReminder(row pgx.Row) (*Reminder, error) {
	rem := &Reminder{}
	var priority string
	var repeat []byte
	err := row.Scan(&rem.ID, &rem.UserID, &rem.Title, &rem.Description, &rem.ScheduledTime,
		&rem.Completed, &rem.Snoozed, &rem.SnoozeUntil, &priority, &rem.Category, &repeat, &rem.CreatedAt)
	if err != nil {
		return nil, err
	}
	rem.Priority = intent.Priority(priority)
	if len(repeat) > 0 {
		var rule RepeatRule
		if err := json.Unmarshal(repeat, &rule); err != nil {
			return nil, fmt.Errorf("decoding repeat rule: %w", err)
		}
		rem.Repeat = &rule
	}
	return rem, nil
}

func repeatJSON(rule *RepeatRule) ([]byte, error) {
	if rule == nil {
		return nil, nil
	}
	return json.Marshal(rule)
}

func (r *postgresRepository) CreateReminder(ctx context.Context, rem *Reminder) error {
	repeat, err := repeatJSON(rem.Repeat)
	if err != nil {
		return fmt.Errorf("encoding repeat rule: %w", err)
	}

	query := `
		INSERT INTO reminders (` + reminderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.pool.Exec(ctx, query,
		rem.ID, rem.UserID, rem.Title, rem.Description, rem.ScheduledTime,
		rem.Completed, rem.Snoozed, rem.SnoozeUntil, string(rem.Priority), rem.Category, repeat, rem.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting reminder: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetReminder(ctx context.Context, userID, id uuid.UUID) (*Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1 AND user_id = $2`

	rem, err := scanReminder(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying reminder: %w", err)
	}
	return rem, nil
}

func (r *postgresRepository) ListReminders(ctx context.Context, userID uuid.UUID, completed *bool) ([]*Reminder, error) {
	w := &where{}
	w.add("user_id = $%d", userID)
	if completed != nil {
		w.add("completed = $%d", *completed)
	}

	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE ` + w.String() + ` ORDER BY scheduled_time ASC`

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing reminders: %w", err)
	}
	defer rows.Close()

	reminders := make([]*Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reminder row: %w", err)
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

func (r *postgresRepository) UpdateReminder(ctx context.Context, rem *Reminder) error {
	repeat, err := repeatJSON(rem.Repeat)
	if err != nil {
		return fmt.Errorf("encoding repeat rule: %w", err)
	}

	query := `
		UPDATE reminders
		SET title = $3, description = $4, scheduled_time = $5, completed = $6, snoozed = $7,
			snooze_until = $8, priority = $9, category = $10, repeat_rule = $11
		WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query,
		rem.ID, rem.UserID, rem.Title, rem.Description, rem.ScheduledTime, rem.Completed,
		rem.Snoozed, rem.SnoozeUntil, string(rem.Priority), rem.Category, repeat)
	if err != nil {
		return fmt.Errorf("updating reminder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	query := `SELECT user_id, mood, timezone, preferences, updated_at FROM profiles WHERE user_id = $1`

	p := &Profile{}
	var mood string
	var prefs []byte
	err := r.pool.QueryRow(ctx, query, userID).Scan(&p.UserID, &mood, &p.Timezone, &prefs, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	p.Mood = intent.Mood(mood)
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &p.Preferences); err != nil {
			return nil, fmt.Errorf("decoding preferences: %w", err)
		}
	}
	return p, nil
}

func (r *postgresRepository) UpsertProfile(ctx context.Context, p *Profile) error {
	prefs, err := json.Marshal(p.Preferences)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if p.Preferences == nil {
		prefs = []byte("{}")
	}

	query := `
		INSERT INTO profiles (user_id, mood, timezone, preferences, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET mood = EXCLUDED.mood, timezone = EXCLUDED.timezone,
			preferences = EXCLUDED.preferences, updated_at = EXCLUDED.updated_at`

	_, err = r.pool.Exec(ctx, query, p.UserID, string(p.Mood), p.Timezone, prefs, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

func (r *postgresRepository) RecordMood(ctx context.Context, entry *MoodEntry, pruneBefore time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning mood transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO profiles (user_id, mood, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET mood = EXCLUDED.mood, updated_at = EXCLUDED.updated_at`,
		entry.UserID, string(entry.Mood), entry.RecordedAt)
	if err != nil {
		return fmt.Errorf("updating current mood: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO mood_entries (id, user_id, mood, notes, recorded_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.UserID, string(entry.Mood), entry.Notes, entry.RecordedAt)
	if err != nil {
		return fmt.Errorf("inserting mood entry: %w", err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM mood_entries WHERE user_id = $1 AND recorded_at < $2`, entry.UserID, pruneBefore)
	if err != nil {
		return fmt.Errorf("pruning mood history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing mood transaction: %w", err)
	}
	return nil
}

func (r *postgresRepository) MoodHistory(ctx context.Context, userID uuid.UUID, since time.Time) ([]*MoodEntry, error) {
	query := `
		SELECT id, user_id, mood, notes, recorded_at
		FROM mood_entries
		WHERE user_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at ASC`

	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("listing mood history: %w", err)
	}
	defer rows.Close()

	entries := make([]*MoodEntry, 0)
	for rows.Next() {
		e := &MoodEntry{}
		var mood string
		if err := rows.Scan(&e.ID, &e.UserID, &mood, &e.Notes, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning mood row: %w", err)
		}
		e.Mood = intent.Mood(mood)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const habitColumns = `id, user_id, name, frequency, streak, last_completed, created_at`

func scanHabit(row pgx.Row) (*Habit, error) {
	h := &Habit{}
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Frequency, &h.Streak, &h.LastCompleted, &h.CreatedAt)
	return h, err
}

func (r *postgresRepository) CreateHabit(ctx context.Context, h *Habit) error {
	query := `INSERT INTO habits (` + habitColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query, h.ID, h.UserID, h.Name, h.Frequency, h.Streak, h.LastCompleted, h.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting habit: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetHabit(ctx context.Context, userID, id uuid.UUID) (*Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND user_id = $2`

	h, err := scanHabit(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying habit: %w", err)
	}
	return h, nil
}

func (r *postgresRepository) ListHabits(ctx context.Context, userID uuid.UUID) ([]*Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing habits: %w", err)
	}
	defer rows.Close()

	habits := make([]*Habit, 0)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning habit row: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (r *postgresRepository) UpdateHabit(ctx context.Context, h *Habit) error {
	query := `
		UPDATE habits SET name = $3, frequency = $4, streak = $5, last_completed = $6
		WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, h.ID, h.UserID, h.Name, h.Frequency, h.Streak, h.LastCompleted)
	if err != nil {
		return fmt.Errorf("updating habit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
