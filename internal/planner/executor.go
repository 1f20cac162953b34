package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/chronomate/chronomate/internal/action"
	"github.com/chronomate/chronomate/internal/intent"
	"github.com/chronomate/chronomate/internal/timeparse"
)

// Outcome reports what happened to one action.
type Outcome struct {
	Kind   intent.Kind `json:"type"`
	OK     bool        `json:"ok"`
	Error  string      `json:"error,omitempty"`
	Result any         `json:"result,omitempty"`
}

type reminderPayload struct {
	Title    string          `validate:"required,max=500"`
	Priority intent.Priority `validate:"omitempty,oneof=low medium high"`
}

type taskPayload struct {
	Title    string          `validate:"required,max=500"`
	Priority intent.Priority `validate:"omitempty,oneof=low medium high"`
}

type eventPayload struct {
	Title    string        `validate:"required,max=500"`
	Category EventCategory `validate:"omitempty,oneof=work personal health social other"`
}

type moodPayload struct {
	Mood intent.Mood `validate:"required,oneof=neutral happy sad stressed tired"`
}

// Executor applies assistant actions to the planner. Relative time
// fragments are resolved against now in the user's time zone.
type Executor struct {
	svc      *Service
	validate *validator.Validate
	now      func() time.Time
}

func NewExecutor(svc *Service) *Executor {
	return &Executor{
		svc:      svc,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Execute runs every action in order. A failing action is logged and
// reported in its Outcome; it does not stop the rest.
func (e *Executor) Execute(ctx context.Context, userID uuid.UUID, actions []action.Action) []Outcome {
	outcomes := make([]Outcome, 0, len(actions))
	if len(actions) == 0 {
		return outcomes
	}

	now := e.now().In(e.svc.Location(ctx, userID))

	for _, a := range actions {
		result, err := e.executeOne(ctx, userID, a, now)
		if err != nil {
			slog.Warn("executing action", "user_id", userID, "type", a.Kind, "error", err)
			outcomes = append(outcomes, Outcome{Kind: a.Kind, Error: err.Error()})
			continue
		}
		outcomes = append(outcomes, Outcome{Kind: a.Kind, OK: true, Result: result})
	}
	return outcomes
}

func (e *Executor) executeOne(ctx context.Context, userID uuid.UUID, a action.Action, now time.Time) (any, error) {
	d := a.Data
	title := strings.TrimSpace(d.Title)

	switch a.Kind {
	case intent.KindCreateReminder:
		if err := e.validate.Struct(reminderPayload{Title: title, Priority: d.Priority}); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		req := CreateReminderRequest{
			Title:       title,
			Description: d.Description,
			Priority:    d.Priority,
			Category:    d.Category,
		}
		scheduled := now.Add(defaultReminderOffset)
		if d.Time != "" {
			scheduled = timeparse.Resolve(d.Time, now)
		}
		req.ScheduledTime = &scheduled
		if d.Repeat != nil {
			req.Repeat = &RepeatRule{Type: d.Repeat.Cadence, Interval: d.Repeat.Interval}
		}
		return e.svc.CreateReminder(ctx, userID, req)

	case intent.KindCreateTask:
		if err := e.validate.Struct(taskPayload{Title: title, Priority: d.Priority}); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		req := CreateTaskRequest{
			Title:       title,
			Description: d.Description,
			Priority:    d.Priority,
			Category:    d.Category,
		}
		fragment := d.Time
		if fragment == "" {
			fragment = d.DueDate
		}
		if fragment != "" {
			due := timeparse.Resolve(fragment, now)
			req.DueDate = &due
		}
		return e.svc.CreateTask(ctx, userID, req)

	case intent.KindScheduleEvent:
		category := EventCategory(d.Category)
		if err := e.validate.Struct(eventPayload{Title: title, Category: category}); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return e.svc.CreateEvent(ctx, userID, CreateEventRequest{
			Title:       title,
			Description: d.Description,
			Start:       timeparse.Resolve(d.Time, now),
			Category:    category,
		})

	case intent.KindUpdateMood:
		if err := e.validate.Struct(moodPayload{Mood: d.Mood}); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return e.svc.UpdateMood(ctx, userID, d.Mood, d.Notes)
	}

	return nil, fmt.Errorf("%w: unsupported action type %q", ErrInvalidInput, a.Kind)
}
