// Package chat runs one user message through the assistant and applies the
// resulting actions to the user's planner.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chronomate/chronomate/internal/assistant"
	"github.com/chronomate/chronomate/internal/metrics"
	"github.com/chronomate/chronomate/internal/planner"
)

// Channels a message can arrive on, used as a metrics label.
const (
	ChannelHTTP = "http"
	ChannelXMPP = "xmpp"
	ChannelCLI  = "cli"
)

const (
	maxMessageLength = 2000
	recentTaskLimit  = 5
)

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = fmt.Errorf("message exceeds %d characters", maxMessageLength)
)

// HistoryStore persists the capped conversation history per user.
type HistoryStore interface {
	Load(ctx context.Context, userID uuid.UUID) (assistant.History, error)
	Entries(ctx context.Context, userID uuid.UUID) ([]assistant.Entry, error)
	Append(ctx context.Context, userID uuid.UUID, entries ...assistant.Entry) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// Budget decides whether a user may spend a generative call.
type Budget interface {
	Allow(ctx context.Context, userID uuid.UUID) bool
}

// Reply is the result of one chat turn.
type Reply struct {
	Response assistant.Response `json:"reply"`
	Outcomes []planner.Outcome  `json:"outcomes"`
}

type Service struct {
	assistant *assistant.Assistant
	templated *assistant.Assistant
	planner   *planner.Service
	executor  *planner.Executor
	history   HistoryStore
	budget    Budget
	now       func() time.Time
}

// NewService wires the chat pipeline. budget may be nil when no generative
// backend is configured.
func NewService(asst *assistant.Assistant, plannerSvc *planner.Service, history HistoryStore, budget Budget) *Service {
	return &Service{
		assistant: asst,
		templated: asst.WithoutBackend(),
		planner:   plannerSvc,
		executor:  planner.NewExecutor(plannerSvc),
		history:   history,
		budget:    budget,
		now:       time.Now,
	}
}

// Send processes one message from userID and stores both turns.
func (s *Service) Send(ctx context.Context, userID uuid.UUID, channel, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if len([]rune(message)) > maxMessageLength {
		return nil, ErrMessageTooLong
	}

	conv, err := s.BuildContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	asst := s.assistant
	if s.budget != nil && !s.budget.Allow(ctx, userID) {
		slog.Info("generative budget spent, replying from templates", "user_id", userID)
		metrics.BudgetDeniedTotal.Inc()
		asst = s.templated
	}

	resp := asst.Process(ctx, conv, message)

	outcomes := s.executor.Execute(ctx, userID, resp.Actions)
	for _, o := range outcomes {
		metrics.ActionsExecutedTotal.WithLabelValues(string(o.Kind), metrics.Outcome(o.OK)).Inc()
	}

	now := s.now().UTC()
	err = s.history.Append(ctx, userID,
		assistant.Entry{Role: assistant.RoleUser, Content: message, Timestamp: now},
		assistant.Entry{Role: assistant.RoleAssistant, Content: resp.Text, Timestamp: now},
	)
	if err != nil {
		slog.Warn("storing chat history", "user_id", userID, "error", err)
	}

	source := "templated"
	if resp.Generated {
		source = "generated"
	}
	metrics.MessagesTotal.WithLabelValues(channel, string(resp.Intent)).Inc()
	metrics.RepliesTotal.WithLabelValues(source).Inc()

	return &Reply{Response: resp, Outcomes: outcomes}, nil
}

// BuildContext assembles what the composer knows about userID. A history
// read failure degrades to an empty history.
func (s *Service) BuildContext(ctx context.Context, userID uuid.UUID) (*assistant.ConversationContext, error) {
	conv := assistant.NewConversationContext(userID.String())

	profile, err := s.planner.Profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	conv.Mood = profile.Mood
	if profile.Preferences != nil {
		conv.Preferences = profile.Preferences
	}

	pending := false
	tasks, err := s.planner.ListTasks(ctx, userID, planner.TaskQuery{Completed: &pending})
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	for i, t := range tasks {
		if i == recentTaskLimit {
			break
		}
		conv.RecentTasks = append(conv.RecentTasks, t.Title)
	}

	habits, err := s.planner.ListHabits(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading habits: %w", err)
	}
	for _, h := range habits {
		conv.Habits = append(conv.Habits, h.Name)
	}

	history, err := s.history.Load(ctx, userID)
	if err != nil {
		slog.Warn("loading chat history", "user_id", userID, "error", err)
	} else {
		conv.History = history
	}

	return conv, nil
}

func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]assistant.Entry, error) {
	return s.history.Entries(ctx, userID)
}

func (s *Service) ClearHistory(ctx context.Context, userID uuid.UUID) error {
	return s.history.Clear(ctx, userID)
}
