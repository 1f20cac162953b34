package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chronomate/chronomate/internal/assistant"
	"github.com/chronomate/chronomate/internal/intent"
	"github.com/chronomate/chronomate/internal/llm"
	"github.com/chronomate/chronomate/internal/planner"
)

// session is an offline conversation backed by an in-memory planner.
type session struct {
	userID   uuid.UUID
	asst     *assistant.Assistant
	planner  *planner.Service
	executor *planner.Executor
	conv     *assistant.ConversationContext
}

// newSession starts an empty session. trackMood adds the mood-report
// patterns, so "I'm feeling tired" updates the stored mood.
func newSession(backend assistant.Backend, trackMood bool) *session {
	var extractor *intent.Extractor
	if trackMood {
		extractor = intent.NewExtractor(append(intent.DefaultMatchers(), intent.MoodMatchers()...))
	}

	svc := planner.NewService(planner.NewMemoryRepository(), nil)
	userID := uuid.New()
	return &session{
		userID:   userID,
		asst:     assistant.New(extractor, backend),
		planner:  svc,
		executor: planner.NewExecutor(svc),
		conv:     assistant.NewConversationContext(userID.String()),
	}
}

func (s *session) turn(ctx context.Context, text string) (assistant.Response, []planner.Outcome) {
	if mood, err := s.planner.Mood(ctx, s.userID); err == nil && mood.Current != "" {
		s.conv.Mood = mood.Current
	}
	pending := false
	if tasks, err := s.planner.ListTasks(ctx, s.userID, planner.TaskQuery{Completed: &pending}); err == nil {
		s.conv.RecentTasks = s.conv.RecentTasks[:0]
		for _, t := range tasks {
			s.conv.RecentTasks = append(s.conv.RecentTasks, t.Title)
		}
	}

	resp := s.asst.Process(ctx, s.conv, text)
	outcomes := s.executor.Execute(ctx, s.userID, resp.Actions)

	s.conv.AddToHistory(assistant.RoleUser, text)
	s.conv.AddToHistory(assistant.RoleAssistant, resp.Text)
	return resp, outcomes
}

func chatCmd() *cobra.Command {
	var (
		apiKey    string
		model     string
		trackMood bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant; reminders, tasks and events are kept in memory",
		Long: `Start an interactive chat. Replies are templated unless a Gemini API key is
given with --api-key or the LLM_API_KEY environment variable. Type "exit" to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" {
				apiKey = os.Getenv("LLM_API_KEY")
			}

			var backend assistant.Backend
			if apiKey != "" {
				client, err := llm.NewClient(llm.Config{APIKey: apiKey, Model: model})
				if err != nil {
					return err
				}
				backend = client
			}

			return runChat(cmd.Context(), newSession(backend, trackMood), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Gemini API key for generated replies")
	cmd.Flags().StringVar(&model, "model", llm.DefaultModel, "Gemini model")
	cmd.Flags().BoolVar(&trackMood, "track-mood", false, `Record moods from phrases like "I'm feeling tired"`)
	return cmd
}

func runChat(ctx context.Context, s *session, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "ChronoMate is listening. Type \"exit\" to quit.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		text := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(text) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		resp, outcomes := s.turn(ctx, text)
		fmt.Fprintln(out, resp.Text)
		for _, o := range outcomes {
			fmt.Fprintln(out, "  "+describe(o))
		}
	}
}

func describe(o planner.Outcome) string {
	if !o.OK {
		return fmt.Sprintf("✗ %s: %s", o.Kind, o.Error)
	}
	switch r := o.Result.(type) {
	case *planner.Reminder:
		return fmt.Sprintf("✓ reminder %q at %s", r.Title, r.ScheduledTime.Format("Mon 15:04"))
	case *planner.Task:
		return fmt.Sprintf("✓ task %q (%s priority)", r.Title, r.Priority)
	case *planner.Event:
		return fmt.Sprintf("✓ event %q at %s", r.Title, r.Start.Format("Mon 15:04"))
	case *planner.MoodEntry:
		return fmt.Sprintf("✓ mood set to %s", r.Mood)
	default:
		return fmt.Sprintf("✓ %s", o.Kind)
	}
}
