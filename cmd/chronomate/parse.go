package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chronomate/chronomate/internal/action"
	"github.com/chronomate/chronomate/internal/assistant"
	"github.com/chronomate/chronomate/internal/intent"
	"github.com/chronomate/chronomate/internal/timeparse"
)

type parseOutput struct {
	Intent   intent.Intent   `json:"intent"`
	Actions  []action.Action `json:"actions"`
	Resolved *time.Time      `json:"resolved_time,omitempty"`
}

func parseCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "parse [utterance]",
		Short: "Print the intent and actions extracted from an utterance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseNow(at)
			if err != nil {
				return err
			}

			in, actions := assistant.New(nil, nil).Parse(strings.Join(args, " "))
			out := parseOutput{Intent: in, Actions: actions}
			if in.Time != "" {
				t := timeparse.Resolve(in.Time, now)
				out.Resolved = &t
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&at, "now", "", "Reference time (RFC3339) for resolving the time phrase")
	return cmd
}

func resolveCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "resolve [time phrase]",
		Short: "Resolve a time phrase such as \"in 10 minutes\" or \"tomorrow at 3pm\"",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseNow(at)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), timeparse.Resolve(strings.Join(args, " "), now).Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "now", "", "Reference time (RFC3339); defaults to the current time")
	return cmd
}

func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: %w", s, err)
	}
	return t, nil
}
