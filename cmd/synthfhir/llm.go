package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/synthfhir/synthfhir/internal/domain/llmstatus"
)

func llmCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llm",
		Short: "Show the backend's LLM connection",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Check the LLM status once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := llmstatus.NewPoller(a.client(), a.logger)
			snap := p.Check(cmd.Context())
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if snap.Err != nil {
				return snap.Err
			}
			if a.structured() {
				return a.printOutput(snap.Status)
			}
			a.printf("%s\n", llmstatus.Headline(snap))
			return nil
		},
	})

	var interval time.Duration
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Poll the LLM status until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				interval = a.cfg.LLMPollInterval
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p := llmstatus.NewPoller(a.client(), a.logger,
				llmstatus.WithInterval(interval),
				llmstatus.OnUpdate(func(s llmstatus.Snapshot) {
					line := llmstatus.Headline(s)
					if s.Err != nil {
						line += " (last check failed: " + s.Err.Error() + ")"
					}
					a.printf("%s  %s\n", s.CheckedAt.Format(time.TimeOnly), line)
				}),
			)
			a.printf("%s\n", llmstatus.Headline(p.Latest()))
			p.Run(ctx)
			if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	watch.Flags().DurationVar(&interval, "interval", 0, "Poll interval (default: LLM_POLL_INTERVAL)")
	cmd.AddCommand(watch)

	return cmd
}

func settingsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Show LLM configuration, defaults and enabled resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := llmstatus.LoadSettings(cmd.Context(), a.client())
			if err != nil {
				return err
			}
			if a.structured() {
				return a.printOutput(s)
			}

			rows := [][]string{
				{"Active LLM", s.ActiveLLM},
				{"Enterprise configured", yesNo(s.EnterpriseConfigured)},
				{"Connection", string(s.ConnectionStatus)},
			}
			if e := s.Enterprise; e != nil {
				rows = append(rows,
					[]string{"Enterprise base URL", e.BaseURL},
					[]string{"Client ID set", yesNo(e.HasClientID)},
					[]string{"Client secret set", yesNo(e.HasClientSecret)},
				)
			}
			rows = append(rows,
				[]string{"Default temperature", strconv.FormatFloat(s.DefaultTemperature, 'f', 1, 64)},
				[]string{"Default max tokens", strconv.Itoa(s.DefaultMaxTokens)},
				[]string{"Timeout", fmt.Sprintf("%ds", s.TimeoutSeconds)},
			)
			for _, r := range s.EnabledResources {
				rows = append(rows, []string{"Enabled resource", fmt.Sprintf("%s (%s)", r.DisplayName, r.Kind)})
			}
			a.printTable([]string{"Setting", "Value"}, rows)
			return nil
		},
	}
}
