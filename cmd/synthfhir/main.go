package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/synthfhir/synthfhir/internal/config"
	"github.com/synthfhir/synthfhir/internal/platform/apiclient"
	"github.com/synthfhir/synthfhir/internal/platform/bridge"
)

// app carries what every subcommand needs. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	out    io.Writer

	apiURL    string
	session   string
	outputFmt string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{out: stdout, logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:           "synthfhir",
		Short:         "Client for the SynthFHIR synthetic data backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Backend URL (default: API_URL)")
	rootCmd.PersistentFlags().StringVar(&a.session, "session", "", "Result bridge session (default: BRIDGE_SESSION)")
	rootCmd.PersistentFlags().StringVarP(&a.outputFmt, "output", "o", "table", "Output format: table, json, yaml")

	rootCmd.AddCommand(healthCmd(a))
	rootCmd.AddCommand(configCmd(a))
	rootCmd.AddCommand(generateCmd(a))
	rootCmd.AddCommand(knowledgeCmd(a))
	rootCmd.AddCommand(llmCmd(a))
	rootCmd.AddCommand(settingsCmd(a))
	rootCmd.AddCommand(resultsCmd(a))
	rootCmd.AddCommand(devserverCmd(a))

	return rootCmd
}

func (a *app) init(cmd *cobra.Command, stderr io.Writer) error {
	switch a.outputFmt {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q (use table, json or yaml)", a.outputFmt)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	if a.session != "" {
		cfg.BridgeSession = a.session
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.logger = newLogger(cfg, stderr)
	return nil
}

func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	logger := zerolog.New(w).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

func (a *app) client() *apiclient.Client {
	return apiclient.New(a.cfg.APIURL,
		apiclient.WithLogger(a.logger),
		apiclient.WithTimeout(a.cfg.RequestTimeout),
	)
}

func (a *app) openBridge(ctx context.Context) (*bridge.Bridge, func(), error) {
	b, closeFn, err := bridge.Open(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, closeFn, fmt.Errorf("open result bridge: %w", err)
	}
	return b, closeFn, nil
}
