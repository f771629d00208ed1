package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/drewdunne/changedfiles/internal/app"
	"github.com/drewdunne/changedfiles/internal/config"
	"github.com/drewdunne/changedfiles/internal/event"
	"github.com/drewdunne/changedfiles/internal/git"
	"github.com/drewdunne/changedfiles/internal/logging"
	"github.com/drewdunne/changedfiles/internal/outputs"
	"github.com/drewdunne/changedfiles/internal/registry"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "changedfiles",
		Short:         "Report the files changed by a commit range or pull request",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "changedfiles v%s\n", version)
		},
	}
}

func newRunCmd() *cobra.Command {
	var configPath, envFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve changed files and write step outputs",
		Long: `Resolve the files changed by the current CI event and write them as step outputs.

Inputs are read from an optional config file, then INPUT_<NAME> environment
variables, then flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd.Context(), cmd.Flags(), configPath, envFile)
			if err != nil {
				// Workflow command so the failure is annotated on the run.
				fmt.Fprintf(cmd.ErrOrStderr(), "::error::%v\n", err)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (optional)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (optional)")
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, flags *pflag.FlagSet, configPath, envFile string) error {
	// Load .env file if specified or exists
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	} else {
		godotenv.Load(".env")
	}

	cfg := config.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	v, err := config.NewViper(flags)
	if err != nil {
		return err
	}
	if err := config.ApplyInputs(cfg, v); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}

	ev, err := event.Detect(os.Getenv)
	if err != nil {
		return fmt.Errorf("detecting CI event: %w", err)
	}

	f, err := outputs.Open(os.Getenv("GITHUB_OUTPUT"))
	if err != nil {
		return err
	}
	var outFile io.Writer
	if f != nil {
		defer f.Close()
		outFile = f
	}
	out := outputs.NewWriter(outFile, logger, app.OutputOptions(cfg))

	providers, err := registry.New(cfg)
	if err != nil {
		return fmt.Errorf("configuring providers: %w", err)
	}

	client := git.NewClient(git.NewExecRunner(os.Getenv("GIT_BIN")), logger)
	return app.New(cfg, ev, client, providers, out, logger).Run(ctx)
}

func newLogger(cfg config.LoggingConfig) (logging.Logger, error) {
	switch cfg.Format {
	case "", "actions":
		return logging.NewActions(os.Stdout), nil
	case "text":
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		return logging.NewText(os.Stderr, level), nil
	}
	return nil, fmt.Errorf("unknown log format %q", cfg.Format)
}
