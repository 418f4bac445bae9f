package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/opsight-dev/opsight/config"
	"github.com/opsight-dev/opsight/constants/lipgloss"
	"github.com/opsight-dev/opsight/context_aggregator"
	"github.com/opsight-dev/opsight/context_aggregator/models"
	"github.com/opsight-dev/opsight/logging"
	"github.com/opsight-dev/opsight/token_management"
	contracts_token "github.com/opsight-dev/opsight/token_management/contracts"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootDependencies holds everything a subcommand needs, built once per invocation.
type RootDependencies struct {
	Cwd             string
	Config          *config.Config
	Logger          *zap.Logger
	LogPath         string
	Aggregator      *context_aggregator.Aggregator
	TokenManagement contracts_token.ITokenManagement
}

// reportedError marks an error whose message was already printed.
type reportedError struct {
	error
}

var rootCmd = &cobra.Command{
	Use:   "opsight",
	Short: "Aggregate a local directory into a bounded context for AI analysis.",
	Long: `opsight resolves a directory, walks it under file-count, per-file and total size
budgets, and assembles a deterministic payload: a directory tree followed by file
excerpts, plus a manifest explaining every file that was left out.
The payload can be printed ('analyze', 'tree') or sent with a question to an AI provider ('ask').`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			fmt.Fprintln(cmd.OutOrStdout(), config.DefaultConfig.Version)
			return nil
		}
		return cmd.Help()
	},
}

func init() {
	config.InitFlags(rootCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, lipgloss.Red.Render(fmt.Sprintf("Error: %v", err)))
		}
		os.Exit(1)
	}
}

func handleRootCommand(cmd *cobra.Command) (*RootDependencies, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	cfg, err := config.LoadConfigs(rootCmd, cwd)
	if err != nil {
		return nil, err
	}

	logger, logPath, err := logging.NewLogger(cfg.LogLevel, cfg.LogFiles, cwd)
	if err != nil {
		return nil, err
	}

	aggregator, err := context_aggregator.NewAggregator(*cfg.Aggregator, logger)
	if err != nil {
		return nil, err
	}
	if logPath != "stderr" {
		aggregator.IgnoreFiles(logPath)
	}

	logger.Debug("opsight started", zap.String("command", cmd.Name()), zap.Strings("args", os.Args), zap.String("log_path", logPath))

	return &RootDependencies{
		Cwd:             cwd,
		Config:          cfg,
		Logger:          logger,
		LogPath:         logPath,
		Aggregator:      aggregator,
		TokenManagement: token_management.NewTokenManagerWithWriter(cmd.ErrOrStderr()),
	}, nil
}

// signalContext is cancelled on Ctrl+C so a running aggregation is discarded.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// aggregate runs the aggregator behind a spinner when stderr is a terminal and turns
// resolution failures into a readable message.
func aggregate(ctx context.Context, cmd *cobra.Command, deps *RootDependencies, target string) (*models.Payload, error) {
	var spinner *pterm.SpinnerPrinter
	if isatty.IsTerminal(os.Stderr.Fd()) {
		spinner, _ = pterm.DefaultSpinner.
			WithWriter(cmd.ErrOrStderr()).
			WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
			WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
			WithDelay(100).
			WithRemoveWhenDone(true).
			Start("Loading Context...")
	}

	payload, err := deps.Aggregator.Aggregate(ctx, target)

	if spinner != nil {
		_ = spinner.Stop()
	}
	if err != nil {
		return nil, reportAggregationError(cmd, err)
	}
	return payload, nil
}

func reportAggregationError(cmd *cobra.Command, err error) error {
	var notFound *context_aggregator.PathNotFoundError
	var notDir *context_aggregator.NotADirectoryError
	switch {
	case errors.As(err, &notFound):
		fmt.Fprintln(cmd.ErrOrStderr(), lipgloss.Red.Render(fmt.Sprintf("Directory not found: %s", notFound.Path.ResolvedAbsolute)))
		fmt.Fprintln(cmd.ErrOrStderr(), lipgloss.Gray.Render(fmt.Sprintf("requested %q; tried relative to the base directory and the current directory", notFound.Path.Requested)))
	case errors.As(err, &notDir):
		fmt.Fprintln(cmd.ErrOrStderr(), lipgloss.Red.Render(fmt.Sprintf("Not a directory: %s", notDir.Path.ResolvedAbsolute)))
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(cmd.ErrOrStderr(), lipgloss.Yellow.Render("🔄 Aggregation cancelled."))
	default:
		return err
	}
	return reportedError{err}
}

func targetArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
