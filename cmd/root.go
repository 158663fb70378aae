package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"

	"commit-analyzer/internal/analyzer"
	"commit-analyzer/internal/config"
	"commit-analyzer/internal/git"
	"commit-analyzer/internal/logging"
	"commit-analyzer/internal/ui"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	numCommits int
	modelName  string
	editFlag   bool
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "commit-analyzer <repo_path>",
	Short: "Summarize recent commits with an LLM and squash them into one",
	Long: `commit-analyzer lists the commits of a local git repository, asks an
OpenRouter-hosted model for a summary and a single encompassing commit message,
and, after confirmation, squashes those commits into one carrying that message.

The squash rewrites history and creates no backup ref.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func Execute() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().IntVar(&numCommits, "num-commits", 0, "Number of recent commits to analyze (default: all commits)")
	rootCmd.Flags().StringVar(&modelName, "model", "", "Model identifier to use instead of the configured one")
	rootCmd.Flags().BoolVar(&editFlag, "edit", false, "Edit the generated message before confirming")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/"+config.ConfigDir+"/"+config.ConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logging.DefaultLevel, "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.DefaultFormat, "Log format: console or structured")

	rootCmd.AddCommand(configCmd)
}

func run(cmd *cobra.Command, args []string) error {
	if numCommits < 0 {
		return fmt.Errorf("--num-commits must not be negative")
	}

	logger, err := logging.New(logLevel, logFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if modelName != "" {
		cfg.Model = modelName
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	if _, err := exec.LookPath("git"); err != nil {
		return errors.New("git is not installed or not found in PATH")
	}

	repo, err := git.Open(args[0], git.NewExecRunner(logger), logger)
	if err != nil {
		return err
	}

	llm := newProvider(cfg, logger)
	logger.Info("analyzing repository",
		zap.String("path", repo.Path),
		zap.String("provider", cfg.Provider),
		zap.String("model", effectiveModel(cfg)),
	)

	a := &analyzer.Analyzer{
		Lister:     repo,
		Summarizer: &analyzer.Summarizer{Provider: llm, Model: cfg.Model},
		Squasher:   repo,
		Confirmer:  ui.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
		Out:        cmd.OutOrStdout(),
		Progress:   cmd.ErrOrStderr(),
		Logger:     logger,
	}
	if editFlag {
		a.Editor = ui.EditCommitMessage
	}

	_, err = a.Run(cmd.Context(), analyzer.Options{NumCommits: numCommits})
	return err
}
