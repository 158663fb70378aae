package cmd

import (
	"fmt"

	"commit-analyzer/internal/config"
	"commit-analyzer/internal/logging"
	"commit-analyzer/internal/ollama"
	"commit-analyzer/internal/openrouter"
	"commit-analyzer/internal/provider"
	"commit-analyzer/internal/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var setModelCmd = &cobra.Command{
	Use:   "set-model [model-name]",
	Short: "Set the default model",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err := logging.New(logLevel, logFormat)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		client := newProvider(cfg, logger)

		var models []provider.Model
		err = ui.ShowSpinner(cmd.ErrOrStderr(), "Fetching available models...", func() error {
			var listErr error
			models, listErr = client.ListModels(cmd.Context())
			return listErr
		})
		if err != nil {
			return fmt.Errorf("failed to list models: %w", err)
		}
		if len(models) == 0 {
			return fmt.Errorf("no models available from %s", cfg.Provider)
		}

		selectedModel := ""
		if len(args) == 1 {
			selectedModel = args[0]
			if !containsModel(models, selectedModel) {
				fmt.Fprintf(cmd.OutOrStdout(), "Model '%s' not found. Please select a model:\n", selectedModel)
				selectedModel = ""
			}
		}
		if selectedModel == "" {
			selectedModel, err = ui.SelectModel(models, effectiveModel(cfg))
			if err != nil {
				return fmt.Errorf("failed to select model: %w", err)
			}
		}

		if err := config.SetModel(configPath, selectedModel); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Model set to: %s\n", selectedModel)
		return nil
	},
}

var setProviderCmd = &cobra.Command{
	Use:       "set-provider <" + config.ProviderOpenRouter + "|" + config.ProviderOllama + ">",
	Short:     "Set the model provider",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{config.ProviderOpenRouter, config.ProviderOllama},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetProvider(configPath, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Provider set to: %s\n", args[0])
		return nil
	},
}

var setEndpointCmd = &cobra.Command{
	Use:   "set-endpoint <url>",
	Short: "Override the provider base URL (empty string restores the default)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetEndpoint(configPath, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Endpoint set to: %s\n", args[0])
		return nil
	},
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Provider: %s\n", cfg.Provider)
		fmt.Fprintf(out, "Endpoint: %s\n", effectiveEndpoint(cfg))
		fmt.Fprintf(out, "Model: %s\n", effectiveModel(cfg))
		fmt.Fprintf(out, "Timeout: %s\n", cfg.Timeout)
		if cfg.Provider == config.ProviderOpenRouter {
			state := "not set"
			if cfg.APIKey != "" {
				state = "set"
			}
			fmt.Fprintf(out, "%s: %s\n", config.EnvAPIKey, state)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(setModelCmd)
	configCmd.AddCommand(setProviderCmd)
	configCmd.AddCommand(setEndpointCmd)
	configCmd.AddCommand(showConfigCmd)
}

func newProvider(cfg *config.Config, logger *zap.Logger) provider.Provider {
	if cfg.Provider == config.ProviderOllama {
		return ollama.NewClient(cfg.Endpoint, cfg.Timeout, logger)
	}
	return openrouter.NewClient(cfg.Endpoint, cfg.APIKey, cfg.Timeout, logger)
}

func effectiveModel(cfg *config.Config) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	if cfg.Provider == config.ProviderOllama {
		return ollama.DefaultModel
	}
	return openrouter.DefaultModel
}

func effectiveEndpoint(cfg *config.Config) string {
	if cfg.Endpoint != "" {
		return cfg.Endpoint
	}
	if cfg.Provider == config.ProviderOllama {
		return ollama.DefaultBaseURL
	}
	return openrouter.DefaultBaseURL
}

func containsModel(models []provider.Model, name string) bool {
	for _, m := range models {
		if m.Name == name {
			return true
		}
	}
	return false
}
