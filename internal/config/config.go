package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	DefaultProvider    = ProviderOpenRouter
	DefaultTimeout     = 60 * time.Second
	ConfigDir          = ".config/commit-analyzer"
	ConfigFile         = "config.yaml"
	EnvPrefix          = "COMMIT_ANALYZER"
	EnvAPIKey          = "OPENROUTER_API_KEY"
)

var ErrMissingAPIKey = errors.New(EnvAPIKey + " environment variable is not set")

// Config holds user preferences. APIKey comes from OPENROUTER_API_KEY alone;
// an api_key entry in the file is ignored and nothing writes it back.
type Config struct {
	Provider string        `mapstructure:"provider"`
	Endpoint string        `mapstructure:"endpoint"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
	APIKey   string        `mapstructure:"-"`
}

// fileConfig is the on-disk shape; durations are stored as strings like "90s".
type fileConfig struct {
	Provider string `yaml:"provider"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`
	Timeout  string `yaml:"timeout,omitempty"`
}

func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ConfigDir, ConfigFile), nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return GetConfigPath()
}

// LoadConfig reads the YAML file at path (the per-user default when empty),
// then applies COMMIT_ANALYZER_* overrides. A missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	configPath, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("endpoint", "")
	v.SetDefault("model", "")
	v.SetDefault("timeout", DefaultTimeout.String())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.APIKey = strings.TrimSpace(os.Getenv(EnvAPIKey))
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if err := ValidateProvider(cfg.Provider); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func ValidateProvider(provider string) error {
	switch provider {
	case ProviderOpenRouter, ProviderOllama:
		return nil
	default:
		return fmt.Errorf("unsupported provider %q (expected %s or %s)", provider, ProviderOpenRouter, ProviderOllama)
	}
}

// RequireAPIKey fails when the selected provider needs a credential that is not set.
func (c *Config) RequireAPIKey() error {
	if c.Provider == ProviderOpenRouter && c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func SaveConfig(path string, config *Config) error {
	configPath, err := resolvePath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	onDisk := fileConfig{
		Provider: config.Provider,
		Endpoint: config.Endpoint,
		Model:    config.Model,
	}
	if config.Timeout > 0 {
		onDisk.Timeout = config.Timeout.String()
	}

	data, err := yaml.Marshal(onDisk)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func SetModel(path, model string) error {
	config, err := LoadConfig(path)
	if err != nil {
		return err
	}

	config.Model = model
	return SaveConfig(path, config)
}

// SetProvider switches provider and clears the model, since model names are
// provider specific.
func SetProvider(path, provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if err := ValidateProvider(provider); err != nil {
		return err
	}

	config, err := LoadConfig(path)
	if err != nil {
		return err
	}

	if config.Provider != provider {
		config.Model = ""
	}
	config.Provider = provider
	return SaveConfig(path, config)
}

func SetEndpoint(path, endpoint string) error {
	config, err := LoadConfig(path)
	if err != nil {
		return err
	}

	config.Endpoint = endpoint
	return SaveConfig(path, config)
}
