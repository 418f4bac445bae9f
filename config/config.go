package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/opsight-dev/opsight/providers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// MinAggregateCeilingBytes keeps room for the payload header and a useful tree.
const MinAggregateCeilingBytes = 8 * 1024

// AggregatorConfig enumerates every option of the directory aggregator.
type AggregatorConfig struct {
	BaseDirectory         string   `mapstructure:"base_directory"`
	TargetDirectory       string   `mapstructure:"target_directory"`
	Extensions            []string `mapstructure:"extensions"`
	MaxFiles              int      `mapstructure:"max_files"`
	MaxFileSizeKB         int      `mapstructure:"max_file_size_kb"`
	MaxLines              int      `mapstructure:"max_lines"`
	AggregateCeilingBytes int      `mapstructure:"aggregate_ceiling_bytes"`
	ExcludeDirs           []string `mapstructure:"exclude_dirs"`
	IncludeHidden         bool     `mapstructure:"include_hidden"`
	IncludeTree           bool     `mapstructure:"include_tree"`
	IgnoreFile            string   `mapstructure:"ignore_file"`
}

// Config represents the structure of the configuration file
type Config struct {
	Version          string                      `mapstructure:"version"`
	Theme            string                      `mapstructure:"theme"`
	LogLevel         string                      `mapstructure:"log_level"`
	LogFiles         []string                    `mapstructure:"log_files"`
	Aggregator       *AggregatorConfig           `mapstructure:"aggregator"`
	AIProviderConfig *providers.AIProviderConfig `mapstructure:"ai_provider_config"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:  "0.3.0",
	Theme:    "dracula",
	LogLevel: "info",
	LogFiles: []string{"/var/log/opsight/opsight.log", userLogFile()},
	Aggregator: &AggregatorConfig{
		BaseDirectory:         "",
		TargetDirectory:       "",
		Extensions:            []string{},
		MaxFiles:              20,
		MaxFileSizeKB:         100,
		MaxLines:              200,
		AggregateCeilingBytes: 256 * 1024,
		ExcludeDirs:           []string{},
		IncludeHidden:         false,
		IncludeTree:           true,
		IgnoreFile:            ".opsightignore",
	},
	AIProviderConfig: &providers.AIProviderConfig{
		Provider:    "ollama",
		BaseURL:     "http://localhost:11434/api",
		Model:       "llama3.1",
		Temperature: 0.2,
		MaxTokens:   2000,
		ApiKey:      "",
	},
}

// userLogFile is the per-user fallback log location. It lives in the user cache
// directory so a run never writes into the tree it analyses.
func userLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "opsight", "opsight.log")
}

// DefaultAggregatorConfig returns a copy of the default aggregator options.
func DefaultAggregatorConfig() AggregatorConfig {
	cfg := *DefaultConfig.Aggregator
	cfg.Extensions = []string{}
	cfg.ExcludeDirs = []string{}
	return cfg
}

// Validate rejects budgets that would make the aggregator produce nothing useful.
func (c *AggregatorConfig) Validate() error {
	var errs []error
	if c.MaxFiles < 1 {
		errs = append(errs, fmt.Errorf("max_files must be at least 1, got %d", c.MaxFiles))
	}
	if c.MaxFileSizeKB < 1 {
		errs = append(errs, fmt.Errorf("max_file_size_kb must be at least 1, got %d", c.MaxFileSizeKB))
	}
	if c.MaxLines < 1 {
		errs = append(errs, fmt.Errorf("max_lines must be at least 1, got %d", c.MaxLines))
	}
	if c.AggregateCeilingBytes < MinAggregateCeilingBytes {
		errs = append(errs, fmt.Errorf("aggregate_ceiling_bytes must be at least %d, got %d", MinAggregateCeilingBytes, c.AggregateCeilingBytes))
	}
	return errors.Join(errs...)
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, .env, environment variables and
// flags, in increasing order of precedence, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	var config *Config

	// Set default values using Viper
	setDefaults()

	// Values from .env never override variables already present in the environment
	_ = godotenv.Load(filepath.Join(cwd, ".env"))

	viper.AutomaticEnv()
	bindEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if configType := GetConfigFileType(cfgFile); configType != "" {
			viper.SetConfigType(configType)
		}
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		viper.SetConfigName("opsight-config")
		viper.AddConfigPath(cwd)

		// Support both JSON and YAML formats
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			viper.SetConfigType("json")
			// A missing file means defaults
			_ = viper.ReadInConfig()
		}
	}

	if rootCmd != nil {
		bindFlags(rootCmd)
	}

	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Aggregator.Validate(); err != nil {
		return nil, fmt.Errorf("invalid aggregator configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("version", DefaultConfig.Version)
	viper.SetDefault("theme", DefaultConfig.Theme)
	viper.SetDefault("log_level", DefaultConfig.LogLevel)
	viper.SetDefault("log_files", DefaultConfig.LogFiles)
	viper.SetDefault("aggregator.base_directory", DefaultConfig.Aggregator.BaseDirectory)
	viper.SetDefault("aggregator.target_directory", DefaultConfig.Aggregator.TargetDirectory)
	viper.SetDefault("aggregator.extensions", DefaultConfig.Aggregator.Extensions)
	viper.SetDefault("aggregator.max_files", DefaultConfig.Aggregator.MaxFiles)
	viper.SetDefault("aggregator.max_file_size_kb", DefaultConfig.Aggregator.MaxFileSizeKB)
	viper.SetDefault("aggregator.max_lines", DefaultConfig.Aggregator.MaxLines)
	viper.SetDefault("aggregator.aggregate_ceiling_bytes", DefaultConfig.Aggregator.AggregateCeilingBytes)
	viper.SetDefault("aggregator.exclude_dirs", DefaultConfig.Aggregator.ExcludeDirs)
	viper.SetDefault("aggregator.include_hidden", DefaultConfig.Aggregator.IncludeHidden)
	viper.SetDefault("aggregator.include_tree", DefaultConfig.Aggregator.IncludeTree)
	viper.SetDefault("aggregator.ignore_file", DefaultConfig.Aggregator.IgnoreFile)
	viper.SetDefault("ai_provider_config.provider", DefaultConfig.AIProviderConfig.Provider)
	viper.SetDefault("ai_provider_config.base_url", DefaultConfig.AIProviderConfig.BaseURL)
	viper.SetDefault("ai_provider_config.model", DefaultConfig.AIProviderConfig.Model)
	viper.SetDefault("ai_provider_config.temperature", DefaultConfig.AIProviderConfig.Temperature)
	viper.SetDefault("ai_provider_config.max_tokens", DefaultConfig.AIProviderConfig.MaxTokens)
	viper.SetDefault("ai_provider_config.api_key", DefaultConfig.AIProviderConfig.ApiKey)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv() {
	_ = viper.BindEnv("theme", "OPSIGHT_THEME")
	_ = viper.BindEnv("log_level", "OPSIGHT_LOG_LEVEL")
	_ = viper.BindEnv("aggregator.base_directory", "OPSIGHT_BASE_DIRECTORY")
	_ = viper.BindEnv("aggregator.extensions", "OPSIGHT_EXTENSIONS")
	_ = viper.BindEnv("aggregator.max_files", "OPSIGHT_MAX_FILES")
	_ = viper.BindEnv("aggregator.max_file_size_kb", "OPSIGHT_MAX_FILE_SIZE_KB")
	_ = viper.BindEnv("aggregator.max_lines", "OPSIGHT_MAX_LINES")
	_ = viper.BindEnv("aggregator.aggregate_ceiling_bytes", "OPSIGHT_AGGREGATE_CEILING_BYTES")
	_ = viper.BindEnv("ai_provider_config.provider", "PROVIDER")
	_ = viper.BindEnv("ai_provider_config.base_url", "BASE_URL")
	_ = viper.BindEnv("ai_provider_config.model", "MODEL")
	_ = viper.BindEnv("ai_provider_config.api_key", "API_KEY")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("theme", flags.Lookup("theme"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log_level"))
	_ = viper.BindPFlag("aggregator.base_directory", flags.Lookup("base_directory"))
	_ = viper.BindPFlag("aggregator.extensions", flags.Lookup("extensions"))
	_ = viper.BindPFlag("aggregator.max_files", flags.Lookup("max_files"))
	_ = viper.BindPFlag("aggregator.max_file_size_kb", flags.Lookup("max_file_size_kb"))
	_ = viper.BindPFlag("aggregator.max_lines", flags.Lookup("max_lines"))
	_ = viper.BindPFlag("aggregator.aggregate_ceiling_bytes", flags.Lookup("aggregate_ceiling_bytes"))
	_ = viper.BindPFlag("aggregator.exclude_dirs", flags.Lookup("exclude_dirs"))
	_ = viper.BindPFlag("aggregator.include_hidden", flags.Lookup("include_hidden"))
	_ = viper.BindPFlag("aggregator.include_tree", flags.Lookup("include_tree"))
	_ = viper.BindPFlag("aggregator.ignore_file", flags.Lookup("ignore_file"))
	_ = viper.BindPFlag("ai_provider_config.provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("ai_provider_config.base_url", flags.Lookup("base_url"))
	_ = viper.BindPFlag("ai_provider_config.model", flags.Lookup("model"))
	_ = viper.BindPFlag("ai_provider_config.temperature", flags.Lookup("temperature"))
	_ = viper.BindPFlag("ai_provider_config.max_tokens", flags.Lookup("max_tokens"))
	_ = viper.BindPFlag("ai_provider_config.api_key", flags.Lookup("api_key"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Path to a configuration file (JSON or YAML). Defaults to opsight-config.yml in the working directory.")

	flags.String("theme", DefaultConfig.Theme, "Syntax highlighting theme for rendered answers (e.g., 'dracula', 'monokai').")
	flags.String("log_level", DefaultConfig.LogLevel, "Log level: debug, info, warn or error.")

	// Aggregator configuration
	aggregator := DefaultConfig.Aggregator
	flags.StringP("base_directory", "b", aggregator.BaseDirectory, "Base directory that relative targets are resolved against (default: current directory).")
	flags.StringSlice("extensions", aggregator.Extensions, "File extensions to include (e.g. .py,.ts). Empty means all text files.")
	flags.Int("max_files", aggregator.MaxFiles, "Maximum number of files to include.")
	flags.Int("max_file_size_kb", aggregator.MaxFileSizeKB, "Files larger than this many KB are skipped.")
	flags.Int("max_lines", aggregator.MaxLines, "Maximum lines included per file.")
	flags.Int("aggregate_ceiling_bytes", aggregator.AggregateCeilingBytes, "Upper bound on the size of the assembled payload.")
	flags.StringSlice("exclude_dirs", aggregator.ExcludeDirs, "Extra directory name patterns to prune (glob syntax).")
	flags.Bool("include_hidden", aggregator.IncludeHidden, "Descend into hidden directories (VCS metadata stays excluded).")
	flags.Bool("include_tree", aggregator.IncludeTree, "Put the directory tree ahead of the file contents (--include_tree=false leaves it out).")
	flags.String("ignore_file", aggregator.IgnoreFile, "Name of a file in the target directory listing extra directory patterns to prune.")

	// AI Provider configuration
	flags.String("provider", DefaultConfig.AIProviderConfig.Provider, "The downstream AI provider ('ollama' or 'openai').")
	flags.String("base_url", DefaultConfig.AIProviderConfig.BaseURL, "The base URL of the AI provider.")
	flags.String("model", DefaultConfig.AIProviderConfig.Model, "The model used for chat completions.")
	flags.Float32("temperature", DefaultConfig.AIProviderConfig.Temperature, "Adjusts the AI model's creativity (0-1).")
	flags.Int("max_tokens", DefaultConfig.AIProviderConfig.MaxTokens, "Maximum tokens in the response.")
	flags.String("api_key", DefaultConfig.AIProviderConfig.ApiKey, "The API key used to authenticate with the AI provider.")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}

// GetConfigFileType returns the type of the configuration file based on its extension
func GetConfigFileType(filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	} else if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return "yaml"
	}
	return ""
}
