package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultLanguage    = "en"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// outputSuffix is appended to the input name when no output path is given.
	outputSuffix = ".highlighted.pdf"
)

// Config holds all configuration for one annotation run
type Config struct {
	// Document paths
	InputPath  string
	OutputPath string

	// Recognition configuration
	Language  string
	RulesFile string
	MinScore  float64

	// Application configuration
	Version     string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Language:    DefaultLanguage,
		Version:     "1.0.0",
		LogLevel:    DefaultLogLevel,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.InputPath != "" {
		if expandedPath, err := filepath.Abs(cfg.InputPath); err == nil {
			cfg.InputPath = expandedPath
		}
	}

	// Derive the output path next to the input when none was given
	if cfg.OutputPath == "" && cfg.InputPath != "" {
		cfg.OutputPath = strings.TrimSuffix(cfg.InputPath, ".pdf") + outputSuffix
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("PIIMARK")
	viper.AutomaticEnv()

	// Define flags with Viper
	viper.SetDefault("in", cfg.InputPath)
	viper.SetDefault("out", cfg.OutputPath)
	viper.SetDefault("lang", cfg.Language)
	viper.SetDefault("rules", cfg.RulesFile)
	viper.SetDefault("minscore", cfg.MinScore)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("in", cfg.InputPath, "Path of the PDF to scan")
	pflag.String("out", cfg.OutputPath, "Path of the annotated copy (default: <in>"+outputSuffix+")")
	pflag.String("lang", cfg.Language, "Language tag passed to the recognizers")
	pflag.String("rules", cfg.RulesFile, "Optional YAML file with custom recognizer rules")
	pflag.Float64("minscore", cfg.MinScore, "Drop detections scoring below this threshold (0 keeps everything)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("in", pflag.Lookup("in"))
	_ = viper.BindPFlag("out", pflag.Lookup("out"))
	_ = viper.BindPFlag("lang", pflag.Lookup("lang"))
	_ = viper.BindPFlag("rules", pflag.Lookup("rules"))
	_ = viper.BindPFlag("minscore", pflag.Lookup("minscore"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\npiimark - highlights detected PII in a copy of a PDF\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --in=report.pdf                          "+
			"# annotate into report%s\n", os.Args[0], outputSuffix)
		fmt.Fprintf(os.Stderr, "  %s --in=report.pdf --out=marked.pdf         # explicit output path\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --in=report.pdf --rules=company.yaml     # extra recognizers\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PIIMARK_IN          Input PDF path\n")
		fmt.Fprintf(os.Stderr, "  PIIMARK_OUT         Output PDF path\n")
		fmt.Fprintf(os.Stderr, "  PIIMARK_LANG        Recognition language\n")
		fmt.Fprintf(os.Stderr, "  PIIMARK_RULES       Custom rules file\n")
		fmt.Fprintf(os.Stderr, "  PIIMARK_MINSCORE    Minimum detection score\n")
		fmt.Fprintf(os.Stderr, "  PIIMARK_LOGLEVEL    Log level\n")
		fmt.Fprintf(os.Stderr, "  PIIMARK_MAXFILESIZE Maximum file size\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.InputPath = viper.GetString("in")
	cfg.OutputPath = viper.GetString("out")
	cfg.Language = viper.GetString("lang")
	cfg.RulesFile = viper.GetString("rules")
	cfg.MinScore = viper.GetFloat64("minscore")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("input path cannot be empty (use --in)")
	}

	if !strings.HasSuffix(strings.ToLower(c.InputPath), ".pdf") {
		return fmt.Errorf("input file is not a PDF: %s", c.InputPath)
	}

	if c.OutputPath == "" {
		return errors.New("output path cannot be empty")
	}

	if c.OutputPath == c.InputPath {
		return errors.New("output path must differ from the input path")
	}

	if c.Language == "" {
		return errors.New("language cannot be empty")
	}

	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("minscore must be within [0, 1], got %v", c.MinScore)
	}

	// A rules file is optional, but if given it has to be readable
	if c.RulesFile != "" {
		if _, err := os.Stat(c.RulesFile); err != nil {
			return fmt.Errorf("cannot access rules file %s: %w", c.RulesFile, err)
		}
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{InputPath: %s, OutputPath: %s, Language: %s, RulesFile: %s, MinScore: %v, LogLevel: %s, MaxFileSize: %d}",
		c.InputPath, c.OutputPath, c.Language, c.RulesFile, c.MinScore, c.LogLevel, c.MaxFileSize)
}
