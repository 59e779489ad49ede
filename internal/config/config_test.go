package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		InputPath:   "/tmp/report.pdf",
		OutputPath:  "/tmp/report.highlighted.pdf",
		Language:    "en",
		LogLevel:    "info",
		MaxFileSize: 1024,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test default values
	if cfg.Language != "en" {
		t.Errorf("Expected default language to be 'en', got '%s'", cfg.Language)
	}

	if cfg.Version != "1.0.0" {
		t.Errorf("Expected default version to be '1.0.0', got '%s'", cfg.Version)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}

	if cfg.MinScore != 0 {
		t.Errorf("Expected default min score to be 0, got %v", cfg.MinScore)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "empty input path",
			mutate:  func(c *Config) { c.InputPath = "" },
			wantErr: true,
		},
		{
			name:    "input without pdf extension",
			mutate:  func(c *Config) { c.InputPath = "/tmp/report.txt" },
			wantErr: true,
		},
		{
			name:    "empty output path",
			mutate:  func(c *Config) { c.OutputPath = "" },
			wantErr: true,
		},
		{
			name:    "output equals input",
			mutate:  func(c *Config) { c.OutputPath = c.InputPath },
			wantErr: true,
		},
		{
			name:    "empty language",
			mutate:  func(c *Config) { c.Language = "" },
			wantErr: true,
		},
		{
			name:    "min score above one",
			mutate:  func(c *Config) { c.MinScore = 1.5 },
			wantErr: true,
		},
		{
			name:    "negative min score",
			mutate:  func(c *Config) { c.MinScore = -0.1 },
			wantErr: true,
		},
		{
			name:    "missing rules file",
			mutate:  func(c *Config) { c.RulesFile = "/nonexistent/rules.yaml" },
			wantErr: true,
		},
		{
			name:    "zero max file size",
			mutate:  func(c *Config) { c.MaxFileSize = 0 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateWithExistingRulesFile(t *testing.T) {
	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(rulesPath, []byte("recognizers: []\n"), 0o600); err != nil {
		t.Fatalf("Failed to write rules file: %v", err)
	}

	cfg := validConfig()
	cfg.RulesFile = rulesPath

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected config with readable rules file to validate, got %v", err)
	}
}

func TestIsDebug(t *testing.T) {
	cfg := validConfig()

	if cfg.IsDebug() {
		t.Error("Expected IsDebug to be false for info level")
	}

	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("Expected IsDebug to be true for debug level")
	}
}

func TestConfigString(t *testing.T) {
	cfg := validConfig()
	s := cfg.String()

	for _, want := range []string{cfg.InputPath, cfg.OutputPath, cfg.Language, cfg.LogLevel} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected String() to contain %q, got %q", want, s)
		}
	}
}
