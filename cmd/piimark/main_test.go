package main

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piimark/piimark/internal/config"
)

const testVersion = "1.2.3"

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	originalStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = originalStdout }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
		w.Close()
	}()

	var buf bytes.Buffer
	io.Copy(&buf, r)
	<-done

	return buf.String()
}

func TestPrintVersion(t *testing.T) {
	oldVersion := version
	oldBuildTime := buildTime
	oldGitCommit := gitCommit

	version = testVersion
	buildTime = "2023-12-01_10:30:00"
	gitCommit = "abc123"

	defer func() {
		version = oldVersion
		buildTime = oldBuildTime
		gitCommit = oldGitCommit
	}()

	output := captureStdout(t, printVersion)

	expectedStrings := []string{
		"piimark",
		"Version: " + testVersion,
		"Build Time: 2023-12-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("printVersion() output missing expected string: %s\nActual output:\n%s", expected, output)
		}
	}
}

func TestPrintVersionWithDefaults(t *testing.T) {
	oldVersion := version
	oldBuildTime := buildTime
	oldGitCommit := gitCommit

	version = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"

	defer func() {
		version = oldVersion
		buildTime = oldBuildTime
		gitCommit = oldGitCommit
	}()

	output := captureStdout(t, printVersion)

	expectedStrings := []string{
		"piimark",
		"Version: dev",
		"Build Time: unknown",
		"Git Commit: unknown",
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("printVersion() output missing expected string: %s\nActual output:\n%s", expected, output)
		}
	}
}

func TestSetupLogging(t *testing.T) {
	originalOutput := log.Writer()
	originalFlags := log.Flags()
	defer func() {
		log.SetOutput(originalOutput)
		log.SetFlags(originalFlags)
	}()

	t.Run("debug level adds file locations", func(t *testing.T) {
		cfg := &config.Config{LogLevel: "debug"}
		setupLogging(cfg)

		if log.Writer() != os.Stderr {
			t.Error("setupLogging() should direct logs to stderr")
		}
		if log.Flags() != log.LstdFlags|log.Lshortfile {
			t.Errorf("setupLogging() debug flags = %v, want %v", log.Flags(), log.LstdFlags|log.Lshortfile)
		}
	})

	t.Run("info level uses standard flags", func(t *testing.T) {
		cfg := &config.Config{LogLevel: "info"}
		setupLogging(cfg)

		if log.Writer() != os.Stderr {
			t.Error("setupLogging() should direct logs to stderr")
		}
		if log.Flags() != log.LstdFlags {
			t.Errorf("setupLogging() info flags = %v, want %v", log.Flags(), log.LstdFlags)
		}
	})
}

func TestBuildDetector(t *testing.T) {
	t.Run("without rules file", func(t *testing.T) {
		cfg := config.DefaultConfig()

		detector, err := buildDetector(cfg)
		if err != nil {
			t.Fatalf("buildDetector() unexpected error: %v", err)
		}
		if detector == nil {
			t.Fatal("buildDetector() returned nil detector")
		}
	})

	t.Run("with rules file", func(t *testing.T) {
		dir := t.TempDir()
		rulesPath := filepath.Join(dir, "rules.yaml")
		rules := "recognizers:\n  - entity: EMPLOYEE_ID\n    pattern: 'EMP-[0-9]{6}'\n    score: 0.9\n"
		if err := os.WriteFile(rulesPath, []byte(rules), 0o600); err != nil {
			t.Fatalf("Failed to write rules file: %v", err)
		}

		cfg := config.DefaultConfig()
		cfg.RulesFile = rulesPath

		detector, err := buildDetector(cfg)
		if err != nil {
			t.Fatalf("buildDetector() unexpected error: %v", err)
		}
		if detector == nil {
			t.Fatal("buildDetector() returned nil detector")
		}
	})

	t.Run("with broken rules file", func(t *testing.T) {
		dir := t.TempDir()
		rulesPath := filepath.Join(dir, "rules.yaml")
		if err := os.WriteFile(rulesPath, []byte("recognizers:\n  - pattern: '['\n"), 0o600); err != nil {
			t.Fatalf("Failed to write rules file: %v", err)
		}

		cfg := config.DefaultConfig()
		cfg.RulesFile = rulesPath

		if _, err := buildDetector(cfg); err == nil {
			t.Error("buildDetector() expected error for broken rules file")
		}
	})
}

func TestVersionFlagDetection(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		hasVersion bool
	}{
		{
			name:       "no version flag",
			args:       []string{"program"},
			hasVersion: false,
		},
		{
			name:       "-version flag",
			args:       []string{"program", "-version"},
			hasVersion: true,
		},
		{
			name:       "--version flag",
			args:       []string{"program", "--version"},
			hasVersion: true,
		},
		{
			name:       "-v flag",
			args:       []string{"program", "-v"},
			hasVersion: true,
		},
		{
			name:       "version flag with other args",
			args:       []string{"program", "--in=report.pdf", "-version", "--lang=de"},
			hasVersion: true,
		},
		{
			name:       "similar but not version flag",
			args:       []string{"program", "-verbose", "-versions"},
			hasVersion: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := false
			for _, arg := range tt.args[1:] { // Skip program name
				if arg == "-version" || arg == "--version" || arg == "-v" {
					found = true
					break
				}
			}

			if found != tt.hasVersion {
				t.Errorf("Version flag detection for %v: got %v, want %v", tt.args, found, tt.hasVersion)
			}
		})
	}
}

func TestRunFailsOnMissingInput(t *testing.T) {
	originalOutput := log.Writer()
	defer log.SetOutput(originalOutput)
	log.SetOutput(io.Discard)

	cfg := config.DefaultConfig()
	cfg.InputPath = "/nonexistent/input.pdf"
	cfg.OutputPath = "/nonexistent/input.highlighted.pdf"

	if err := run(cfg); err == nil {
		t.Error("run() expected error for missing input file")
	}
}
