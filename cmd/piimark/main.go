package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/piimark/piimark/internal/annotate"
	"github.com/piimark/piimark/internal/config"
	"github.com/piimark/piimark/internal/detect"
	"github.com/piimark/piimark/internal/extract"
	"github.com/piimark/piimark/internal/pipeline"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the configured level
func setupLogging(cfg *config.Config) {
	log.SetOutput(os.Stderr)
	if cfg.IsDebug() {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

// buildDetector assembles the recognizer set, merging in custom rules
// when a rules file was configured
func buildDetector(cfg *config.Config) (*detect.PatternDetector, error) {
	var detector *detect.PatternDetector
	if cfg.RulesFile != "" {
		rules, err := detect.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules from %s: %w", cfg.RulesFile, err)
		}
		detector = detect.NewPatternDetectorWithRules(rules)
	} else {
		detector = detect.NewPatternDetector()
	}
	detector.SetMinScore(cfg.MinScore)
	return detector, nil
}

// openDocument adapts the annotation writer to the pipeline's opener
func openDocument(path string) (pipeline.Document, error) {
	return annotate.Open(path)
}

func run(cfg *config.Config) error {
	extractor := extract.NewExtractor(cfg.MaxFileSize)

	detector, err := buildDetector(cfg)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(extractor, detector, openDocument, cfg.Language, log.Default())

	summary, err := runner.Run(context.Background(), cfg.InputPath, cfg.OutputPath)
	if err != nil {
		return err
	}

	printSummary(cfg, summary)
	return nil
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	// Load configuration from flags first
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging based on the configured level
	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	if err := run(cfg); err != nil {
		log.Fatalf("Annotation run failed: %v", err)
	}
}

// printSummary reports the outcome of a completed run
func printSummary(cfg *config.Config, summary *pipeline.Summary) {
	fmt.Printf("Wrote %s\n", cfg.OutputPath)
	fmt.Printf("Pages: %d  Blocks: %d  Detections: %d  Annotations: %d\n",
		summary.Pages, summary.Blocks, summary.Detections, summary.Annotations)
	if summary.Skipped > 0 {
		fmt.Printf("Skipped %d empty detection span(s)\n", summary.Skipped)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("piimark\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
