package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"loadtest-stats/internal/config"
	"loadtest-stats/internal/harness"
	"loadtest-stats/internal/logging"
	"loadtest-stats/internal/report"
	"loadtest-stats/internal/stats"
	"loadtest-stats/internal/storage"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.json", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	loadPrevious := flag.Bool("load-previous", false, "Load the previous run's stats from Athena instead of running a test")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(*debug)
	defer logger.Sync()

	// Create context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\n\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if *loadPrevious {
		if err := loadPreviousStats(ctx, cfg, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load previous stats: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Create and run the load test
	runner, err := harness.NewRunner(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create runner: %v\n", err)
		os.Exit(1)
	}

	snapshot, err := runner.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load test failed: %v\n", err)
		os.Exit(1)
	}

	// Persist the snapshot
	if err := persistSnapshot(ctx, cfg, snapshot, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to persist snapshot: %v\n", err)
		os.Exit(1)
	}

	// Generate report
	if err := generateReport(cfg, snapshot); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate report: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nLoad test completed successfully!")
}

// persistSnapshot writes the snapshot to every configured storage target
func persistSnapshot(ctx context.Context, cfg *config.Config, snapshot *stats.AggregatedStats, logger *zap.Logger) error {
	if cfg.Storage.Dir != "" {
		if _, err := storage.NewFileWriter(cfg.Storage.Dir, logger).Write(snapshot); err != nil {
			return err
		}
	}

	if cfg.Storage.Bucket != "" {
		awsCfg, err := storage.NewAWSConfig(ctx, cfg.AWS)
		if err != nil {
			return fmt.Errorf("failed to load AWS config: %w", err)
		}
		writer := storage.NewS3Writer(awsCfg, cfg.Storage.Bucket, cfg.Storage.Prefix, logger)
		if _, err := writer.Write(ctx, snapshot); err != nil {
			return err
		}
	}

	return nil
}

// loadPreviousStats reconstructs the previous run's stats from Athena and
// prints them
func loadPreviousStats(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Storage.Athena.Database == "" {
		return fmt.Errorf("storage.athena.database is not configured")
	}

	awsCfg, err := storage.NewAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	reader := storage.NewAthenaReader(awsCfg, cfg.Storage.Athena, logger)
	snapshot, err := reader.ReadTaskStats(ctx, cfg.Test.Tag)
	if err != nil {
		return err
	}

	report.NewConsoleReporter().PrintStats(snapshot)
	return nil
}

// generateReport renders the markdown report and saves it
func generateReport(cfg *config.Config, snapshot *stats.AggregatedStats) error {
	generator := report.NewMarkdownReporter(cfg)

	reportContent := generator.Generate(snapshot)

	if err := generator.SaveToFile(reportContent, cfg.Output.ReportFile); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	report.NewConsoleReporter().PrintReportSaved(cfg.Output.ReportFile)

	return nil
}
