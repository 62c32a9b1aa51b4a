package report

import (
	"fmt"
	"strings"

	"loadtest-stats/internal/config"
	"loadtest-stats/internal/stats"
)

// ConsoleReporter handles real-time console output
type ConsoleReporter struct{}

// NewConsoleReporter creates a new console reporter
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// PrintHeader prints the test header
func (c *ConsoleReporter) PrintHeader(cfg *config.Config) {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("Load Test Statistics Collector")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Host: %s\n", cfg.Test.Host)
	fmt.Printf("Tag: %s\n", cfg.Test.Tag)
	fmt.Printf("Tasks: %d\n", len(cfg.Test.Tasks))
	fmt.Printf("Users: %d (spawn rate: %.1f/s)\n", cfg.Test.NumUsers, cfg.Test.SpawnRate)
	fmt.Printf("Duration: %d seconds\n", cfg.Test.DurationSeconds)
	fmt.Printf("Reset Stats After Spawn: %t\n", cfg.Test.ResetStatsAfterSpawn)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
}

// PrintSection prints a section header
func (c *ConsoleReporter) PrintSection(title string) {
	fmt.Println()
	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf(">>> %s\n", title)
	fmt.Println(strings.Repeat("-", 80))
	fmt.Println()
}

// PrintProgress prints a one-line progress update during the test
func (c *ConsoleReporter) PrintProgress(snapshot *stats.AggregatedStats) {
	var requests, failures int64
	var rps float64
	for _, task := range snapshot.Tasks {
		requests += task.NumRequests
		failures += task.NumFailures
		rps += task.TotalReqsPerSecond
	}
	fmt.Printf("  Progress: %d requests | Failures: %d | Req/s: %.2f | Tasks: %d\n",
		requests, failures, rps, len(snapshot.Tasks))
}

// PrintStats prints the per-task summary table for a completed run
func (c *ConsoleReporter) PrintStats(snapshot *stats.AggregatedStats) {
	fmt.Println("\nResults:")
	fmt.Println(strings.Repeat("─", 80))

	if md := snapshot.Metadata; md != nil {
		fmt.Printf("  Tag:                %s\n", md.Tag)
		fmt.Printf("  Environment:        %s\n", md.Environment)
		fmt.Printf("  Users:              %d (spawn rate: %.1f/s)\n", md.NumTotalUsers, md.NumUsersPerSecond)
		fmt.Printf("  Total Runtime:      %.2fs\n", md.TotalRuntime)
		fmt.Println()
	}

	fmt.Printf("  %-28s %-8s %10s %10s %10s %10s\n",
		"Task", "Method", "Requests", "Failures", "Median", "Req/s")
	for _, task := range snapshot.Tasks {
		fmt.Printf("  %-28s %-8s %10d %10d %8dms %10.2f\n",
			task.TaskName,
			task.RequestMethod,
			task.NumRequests,
			task.NumFailures,
			task.MedianResponseTime,
			task.TotalReqsPerSecond,
		)
	}

	fmt.Println(strings.Repeat("─", 80))
}

// PrintReportSaved prints a message indicating the report was saved
func (c *ConsoleReporter) PrintReportSaved(filename string) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Report saved to: %s\n", filename)
	fmt.Println(strings.Repeat("=", 80))
}

// PrintError prints an error message
func (c *ConsoleReporter) PrintError(err error) {
	fmt.Printf("\n[ERROR] %v\n", err)
}
