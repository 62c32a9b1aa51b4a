package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"loadtest-stats/internal/config"
	"loadtest-stats/internal/stats"
)

// MarkdownReporter generates markdown reports from a stats snapshot
type MarkdownReporter struct {
	config *config.Config
}

// NewMarkdownReporter creates a new markdown reporter
func NewMarkdownReporter(cfg *config.Config) *MarkdownReporter {
	return &MarkdownReporter{
		config: cfg,
	}
}

// Generate generates the full markdown report for one snapshot
func (m *MarkdownReporter) Generate(snapshot *stats.AggregatedStats) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Load Test Statistics Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))

	// Run Metadata
	m.writeMetadata(&sb, snapshot)

	// Per-Task Results
	m.writeTaskResults(&sb, snapshot)

	// Response Time Percentiles
	m.writePercentiles(&sb, snapshot)

	return sb.String()
}

// writeMetadata writes the run metadata section
func (m *MarkdownReporter) writeMetadata(sb *strings.Builder, snapshot *stats.AggregatedStats) {
	md := snapshot.Metadata
	if md == nil {
		return
	}

	sb.WriteString("## Run Metadata\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Timestamp | %d |\n", md.Timestamp))
	sb.WriteString(fmt.Sprintf("| Tag | %s |\n", md.Tag))
	sb.WriteString(fmt.Sprintf("| Environment | %s |\n", md.Environment))
	sb.WriteString(fmt.Sprintf("| Host | %s |\n", m.config.Test.Host))
	sb.WriteString(fmt.Sprintf("| Stats Reset After Spawn | %t |\n", md.StatsResetAfterSpawn))
	sb.WriteString(fmt.Sprintf("| Total Users | %d |\n", md.NumTotalUsers))
	sb.WriteString(fmt.Sprintf("| Spawn Rate | %.2f users/s |\n", md.NumUsersPerSecond))
	sb.WriteString(fmt.Sprintf("| Total Runtime | %.2f seconds |\n\n", md.TotalRuntime))
}

// writeTaskResults writes the per-task metric table
func (m *MarkdownReporter) writeTaskResults(sb *strings.Builder, snapshot *stats.AggregatedStats) {
	sb.WriteString("## Task Results\n\n")

	sb.WriteString("| Task | Method | Requests | Failures | Median (ms) | Avg (ms) | Min (ms) | Max (ms) | Req/s | Fail/s |\n")
	sb.WriteString("|------|--------|----------|----------|-------------|----------|----------|----------|-------|--------|\n")

	for _, task := range snapshot.Tasks {
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %d | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
			task.TaskName,
			task.RequestMethod,
			task.NumRequests,
			task.NumFailures,
			task.MedianResponseTime,
			task.AverageResponseTime,
			task.MinResponseTime,
			task.MaxResponseTime,
			task.TotalReqsPerSecond,
			task.TotalFailsPerSec,
		))
	}
	sb.WriteString("\n")
}

// writePercentiles writes the response time percentile table
func (m *MarkdownReporter) writePercentiles(sb *strings.Builder, snapshot *stats.AggregatedStats) {
	sb.WriteString("## Response Time Percentiles (ms)\n\n")

	sb.WriteString("| Task | Method |")
	for _, p := range stats.PercentilesToReport {
		sb.WriteString(fmt.Sprintf(" %s |", stats.PercentileLabel(p)))
	}
	sb.WriteString("\n|------|--------|")
	for range stats.PercentilesToReport {
		sb.WriteString("------|")
	}
	sb.WriteString("\n")

	for _, task := range snapshot.Tasks {
		sb.WriteString(fmt.Sprintf("| %s | %s |", task.TaskName, task.RequestMethod))
		for _, p := range stats.PercentilesToReport {
			sb.WriteString(fmt.Sprintf(" %d |", task.ResponseTimePercentiles[stats.PercentileLabel(p)]))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// SaveToFile saves the report to a file
func (m *MarkdownReporter) SaveToFile(content string, filename string) error {
	return os.WriteFile(filename, []byte(content), 0644)
}
