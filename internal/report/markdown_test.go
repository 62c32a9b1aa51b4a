package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"loadtest-stats/internal/config"
	"loadtest-stats/internal/stats"
)

func TestMarkdownReporter_Generate(t *testing.T) {
	cfg := &config.Config{
		Test: config.TestConfig{Host: "https://example.test"},
	}
	md := stats.StatsMetadata{
		Timestamp:         1693400000,
		Tag:               "release-42",
		Environment:       stats.EnvironmentProd,
		NumTotalUsers:     100,
		NumUsersPerSecond: 10.0,
		TotalRuntime:      300.0,
	}
	snapshot := &stats.AggregatedStats{
		Metadata: &md,
		Tasks: []stats.TaskStats{{
			TaskName:      "GetPatient",
			RequestMethod: "GET",
			NumRequests:   1500,
			ResponseTimePercentiles: map[string]int64{
				"0.5": 140, "0.95": 450,
			},
		}},
	}

	content := NewMarkdownReporter(cfg).Generate(snapshot)

	assert.Contains(t, content, "# Load Test Statistics Report")
	assert.Contains(t, content, "| Tag | release-42 |")
	assert.Contains(t, content, "| Environment | PROD |")
	assert.Contains(t, content, "| GetPatient | GET | 1500 |")
	assert.Contains(t, content, "## Response Time Percentiles (ms)")
	// Header carries every configured percentile label
	for _, p := range stats.PercentilesToReport {
		assert.Contains(t, content, stats.PercentileLabel(p))
	}
}

func TestMarkdownReporter_NoMetadataSection(t *testing.T) {
	content := NewMarkdownReporter(&config.Config{}).Generate(&stats.AggregatedStats{})

	assert.NotContains(t, content, "## Run Metadata")
	assert.Contains(t, content, "## Task Results")
}
