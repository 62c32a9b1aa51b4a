package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loadtest-stats/internal/stats"
)

func TestFileWriter_RoundTrip(t *testing.T) {
	percentiles := make(map[string]int64, len(stats.PercentilesToReport))
	for _, p := range stats.PercentilesToReport {
		percentiles[stats.PercentileLabel(p)] = 150
	}
	md := stats.StatsMetadata{
		Timestamp:         1693400000,
		Tag:               "release-42",
		Environment:       stats.EnvironmentTest,
		NumTotalUsers:     10,
		NumUsersPerSecond: 1.0,
		TotalRuntime:      60.0,
	}
	snapshot := &stats.AggregatedStats{
		Metadata: &md,
		Tasks: []stats.TaskStats{{
			TaskName:                "GetPatient",
			RequestMethod:           "GET",
			NumRequests:             100,
			MedianResponseTime:      150,
			AverageResponseTime:     160.5,
			MinResponseTime:         20.0,
			MaxResponseTime:         900.0,
			TotalReqsPerSecond:      1.6,
			ResponseTimePercentiles: percentiles,
		}},
	}

	writer := NewFileWriter(t.TempDir(), zap.NewNop())
	path, err := writer.Write(snapshot)
	require.NoError(t, err)
	assert.Contains(t, path, "release-42-1693400000.stats.json")

	loaded, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, snapshot, loaded)
}
