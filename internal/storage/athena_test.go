package storage

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loadtest-stats/internal/stats"
)

func sampleResultRow() []string {
	percentiles := make([]string, len(stats.PercentilesToReport))
	for i := range stats.PercentilesToReport {
		percentiles[i] = fmt.Sprintf("%d", 100+10*i)
	}
	return []string{
		"GetPatient",
		"GET",
		"1500",
		"3",
		"140",
		"151.25",
		"12.5",
		"2400.0",
		"25.0",
		"0.05",
		"[" + strings.Join(percentiles, ", ") + "]",
	}
}

func TestParseRow_Reconstructs(t *testing.T) {
	values, err := parseRow(sampleResultRow())
	require.NoError(t, err)

	task, err := stats.TaskStatsFromRow(values)
	require.NoError(t, err)

	assert.Equal(t, "GetPatient", task.TaskName)
	assert.Equal(t, "GET", task.RequestMethod)
	assert.Equal(t, int64(1500), task.NumRequests)
	assert.Equal(t, int64(3), task.NumFailures)
	assert.Equal(t, int64(140), task.MedianResponseTime)
	assert.Equal(t, 151.25, task.AverageResponseTime)
	assert.Equal(t, 12.5, task.MinResponseTime)
	assert.Equal(t, 2400.0, task.MaxResponseTime)
	assert.Equal(t, int64(100), task.ResponseTimePercentiles["0.5"])
	assert.Len(t, task.ResponseTimePercentiles, len(stats.PercentilesToReport))
}

func TestParseRow_SchemaDrift(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]string) []string
	}{
		{
			name:   "missing column",
			mutate: func(row []string) []string { return row[:len(row)-1] },
		},
		{
			name:   "extra column",
			mutate: func(row []string) []string { return append(row, "0") },
		},
		{
			name: "non-numeric count",
			mutate: func(row []string) []string {
				row[2] = "many"
				return row
			},
		},
		{
			name: "percentiles not an array",
			mutate: func(row []string) []string {
				row[len(row)-1] = "120"
				return row
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRow(tt.mutate(sampleResultRow()))

			require.Error(t, err)
			assert.ErrorIs(t, err, stats.ErrSchemaDrift)
		})
	}
}

func TestParseRow_PercentileArityMismatchSurfaces(t *testing.T) {
	row := sampleResultRow()
	row[len(row)-1] = "[1, 2]"

	values, err := parseRow(row)
	require.NoError(t, err)

	_, err = stats.TaskStatsFromRow(values)
	require.Error(t, err)
	assert.ErrorIs(t, err, stats.ErrSchemaDrift)
}

func TestParseIntArray(t *testing.T) {
	v, err := parseIntArray("[120, 450, 0]")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(120), int64(450), int64(0)}, v)

	v, err = parseIntArray("[]")
	require.NoError(t, err)
	assert.Empty(t, v)

	_, err = parseIntArray("120")
	assert.Error(t, err)
}
