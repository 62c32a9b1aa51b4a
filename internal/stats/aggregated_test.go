package stats

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *AggregatedStats {
	md := StatsMetadata{
		Timestamp:            1693400000,
		Tag:                  "release-42",
		Environment:          EnvironmentTest,
		StatsResetAfterSpawn: true,
		NumTotalUsers:        100,
		NumUsersPerSecond:    10.0,
		TotalRuntime:         305.5,
	}
	second := sampleTaskStats()
	second.TaskName = "GetCoverage"
	second.RequestMethod = "POST"
	return &AggregatedStats{
		Metadata: &md,
		Tasks:    []TaskStats{sampleTaskStats(), second},
	}
}

func TestAggregatedStats_JSONRoundTrip(t *testing.T) {
	original := sampleSnapshot()

	data, err := original.ToJSON()
	require.NoError(t, err)

	// Decode generically, the way stored snapshots come back from a JSON
	// blob or a query engine, then normalize
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	reconstructed, err := NewAggregatedStats(raw["metadata"], raw["tasks"])
	require.NoError(t, err)
	assert.Equal(t, original, reconstructed)
}

func TestAggregatedStatsFromJSON(t *testing.T) {
	original := sampleSnapshot()

	data, err := original.ToJSON()
	require.NoError(t, err)

	reconstructed, err := AggregatedStatsFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, original, reconstructed)
}

func TestNewAggregatedStats_Idempotent(t *testing.T) {
	original := sampleSnapshot()

	once, err := NewAggregatedStats(original.Metadata, original.Tasks)
	require.NoError(t, err)

	twice, err := NewAggregatedStats(once.Metadata, once.Tasks)
	require.NoError(t, err)

	assert.Equal(t, original, once)
	assert.Equal(t, once, twice)
}

func TestNewAggregatedStats_TypedPassThrough(t *testing.T) {
	md := sampleSnapshot().Metadata
	tasks := []TaskStats{sampleTaskStats()}

	result, err := NewAggregatedStats(md, tasks)
	require.NoError(t, err)

	assert.Same(t, md, result.Metadata)
	assert.Equal(t, tasks, result.Tasks)
}

func TestNewAggregatedStats_NoMetadata(t *testing.T) {
	result, err := NewAggregatedStats(nil, []TaskStats{sampleTaskStats()})
	require.NoError(t, err)

	assert.Nil(t, result.Metadata)
	assert.Len(t, result.Tasks, 1)
}

func TestNewAggregatedStats_MixedTaskElements(t *testing.T) {
	typed := sampleTaskStats()

	data, err := json.Marshal(sampleTaskStats())
	require.NoError(t, err)
	var rawTask map[string]any
	require.NoError(t, json.Unmarshal(data, &rawTask))

	result, err := NewAggregatedStats(nil, []any{typed, rawTask})
	require.NoError(t, err)

	require.Len(t, result.Tasks, 2)
	assert.Equal(t, result.Tasks[0], result.Tasks[1])
}

func TestNewAggregatedStats_DriftedMapping(t *testing.T) {
	tests := []struct {
		name     string
		metadata any
		tasks    any
	}{
		{
			name:     "metadata missing field",
			metadata: map[string]any{"timestamp": int64(1)},
			tasks:    nil,
		},
		{
			name: "metadata unknown field",
			metadata: func() map[string]any {
				data, _ := json.Marshal(sampleSnapshot().Metadata)
				var m map[string]any
				_ = json.Unmarshal(data, &m)
				m["unexpected"] = true
				return m
			}(),
			tasks: nil,
		},
		{
			name:     "task missing field",
			metadata: nil,
			tasks:    []any{map[string]any{"task_name": "x"}},
		},
		{
			name:     "tasks not a sequence",
			metadata: nil,
			tasks:    "oops",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAggregatedStats(tt.metadata, tt.tasks)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSchemaDrift)
		})
	}
}

func TestEnvironment_Parse(t *testing.T) {
	env, err := ParseEnvironment("PROD")
	require.NoError(t, err)
	assert.Equal(t, EnvironmentProd, env)

	_, err = ParseEnvironment("STAGING")
	assert.Error(t, err)
}

func TestEnvironment_UnmarshalRejectsUnknown(t *testing.T) {
	var md StatsMetadata
	err := json.Unmarshal([]byte(`{"environment":"QA"}`), &md)
	assert.Error(t, err)
}
