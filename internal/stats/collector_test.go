package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is a scriptable live source for collector tests
type fakeSource struct {
	resetAfterSpawn bool
	numUsers        int
	spawnRate       float64
	startTime       float64
	lastRequestTime float64
	counters        []TaskCounter
}

func (f *fakeSource) StatsResetAfterSpawn() bool     { return f.resetAfterSpawn }
func (f *fakeSource) NumTotalUsers() int             { return f.numUsers }
func (f *fakeSource) SpawnRate() float64             { return f.spawnRate }
func (f *fakeSource) StartTime() float64             { return f.startTime }
func (f *fakeSource) LastRequestTimestamp() float64  { return f.lastRequestTime }
func (f *fakeSource) TaskCounters() []TaskCounter    { return f.counters }

func TestCollector_Collect(t *testing.T) {
	source := &fakeSource{
		resetAfterSpawn: true,
		numUsers:        50,
		spawnRate:       5.0,
		startTime:       1000.0,
		lastRequestTime: 1300.5,
		counters: []TaskCounter{
			&fakeCounter{name: "GetPatient", method: "POST", numRequests: 5},
			&fakeCounter{name: "GetCoverage", method: "GET", numRequests: 7},
			&fakeCounter{name: "GetPatient", method: "GET", numRequests: 3},
		},
	}

	collector := NewCollector(source, "release-42", EnvironmentProd)
	collected := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	collector.now = func() time.Time { return collected }

	snapshot := collector.Collect()

	require.NotNil(t, snapshot.Metadata)
	assert.Equal(t, collected.Unix(), snapshot.Metadata.Timestamp)
	assert.Equal(t, "release-42", snapshot.Metadata.Tag)
	assert.Equal(t, EnvironmentProd, snapshot.Metadata.Environment)
	assert.True(t, snapshot.Metadata.StatsResetAfterSpawn)
	assert.Equal(t, 50, snapshot.Metadata.NumTotalUsers)
	assert.Equal(t, 5.0, snapshot.Metadata.NumUsersPerSecond)
	assert.InDelta(t, 300.5, snapshot.Metadata.TotalRuntime, 1e-9)

	// Sorted by task name, then method
	require.Len(t, snapshot.Tasks, 3)
	assert.Equal(t, "GetCoverage", snapshot.Tasks[0].TaskName)
	assert.Equal(t, "GetPatient", snapshot.Tasks[1].TaskName)
	assert.Equal(t, "GET", snapshot.Tasks[1].RequestMethod)
	assert.Equal(t, "GetPatient", snapshot.Tasks[2].TaskName)
	assert.Equal(t, "POST", snapshot.Tasks[2].RequestMethod)
}

func TestCollector_DefaultEnvironment(t *testing.T) {
	collector := NewCollector(&fakeSource{}, "tag", "")

	snapshot := collector.Collect()

	require.NotNil(t, snapshot.Metadata)
	assert.Equal(t, EnvironmentTest, snapshot.Metadata.Environment)
}

func TestCollector_RepeatedSnapshotsIndependent(t *testing.T) {
	source := &fakeSource{
		counters: []TaskCounter{
			&fakeCounter{name: "GetEOB", method: "GET", numRequests: 9},
		},
	}
	collector := NewCollector(source, "tag", EnvironmentTest)

	first := collector.Collect()
	second := collector.Collect()

	require.Len(t, first.Tasks, 1)
	require.Len(t, second.Tasks, 1)
	assert.Equal(t, first.Tasks, second.Tasks)

	// Mutating one snapshot must not affect the other
	first.Tasks[0].ResponseTimePercentiles["0.5"] = 999
	assert.NotEqual(t, first.Tasks[0].ResponseTimePercentiles, second.Tasks[0].ResponseTimePercentiles)
}

func TestNewStatsMetadata_NegativeRuntimePassedThrough(t *testing.T) {
	source := &fakeSource{
		startTime:       2000.0,
		lastRequestTime: 1990.0,
	}

	md := NewStatsMetadata(123, "tag", EnvironmentTest, source)

	assert.InDelta(t, -10.0, md.TotalRuntime, 1e-9)
}
