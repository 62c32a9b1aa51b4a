package stats

import (
	"sort"
	"time"
)

// Source is the full read-side view of a live load engine: the run state
// plus the current set of per-task counters.
type Source interface {
	RunState
	TaskCounters() []TaskCounter
}

// Collector takes point-in-time snapshots of all task statistics from a
// live source. Collection is read-only: it never resets or mutates the
// counters, so successive calls during one run yield independent snapshots.
// The source may be mutated concurrently by the load engine's workers;
// individual counter reads can be slightly skewed relative to one another,
// which is an accepted trade-off for a lock-free snapshot.
type Collector struct {
	source      Source
	tag         string
	environment Environment

	now func() time.Time
}

// NewCollector creates a Collector for the given live source. The tag
// distinguishes this run's snapshots in storage; an empty environment
// defaults to TEST.
func NewCollector(source Source, tag string, environment Environment) *Collector {
	if environment == "" {
		environment = EnvironmentTest
	}
	return &Collector{
		source:      source,
		tag:         tag,
		environment: environment,
		now:         time.Now,
	}
}

// Collect returns a snapshot of all task statistics at the current time
func (c *Collector) Collect() *AggregatedStats {
	timestamp := c.now().Unix()
	metadata := NewStatsMetadata(timestamp, c.tag, c.environment, c.source)

	return &AggregatedStats{
		Metadata: &metadata,
		Tasks:    c.taskStatsList(),
	}
}

// taskStatsList builds one TaskStats per live counter, sorted by task name
// then method — the same ordering used for summary reports
func (c *Collector) taskStatsList() []TaskStats {
	counters := c.source.TaskCounters()
	sort.Slice(counters, func(i, j int) bool {
		if counters[i].Name() != counters[j].Name() {
			return counters[i].Name() < counters[j].Name()
		}
		return counters[i].Method() < counters[j].Method()
	})

	tasks := make([]TaskStats, 0, len(counters))
	for _, counter := range counters {
		tasks = append(tasks, NewTaskStats(counter))
	}
	return tasks
}
