package harness

import (
	"sync"
	"time"

	"loadtest-stats/internal/stats"
)

type entryKey struct {
	name   string
	method string
}

// Registry is the live statistics source for one test run: the set of
// per-task counter entries plus the run-state bookkeeping the snapshot
// metadata is built from. It implements stats.Source. Workers write through
// Record while snapshots read concurrently; the registry lock covers the
// entry map and timestamps only, individual counters guard themselves.
type Registry struct {
	mu      sync.Mutex
	entries map[entryKey]*Entry

	startTime       time.Time
	lastRequestTime time.Time

	resetAfterSpawn bool
	numUsers        int
	spawnRate       float64
}

// NewRegistry creates an empty registry for a run with the given user-ramp
// configuration
func NewRegistry(numUsers int, spawnRate float64, resetAfterSpawn bool) *Registry {
	return &Registry{
		entries:         make(map[entryKey]*Entry),
		startTime:       time.Now(),
		numUsers:        numUsers,
		spawnRate:       spawnRate,
		resetAfterSpawn: resetAfterSpawn,
	}
}

// Record adds one completed request to the counters for the given task
func (r *Registry) Record(name, method string, elapsed time.Duration, err error) {
	key := entryKey{name: name, method: method}

	r.mu.Lock()
	entry, ok := r.entries[key]
	if !ok {
		entry = newEntry(name, method, r)
		r.entries[key] = entry
	}
	r.lastRequestTime = time.Now()
	r.mu.Unlock()

	entry.record(elapsed, err != nil)
}

// ResetAll clears every entry's counters and restarts the run window. Used
// when stats should only cover the steady state after user ramp-up.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	entries := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.startTime = time.Now()
	r.lastRequestTime = time.Time{}
	r.mu.Unlock()

	for _, e := range entries {
		e.reset()
	}
}

// StatsResetAfterSpawn reports whether this run resets stats once all users
// have spawned
func (r *Registry) StatsResetAfterSpawn() bool { return r.resetAfterSpawn }

// NumTotalUsers returns the configured user count
func (r *Registry) NumTotalUsers() int { return r.numUsers }

// SpawnRate returns the configured user spawn rate in users/sec
func (r *Registry) SpawnRate() float64 { return r.spawnRate }

// StartTime returns the run start time in seconds since epoch
func (r *Registry) StartTime() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return toEpochSeconds(r.startTime)
}

// LastRequestTimestamp returns the time of the most recent recorded request
// in seconds since epoch, or the run start time if nothing has completed
func (r *Registry) LastRequestTimestamp() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastRequestTime.IsZero() {
		return toEpochSeconds(r.startTime)
	}
	return toEpochSeconds(r.lastRequestTime)
}

// TaskCounters returns the current set of per-task counters
func (r *Registry) TaskCounters() []stats.TaskCounter {
	r.mu.Lock()
	defer r.mu.Unlock()

	counters := make([]stats.TaskCounter, 0, len(r.entries))
	for _, entry := range r.entries {
		counters = append(counters, entry)
	}
	return counters
}

// windowSeconds returns the observed run window used for rate calculations
func (r *Registry) windowSeconds() float64 {
	return r.LastRequestTimestamp() - r.StartTime()
}

func toEpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
