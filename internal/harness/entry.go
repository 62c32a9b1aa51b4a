package harness

import (
	"sync"
	"time"

	"github.com/codahale/hdrhistogram"
)

// Histogram bounds for recorded response times, in milliseconds
const (
	minTrackableMs = 1
	maxTrackableMs = 3600000
	sigFigs        = 3
)

// Entry holds the live counters for one (task name, method) pair. Workers
// update it concurrently through Record; snapshot collection reads it
// through the stats.TaskCounter methods. Percentiles come from an HDR
// histogram, so the aggregation core never sees raw latency samples.
type Entry struct {
	mu sync.Mutex

	name   string
	method string

	numRequests int64
	numFailures int64

	// Response time tracking (milliseconds)
	totalResponseTime float64
	minResponseTime   float64
	hasMin            bool
	maxResponseTime   float64
	hist              *hdrhistogram.Histogram

	registry *Registry
}

func newEntry(name, method string, registry *Registry) *Entry {
	return &Entry{
		name:     name,
		method:   method,
		hist:     hdrhistogram.New(minTrackableMs, maxTrackableMs, sigFigs),
		registry: registry,
	}
}

// record adds one observed request to the counters
func (e *Entry) record(elapsed time.Duration, failed bool) {
	ms := float64(elapsed.Microseconds()) / 1000.0

	e.mu.Lock()
	defer e.mu.Unlock()

	e.numRequests++
	if failed {
		e.numFailures++
	}

	e.totalResponseTime += ms
	if !e.hasMin || ms < e.minResponseTime {
		e.minResponseTime = ms
		e.hasMin = true
	}
	if ms > e.maxResponseTime {
		e.maxResponseTime = ms
	}

	rounded := int64(ms + 0.5)
	if rounded < minTrackableMs {
		rounded = minTrackableMs
	}
	if rounded > maxTrackableMs {
		rounded = maxTrackableMs
	}
	e.hist.RecordValue(rounded)
}

// reset clears all counters while keeping the entry registered
func (e *Entry) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.numRequests = 0
	e.numFailures = 0
	e.totalResponseTime = 0
	e.minResponseTime = 0
	e.hasMin = false
	e.maxResponseTime = 0
	e.hist.Reset()
}

// Name returns the task name
func (e *Entry) Name() string { return e.name }

// Method returns the task's request method
func (e *Entry) Method() string { return e.method }

// NumRequests returns the total request count
func (e *Entry) NumRequests() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.numRequests
}

// NumFailures returns the total failure count
func (e *Entry) NumFailures() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.numFailures
}

// MedianResponseTime returns the median response time in milliseconds
func (e *Entry) MedianResponseTime() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.numRequests == 0 {
		return 0
	}
	return e.hist.ValueAtQuantile(50)
}

// AverageResponseTime returns the mean response time in milliseconds
func (e *Entry) AverageResponseTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.numRequests == 0 {
		return 0
	}
	return e.totalResponseTime / float64(e.numRequests)
}

// MinResponseTime returns the fastest response time, or false if no
// requests have completed
func (e *Entry) MinResponseTime() (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.minResponseTime, e.hasMin
}

// MaxResponseTime returns the slowest response time in milliseconds
func (e *Entry) MaxResponseTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxResponseTime
}

// TotalRequestsPerSecond returns the request rate over the run window
func (e *Entry) TotalRequestsPerSecond() float64 {
	return e.perSecond(e.NumRequests())
}

// TotalFailuresPerSecond returns the failure rate over the run window
func (e *Entry) TotalFailuresPerSecond() float64 {
	return e.perSecond(e.NumFailures())
}

func (e *Entry) perSecond(count int64) float64 {
	window := e.registry.windowSeconds()
	if window <= 0 {
		return 0
	}
	return float64(count) / window
}

// ResponseTimePercentile returns the response time below which the given
// fraction (0.0-1.0) of requests completed, or false if no requests have
// completed
func (e *Entry) ResponseTimePercentile(p float64) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.numRequests == 0 {
		return 0, false
	}
	return float64(e.hist.ValueAtQuantile(p * 100)), true
}
