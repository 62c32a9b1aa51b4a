package stats

import (
	"errors"
	"fmt"
	"math"
)

// ErrSchemaDrift indicates that a flattened row no longer matches the field
// layout declared in this package. Historical comparisons would silently
// corrupt if such rows were padded or truncated, so reconstruction aborts.
var ErrSchemaDrift = errors.New("schema drift")

// TaskCounter is the read-side capability exposed by the live load engine
// for a single task's counters. The boolean results report whether a metric
// is defined; a task that has seen no requests has no minimum response time
// and no percentiles.
type TaskCounter interface {
	Name() string
	Method() string
	NumRequests() int64
	NumFailures() int64
	MedianResponseTime() int64
	AverageResponseTime() float64
	MinResponseTime() (float64, bool)
	MaxResponseTime() float64
	TotalRequestsPerSecond() float64
	TotalFailuresPerSecond() float64
	// ResponseTimePercentile returns the response time in milliseconds below
	// which the given fraction (0.0-1.0) of requests completed
	ResponseTimePercentile(p float64) (float64, bool)
}

// TaskStats is an immutable record of one task's aggregated metrics at
// snapshot time. Field declaration order is the flattened-row column order
// and must stay aligned with taskStatsFields below.
type TaskStats struct {
	TaskName                string           `json:"task_name"`
	RequestMethod           string           `json:"request_method"`
	NumRequests             int64            `json:"num_requests"`
	NumFailures             int64            `json:"num_failures"`
	MedianResponseTime      int64            `json:"median_response_time"`
	AverageResponseTime     float64          `json:"average_response_time"`
	MinResponseTime         float64          `json:"min_response_time"`
	MaxResponseTime         float64          `json:"max_response_time"`
	TotalReqsPerSecond      float64          `json:"total_reqs_per_second"`
	TotalFailsPerSec        float64          `json:"total_fails_per_sec"`
	ResponseTimePercentiles map[string]int64 `json:"response_time_percentiles"`
}

// NewTaskStats builds a TaskStats from a live task counter. Metrics the
// counter reports as undefined are recorded as 0 rather than omitted.
func NewTaskStats(counter TaskCounter) TaskStats {
	minRT, ok := counter.MinResponseTime()
	if !ok {
		minRT = 0
	}

	return TaskStats{
		TaskName:                counter.Name(),
		RequestMethod:           counter.Method(),
		NumRequests:             counter.NumRequests(),
		NumFailures:             counter.NumFailures(),
		MedianResponseTime:      counter.MedianResponseTime(),
		AverageResponseTime:     counter.AverageResponseTime(),
		MinResponseTime:         minRT,
		MaxResponseTime:         counter.MaxResponseTime(),
		TotalReqsPerSecond:      counter.TotalRequestsPerSecond(),
		TotalFailsPerSec:        counter.TotalFailuresPerSecond(),
		ResponseTimePercentiles: percentilesDict(counter),
	}
}

// percentilesDict queries the counter for every configured percentile. A
// task with no requests gets a 0 for every percentile without touching the
// counter; individual undefined percentiles also become 0.
func percentilesDict(counter TaskCounter) map[string]int64 {
	out := make(map[string]int64, len(PercentilesToReport))

	if counter.NumRequests() == 0 {
		for _, p := range PercentilesToReport {
			out[PercentileLabel(p)] = 0
		}
		return out
	}

	for _, p := range PercentilesToReport {
		v, ok := counter.ResponseTimePercentile(p)
		if !ok {
			v = 0
		}
		out[PercentileLabel(p)] = int64(math.Round(v))
	}
	return out
}

// fieldDesc ties a flattened-row column to its TaskStats field. The slice
// below is the single declared ordering shared by Row and TaskStatsFromRow.
type fieldDesc struct {
	name   string
	assign func(*TaskStats, any) error
}

var taskStatsFields = []fieldDesc{
	{"task_name", func(t *TaskStats, v any) (err error) { t.TaskName, err = asString(v); return }},
	{"request_method", func(t *TaskStats, v any) (err error) { t.RequestMethod, err = asString(v); return }},
	{"num_requests", func(t *TaskStats, v any) (err error) { t.NumRequests, err = asInt64(v); return }},
	{"num_failures", func(t *TaskStats, v any) (err error) { t.NumFailures, err = asInt64(v); return }},
	{"median_response_time", func(t *TaskStats, v any) (err error) { t.MedianResponseTime, err = asInt64(v); return }},
	{"average_response_time", func(t *TaskStats, v any) (err error) { t.AverageResponseTime, err = asFloat64(v); return }},
	{"min_response_time", func(t *TaskStats, v any) (err error) { t.MinResponseTime, err = asFloat64(v); return }},
	{"max_response_time", func(t *TaskStats, v any) (err error) { t.MaxResponseTime, err = asFloat64(v); return }},
	{"total_reqs_per_second", func(t *TaskStats, v any) (err error) { t.TotalReqsPerSecond, err = asFloat64(v); return }},
	{"total_fails_per_sec", func(t *TaskStats, v any) (err error) { t.TotalFailsPerSec, err = asFloat64(v); return }},
	{"response_time_percentiles", (*TaskStats).assignPercentiles},
}

// TaskStatsColumns returns the flattened-row column names in declaration
// order, as produced by Row and consumed by TaskStatsFromRow.
func TaskStatsColumns() []string {
	cols := make([]string, len(taskStatsFields))
	for i, f := range taskStatsFields {
		cols[i] = f.name
	}
	return cols
}

// TaskStatsFromRow reconstructs a TaskStats from an ordered flat value
// sequence, e.g. one row returned by an analytic query over stored
// snapshots. The row must carry exactly one value per declared field, with
// the percentile column itself an ordered sequence aligned one-to-one with
// PercentilesToReport. Any arity or type mismatch wraps ErrSchemaDrift.
func TaskStatsFromRow(values []any) (TaskStats, error) {
	if len(values) != len(taskStatsFields) {
		return TaskStats{}, fmt.Errorf("%w: row has %d values, expected %d fields",
			ErrSchemaDrift, len(values), len(taskStatsFields))
	}

	var t TaskStats
	for i, f := range taskStatsFields {
		if err := f.assign(&t, values[i]); err != nil {
			return TaskStats{}, fmt.Errorf("%w: field %q: %v", ErrSchemaDrift, f.name, err)
		}
	}
	return t, nil
}

// Row flattens the TaskStats into its stored tabular form: every field in
// declaration order, with the percentile map expanded to ordered values
// following PercentilesToReport.
func (t TaskStats) Row() []any {
	percentiles := make([]int64, len(PercentilesToReport))
	for i, p := range PercentilesToReport {
		percentiles[i] = t.ResponseTimePercentiles[PercentileLabel(p)]
	}

	return []any{
		t.TaskName,
		t.RequestMethod,
		t.NumRequests,
		t.NumFailures,
		t.MedianResponseTime,
		t.AverageResponseTime,
		t.MinResponseTime,
		t.MaxResponseTime,
		t.TotalReqsPerSecond,
		t.TotalFailsPerSec,
		percentiles,
	}
}

// assignPercentiles converts the raw percentile sub-sequence back into the
// labeled map. The sub-sequence length must match the configured set.
func (t *TaskStats) assignPercentiles(v any) error {
	seq, err := asSequence(v)
	if err != nil {
		return err
	}
	if len(seq) != len(PercentilesToReport) {
		return fmt.Errorf("percentile sequence has %d values, expected %d", len(seq), len(PercentilesToReport))
	}

	out := make(map[string]int64, len(seq))
	for i, p := range PercentilesToReport {
		n, err := asInt64(seq[i])
		if err != nil {
			return fmt.Errorf("percentile %s: %v", PercentileLabel(p), err)
		}
		out[PercentileLabel(p)] = n
	}
	t.ResponseTimePercentiles = out
	return nil
}

// taskStatsFromMap coerces an untyped mapping (generic JSON decoding output)
// into a TaskStats. Percentiles arrive as a labeled map here, not a
// sequence; unknown or missing fields are schema drift.
func taskStatsFromMap(m map[string]any) (TaskStats, error) {
	var t TaskStats
	seen := 0
	for _, f := range taskStatsFields {
		raw, ok := m[f.name]
		if !ok {
			return TaskStats{}, fmt.Errorf("%w: task mapping missing field %q", ErrSchemaDrift, f.name)
		}
		seen++

		if f.name == "response_time_percentiles" {
			pm, ok := raw.(map[string]any)
			if !ok {
				// Typed maps appear when re-normalizing already-built values
				if typed, isTyped := raw.(map[string]int64); isTyped {
					t.ResponseTimePercentiles = typed
					continue
				}
				return TaskStats{}, fmt.Errorf("%w: response_time_percentiles is %T, expected mapping", ErrSchemaDrift, raw)
			}
			out := make(map[string]int64, len(pm))
			for label, v := range pm {
				n, err := asInt64(v)
				if err != nil {
					return TaskStats{}, fmt.Errorf("%w: percentile %q: %v", ErrSchemaDrift, label, err)
				}
				out[label] = n
			}
			t.ResponseTimePercentiles = out
			continue
		}

		if err := f.assign(&t, raw); err != nil {
			return TaskStats{}, fmt.Errorf("%w: field %q: %v", ErrSchemaDrift, f.name, err)
		}
	}
	if len(m) != seen {
		return TaskStats{}, fmt.Errorf("%w: task mapping has %d fields, expected %d", ErrSchemaDrift, len(m), seen)
	}
	return t, nil
}
