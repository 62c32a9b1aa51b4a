package stats

import "fmt"

// RunState is the run-level capability exposed by the live load engine:
// configuration of the user ramp plus request-timestamp bookkeeping.
// Timestamps are seconds since epoch.
type RunState interface {
	StatsResetAfterSpawn() bool
	NumTotalUsers() int
	SpawnRate() float64
	StartTime() float64
	LastRequestTimestamp() float64
}

// StatsMetadata is the immutable run-level context attached to a snapshot.
// It carries everything needed to bucket and compare stored snapshots
// across runs.
type StatsMetadata struct {
	Timestamp            int64       `json:"timestamp"`
	Tag                  string      `json:"tag"`
	Environment          Environment `json:"environment"`
	StatsResetAfterSpawn bool        `json:"stats_reset_after_spawn"`
	NumTotalUsers        int         `json:"num_total_users"`
	NumUsersPerSecond    float64     `json:"num_users_per_second"`
	TotalRuntime         float64     `json:"total_runtime"`
}

// NewStatsMetadata builds snapshot metadata from the live run state. Total
// runtime is the last observed request timestamp minus the run start time;
// if no requests completed this can be zero or negative, and it is passed
// through as-is for the consumer to interpret.
func NewStatsMetadata(timestamp int64, tag string, environment Environment, run RunState) StatsMetadata {
	return StatsMetadata{
		Timestamp:            timestamp,
		Tag:                  tag,
		Environment:          environment,
		StatsResetAfterSpawn: run.StatsResetAfterSpawn(),
		NumTotalUsers:        run.NumTotalUsers(),
		NumUsersPerSecond:    run.SpawnRate(),
		TotalRuntime:         run.LastRequestTimestamp() - run.StartTime(),
	}
}

// metadataFromMap coerces an untyped mapping into a StatsMetadata. Unknown
// or missing fields are schema drift.
func metadataFromMap(m map[string]any) (StatsMetadata, error) {
	fields := []struct {
		name   string
		assign func(*StatsMetadata, any) error
	}{
		{"timestamp", func(md *StatsMetadata, v any) (err error) { md.Timestamp, err = asInt64(v); return }},
		{"tag", func(md *StatsMetadata, v any) (err error) { md.Tag, err = asString(v); return }},
		{"environment", func(md *StatsMetadata, v any) error {
			switch e := v.(type) {
			case Environment:
				md.Environment = e
				return nil
			case string:
				env, err := ParseEnvironment(e)
				if err != nil {
					return err
				}
				md.Environment = env
				return nil
			}
			return fmt.Errorf("value %v (%T) is not an environment", v, v)
		}},
		{"stats_reset_after_spawn", func(md *StatsMetadata, v any) (err error) { md.StatsResetAfterSpawn, err = asBool(v); return }},
		{"num_total_users", func(md *StatsMetadata, v any) error {
			n, err := asInt64(v)
			md.NumTotalUsers = int(n)
			return err
		}},
		{"num_users_per_second", func(md *StatsMetadata, v any) (err error) { md.NumUsersPerSecond, err = asFloat64(v); return }},
		{"total_runtime", func(md *StatsMetadata, v any) (err error) { md.TotalRuntime, err = asFloat64(v); return }},
	}

	var md StatsMetadata
	for _, f := range fields {
		raw, ok := m[f.name]
		if !ok {
			return StatsMetadata{}, fmt.Errorf("%w: metadata mapping missing field %q", ErrSchemaDrift, f.name)
		}
		if err := f.assign(&md, raw); err != nil {
			return StatsMetadata{}, fmt.Errorf("%w: field %q: %v", ErrSchemaDrift, f.name, err)
		}
	}
	if len(m) != len(fields) {
		return StatsMetadata{}, fmt.Errorf("%w: metadata mapping has %d fields, expected %d", ErrSchemaDrift, len(m), len(fields))
	}
	return md, nil
}
