package stats

import (
	"encoding/json"
	"fmt"
)

// AggregatedStats is one snapshot of every task's statistics plus the run
// metadata needed to store and compare it. Metadata is optional because
// reconstruction contexts (per-task query results) may not carry it. Task
// order is the sort order applied at collection time.
type AggregatedStats struct {
	Metadata *StatsMetadata `json:"metadata,omitempty"`
	Tasks    []TaskStats    `json:"tasks"`
}

// NewAggregatedStats builds a snapshot from metadata and task values that
// may each be already typed or untyped nested mappings, such as the output
// of generic JSON decoding of a stored snapshot. Already-typed values pass
// through unchanged, so normalizing an already-normalized snapshot is a
// no-op. A mapping whose shape disagrees with the declared fields is
// reported as schema drift.
func NewAggregatedStats(metadata any, tasks any) (*AggregatedStats, error) {
	md, err := coerceMetadata(metadata)
	if err != nil {
		return nil, err
	}
	ts, err := coerceTasks(tasks)
	if err != nil {
		return nil, err
	}
	return &AggregatedStats{Metadata: md, Tasks: ts}, nil
}

// ToJSON serializes the snapshot to its stored JSON form
func (a *AggregatedStats) ToJSON() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// AggregatedStatsFromJSON decodes a stored snapshot and normalizes it
func AggregatedStatsFromJSON(data []byte) (*AggregatedStats, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}
	return NewAggregatedStats(raw["metadata"], raw["tasks"])
}

// coerceMetadata normalizes the metadata value into its typed form
func coerceMetadata(v any) (*StatsMetadata, error) {
	switch md := v.(type) {
	case nil:
		return nil, nil
	case *StatsMetadata:
		return md, nil
	case StatsMetadata:
		return &md, nil
	case map[string]any:
		typed, err := metadataFromMap(md)
		if err != nil {
			return nil, err
		}
		return &typed, nil
	}
	return nil, fmt.Errorf("%w: metadata is %T, expected mapping or StatsMetadata", ErrSchemaDrift, v)
}

// coerceTasks normalizes every element of the tasks value into a typed
// TaskStats, preserving order
func coerceTasks(v any) ([]TaskStats, error) {
	switch ts := v.(type) {
	case nil:
		return nil, nil
	case []TaskStats:
		// Copy so the snapshot owns its sequence exclusively
		return append([]TaskStats(nil), ts...), nil
	case []any:
		out := make([]TaskStats, 0, len(ts))
		for i, el := range ts {
			typed, err := coerceTask(el)
			if err != nil {
				return nil, fmt.Errorf("task %d: %w", i, err)
			}
			out = append(out, typed)
		}
		return out, nil
	case []map[string]any:
		out := make([]TaskStats, 0, len(ts))
		for i, el := range ts {
			typed, err := taskStatsFromMap(el)
			if err != nil {
				return nil, fmt.Errorf("task %d: %w", i, err)
			}
			out = append(out, typed)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: tasks is %T, expected sequence", ErrSchemaDrift, v)
}

func coerceTask(v any) (TaskStats, error) {
	switch t := v.(type) {
	case TaskStats:
		return t, nil
	case *TaskStats:
		return *t, nil
	case map[string]any:
		return taskStatsFromMap(t)
	}
	return TaskStats{}, fmt.Errorf("%w: task element is %T, expected mapping or TaskStats", ErrSchemaDrift, v)
}
