package stats

import (
	"fmt"
	"math"
)

// Coercion helpers for values arriving from generic deserialization. JSON
// decoding produces float64 for every number and Athena result parsing
// produces native Go types, so each helper accepts the handful of concrete
// types those paths emit.

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("value %v (%T) is not a string", v, v)
	}
	return s, nil
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("value %v (%T) is not a bool", v, v)
	}
	return b, nil
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("value %v is not an integer", n)
		}
		return int64(n), nil
	}
	return 0, fmt.Errorf("value %v (%T) is not an integer", v, v)
}

func asFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, fmt.Errorf("value %v (%T) is not a number", v, v)
}

func asSequence(v any) ([]any, error) {
	switch s := v.(type) {
	case []any:
		return s, nil
	case []int64:
		out := make([]any, len(s))
		for i, n := range s {
			out[i] = n
		}
		return out, nil
	case []float64:
		out := make([]any, len(s))
		for i, n := range s {
			out[i] = n
		}
		return out, nil
	}
	return nil, fmt.Errorf("value %v (%T) is not a sequence", v, v)
}
