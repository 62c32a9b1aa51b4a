package stats

import (
	"strconv"
	"strings"
)

// PercentilesToReport is the fixed set of response time percentiles included
// in every snapshot. Stored snapshots flatten the percentile map into columns
// in this exact order, so the set and its order are part of the storage
// schema and must not change without migrating historical data.
var PercentilesToReport = []float64{0.5, 0.75, 0.9, 0.95, 0.99, 0.999, 1.0}

// PercentileLabel returns the string key used for a percentile in the
// response time percentile map, e.g. 0.95 -> "0.95" and 1.0 -> "1.0".
func PercentileLabel(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		// Whole values keep a trailing ".0" to match stored snapshot keys
		s += ".0"
	}
	return s
}
