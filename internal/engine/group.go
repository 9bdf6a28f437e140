package engine

import (
	"slices"

	"github.com/speedwagon-io/satalert/internal/model"
)

// GroupViolations buckets violating readings by satellite and component in
// encounter order. Non-violating readings are dropped.
func GroupViolations(readings []model.TelemetryReading) map[model.GroupKey][]model.TelemetryReading {
	groups := make(map[model.GroupKey][]model.TelemetryReading)
	for _, r := range readings {
		if !IsViolation(r) {
			continue
		}
		key := r.Key()
		groups[key] = append(groups[key], r)
	}
	return groups
}

// SortByTimestamp returns a copy ordered by timestamp. Ties keep encounter
// order.
func SortByTimestamp(readings []model.TelemetryReading) []model.TelemetryReading {
	sorted := slices.Clone(readings)
	slices.SortStableFunc(sorted, func(a, b model.TelemetryReading) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return sorted
}
