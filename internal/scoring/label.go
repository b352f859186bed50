package scoring

import "math"

// AssignLabel returns the band a score falls into and its rank (0 = lowest).
// A score exactly on a bound belongs to the higher band; when several bands
// share a bound the last one wins.
func AssignLabel(score float64, t Thresholds) (Band, int) {
	if len(t) == 0 {
		return Band{}, -1
	}
	rank := 0
	for i, b := range t {
		if score >= b.Lower {
			rank = i
		}
	}
	return t[rank], rank
}

// ValidateThresholds checks that bands are labelled, ordered, and cover 0-100.
func ValidateThresholds(t Thresholds) error {
	ce := &ConfigurationError{}
	validateThresholds(t, ce)
	return ce.orNil()
}

func validateThresholds(t Thresholds, ce *ConfigurationError) {
	if len(t) == 0 {
		ce.add("thresholds: at least one band required")
		return
	}
	if t[0].Lower > 0 {
		ce.add("thresholds: first band starts at %g, scores below it have no label", t[0].Lower)
	}
	for i, b := range t {
		if b.Label == "" {
			ce.add("thresholds[%d]: label required", i)
		}
		if math.IsNaN(b.Lower) || math.IsInf(b.Lower, 0) {
			ce.add("thresholds[%d]: bound must be finite", i)
			continue
		}
		if b.Lower > 100 {
			ce.add("thresholds[%d]: bound %g is above the maximum score", i, b.Lower)
		}
		if i > 0 && b.Lower < t[i-1].Lower {
			ce.add("thresholds[%d]: bound %g is below previous bound %g", i, b.Lower, t[i-1].Lower)
		}
	}
}
