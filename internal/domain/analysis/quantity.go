package analysis

import (
	"strconv"
	"strings"
)

// Unit keywords recognized at the tail of a metric string, case-insensitive.
// The order matters: "kilometers per hour" must be tested before "meters"
// because the latter is a suffix of the former.
const (
	unitKilometersPerHour = "kilometers per hour"
	unitMeters            = "meters"
)

// parseQuantity extracts the numeric magnitude of a unit-suffixed metric
// string and normalizes it to canonical units: kilometers for distances,
// km/h for speeds, unitless values for percentages and counts. The accepted
// shapes are "<number> <unit words>", "<number>%" and a bare number; decimal
// point only, no thousands separators.
func parseQuantity(field, raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, newMalformedMetric(field, raw)
	}

	if strings.HasSuffix(value, "%") {
		return parseMagnitude(field, raw, strings.TrimSuffix(value, "%"))
	}

	lower := strings.ToLower(value)
	switch {
	case strings.HasSuffix(lower, unitKilometersPerHour):
		return parseMagnitude(field, raw, value[:len(value)-len(unitKilometersPerHour)])
	case strings.HasSuffix(lower, unitMeters):
		magnitude, err := parseMagnitude(field, raw, value[:len(value)-len(unitMeters)])
		if err != nil {
			return 0, err
		}
		return magnitude / 1000, nil
	default:
		// No recognized unit: only a bare numeric count is acceptable. An
		// unknown unit word makes the whole token non-numeric and fails here.
		return parseMagnitude(field, raw, value)
	}
}

func parseMagnitude(field, raw, number string) (float64, error) {
	magnitude, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil {
		return 0, newMalformedMetric(field, raw)
	}
	return magnitude, nil
}
