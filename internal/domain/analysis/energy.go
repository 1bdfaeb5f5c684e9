package analysis

// DefaultBodyMassKG is the body mass assumed for every player. No per-user
// profile reaches this layer; a fixed 80kg is a documented limitation of the
// current estimate, not a defect.
const DefaultBodyMassKG = 80.0

const (
	caloricCoefficient  = 0.9
	sprintBonusCalories = 5.0
)

// EstimateCalories derives an energy-expenditure estimate from distance,
// average speed, sprint count and body mass. Zero or negative distance short
// circuits to exactly 0 regardless of the other inputs. Pure and
// deterministic; no I/O.
func EstimateCalories(distanceKM, avgSpeedKMH float64, sprintCount int, bodyMassKG float64) float64 {
	if distanceKM <= 0 {
		return 0
	}
	if bodyMassKG <= 0 {
		bodyMassKG = DefaultBodyMassKG
	}

	base := distanceKM * bodyMassKG * caloricCoefficient * intensityMultiplier(avgSpeedKMH)
	bonus := float64(sprintCount) * sprintBonusCalories
	return base + bonus
}

// intensityMultiplier selects the calorie multiplier for a speed band. The
// bands are half-open on the lower bound: exactly 3.0 km/h is moderate, not
// light.
func intensityMultiplier(avgSpeedKMH float64) float64 {
	switch {
	case avgSpeedKMH < 3:
		return 1.2
	case avgSpeedKMH < 5:
		return 1.5
	case avgSpeedKMH < 7:
		return 1.8
	default:
		return 2.2
	}
}
