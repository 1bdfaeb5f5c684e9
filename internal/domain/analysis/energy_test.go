package analysis

import (
	"math"
	"testing"
)

func TestEstimateCaloriesZeroDistanceGuard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		distance float64
		speed    float64
		sprints  int
		mass     float64
	}{
		{name: "zero distance", distance: 0, speed: 12, sprints: 9, mass: 70},
		{name: "negative distance", distance: -3.5, speed: 5, sprints: 2, mass: 90},
		{name: "zero distance zero everything", distance: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := EstimateCalories(tt.distance, tt.speed, tt.sprints, tt.mass); got != 0 {
				t.Fatalf("expected exactly 0 calories, got %v", got)
			}
		})
	}
}

func TestIntensityMultiplierBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		speed float64
		want  float64
	}{
		{speed: 0, want: 1.2},
		{speed: 2.999, want: 1.2},
		{speed: 3.0, want: 1.5},
		{speed: 4.999, want: 1.5},
		{speed: 5.0, want: 1.8},
		{speed: 6.999, want: 1.8},
		{speed: 7.0, want: 2.2},
		{speed: 30, want: 2.2},
	}

	for _, tt := range tests {
		if got := intensityMultiplier(tt.speed); got != tt.want {
			t.Fatalf("intensityMultiplier(%v) = %v, want %v", tt.speed, got, tt.want)
		}
	}
}

func TestEstimateCaloriesFormula(t *testing.T) {
	t.Parallel()

	// 2.4km at steady 6km/h with 3 sprints for an 80kg player:
	// 2.4 * 80 * 0.9 * 1.8 + 3*5 = 311.04 + 15
	got := EstimateCalories(2.4, 6, 3, 80)
	want := 2.4*80*0.9*1.8 + 15
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("EstimateCalories = %v, want %v", got, want)
	}
}

func TestEstimateCaloriesDefaultsBodyMass(t *testing.T) {
	t.Parallel()

	withDefault := EstimateCalories(1.5, 4, 0, 0)
	explicit := EstimateCalories(1.5, 4, 0, DefaultBodyMassKG)
	if withDefault != explicit {
		t.Fatalf("zero mass should fall back to %vkg: got %v, want %v", DefaultBodyMassKG, withDefault, explicit)
	}
}

func TestEstimateCaloriesDeterministic(t *testing.T) {
	t.Parallel()

	first := EstimateCalories(0.73, 8.2, 5, 80)
	for i := 0; i < 10; i++ {
		if got := EstimateCalories(0.73, 8.2, 5, 80); got != first {
			t.Fatalf("call %d returned %v, first returned %v", i, got, first)
		}
	}
}
