package analysis

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestFormatResponseRequiresMatchID(t *testing.T) {
	t.Parallel()

	_, err := FormatResponse(AnalyticsEnvelope{}, "   ", "user-1")
	if !errors.Is(err, ErrMissingContext) {
		t.Fatalf("expected ErrMissingContext, got %v", err)
	}
}

func TestFormatResponseInjectsContext(t *testing.T) {
	t.Parallel()

	env := AnalyticsEnvelope{
		JobID:          "job-11",
		AnalysisStatus: "completed",
		PlayerAnalytics: PlayerAnalytics{Players: []PlayerRecord{
			{PlayerID: "a", TotalDistanceKM: 1.2, AverageSpeedKMH: 4, CaloriesBurned: 129.6},
		}},
		Highlights: map[string][]string{"all": {"https://cdn.example.com/c.mp4"}},
	}

	got, err := FormatResponse(env, "match-9", "user-3")
	if err != nil {
		t.Fatalf("FormatResponse error: %v", err)
	}
	if got.MatchID != "match-9" || got.UserID != "user-3" {
		t.Fatalf("context not injected: match_id=%q user_id=%q", got.MatchID, got.UserID)
	}
	if got.JobID != "job-11" || got.AnalysisStatus != "completed" {
		t.Fatalf("envelope metadata changed: %q %q", got.JobID, got.AnalysisStatus)
	}
}

func TestFormatResponseRecomputesLegacyCalories(t *testing.T) {
	t.Parallel()

	// An envelope stored before the calories field existed: distance and
	// sprint data present, calories absent (zero value after decode).
	legacy := AnalyticsEnvelope{
		JobID: "job-legacy",
		PlayerAnalytics: PlayerAnalytics{Players: []PlayerRecord{
			{PlayerID: "a", TotalDistanceKM: 0.025586, AverageSpeedKMH: 14.47575, TotalSprintBursts: 4},
		}},
	}

	got, err := FormatResponse(legacy, "match-1", "")
	if err != nil {
		t.Fatalf("FormatResponse error: %v", err)
	}

	want := EstimateCalories(0.025586, 14.47575, 4, DefaultBodyMassKG)
	if math.Abs(got.PlayerAnalytics.Players[0].CaloriesBurned-want) > 1e-12 {
		t.Fatalf("legacy calories = %v, want identical to direct energy model result %v",
			got.PlayerAnalytics.Players[0].CaloriesBurned, want)
	}

	// The input envelope is not mutated.
	if legacy.PlayerAnalytics.Players[0].CaloriesBurned != 0 {
		t.Fatalf("input envelope mutated")
	}
}

func TestFormatResponseDefaultsMissingHighlights(t *testing.T) {
	t.Parallel()

	got, err := FormatResponse(AnalyticsEnvelope{JobID: "job-2"}, "match-2", "")
	if err != nil {
		t.Fatalf("FormatResponse error: %v", err)
	}
	if got.Highlights == nil {
		t.Fatalf("highlights must be an empty map, not nil")
	}
	if len(got.Highlights) != 0 {
		t.Fatalf("expected empty highlights, got %v", got.Highlights)
	}
}

func TestFormatResponseIdempotent(t *testing.T) {
	t.Parallel()

	env := AnalyticsEnvelope{
		JobID:          "job-5",
		AnalysisStatus: "completed",
		PlayerAnalytics: PlayerAnalytics{Players: []PlayerRecord{
			{PlayerID: "a", TotalDistanceKM: 0.5, AverageSpeedKMH: 6.2, TotalSprintBursts: 2},
			{PlayerID: "b"},
		}},
	}

	first, err := FormatResponse(env, "match-5", "user-5")
	if err != nil {
		t.Fatalf("first FormatResponse error: %v", err)
	}
	second, err := FormatResponse(first.Envelope(), first.MatchID, first.UserID)
	if err != nil {
		t.Fatalf("second FormatResponse error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("formatting is not idempotent:\nfirst:  %#v\nsecond: %#v", first, second)
	}
}
