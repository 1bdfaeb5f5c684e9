package analysis

import (
	"fmt"
	"strings"
)

// FormatResponse merges caller-supplied context into an envelope and migrates
// legacy envelope shapes to the current one. It is the single place where
// backward-compatibility defaulting happens:
//
//   - records stored before the calories field existed get it recomputed with
//     the same formula the normalizer uses, missing inputs defaulting to 0;
//   - envelopes stored before highlight extraction existed get an empty
//     highlights map instead of null.
//
// The function is pure and idempotent: formatting its own output changes
// nothing, because a freshly computed calories value is only ever written
// where none could have existed (zero calories with positive distance cannot
// come out of the live formula).
func FormatResponse(env AnalyticsEnvelope, matchID, userID string) (FormattedResponse, error) {
	if strings.TrimSpace(matchID) == "" {
		return FormattedResponse{}, fmt.Errorf("%w: match_id is required", ErrMissingContext)
	}

	players := make([]PlayerRecord, len(env.PlayerAnalytics.Players))
	copy(players, env.PlayerAnalytics.Players)
	for i := range players {
		if players[i].CaloriesBurned == 0 && players[i].TotalDistanceKM > 0 {
			players[i].CaloriesBurned = EstimateCalories(
				players[i].TotalDistanceKM,
				players[i].AverageSpeedKMH,
				players[i].TotalSprintBursts,
				DefaultBodyMassKG,
			)
		}
	}

	highlights := env.Highlights
	if highlights == nil {
		highlights = make(map[string][]string)
	}

	return FormattedResponse{
		JobID:           env.JobID,
		AnalysisStatus:  env.AnalysisStatus,
		PlayerAnalytics: PlayerAnalytics{Players: players},
		Highlights:      highlights,
		MatchID:         matchID,
		UserID:          strings.TrimSpace(userID),
	}, nil
}
