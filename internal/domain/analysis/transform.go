package analysis

import (
	crerr "github.com/cockroachdb/errors"
)

// Transform converts one raw provider payload into the canonical analytics
// envelope. Player entries are processed in their raw insertion order and the
// reserved clips entry never produces a player record. An empty results map
// is valid and yields an envelope with no players and empty highlights.
func Transform(payload RawAnalysisPayload) (AnalyticsEnvelope, error) {
	players := make([]PlayerRecord, 0, len(payload.Results.Players))
	for _, entry := range payload.Results.Players {
		record, err := normalizePlayer(entry.Key, entry.Metrics)
		if err != nil {
			return AnalyticsEnvelope{}, crerr.Wrapf(err, "normalize player %q", entry.Key)
		}
		players = append(players, record)
	}

	highlights := make(map[string][]string)
	if len(payload.Results.Clips) > 0 {
		highlights[HighlightGroupAll] = append([]string(nil), payload.Results.Clips...)
	}

	return AnalyticsEnvelope{
		JobID:           payload.JobID,
		AnalysisStatus:  payload.AnalysisStatus,
		PlayerAnalytics: PlayerAnalytics{Players: players},
		Highlights:      highlights,
	}, nil
}

// normalizePlayer builds one canonical player record from a raw metrics map.
// Distance and average speed feed the energy model and have no safe default,
// so their parse failures propagate; every other numeric field absorbs a
// failure to zero. Unrecognized metric names are skipped so new provider
// fields do not break older builds.
func normalizePlayer(key string, metrics map[string]string) (PlayerRecord, error) {
	record := PlayerRecord{PlayerID: key}

	if raw, ok := metrics[metricDistanceCovered]; ok {
		distance, err := parseQuantity(metricDistanceCovered, raw)
		if err != nil {
			return PlayerRecord{}, err
		}
		record.TotalDistanceKM = distance
	}
	if raw, ok := metrics[metricAverageSpeed]; ok {
		speed, err := parseQuantity(metricAverageSpeed, raw)
		if err != nil {
			return PlayerRecord{}, err
		}
		record.AverageSpeedKMH = speed
	}

	record.PeakSpeedKMH = tolerantQuantity(metrics, metricPeakSpeed)
	// Percentages are deliberately not clamped to 100 and peak speed is not
	// reconciled against average speed; both mirror upstream output as-is.
	record.NetDominancePercentage = tolerantQuantity(metrics, metricNetDominance)
	record.DeadZonePresencePercentage = tolerantQuantity(metrics, metricDeadZonePresence)
	record.BaselinePlayPercentage = tolerantQuantity(metrics, metricBaselinePlay)
	record.TotalSprintBursts = int(tolerantQuantity(metrics, metricSprintBursts))

	if heatmap, ok := metrics[metricPlayerHeatmap]; ok && heatmap != "" {
		value := heatmap
		record.PlayerHeatmap = &value
	}

	record.CaloriesBurned = EstimateCalories(
		record.TotalDistanceKM,
		record.AverageSpeedKMH,
		record.TotalSprintBursts,
		DefaultBodyMassKG,
	)

	return record, nil
}

// tolerantQuantity parses a metric with a safe zero default: absent or
// unparsable values yield 0 and are never surfaced.
func tolerantQuantity(metrics map[string]string, field string) float64 {
	raw, ok := metrics[field]
	if !ok {
		return 0
	}
	value, err := parseQuantity(field, raw)
	if err != nil {
		return 0
	}
	return value
}
