package analysis

import (
	"bytes"
	"encoding/json"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

const (
	// ReservedClipsKey is the single non-player entry allowed inside the raw
	// results map. Its value is an ordered list of highlight clip URLs.
	ReservedClipsKey = "all_clips"

	// HighlightGroupAll is the group label under which the reserved clips
	// collection is exposed on the envelope.
	HighlightGroupAll = "all"
)

// Raw metric names as emitted by the vision provider. The provider has
// changed this vocabulary once before; unrecognized names are ignored so a
// future rename degrades to defaults instead of breaking ingestion.
const (
	metricDistanceCovered  = "Distance Covered"
	metricAverageSpeed     = "Average Speed"
	metricPeakSpeed        = "Peak Speed"
	metricNetDominance     = "Net Dominance"
	metricDeadZonePresence = "Dead Zone Presence"
	metricBaselinePlay     = "Baseline Play"
	metricSprintBursts     = "Total Sprint Bursts"
	metricPlayerHeatmap    = "Player Heatmap"
)

// RawAnalysisPayload is the untrusted payload shape delivered by the vision
// provider once a job completes.
type RawAnalysisPayload struct {
	Status         string     `json:"status"`
	JobID          string     `json:"job_id"`
	AnalysisStatus string     `json:"analysis_status"`
	Results        RawResults `json:"results"`
}

// RawPlayerMetrics is one player entry of the raw results map: an opaque key
// naming the tracked participant and its metric-name to unit-string mapping.
type RawPlayerMetrics struct {
	Key     string
	Metrics map[string]string
}

// RawResults preserves the raw results map as an ordered list of player
// entries plus the reserved clips collection. Player order is contractual
// (it drives the order of the canonical player list), so the JSON object is
// walked token by token instead of being decoded into a Go map.
type RawResults struct {
	Players []RawPlayerMetrics
	Clips   []string
}

func (r *RawResults) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	open, err := dec.Token()
	if err != nil {
		return crerr.Wrap(err, "read results object")
	}
	if delim, ok := open.(json.Delim); !ok || delim != '{' {
		return crerr.Newf("results must be a JSON object, got %v", open)
	}

	for dec.More() {
		keyToken, err := dec.Token()
		if err != nil {
			return crerr.Wrap(err, "read results key")
		}
		key, ok := keyToken.(string)
		if !ok {
			return crerr.Newf("unexpected results key token %v", keyToken)
		}

		if key == ReservedClipsKey {
			var clips []string
			if err := dec.Decode(&clips); err != nil {
				return crerr.Wrapf(err, "decode %s", ReservedClipsKey)
			}
			r.Clips = clips
			continue
		}

		var rawMetrics map[string]json.RawMessage
		if err := dec.Decode(&rawMetrics); err != nil {
			return crerr.Wrapf(err, "decode metrics for player key %q", key)
		}
		metrics := make(map[string]string, len(rawMetrics))
		for name, value := range rawMetrics {
			metrics[name] = metricValueString(value)
		}
		r.Players = append(r.Players, RawPlayerMetrics{Key: key, Metrics: metrics})
	}

	return nil
}

// metricValueString flattens a raw metric value to its string form. The
// provider documents string values, but bare JSON numbers have been observed
// for count fields and are accepted by their literal text.
func metricValueString(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	if strings.HasPrefix(trimmed, `"`) {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return ""
		}
		return value
	}
	return trimmed
}

// PlayerRecord is the canonical per-player analytics record. Immutable once
// produced; all numeric fields are finite and non-negative in well-formed
// payloads, and CaloriesBurned is always present (zero when inputs were
// insufficient), never null.
type PlayerRecord struct {
	PlayerID                   string  `json:"player_id"`
	TotalDistanceKM            float64 `json:"total_distance_km"`
	AverageSpeedKMH            float64 `json:"average_speed_kmh"`
	PeakSpeedKMH               float64 `json:"peak_speed_kmh"`
	NetDominancePercentage     float64 `json:"net_dominance_percentage"`
	DeadZonePresencePercentage float64 `json:"dead_zone_presence_percentage"`
	BaselinePlayPercentage     float64 `json:"baseline_play_percentage"`
	TotalSprintBursts          int     `json:"total_sprint_bursts"`
	CaloriesBurned             float64 `json:"calories_burned"`
	PlayerHeatmap              *string `json:"player_heatmap"`
}

type PlayerAnalytics struct {
	Players []PlayerRecord `json:"players"`
}

// AnalyticsEnvelope is the normalized top-level result. Highlights maps a
// group label to an ordered list of clip URLs and is empty, never nil, when
// the raw payload carried no clips.
type AnalyticsEnvelope struct {
	JobID           string              `json:"job_id"`
	AnalysisStatus  string              `json:"analysis_status"`
	PlayerAnalytics PlayerAnalytics     `json:"player_analytics"`
	Highlights      map[string][]string `json:"highlights"`
}

// FormattedResponse is the API-facing object: the envelope plus the match and
// requester context injected by the caller. Field names and nesting are part
// of the client compatibility contract and must not change.
type FormattedResponse struct {
	JobID           string              `json:"job_id"`
	AnalysisStatus  string              `json:"analysis_status"`
	PlayerAnalytics PlayerAnalytics     `json:"player_analytics"`
	Highlights      map[string][]string `json:"highlights"`
	MatchID         string              `json:"match_id"`
	UserID          string              `json:"user_id,omitempty"`
}

// Envelope strips the caller context back off a formatted response, restoring
// the envelope it was built from.
func (r FormattedResponse) Envelope() AnalyticsEnvelope {
	return AnalyticsEnvelope{
		JobID:           r.JobID,
		AnalysisStatus:  r.AnalysisStatus,
		PlayerAnalytics: r.PlayerAnalytics,
		Highlights:      r.Highlights,
	}
}
