package analysis

import "context"

// Repository stores normalized analytics envelopes keyed by provider job id
// and by match.
type Repository interface {
	SaveEnvelope(ctx context.Context, matchID string, env AnalyticsEnvelope) error
	GetEnvelopeByJobID(ctx context.Context, jobID string) (AnalyticsEnvelope, bool, error)
	GetEnvelopeByMatchID(ctx context.Context, matchID string) (AnalyticsEnvelope, bool, error)
}
