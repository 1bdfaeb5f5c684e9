package memory

import (
	"context"
	"sync"

	"github.com/padelhq/courtsight/internal/domain/analysis"
)

type AnalysisResultRepository struct {
	mu      sync.RWMutex
	byMatch map[string]analysis.AnalyticsEnvelope
	byJob   map[string]string
}

func NewAnalysisResultRepository() *AnalysisResultRepository {
	return &AnalysisResultRepository{
		byMatch: make(map[string]analysis.AnalyticsEnvelope),
		byJob:   make(map[string]string),
	}
}

func (r *AnalysisResultRepository) SaveEnvelope(_ context.Context, matchID string, env analysis.AnalyticsEnvelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byMatch[matchID] = env
	if env.JobID != "" {
		r.byJob[env.JobID] = matchID
	}

	return nil
}

func (r *AnalysisResultRepository) GetEnvelopeByJobID(_ context.Context, jobID string) (analysis.AnalyticsEnvelope, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matchID, ok := r.byJob[jobID]
	if !ok {
		return analysis.AnalyticsEnvelope{}, false, nil
	}
	env, ok := r.byMatch[matchID]
	if !ok {
		return analysis.AnalyticsEnvelope{}, false, nil
	}

	return env, true, nil
}

func (r *AnalysisResultRepository) GetEnvelopeByMatchID(_ context.Context, matchID string) (analysis.AnalyticsEnvelope, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	env, ok := r.byMatch[matchID]
	if !ok {
		return analysis.AnalyticsEnvelope{}, false, nil
	}

	return env, true, nil
}
