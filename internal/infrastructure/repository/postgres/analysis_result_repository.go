package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/padelhq/courtsight/internal/domain/analysis"
	qb "github.com/padelhq/courtsight/internal/platform/querybuilder"
)

// AnalysisResultRepository stores one normalized envelope per match as jsonb.
// Re-analysis of the same match overwrites in place.
type AnalysisResultRepository struct {
	db *sqlx.DB
}

func NewAnalysisResultRepository(db *sqlx.DB) *AnalysisResultRepository {
	return &AnalysisResultRepository{db: db}
}

func (r *AnalysisResultRepository) SaveEnvelope(ctx context.Context, matchID string, env analysis.AnalyticsEnvelope) error {
	encoded, err := sonic.MarshalString(env)
	if err != nil {
		return fmt.Errorf("encode analysis envelope: %w", err)
	}

	model := analysisResultInsertModel{
		MatchID:  matchID,
		JobID:    env.JobID,
		Envelope: encoded,
	}

	query, args, err := qb.InsertModel("analysis_results", model, `ON CONFLICT (match_id)
DO UPDATE SET
    job_id = EXCLUDED.job_id,
    envelope = EXCLUDED.envelope,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert analysis result query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert analysis result match_id=%s: %w", matchID, err)
	}

	return nil
}

func (r *AnalysisResultRepository) GetEnvelopeByJobID(ctx context.Context, jobID string) (analysis.AnalyticsEnvelope, bool, error) {
	return r.getOne(ctx, qb.Eq("job_id", jobID))
}

func (r *AnalysisResultRepository) GetEnvelopeByMatchID(ctx context.Context, matchID string) (analysis.AnalyticsEnvelope, bool, error) {
	return r.getOne(ctx, qb.Eq("match_id", matchID))
}

func (r *AnalysisResultRepository) getOne(ctx context.Context, cond qb.Condition) (analysis.AnalyticsEnvelope, bool, error) {
	query, args, err := qb.Select("*").From("analysis_results").
		Where(cond, qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return analysis.AnalyticsEnvelope{}, false, fmt.Errorf("build get analysis result query: %w", err)
	}

	var row analysisResultTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return analysis.AnalyticsEnvelope{}, false, nil
		}
		return analysis.AnalyticsEnvelope{}, false, fmt.Errorf("get analysis result: %w", err)
	}

	env, err := row.toDomain()
	if err != nil {
		return analysis.AnalyticsEnvelope{}, false, err
	}

	return env, true, nil
}
