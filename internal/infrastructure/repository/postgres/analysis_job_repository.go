package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/padelhq/courtsight/internal/domain/analysisjob"
	qb "github.com/padelhq/courtsight/internal/platform/querybuilder"
)

type AnalysisJobRepository struct {
	db *sqlx.DB
}

func NewAnalysisJobRepository(db *sqlx.DB) *AnalysisJobRepository {
	return &AnalysisJobRepository{db: db}
}

func (r *AnalysisJobRepository) Create(ctx context.Context, j analysisjob.Job) error {
	model := analysisJobInsertModel{
		ID:            j.ID,
		MatchID:       j.MatchID,
		ProviderJobID: j.ProviderJobID,
		Status:        string(j.Status),
		Attempts:      j.Attempts,
		LastError:     nullableString(j.LastError),
		SubmittedAt:   j.SubmittedAt.UTC(),
		CompletedAt:   nullableTime(j.CompletedAt),
	}

	query, args, err := qb.InsertModel("analysis_jobs", model, "")
	if err != nil {
		return fmt.Errorf("build insert analysis job query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert analysis job id=%s: %w", j.ID, err)
	}

	return nil
}

func (r *AnalysisJobRepository) GetByID(ctx context.Context, id string) (analysisjob.Job, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *AnalysisJobRepository) GetByProviderJobID(ctx context.Context, providerJobID string) (analysisjob.Job, bool, error) {
	return r.getOne(ctx, qb.Eq("provider_job_id", providerJobID))
}

func (r *AnalysisJobRepository) getOne(ctx context.Context, cond qb.Condition) (analysisjob.Job, bool, error) {
	query, args, err := qb.Select("*").From("analysis_jobs").
		Where(cond, qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return analysisjob.Job{}, false, fmt.Errorf("build get analysis job query: %w", err)
	}

	var row analysisJobTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return analysisjob.Job{}, false, nil
		}
		return analysisjob.Job{}, false, fmt.Errorf("get analysis job: %w", err)
	}

	return row.toDomain(), true, nil
}

// ListByStatus returns the oldest jobs first so stuck jobs are retried before
// fresh submissions.
func (r *AnalysisJobRepository) ListByStatus(ctx context.Context, status analysisjob.Status, limit int) ([]analysisjob.Job, error) {
	builder := qb.Select("*").From("analysis_jobs").
		Where(
			qb.Eq("status", string(status)),
			qb.IsNull("deleted_at"),
		).
		OrderBy("submitted_at ASC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list analysis jobs query: %w", err)
	}

	var rows []analysisJobTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list analysis jobs status=%s: %w", status, err)
	}

	out := make([]analysisjob.Job, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *AnalysisJobRepository) Update(ctx context.Context, j analysisjob.Job) error {
	model := analysisJobUpdateModel{
		Status:      string(j.Status),
		Attempts:    j.Attempts,
		LastError:   nullableString(j.LastError),
		CompletedAt: nullableTime(j.CompletedAt),
	}

	query, args, err := qb.Update("analysis_jobs").
		SetModel(model).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", j.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update analysis job query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update analysis job id=%s: %w", j.ID, err)
	}

	return nil
}
