package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/padelhq/courtsight/internal/domain/match"
	qb "github.com/padelhq/courtsight/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(ctx context.Context, m match.Match) error {
	model := matchInsertModel{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		VideoURL:  m.VideoURL,
		CourtName: m.CourtName,
		PlayedAt:  nullableTime(m.PlayedAt),
		Status:    string(m.Status),
	}

	query, args, err := qb.InsertModel("matches", model, "")
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert match id=%s: %w", m.ID, err)
	}

	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match by id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *MatchRepository) ListByUser(ctx context.Context, userID string) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches for user=%s: %w", userID, err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *MatchRepository) UpdateStatus(ctx context.Context, id string, status match.Status) error {
	query, args, err := qb.Update("matches").
		Set("status", string(status)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match status query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update match id=%s status=%s: %w", id, status, err)
	}

	return nil
}

// Delete soft-deletes so analysis history stays joinable for audit.
func (r *MatchRepository) Delete(ctx context.Context, id string) error {
	query, args, err := qb.Update("matches").
		SetExpr("deleted_at", "NOW()").
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete match id=%s: %w", id, err)
	}

	return nil
}
