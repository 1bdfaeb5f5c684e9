package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/padelhq/courtsight/internal/domain/rawdata"
	qb "github.com/padelhq/courtsight/internal/platform/querybuilder"
)

type RawDataRepository struct {
	db *sqlx.DB
}

func NewRawDataRepository(db *sqlx.DB) *RawDataRepository {
	return &RawDataRepository{db: db}
}

func (r *RawDataRepository) Upsert(ctx context.Context, item rawdata.Payload) error {
	receivedAt := item.ReceivedAt.UTC()
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	model := rawPayloadInsertModel{
		Source:      item.Source,
		JobID:       item.JobID,
		MatchID:     nullableString(item.MatchID),
		Payload:     item.PayloadJSON,
		PayloadHash: item.PayloadHash,
		ReceivedAt:  receivedAt,
	}

	query, args, err := qb.InsertModel("raw_payloads", model, `ON CONFLICT (source, job_id, payload_hash)
DO UPDATE SET
    match_id = EXCLUDED.match_id,
    payload = EXCLUDED.payload,
    received_at = EXCLUDED.received_at`)
	if err != nil {
		return fmt.Errorf("build upsert raw payload query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert raw payload source=%s job_id=%s: %w", item.Source, item.JobID, err)
	}

	return nil
}

type rawPayloadInsertModel struct {
	Source      string    `db:"source"`
	JobID       string    `db:"job_id"`
	MatchID     *string   `db:"match_id"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	ReceivedAt  time.Time `db:"received_at"`
}
