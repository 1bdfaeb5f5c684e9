package postgres

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/padelhq/courtsight/internal/domain/analysis"
)

type analysisResultTableModel struct {
	MatchID   string     `db:"match_id"`
	JobID     string     `db:"job_id"`
	Envelope  string     `db:"envelope"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (m analysisResultTableModel) toDomain() (analysis.AnalyticsEnvelope, error) {
	var env analysis.AnalyticsEnvelope
	if err := sonic.UnmarshalString(m.Envelope, &env); err != nil {
		return analysis.AnalyticsEnvelope{}, fmt.Errorf("decode analysis envelope match_id=%s: %w", m.MatchID, err)
	}
	if env.Highlights == nil {
		env.Highlights = map[string][]string{}
	}
	return env, nil
}

type analysisResultInsertModel struct {
	MatchID  string `db:"match_id"`
	JobID    string `db:"job_id"`
	Envelope string `db:"envelope"`
}
