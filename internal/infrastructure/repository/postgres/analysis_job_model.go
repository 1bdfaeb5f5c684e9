package postgres

import (
	"time"

	"github.com/padelhq/courtsight/internal/domain/analysisjob"
)

type analysisJobTableModel struct {
	ID            string     `db:"id"`
	MatchID       string     `db:"match_id"`
	ProviderJobID string     `db:"provider_job_id"`
	Status        string     `db:"status"`
	Attempts      int        `db:"attempts"`
	LastError     *string    `db:"last_error"`
	SubmittedAt   time.Time  `db:"submitted_at"`
	CompletedAt   *time.Time `db:"completed_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

func (m analysisJobTableModel) toDomain() analysisjob.Job {
	return analysisjob.Job{
		ID:            m.ID,
		MatchID:       m.MatchID,
		ProviderJobID: m.ProviderJobID,
		Status:        analysisjob.Status(m.Status),
		Attempts:      m.Attempts,
		LastError:     stringFromNullable(m.LastError),
		SubmittedAt:   m.SubmittedAt,
		CompletedAt:   m.CompletedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

type analysisJobInsertModel struct {
	ID            string     `db:"id"`
	MatchID       string     `db:"match_id"`
	ProviderJobID string     `db:"provider_job_id"`
	Status        string     `db:"status"`
	Attempts      int        `db:"attempts"`
	LastError     *string    `db:"last_error"`
	SubmittedAt   time.Time  `db:"submitted_at"`
	CompletedAt   *time.Time `db:"completed_at"`
}

type analysisJobUpdateModel struct {
	Status      string     `db:"status"`
	Attempts    int        `db:"attempts"`
	LastError   *string    `db:"last_error"`
	CompletedAt *time.Time `db:"completed_at"`
}
