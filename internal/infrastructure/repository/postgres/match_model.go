package postgres

import (
	"time"

	"github.com/padelhq/courtsight/internal/domain/match"
)

type matchTableModel struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Title     string     `db:"title"`
	VideoURL  string     `db:"video_url"`
	CourtName string     `db:"court_name"`
	PlayedAt  *time.Time `db:"played_at"`
	Status    string     `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (m matchTableModel) toDomain() match.Match {
	return match.Match{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		VideoURL:  m.VideoURL,
		CourtName: m.CourtName,
		PlayedAt:  m.PlayedAt,
		Status:    match.Status(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type matchInsertModel struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Title     string     `db:"title"`
	VideoURL  string     `db:"video_url"`
	CourtName string     `db:"court_name"`
	PlayedAt  *time.Time `db:"played_at"`
	Status    string     `db:"status"`
}
