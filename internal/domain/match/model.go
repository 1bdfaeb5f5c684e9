package match

import (
	"fmt"
	"time"
)

// Status tracks where a match sits in the analysis pipeline.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusAnalyzed   Status = "analyzed"
	StatusFailed     Status = "failed"
)

var AllStatuses = map[Status]struct{}{
	StatusUploaded:   {},
	StatusProcessing: {},
	StatusAnalyzed:   {},
	StatusFailed:     {},
}

// Match is one recorded padel match owned by a user.
type Match struct {
	ID        string
	UserID    string
	Title     string
	VideoURL  string
	CourtName string
	PlayedAt  *time.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.UserID == "" {
		return fmt.Errorf("match user id is required")
	}
	if m.Title == "" {
		return fmt.Errorf("match title is required")
	}
	if m.VideoURL == "" {
		return fmt.Errorf("match video url is required")
	}
	if _, ok := AllStatuses[m.Status]; !ok {
		return fmt.Errorf("invalid match status: %s", m.Status)
	}

	return nil
}
