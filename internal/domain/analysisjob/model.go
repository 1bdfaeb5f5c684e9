package analysisjob

import (
	"fmt"
	"time"
)

// Status is the lifecycle of one vision-provider analysis job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var AllStatuses = map[Status]struct{}{
	StatusPending:   {},
	StatusRunning:   {},
	StatusCompleted: {},
	StatusFailed:    {},
}

// Job ties a provider-side analysis job to a local match.
type Job struct {
	ID            string
	MatchID       string
	ProviderJobID string
	Status        Status
	Attempts      int
	LastError     string
	SubmittedAt   time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (j Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job id is required")
	}
	if j.MatchID == "" {
		return fmt.Errorf("job match id is required")
	}
	if _, ok := AllStatuses[j.Status]; !ok {
		return fmt.Errorf("invalid job status: %s", j.Status)
	}

	return nil
}

// Terminal reports whether the job has reached a final state and must not be
// polled again.
func (j Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}
