package rawdata

import "time"

// Payload is a verbatim provider response kept for replay and audit. Rows are
// idempotent on (source, job id, payload hash) so repeated polls of the same
// terminal result do not duplicate.
type Payload struct {
	Source      string
	JobID       string
	MatchID     string
	PayloadJSON string
	PayloadHash string
	ReceivedAt  time.Time
}
