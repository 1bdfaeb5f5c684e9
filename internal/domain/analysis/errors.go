package analysis

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	// ErrMalformedMetric matches any metric string the quantity parser could
	// not understand.
	ErrMalformedMetric = crerr.New("malformed metric value")

	// ErrMissingContext is returned when the response formatter is invoked
	// without a required identifier such as the match id.
	ErrMissingContext = crerr.New("missing required context")
)

// MalformedMetricError carries the offending field name and raw value so the
// failure can be diagnosed against the provider payload.
type MalformedMetricError struct {
	Field string
	Raw   string
}

func (e *MalformedMetricError) Error() string {
	return fmt.Sprintf("malformed metric %q: cannot parse value %q", e.Field, e.Raw)
}

func (e *MalformedMetricError) Unwrap() error {
	return ErrMalformedMetric
}

func newMalformedMetric(field, raw string) error {
	return &MalformedMetricError{Field: field, Raw: raw}
}
