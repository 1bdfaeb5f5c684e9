package postgres

import (
	"database/sql"
	"time"
)

func isNotFound(err error) bool {
	return err == sql.ErrNoRows
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func stringFromNullable(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func nullableTime(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	utc := value.UTC()
	return &utc
}
