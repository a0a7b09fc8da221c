package apiutil

import (
	"database/sql"
	"strings"
	"time"
)

// ToNullTime converts an optional decoded timestamp to its column value.
func ToNullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

// ParseNullDate parses an optional YYYY-MM-DD value.
func ParseNullDate(raw string) (sql.NullTime, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sql.NullTime{}, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return sql.NullTime{}, err
	}
	return sql.NullTime{Time: parsed, Valid: true}, nil
}

// IsSQLiteConstraintViolation reports whether err looks like a SQLite
// UNIQUE or FOREIGN KEY constraint failure.
func IsSQLiteConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed")
}
