package validator

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

// Err returns v as an error, or nil when nothing was collected. A nil
// ValidationErrors stored in an error interface would not compare equal to nil.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		// first message per field wins
		if _, ok := result[err.Field]; !ok {
			result[err.Field] = err.Message
		}
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidUUID accepts any RFC 4122 UUID in canonical 36-character form.
func IsValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// IsValidDate parses a YYYY-MM-DD calendar date.
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse(time.DateOnly, dateStr)
	return date, err == nil
}

func IsInSlice(value string, slice []string) bool {
	return slices.Contains(slice, value)
}

var dateTimeLayouts = []string{time.RFC3339, time.RFC3339Nano}

// IsValidDateTime checks if a string is an ISO8601 timestamp with an explicit
// offset, e.g. "2024-01-15T10:30:00Z" or "2024-01-15T10:30:00+07:00".
func IsValidDateTime(dateTimeStr string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, dateTimeStr); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
