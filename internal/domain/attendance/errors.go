package attendance

import (
	"errors"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/restriction"
)

var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn  = errors.New("already checked in today")
	ErrNoCheckInToday    = errors.New("no check-in record found for today")
	ErrNotCheckedIn      = errors.New("must check in before checking out")
	ErrAlreadyCheckedOut = errors.New("already checked out today")

	// Settings errors
	ErrSettingsNotFound = errors.New("attendance settings not configured")
	ErrInvalidSettings  = errors.New("invalid attendance settings")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
)

// RestrictionError reports a check-in refused by an IP or GEO restriction.
type RestrictionError struct {
	Decision restriction.Decision
}

func (e *RestrictionError) Error() string {
	return "check-in restricted: " + string(e.Decision.FailureCode)
}

func (e *RestrictionError) Code() restriction.FailureCode {
	return e.Decision.FailureCode
}
