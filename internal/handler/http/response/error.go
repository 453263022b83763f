package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/restriction"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var restrictionErr *attendance.RestrictionError
	if errors.As(err, &restrictionErr) {
		RestrictionDenied(w, restrictionErr.Code())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, jwt.ErrMissingClaims):
		Unauthorized(w, "Authentication required")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		BadRequest(w, "Employee is not active", nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		BadRequest(w, "You have already checked in today", nil)
	case errors.Is(err, attendance.ErrNoCheckInToday):
		BadRequest(w, "No check-in record found for today", nil)
	case errors.Is(err, attendance.ErrNotCheckedIn):
		BadRequest(w, "You must check in before checking out", nil)
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		BadRequest(w, "You have already checked out today", nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrInvalidSettings):
		slog.Error("attendance settings are malformed", "error", err)
		InternalServerError(w, "Attendance settings are misconfigured")

	// Restriction domain errors
	case errors.Is(err, restriction.ErrIPRestrictionNotFound):
		NotFound(w, "IP restriction not found")
	case errors.Is(err, restriction.ErrGeoRestrictionNotFound):
		NotFound(w, "Geo restriction not found")
	case errors.Is(err, restriction.ErrAssignmentNotFound):
		NotFound(w, "Restriction assignment not found")
	case errors.Is(err, restriction.ErrAssignmentExists):
		Conflict(w, "Restriction is already assigned to this employee")
	case errors.Is(err, restriction.ErrRestrictionInUse):
		BadRequest(w, "Cannot delete restriction: employees are still assigned to it", nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

// RestrictionDenied renders a refused check-in with the failure code as the
// error code.
func RestrictionDenied(w http.ResponseWriter, code restriction.FailureCode) {
	Fail(w, code.HTTPStatus(), string(code), code.Message(), nil)
}
