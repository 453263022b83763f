package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/restriction"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", validator.ValidationErrors{{Field: "title", Message: "title is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"wrapped validation", fmt.Errorf("create: %w", validator.ValidationErrors{{Field: "x", Message: "y"}}), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"restriction", &attendance.RestrictionError{Decision: restriction.Decision{FailureCode: restriction.FailureGeoMissing}}, http.StatusBadRequest, "GEO_MISSING"},
		{"missing claims", jwt.ErrMissingClaims, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"employee not found", employee.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"employee inactive", employee.ErrEmployeeInactive, http.StatusBadRequest, "BAD_REQUEST"},
		{"already checked out", attendance.ErrAlreadyCheckedOut, http.StatusBadRequest, "BAD_REQUEST"},
		{"attendance not found", attendance.ErrAttendanceNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"bad settings", fmt.Errorf("windows: %w", attendance.ErrInvalidSettings), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"assignment exists", restriction.ErrAssignmentExists, http.StatusConflict, "CONFLICT"},
		{"geo not found", restriction.ErrGeoRestrictionNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, validator.ValidationErrors{{Field: "radius", Message: "radius must be a positive integer"}})

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "radius must be a positive integer", resp.Error.Details["radius"])
}
