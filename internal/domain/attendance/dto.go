package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// CHECK-IN / CHECK-OUT DTOs
// ========================================

type CheckInRequest struct {
	Timestamp string `json:"timestamp"`
	// Coordinates arrive as numbers or numeric strings depending on the client.
	Latitude  any    `json:"latitude,omitempty"`
	Longitude any    `json:"longitude,omitempty"`
	ClientIP  string `json:"-"`

	At time.Time `json:"-"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Timestamp) {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "timestamp is required",
		})
	} else if at, ok := validator.IsValidDateTime(r.Timestamp); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "timestamp must be an ISO8601 date-time",
		})
	} else {
		r.At = at
	}

	return errs.Err()
}

type CheckOutRequest struct {
	Timestamp string `json:"timestamp"`

	At time.Time `json:"-"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Timestamp) {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "timestamp is required",
		})
	} else if at, ok := validator.IsValidDateTime(r.Timestamp); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "timestamp must be an ISO8601 date-time",
		})
	} else {
		r.At = at
	}

	return errs.Err()
}

// ManualEntryRequest carries wall-clock times for a single date, interpreted
// in the attendance time zone.
type ManualEntryRequest struct {
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`      // YYYY-MM-DD
	CheckIn    string  `json:"check_in"`  // HH:MM
	CheckOut   string  `json:"check_out"` // HH:MM
	Notes      *string `json:"notes,omitempty"`

	Day        time.Time `json:"-"`
	CheckInAt  TimeOfDay `json:"-"`
	CheckOutAt TimeOfDay `json:"-"`
}

func (r *ManualEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if day, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	} else {
		r.Day = day
	}

	in, inErr := ParseTimeOfDay(r.CheckIn)
	if inErr != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in",
			Message: "check_in must be in HH:MM format",
		})
	}
	out, outErr := ParseTimeOfDay(r.CheckOut)
	if outErr != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "check_out",
			Message: "check_out must be in HH:MM format",
		})
	}
	if inErr == nil && outErr == nil {
		if out <= in {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out",
				Message: "check_out must be after check_in",
			})
		}
		r.CheckInAt, r.CheckOutAt = in, out
	}

	if r.Notes != nil && len(*r.Notes) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 1000 characters",
		})
	}

	return errs.Err()
}

type RecordResponse struct {
	ID                     string   `json:"id"`
	EmployeeID             string   `json:"employee_id"`
	EmployeeName           *string  `json:"employee_name,omitempty"`
	Date                   string   `json:"date"`
	CheckIn                *string  `json:"check_in,omitempty"`
	CheckInStatus          *string  `json:"check_in_status,omitempty"`
	CheckInDuration        int      `json:"check_in_duration"`
	CheckOut               *string  `json:"check_out,omitempty"`
	CheckOutStatus         *string  `json:"check_out_status,omitempty"`
	CheckOutDuration       int      `json:"check_out_duration"`
	Status                 string   `json:"status"`
	WorkHours              string   `json:"work_hours"`
	LateMinutes            int      `json:"late_minutes"`
	OvertimeMinutes        int      `json:"overtime_minutes"`
	EarlyCheckout          bool     `json:"early_checkout"`
	CheckInIP              *string  `json:"check_in_ip,omitempty"`
	CheckInLatitude        *float64 `json:"check_in_latitude,omitempty"`
	CheckInLongitude       *float64 `json:"check_in_longitude,omitempty"`
	RestrictionPassed      *bool    `json:"restriction_passed,omitempty"`
	RestrictionFailureCode *string  `json:"restriction_failure_code,omitempty"`
	Notes                  *string  `json:"notes,omitempty"`
	IsManualEntry          bool     `json:"is_manual_entry"`
	Description            string   `json:"description,omitempty"`
	CreatedAt              string   `json:"created_at"`
	UpdatedAt              string   `json:"updated_at"`
}

type TodayResponse struct {
	Date        string          `json:"date"`
	Status      string          `json:"status"`
	IsPresent   bool            `json:"is_present"`
	CheckedIn   bool            `json:"checked_in"`
	CheckedOut  bool            `json:"checked_out"`
	Description string          `json:"description"`
	Record      *RecordResponse `json:"record,omitempty"`
}

type FinalizeResult struct {
	Date          string `json:"date"`
	OpenClosed    int    `json:"open_closed"`
	MissingFilled int    `json:"missing_filled"`
}

// ========================================
// LIST DTOs
// ========================================

type AttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Date       *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, employee_name, check_in, check_out, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.EmployeeID != nil && *f.EmployeeID != "" && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if f.Status != nil && *f.Status != "" && !Status(*f.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: present, absent, half_day",
		})
	}

	for _, d := range []struct {
		field string
		value *string
	}{
		{"date", f.Date},
		{"start_date", f.StartDate},
		{"end_date", f.EndDate},
	} {
		if d.value == nil || *d.value == "" {
			continue
		}
		if _, valid := validator.IsValidDate(*d.value); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   d.field,
				Message: d.field + " must be in YYYY-MM-DD format",
			})
		}
	}

	if f.StartDate != nil && f.EndDate != nil && *f.StartDate != "" && *f.EndDate != "" && *f.StartDate > *f.EndDate {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if f.SortBy != "" {
		validSortFields := []string{"date", "employee_name", "check_in", "check_out", "status"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: date, employee_name, check_in, check_out, status",
			})
		}
	} else {
		f.SortBy = "date"
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // newest first
	}

	return errs.Err()
}

type ListAttendanceResponse struct {
	TotalCount  int64            `json:"total_count"`
	Page        int              `json:"page"`
	Limit       int              `json:"limit"`
	TotalPages  int              `json:"total_pages"`
	Showing     string           `json:"showing"`
	Attendances []RecordResponse `json:"attendances"`
}

// ========================================
// SETTINGS DTOs
// ========================================

type UpdateSettingsRequest struct {
	CheckInStart       string           `json:"check_in_start"`
	CheckInEnd         string           `json:"check_in_end"`
	CheckOutStart      string           `json:"check_out_start"`
	CheckOutEnd        string           `json:"check_out_end"`
	WorkHours          *decimal.Decimal `json:"work_hours,omitempty"`
	OvertimeRate       *decimal.Decimal `json:"overtime_rate,omitempty"`
	GracePeriodMinutes *int             `json:"grace_period,omitempty"`
	AutoCheckout       *bool            `json:"auto_checkout,omitempty"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	parsed := make(map[string]TimeOfDay, 4)
	for _, f := range []struct {
		field string
		value string
	}{
		{"check_in_start", r.CheckInStart},
		{"check_in_end", r.CheckInEnd},
		{"check_out_start", r.CheckOutStart},
		{"check_out_end", r.CheckOutEnd},
	} {
		v, err := ParseTimeOfDay(f.value)
		if err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   f.field,
				Message: f.field + " must be in HH:MM format",
			})
			continue
		}
		parsed[f.field] = v
	}

	inStart, okA := parsed["check_in_start"]
	inEnd, okB := parsed["check_in_end"]
	if okA && okB && inStart >= inEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in_end",
			Message: "check-in start time must be before check-in end time",
		})
	}
	outStart, okC := parsed["check_out_start"]
	outEnd, okD := parsed["check_out_end"]
	if okC && okD && outStart >= outEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "check_out_end",
			Message: "check-out start time must be before check-out end time",
		})
	}

	if r.WorkHours != nil && (!r.WorkHours.IsPositive() || r.WorkHours.GreaterThan(decimal.NewFromInt(24))) {
		errs = append(errs, validator.ValidationError{
			Field:   "work_hours",
			Message: "work_hours must be greater than 0 and at most 24",
		})
	}

	if r.OvertimeRate != nil && !r.OvertimeRate.IsPositive() {
		errs = append(errs, validator.ValidationError{
			Field:   "overtime_rate",
			Message: "overtime_rate must be greater than 0",
		})
	}

	if r.GracePeriodMinutes != nil && (*r.GracePeriodMinutes < 0 || *r.GracePeriodMinutes > 240) {
		errs = append(errs, validator.ValidationError{
			Field:   "grace_period",
			Message: "grace_period must be between 0 and 240 minutes",
		})
	}

	return errs.Err()
}

type SettingsResponse struct {
	CheckInStart       string  `json:"check_in_start"`
	CheckInEnd         string  `json:"check_in_end"`
	CheckOutStart      string  `json:"check_out_start"`
	CheckOutEnd        string  `json:"check_out_end"`
	WorkHours          string  `json:"work_hours"`
	OvertimeRate       string  `json:"overtime_rate"`
	GracePeriodMinutes int     `json:"grace_period"`
	AutoCheckout       bool    `json:"auto_checkout"`
	IsDefault          bool    `json:"is_default"`
	UpdatedBy          *string `json:"updated_by,omitempty"`
	UpdatedAt          *string `json:"updated_at,omitempty"`
}
