package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type CheckInStatus string

const (
	CheckInEarly  CheckInStatus = "early"
	CheckInOnTime CheckInStatus = "on_time"
	CheckInLate   CheckInStatus = "late"
)

type CheckOutStatus string

const (
	CheckOutEarly    CheckOutStatus = "early"
	CheckOutOnTime   CheckOutStatus = "on_time"
	CheckOutOverTime CheckOutStatus = "over_time"
)

// Status is the overall attendance outcome of a day.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
)

func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent || s == StatusHalfDay
}

// Record is one employee's attendance for one calendar date.
type Record struct {
	ID         string
	EmployeeID string
	Date       time.Time

	CheckIn          *time.Time
	CheckInStatus    *CheckInStatus
	CheckInDuration  int // minutes, negative when early
	CheckOut         *time.Time
	CheckOutStatus   *CheckOutStatus
	CheckOutDuration int // minutes, negative when early

	Status          Status
	WorkHours       decimal.Decimal
	LateMinutes     int
	OvertimeMinutes int
	EarlyCheckout   bool

	// Audit
	CheckInIP              *string
	CheckInLatitude        *float64
	CheckInLongitude       *float64
	RestrictionPassed      *bool
	RestrictionFailureCode *string

	Notes         *string
	IsManualEntry bool
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// DTO
	EmployeeName *string
}

func (r Record) CheckedIn() bool {
	return r.CheckIn != nil
}

func (r Record) CheckedOut() bool {
	return r.CheckOut != nil
}
