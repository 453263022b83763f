package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

// The calculator is a set of pure functions. Minute-of-day is read from each
// timestamp in its own location, so callers convert to the attendance time
// zone before calling in.

type CheckInResult struct {
	Status attendance.CheckInStatus
	// Duration is signed: negative minutes early, positive minutes late.
	Duration    int
	Description string
}

// Minutes is the unsigned distance from the window.
func (r CheckInResult) Minutes() int {
	return abs(r.Duration)
}

type CheckOutResult struct {
	Status attendance.CheckOutStatus
	// Duration is signed: negative minutes early, positive minutes of overtime.
	Duration    int
	Description string
}

func (r CheckOutResult) Minutes() int {
	return abs(r.Duration)
}

type StatusResult struct {
	Status      attendance.Status
	IsPresent   bool
	CheckIn     *CheckInResult
	CheckOut    *CheckOutResult
	WorkHours   decimal.Decimal
	Description string
}

func CalculateCheckInStatus(actual time.Time, windowStart, windowEnd attendance.TimeOfDay) CheckInResult {
	minute := attendance.MinuteOfDay(actual)

	switch {
	case minute < windowStart:
		early := int(windowStart - minute)
		return CheckInResult{
			Status:      attendance.CheckInEarly,
			Duration:    -early,
			Description: fmt.Sprintf("Early by %d minutes", early),
		}
	case minute > windowEnd:
		late := int(minute - windowEnd)
		return CheckInResult{
			Status:      attendance.CheckInLate,
			Duration:    late,
			Description: fmt.Sprintf("Late by %d minutes", late),
		}
	default:
		return CheckInResult{
			Status:      attendance.CheckInOnTime,
			Description: "On time",
		}
	}
}

func CalculateCheckOutStatus(actual time.Time, windowStart, windowEnd attendance.TimeOfDay) CheckOutResult {
	minute := attendance.MinuteOfDay(actual)

	switch {
	case minute < windowStart:
		early := int(windowStart - minute)
		return CheckOutResult{
			Status:      attendance.CheckOutEarly,
			Duration:    -early,
			Description: fmt.Sprintf("Early checkout by %d minutes", early),
		}
	case minute > windowEnd:
		over := int(minute - windowEnd)
		return CheckOutResult{
			Status:      attendance.CheckOutOverTime,
			Duration:    over,
			Description: fmt.Sprintf("Over time by %d minutes", over),
		}
	default:
		return CheckOutResult{
			Status:      attendance.CheckOutOnTime,
			Description: "On time",
		}
	}
}

// CalculateWorkHours is plain wall-clock elapsed time in hours, rounded to two
// decimal places. No break is deducted.
func CalculateWorkHours(checkIn, checkOut time.Time) decimal.Decimal {
	elapsed := checkOut.Sub(checkIn)
	return decimal.NewFromInt(elapsed.Milliseconds()).
		Div(decimal.NewFromInt(time.Hour.Milliseconds())).
		Round(2)
}

// CalculateAttendanceStatus derives the day's outcome. Until both timestamps
// exist the result depends on now: before the check-out window opens the day
// is still half_day, afterwards it is absent.
func CalculateAttendanceStatus(checkIn, checkOut *time.Time, w attendance.Windows, now time.Time) StatusResult {
	pastCheckOutStart := attendance.MinuteOfDay(now) >= w.CheckOutStart

	if checkIn == nil {
		if pastCheckOutStart {
			return StatusResult{
				Status:      attendance.StatusAbsent,
				WorkHours:   decimal.Zero,
				Description: "Absent - No check-in by checkout start time",
			}
		}
		return StatusResult{
			Status:      attendance.StatusHalfDay,
			WorkHours:   decimal.Zero,
			Description: "No check-in yet",
		}
	}

	in := CalculateCheckInStatus(*checkIn, w.CheckInStart, w.CheckInEnd)
	result := StatusResult{
		CheckIn:   &in,
		WorkHours: decimal.Zero,
	}

	if checkOut == nil {
		if pastCheckOutStart {
			result.Status = attendance.StatusAbsent
		} else {
			result.Status = attendance.StatusHalfDay
		}
		result.Description = fmt.Sprintf("%s - Check-in: %s", result.Status, in.Description)
		return result
	}

	out := CalculateCheckOutStatus(*checkOut, w.CheckOutStart, w.CheckOutEnd)
	result.CheckOut = &out
	result.WorkHours = CalculateWorkHours(*checkIn, *checkOut)

	validIn := in.Status == attendance.CheckInEarly || in.Status == attendance.CheckInOnTime
	validOut := out.Status == attendance.CheckOutOnTime || out.Status == attendance.CheckOutOverTime

	switch {
	case validIn && validOut:
		result.Status = attendance.StatusPresent
	case !validIn && !validOut:
		result.Status = attendance.StatusAbsent
	default:
		result.Status = attendance.StatusHalfDay
	}
	result.IsPresent = result.Status == attendance.StatusPresent
	result.Description = fmt.Sprintf("%s - Check-in: %s, Check-out: %s", result.Status, in.Description, out.Description)
	return result
}

// FormatDuration renders minutes as "+ 1h 30m", "- 15m" or "2h" when unsigned.
func FormatDuration(minutes int, includeSign bool) string {
	m := abs(minutes)
	hours, mins := m/60, m%60

	sign := ""
	if includeSign {
		if minutes < 0 {
			sign = "- "
		} else {
			sign = "+ "
		}
	}

	switch {
	case hours == 0:
		return fmt.Sprintf("%s%dm", sign, mins)
	case mins == 0:
		return fmt.Sprintf("%s%dh", sign, hours)
	default:
		return fmt.Sprintf("%s%dh %dm", sign, hours, mins)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
