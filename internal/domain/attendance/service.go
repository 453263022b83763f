package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/restriction"
)

type Service interface {
	// CheckIn evaluates the caller's restrictions and opens today's record.
	CheckIn(ctx context.Context, req CheckInRequest) (RecordResponse, error)

	// CheckOut closes today's record and derives the final status.
	CheckOut(ctx context.Context, req CheckOutRequest) (RecordResponse, error)

	// Today reports the caller's live status for the current day.
	Today(ctx context.Context) (TodayResponse, error)

	// CheckRestrictions tells the client which inputs check-in will need.
	CheckRestrictions(ctx context.Context) (restriction.Summary, error)

	// ManualEntry lets an administrator write a full day for any employee.
	ManualEntry(ctx context.Context, req ManualEntryRequest) (RecordResponse, error)

	List(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// FinalizeDay marks every unfinished record of day, and every active
	// employee without one, absent.
	FinalizeDay(ctx context.Context, day time.Time) (FinalizeResult, error)
}

type SettingsService interface {
	Get(ctx context.Context) (SettingsResponse, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)
}
