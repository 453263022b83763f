package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
)

// DefaultFinalizeSpec runs shortly after midnight so the previous day is complete.
const DefaultFinalizeSpec = "5 0 * * *"

type AttendanceJobs struct {
	attendanceSvc attendance.Service
	loc           *time.Location
	now           func() time.Time
}

func NewAttendanceJobs(attendanceSvc attendance.Service, loc *time.Location) *AttendanceJobs {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		loc:           loc,
		now:           time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, spec string) error {
	if spec == "" {
		spec = DefaultFinalizeSpec
	}
	return scheduler.AddJob("finalize_attendance", spec, j.FinalizeAttendance)
}

// FinalizeAttendance closes out the previous attendance day.
func (j *AttendanceJobs) FinalizeAttendance(ctx context.Context) error {
	yesterday := j.now().In(j.loc).AddDate(0, 0, -1)

	slog.Info("Cron: Starting attendance finalization", "date", yesterday.Format("2006-01-02"))

	result, err := j.attendanceSvc.FinalizeDay(ctx, yesterday)
	if err != nil {
		return err
	}

	slog.Info("Cron: Attendance finalization completed",
		"date", result.Date,
		"open_closed", result.OpenClosed,
		"missing_filled", result.MissingFilled)
	return nil
}
