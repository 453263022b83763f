package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type finalizeRecorder struct {
	attendance.Service
	days []time.Time
	err  error
}

func (f *finalizeRecorder) FinalizeDay(ctx context.Context, day time.Time) (attendance.FinalizeResult, error) {
	f.days = append(f.days, day)
	return attendance.FinalizeResult{Date: day.Format("2006-01-02")}, f.err
}

func TestScheduler_AddJobRejectsBadSpec(t *testing.T) {
	s := NewScheduler(time.UTC)
	err := s.AddJob("broken", "every tuesday", func(ctx context.Context) error { return nil })
	assert.Error(t, err)
	assert.Empty(t, s.jobs)
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler(time.UTC)
	calls := 0
	require.NoError(t, s.AddJob("a", "@hourly", func(ctx context.Context) error { calls++; return nil }))
	require.NoError(t, s.AddJob("b", "0 0 * * *", func(ctx context.Context) error { calls++; return errors.New("fails") }))

	s.RunOnce(context.Background())
	assert.Equal(t, 2, calls)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(nil)
	require.NoError(t, s.AddJob("noop", "@daily", func(ctx context.Context) error { return nil }))
	s.Start()
	s.Stop()
	assert.Error(t, s.ctx.Err(), "stop cancels the job context")
}

func TestAttendanceJobs_FinalizesPreviousDay(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)
	svc := &finalizeRecorder{}
	jobs := NewAttendanceJobs(svc, wib)
	// 18:30 UTC on the 10th is already the 11th in WIB.
	jobs.now = func() time.Time { return time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC) }

	require.NoError(t, jobs.FinalizeAttendance(context.Background()))
	require.Len(t, svc.days, 1)
	assert.Equal(t, "2025-03-10", svc.days[0].Format("2006-01-02"))
}

func TestAttendanceJobs_RegisterAndError(t *testing.T) {
	s := NewScheduler(time.UTC)
	boom := errors.New("db down")
	svc := &finalizeRecorder{err: boom}
	jobs := NewAttendanceJobs(svc, time.UTC)

	require.NoError(t, jobs.RegisterJobs(s, ""))
	require.Len(t, s.jobs, 1)
	assert.Equal(t, DefaultFinalizeSpec, s.jobs[0].Spec)

	assert.ErrorIs(t, jobs.FinalizeAttendance(context.Background()), boom)
}
