package attendance

import (
	"context"
	"time"
)

type Repository interface {
	// GetByEmployeeAndDate returns ErrAttendanceNotFound when the day has no record.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (Record, error)

	// GetByEmployeeAndDateForUpdate is GetByEmployeeAndDate holding a row lock
	// until the surrounding transaction ends.
	GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (Record, error)

	Create(ctx context.Context, record Record) (Record, error)
	Update(ctx context.Context, record Record) (Record, error)
	List(ctx context.Context, filter AttendanceFilter) ([]Record, int64, error)

	// GetOpenBefore lists records dated before the given day that were checked
	// in, never checked out and not yet marked absent.
	GetOpenBefore(ctx context.Context, before time.Time) ([]Record, error)

	// ListEmployeesWithoutRecord returns active employee ids with no record on date.
	ListEmployeesWithoutRecord(ctx context.Context, date time.Time) ([]string, error)
}

type SettingsRepository interface {
	// Get returns ErrSettingsNotFound when no row exists.
	Get(ctx context.Context) (Settings, error)
	Upsert(ctx context.Context, settings Settings) (Settings, error)
}
