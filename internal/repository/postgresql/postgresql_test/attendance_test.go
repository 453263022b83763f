package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceRepository_CreateAndGet(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(db)
	empID := createTestEmployee(t, "Siti Rahma", "active")

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	checkIn := time.Date(2025, 3, 10, 9, 12, 0, 0, time.UTC)
	inStatus := attendance.CheckInOnTime
	ip := "192.168.1.10"
	passed := true

	created, err := repo.Create(ctx, attendance.Record{
		EmployeeID:        empID,
		Date:              day,
		CheckIn:           &checkIn,
		CheckInStatus:     &inStatus,
		Status:            attendance.StatusHalfDay,
		WorkHours:         decimal.Zero,
		CheckInIP:         &ip,
		RestrictionPassed: &passed,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := repo.GetByEmployeeAndDate(ctx, empID, day)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	require.NotNil(t, got.CheckIn)
	assert.True(t, checkIn.Equal(*got.CheckIn))
	assert.Equal(t, attendance.CheckInOnTime, *got.CheckInStatus)
	assert.Equal(t, "192.168.1.10", *got.CheckInIP)
	require.NotNil(t, got.EmployeeName)
	assert.Equal(t, "Siti Rahma", *got.EmployeeName)
	assert.True(t, got.CheckedIn())
	assert.False(t, got.CheckedOut())

	_, err = repo.Create(ctx, attendance.Record{EmployeeID: empID, Date: day, Status: attendance.StatusHalfDay})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn, "one record per employee and date")
}

func TestAttendanceRepository_GetMissing(t *testing.T) {
	db := requireDB(t)
	repo := postgresql.NewAttendanceRepository(db)
	empID := createTestEmployee(t, "Andi", "active")

	_, err := repo.GetByEmployeeAndDate(context.Background(), empID, time.Now())
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAttendanceRepository_UpdateInTransaction(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(db)
	tx := postgresql.NewTransactor(db)
	empID := createTestEmployee(t, "Dewi", "active")
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	checkIn := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err := repo.Create(ctx, attendance.Record{EmployeeID: empID, Date: day, CheckIn: &checkIn, Status: attendance.StatusHalfDay})
	require.NoError(t, err)

	checkOut := time.Date(2025, 3, 10, 17, 30, 0, 0, time.UTC)
	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		r, err := repo.GetByEmployeeAndDateForUpdate(ctx, empID, day)
		if err != nil {
			return err
		}
		r.CheckOut = &checkOut
		r.Status = attendance.StatusPresent
		r.WorkHours = decimal.RequireFromString("8.5")
		_, err = repo.Update(ctx, r)
		return err
	})
	require.NoError(t, err)

	got, err := repo.GetByEmployeeAndDate(ctx, empID, day)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, got.Status)
	assert.Equal(t, "8.50", got.WorkHours.StringFixed(2))

	// A failing callback leaves the row untouched.
	boom := errors.New("boom")
	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		r, err := repo.GetByEmployeeAndDateForUpdate(ctx, empID, day)
		if err != nil {
			return err
		}
		r.Status = attendance.StatusAbsent
		if _, err := repo.Update(ctx, r); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err = repo.GetByEmployeeAndDate(ctx, empID, day)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, got.Status)
}

func TestAttendanceRepository_ListAndFinalizeQueries(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(db)

	openID := createTestEmployee(t, "Open", "active")
	doneID := createTestEmployee(t, "Done", "active")
	missingID := createTestEmployee(t, "Missing", "active")
	createTestEmployee(t, "Gone", "resigned")

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	in := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	out := time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, attendance.Record{EmployeeID: openID, Date: day, CheckIn: &in, Status: attendance.StatusHalfDay})
	require.NoError(t, err)
	_, err = repo.Create(ctx, attendance.Record{EmployeeID: doneID, Date: day, CheckIn: &in, CheckOut: &out, Status: attendance.StatusPresent})
	require.NoError(t, err)

	open, err := repo.GetOpenBefore(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, openID, open[0].EmployeeID)

	missing, err := repo.ListEmployeesWithoutRecord(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, []string{missingID}, missing)

	filter := attendance.AttendanceFilter{Limit: 1}
	require.NoError(t, filter.Validate())
	records, total, err := repo.List(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, records, 1)

	status := "present"
	filter = attendance.AttendanceFilter{Status: &status}
	require.NoError(t, filter.Validate())
	records, total, err = repo.List(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, doneID, records[0].EmployeeID)
}
