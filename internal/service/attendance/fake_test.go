package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/restriction"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"
)

const (
	testEmployeeID = "00000000-0000-4000-8000-000000000001"
	testUserID     = "00000000-0000-4000-8000-0000000000aa"
)

type fakeRecords struct {
	records []attendance.Record
	active  []string
	seq     int
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }

func (f *fakeRecords) find(employeeID string, date time.Time) int {
	for i, r := range f.records {
		if r.EmployeeID == employeeID && dayKey(r.Date) == dayKey(date) {
			return i
		}
	}
	return -1
}

func (f *fakeRecords) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	i := f.find(employeeID, date)
	if i < 0 {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return f.records[i], nil
}

func (f *fakeRecords) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	return f.GetByEmployeeAndDate(ctx, employeeID, date)
}

func (f *fakeRecords) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	if f.find(record.EmployeeID, record.Date) >= 0 {
		return attendance.Record{}, attendance.ErrAlreadyCheckedIn
	}
	f.seq++
	record.ID = fmt.Sprintf("00000000-0000-4000-9000-%012d", f.seq)
	record.CreatedAt = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	record.UpdatedAt = record.CreatedAt
	f.records = append(f.records, record)
	return record, nil
}

func (f *fakeRecords) Update(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	for i, r := range f.records {
		if r.ID == record.ID {
			f.records[i] = record
			return record, nil
		}
	}
	return attendance.Record{}, attendance.ErrAttendanceNotFound
}

func (f *fakeRecords) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(f.records) {
		return nil, int64(len(f.records)), nil
	}
	end := min(offset+filter.Limit, len(f.records))
	return f.records[offset:end], int64(len(f.records)), nil
}

func (f *fakeRecords) GetOpenBefore(ctx context.Context, before time.Time) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, r := range f.records {
		if r.Date.Before(before) && r.CheckedIn() && !r.CheckedOut() && r.Status != attendance.StatusAbsent {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecords) ListEmployeesWithoutRecord(ctx context.Context, date time.Time) ([]string, error) {
	var out []string
	for _, id := range f.active {
		if f.find(id, date) < 0 {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeSettings struct {
	settings *attendance.Settings
	err      error
	upserts  int
}

func (f *fakeSettings) Get(ctx context.Context) (attendance.Settings, error) {
	if f.err != nil {
		return attendance.Settings{}, f.err
	}
	if f.settings == nil {
		return attendance.Settings{}, attendance.ErrSettingsNotFound
	}
	return *f.settings, nil
}

func (f *fakeSettings) Upsert(ctx context.Context, s attendance.Settings) (attendance.Settings, error) {
	f.upserts++
	s.ID = "00000000-0000-4000-8000-00000000beef"
	s.UpdatedAt = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	f.settings = &s
	return s, nil
}

type fakeTx struct{ calls int }

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeEmployees map[string]employee.Employee

func (f fakeEmployees) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := f[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f fakeEmployees) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	for _, e := range f {
		if e.UserID != nil && *e.UserID == userID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

type fakeEvaluator struct {
	decision restriction.Decision
	summary  restriction.Summary
	err      error
	calls    int
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, employeeID string, cc restriction.CheckContext) (restriction.Decision, error) {
	f.calls++
	if f.err != nil {
		return restriction.Decision{}, f.err
	}
	d := f.decision
	if d.ClientIP == "" {
		d.ClientIP = cc.ClientIP
	}
	return d, nil
}

func (f *fakeEvaluator) Summarize(ctx context.Context, employeeID string) (restriction.Summary, error) {
	return f.summary, f.err
}

type harness struct {
	svc       *AttendanceServiceImpl
	records   *fakeRecords
	settings  *fakeSettings
	tx        *fakeTx
	employees fakeEmployees
	evaluator *fakeEvaluator
}

func newHarness(t *testing.T, loc *time.Location) *harness {
	t.Helper()
	userID := testUserID
	h := &harness{
		records:  &fakeRecords{},
		settings: &fakeSettings{},
		tx:       &fakeTx{},
		employees: fakeEmployees{
			testEmployeeID: {
				ID:               testEmployeeID,
				UserID:           &userID,
				FullName:         "Budi Santoso",
				EmploymentStatus: employee.EmploymentStatusActive,
			},
		},
		evaluator: &fakeEvaluator{decision: restriction.Pass()},
	}
	svc, ok := NewAttendanceService(h.tx, h.records, h.settings, h.employees, h.evaluator, loc).(*AttendanceServiceImpl)
	require.True(t, ok)
	h.svc = svc
	return h
}

func claimsContext(t *testing.T, claims map[string]any) context.Context {
	t.Helper()
	token := jwt.New()
	for k, v := range claims {
		require.NoError(t, token.Set(k, v))
	}
	return jwtauth.NewContext(context.Background(), token, nil)
}

func employeeContext(t *testing.T) context.Context {
	return claimsContext(t, map[string]any{"employee_id": testEmployeeID, "user_id": testUserID})
}
