package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/restriction"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
)

type AttendanceServiceImpl struct {
	tx             database.Transactor
	attendanceRepo attendance.Repository
	settingsRepo   attendance.SettingsRepository
	employeeRepo   employee.EmployeeRepository
	evaluator      restriction.Evaluator
	loc            *time.Location
	now            func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.Repository,
	settingsRepo attendance.SettingsRepository,
	employeeRepo employee.EmployeeRepository,
	evaluator restriction.Evaluator,
	loc *time.Location,
) attendance.Service {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		tx:             tx,
		attendanceRepo: attendanceRepo,
		settingsRepo:   settingsRepo,
		employeeRepo:   employeeRepo,
		evaluator:      evaluator,
		loc:            loc,
		now:            time.Now,
	}
}

// CheckIn implements attendance.Service.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	emp, err := s.currentEmployee(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	decision, err := s.evaluator.Evaluate(ctx, emp.ID, restriction.CheckContext{
		ClientIP:  req.ClientIP,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to evaluate check-in restrictions: %w", err)
	}
	if !decision.Passed {
		slog.Warn("check-in restricted",
			"employee_id", emp.ID,
			"code", decision.FailureCode,
			"client_ip", decision.ClientIP)
		return attendance.RecordResponse{}, &attendance.RestrictionError{Decision: decision}
	}
	if decision.IPBypassed {
		slog.Info("IP restriction bypassed",
			"employee_id", emp.ID,
			"client_ip", decision.ClientIP)
	}

	_, windows, err := s.loadSettings(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	checkIn := req.At.In(s.loc)
	day := dateOf(checkIn)
	in := CalculateCheckInStatus(checkIn, windows.CheckInStart, windows.CheckInEnd)
	status := CalculateAttendanceStatus(&checkIn, nil, windows, checkIn)

	var saved attendance.Record
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		record, err := s.attendanceRepo.GetByEmployeeAndDateForUpdate(ctx, emp.ID, day)
		exists := err == nil
		if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
			return fmt.Errorf("failed to get attendance record: %w", err)
		}
		if exists && record.CheckedIn() {
			return attendance.ErrAlreadyCheckedIn
		}
		if !exists {
			record = attendance.Record{EmployeeID: emp.ID, Date: day}
		}

		record.CheckIn = &checkIn
		record.CheckInStatus = &in.Status
		record.CheckInDuration = in.Duration
		record.Status = status.Status
		record.LateMinutes = 0
		if in.Status == attendance.CheckInLate {
			record.LateMinutes = in.Duration
		}
		record.WorkHours = status.WorkHours
		applyAudit(&record, req.ClientIP, decision)

		if exists {
			saved, err = s.attendanceRepo.Update(ctx, record)
		} else {
			saved, err = s.attendanceRepo.Create(ctx, record)
		}
		if err != nil {
			if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
				return err
			}
			return fmt.Errorf("failed to save attendance record: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	if saved.EmployeeName == nil {
		saved.EmployeeName = &emp.FullName
	}
	resp := mapRecordToResponse(saved, s.loc)
	resp.Description = in.Description
	return resp, nil
}

func applyAudit(record *attendance.Record, rawIP string, d restriction.Decision) {
	ip := d.ClientIP
	if ip == "" {
		ip = rawIP
	}
	if len(ip) > 45 {
		ip = ip[:45]
	}
	if ip != "" {
		record.CheckInIP = &ip
	}
	if d.Coordinate != nil {
		lat, lon := d.Coordinate.Latitude, d.Coordinate.Longitude
		record.CheckInLatitude = &lat
		record.CheckInLongitude = &lon
	}
	passed := true
	record.RestrictionPassed = &passed
	if d.IPBypassed {
		code := string(restriction.FailureIPNotAllowed)
		record.RestrictionFailureCode = &code
	} else {
		record.RestrictionFailureCode = nil
	}
}

// CheckOut implements attendance.Service.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	emp, err := s.currentEmployee(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	_, windows, err := s.loadSettings(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	checkOut := req.At.In(s.loc)
	day := dateOf(checkOut)

	var (
		saved  attendance.Record
		status StatusResult
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		record, err := s.attendanceRepo.GetByEmployeeAndDateForUpdate(ctx, emp.ID, day)
		if err != nil {
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				return attendance.ErrNoCheckInToday
			}
			return fmt.Errorf("failed to get attendance record: %w", err)
		}
		if !record.CheckedIn() {
			return attendance.ErrNotCheckedIn
		}
		if record.CheckedOut() {
			return attendance.ErrAlreadyCheckedOut
		}

		checkIn := record.CheckIn.In(s.loc)
		if checkOut.Before(checkIn) {
			return validator.ValidationErrors{{
				Field:   "timestamp",
				Message: "check-out time must be after check-in time",
			}}
		}

		out := CalculateCheckOutStatus(checkOut, windows.CheckOutStart, windows.CheckOutEnd)
		status = CalculateAttendanceStatus(&checkIn, &checkOut, windows, checkOut)

		record.CheckOut = &checkOut
		record.CheckOutStatus = &out.Status
		record.CheckOutDuration = out.Duration
		record.WorkHours = status.WorkHours
		record.Status = status.Status
		record.EarlyCheckout = out.Status == attendance.CheckOutEarly
		record.OvertimeMinutes = 0
		if out.Status == attendance.CheckOutOverTime {
			record.OvertimeMinutes = out.Duration
		}

		saved, err = s.attendanceRepo.Update(ctx, record)
		if err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	if saved.EmployeeName == nil {
		saved.EmployeeName = &emp.FullName
	}
	resp := mapRecordToResponse(saved, s.loc)
	resp.Description = status.Description
	return resp, nil
}

// Today implements attendance.Service.
func (s *AttendanceServiceImpl) Today(ctx context.Context) (attendance.TodayResponse, error) {
	emp, err := s.currentEmployee(ctx)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	_, windows, err := s.loadSettings(ctx)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	now := s.now().In(s.loc)
	day := dateOf(now)

	record, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, day)
	if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.TodayResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	found := err == nil

	var checkIn, checkOut *time.Time
	if found {
		checkIn, checkOut = inLocation(record.CheckIn, s.loc), inLocation(record.CheckOut, s.loc)
	}
	status := CalculateAttendanceStatus(checkIn, checkOut, windows, now)

	resp := attendance.TodayResponse{
		Date:        day.Format("2006-01-02"),
		Status:      string(status.Status),
		IsPresent:   status.IsPresent,
		CheckedIn:   checkIn != nil,
		CheckedOut:  checkOut != nil,
		Description: status.Description,
	}
	if found {
		if record.EmployeeName == nil {
			record.EmployeeName = &emp.FullName
		}
		r := mapRecordToResponse(record, s.loc)
		resp.Record = &r
	}
	return resp, nil
}

// CheckRestrictions implements attendance.Service.
func (s *AttendanceServiceImpl) CheckRestrictions(ctx context.Context) (restriction.Summary, error) {
	emp, err := s.currentEmployee(ctx)
	if err != nil {
		return restriction.Summary{}, err
	}
	summary, err := s.evaluator.Summarize(ctx, emp.ID)
	if err != nil {
		return restriction.Summary{}, fmt.Errorf("failed to summarize restrictions: %w", err)
	}
	return summary, nil
}

// ManualEntry implements attendance.Service.
func (s *AttendanceServiceImpl) ManualEntry(ctx context.Context, req attendance.ManualEntryRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	_, windows, err := s.loadSettings(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	day := time.Date(req.Day.Year(), req.Day.Month(), req.Day.Day(), 0, 0, 0, 0, s.loc)
	checkIn := day.Add(time.Duration(req.CheckInAt) * time.Minute)
	checkOut := day.Add(time.Duration(req.CheckOutAt) * time.Minute)

	in := CalculateCheckInStatus(checkIn, windows.CheckInStart, windows.CheckInEnd)
	out := CalculateCheckOutStatus(checkOut, windows.CheckOutStart, windows.CheckOutEnd)
	status := CalculateAttendanceStatus(&checkIn, &checkOut, windows, checkOut)

	var saved attendance.Record
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		record, err := s.attendanceRepo.GetByEmployeeAndDateForUpdate(ctx, emp.ID, day)
		exists := err == nil
		if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
			return fmt.Errorf("failed to get attendance record: %w", err)
		}
		if !exists {
			record = attendance.Record{EmployeeID: emp.ID, Date: day}
		}

		record.CheckIn = &checkIn
		record.CheckInStatus = &in.Status
		record.CheckInDuration = in.Duration
		record.CheckOut = &checkOut
		record.CheckOutStatus = &out.Status
		record.CheckOutDuration = out.Duration
		record.Status = status.Status
		record.WorkHours = status.WorkHours
		record.LateMinutes = 0
		if in.Status == attendance.CheckInLate {
			record.LateMinutes = in.Duration
		}
		record.EarlyCheckout = out.Status == attendance.CheckOutEarly
		record.OvertimeMinutes = 0
		if out.Status == attendance.CheckOutOverTime {
			record.OvertimeMinutes = out.Duration
		}
		record.Notes = req.Notes
		record.IsManualEntry = true

		if exists {
			saved, err = s.attendanceRepo.Update(ctx, record)
		} else {
			saved, err = s.attendanceRepo.Create(ctx, record)
		}
		if err != nil {
			return fmt.Errorf("failed to save manual attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	slog.Info("manual attendance entry saved",
		"employee_id", emp.ID,
		"date", req.Date,
		"status", status.Status)

	if saved.EmployeeName == nil {
		saved.EmployeeName = &emp.FullName
	}
	resp := mapRecordToResponse(saved, s.loc)
	resp.Description = status.Description
	return resp, nil
}

// List implements attendance.Service.
func (s *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, mapRecordToResponse(r, s.loc))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	offset := (filter.Page - 1) * filter.Limit
	showing := fmt.Sprintf("0 of %d", total)
	if int64(offset) < total {
		showing = fmt.Sprintf("%d-%d of %d", offset+1, min(int64(offset+filter.Limit), total), total)
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// FinalizeDay implements attendance.Service.
func (s *AttendanceServiceImpl) FinalizeDay(ctx context.Context, day time.Time) (attendance.FinalizeResult, error) {
	_, windows, err := s.loadSettings(ctx)
	if err != nil {
		return attendance.FinalizeResult{}, err
	}

	day = dateOf(day.In(s.loc))
	endOfDay := day.Add(24*time.Hour - time.Minute)
	result := attendance.FinalizeResult{Date: day.Format("2006-01-02")}

	open, err := s.attendanceRepo.GetOpenBefore(ctx, day.AddDate(0, 0, 1))
	if err != nil {
		return result, fmt.Errorf("failed to get open attendance records: %w", err)
	}
	for _, record := range open {
		recordDay := time.Date(record.Date.Year(), record.Date.Month(), record.Date.Day(), 0, 0, 0, 0, s.loc)
		status := CalculateAttendanceStatus(inLocation(record.CheckIn, s.loc), nil, windows, recordDay.Add(24*time.Hour-time.Minute))
		record.Status = status.Status
		if _, err := s.attendanceRepo.Update(ctx, record); err != nil {
			slog.Error("failed to finalize open attendance",
				"attendance_id", record.ID,
				"employee_id", record.EmployeeID,
				"error", err)
			continue
		}
		result.OpenClosed++
	}

	missing, err := s.attendanceRepo.ListEmployeesWithoutRecord(ctx, day)
	if err != nil {
		return result, fmt.Errorf("failed to list employees without attendance: %w", err)
	}
	absent := CalculateAttendanceStatus(nil, nil, windows, endOfDay)
	for _, employeeID := range missing {
		_, err := s.attendanceRepo.Create(ctx, attendance.Record{
			EmployeeID: employeeID,
			Date:       day,
			Status:     absent.Status,
		})
		if err != nil {
			if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
				continue
			}
			slog.Error("failed to create absent attendance",
				"employee_id", employeeID,
				"date", result.Date,
				"error", err)
			continue
		}
		result.MissingFilled++
	}

	return result, nil
}

// currentEmployee resolves the caller from the employee_id claim, falling
// back to user_id for tokens issued before the employee was linked.
func (s *AttendanceServiceImpl) currentEmployee(ctx context.Context) (employee.Employee, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	var emp employee.Employee
	if employeeID, ok := claims["employee_id"].(string); ok && employeeID != "" {
		emp, err = s.employeeRepo.GetByID(ctx, employeeID)
	} else if userID, ok := claims["user_id"].(string); ok && userID != "" {
		emp, err = s.employeeRepo.GetByUserID(ctx, userID)
	} else {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive() {
		return employee.Employee{}, employee.ErrEmployeeInactive
	}
	return emp, nil
}

// loadSettings falls back to defaults only when no row exists. A stored but
// malformed window is returned as ErrInvalidSettings.
func (s *AttendanceServiceImpl) loadSettings(ctx context.Context) (attendance.Settings, attendance.Windows, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		if !errors.Is(err, attendance.ErrSettingsNotFound) {
			return attendance.Settings{}, attendance.Windows{}, fmt.Errorf("failed to get attendance settings: %w", err)
		}
		settings = attendance.DefaultSettings()
	}

	windows, err := settings.Windows()
	if err != nil {
		return attendance.Settings{}, attendance.Windows{}, err
	}
	return settings, windows, nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func inLocation(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	v := t.In(loc)
	return &v
}

func formatTime(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format(time.RFC3339)
	return &s
}

func mapRecordToResponse(r attendance.Record, loc *time.Location) attendance.RecordResponse {
	resp := attendance.RecordResponse{
		ID:                     r.ID,
		EmployeeID:             r.EmployeeID,
		EmployeeName:           r.EmployeeName,
		Date:                   r.Date.Format("2006-01-02"),
		CheckIn:                formatTime(r.CheckIn, loc),
		CheckInDuration:        r.CheckInDuration,
		CheckOut:               formatTime(r.CheckOut, loc),
		CheckOutDuration:       r.CheckOutDuration,
		Status:                 string(r.Status),
		WorkHours:              r.WorkHours.StringFixed(2),
		LateMinutes:            r.LateMinutes,
		OvertimeMinutes:        r.OvertimeMinutes,
		EarlyCheckout:          r.EarlyCheckout,
		CheckInIP:              r.CheckInIP,
		CheckInLatitude:        r.CheckInLatitude,
		CheckInLongitude:       r.CheckInLongitude,
		RestrictionPassed:      r.RestrictionPassed,
		RestrictionFailureCode: r.RestrictionFailureCode,
		Notes:                  r.Notes,
		IsManualEntry:          r.IsManualEntry,
		CreatedAt:              r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:              r.UpdatedAt.Format(time.RFC3339),
	}
	if r.CheckInStatus != nil {
		v := string(*r.CheckInStatus)
		resp.CheckInStatus = &v
	}
	if r.CheckOutStatus != nil {
		v := string(*r.CheckOutStatus)
		resp.CheckOutStatus = &v
	}
	return resp
}
