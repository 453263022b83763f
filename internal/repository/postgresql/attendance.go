package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	a.id, a.employee_id, a.date,
	a.check_in, a.check_in_status, a.check_in_duration,
	a.check_out, a.check_out_status, a.check_out_duration,
	a.status, a.work_hours, a.late_minutes, a.overtime_minutes, a.early_checkout,
	a.check_in_ip, a.check_in_latitude, a.check_in_longitude,
	a.restriction_passed, a.restriction_failure_code,
	a.notes, a.is_manual_entry, a.created_at, a.updated_at,
	e.full_name AS employee_name`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var r attendance.Record
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.Date,
		&r.CheckIn, &r.CheckInStatus, &r.CheckInDuration,
		&r.CheckOut, &r.CheckOutStatus, &r.CheckOutDuration,
		&r.Status, &r.WorkHours, &r.LateMinutes, &r.OvertimeMinutes, &r.EarlyCheckout,
		&r.CheckInIP, &r.CheckInLatitude, &r.CheckInLongitude,
		&r.RestrictionPassed, &r.RestrictionFailureCode,
		&r.Notes, &r.IsManualEntry, &r.CreatedAt, &r.UpdatedAt,
		&r.EmployeeName,
	)
	return r, err
}

func (a *attendanceRepository) getByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, lock bool) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.employee_id = $1 AND a.date = $2`
	if lock {
		query += ` FOR UPDATE OF a`
	}

	r, err := scanRecord(q.QueryRow(ctx, query, employeeID, date.Format("2006-01-02")))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}
	return r, nil
}

// GetByEmployeeAndDate implements attendance.Repository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	return a.getByEmployeeAndDate(ctx, employeeID, date, false)
}

// GetByEmployeeAndDateForUpdate implements attendance.Repository.
func (a *attendanceRepository) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	return a.getByEmployeeAndDate(ctx, employeeID, date, true)
}

// Create implements attendance.Repository. A second row for the same
// employee and date is reported as ErrAlreadyCheckedIn.
func (a *attendanceRepository) Create(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance (
			employee_id, date,
			check_in, check_in_status, check_in_duration,
			check_out, check_out_status, check_out_duration,
			status, work_hours, late_minutes, overtime_minutes, early_checkout,
			check_in_ip, check_in_latitude, check_in_longitude,
			restriction_passed, restriction_failure_code,
			notes, is_manual_entry
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		r.EmployeeID, r.Date.Format("2006-01-02"),
		r.CheckIn, r.CheckInStatus, r.CheckInDuration,
		r.CheckOut, r.CheckOutStatus, r.CheckOutDuration,
		r.Status, r.WorkHours, r.LateMinutes, r.OvertimeMinutes, r.EarlyCheckout,
		r.CheckInIP, r.CheckInLatitude, r.CheckInLongitude,
		r.RestrictionPassed, r.RestrictionFailureCode,
		r.Notes, r.IsManualEntry,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return r, nil
}

// Update implements attendance.Repository. Every mutable column is written.
func (a *attendanceRepository) Update(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance SET
			check_in = $1, check_in_status = $2, check_in_duration = $3,
			check_out = $4, check_out_status = $5, check_out_duration = $6,
			status = $7, work_hours = $8, late_minutes = $9, overtime_minutes = $10, early_checkout = $11,
			check_in_ip = $12, check_in_latitude = $13, check_in_longitude = $14,
			restriction_passed = $15, restriction_failure_code = $16,
			notes = $17, is_manual_entry = $18, updated_at = NOW()
		WHERE id = $19
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		r.CheckIn, r.CheckInStatus, r.CheckInDuration,
		r.CheckOut, r.CheckOutStatus, r.CheckOutDuration,
		r.Status, r.WorkHours, r.LateMinutes, r.OvertimeMinutes, r.EarlyCheckout,
		r.CheckInIP, r.CheckInLatitude, r.CheckInLongitude,
		r.RestrictionPassed, r.RestrictionFailureCode,
		r.Notes, r.IsManualEntry,
		r.ID,
	).Scan(&r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	return r, nil
}

// List implements attendance.Repository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("a.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Date != nil && *filter.Date != "" {
		conditions = append(conditions, fmt.Sprintf("a.date = $%d", argIdx))
		args = append(args, *filter.Date)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM attendance a WHERE " + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	orderBy := "a.date"
	switch filter.SortBy {
	case "employee_name":
		orderBy = "e.full_name"
	case "check_in":
		orderBy = "a.check_in"
	case "check_out":
		orderBy = "a.check_out"
	case "status":
		orderBy = "a.status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := max(filter.Page, 1)
	args = append(args, limit, (page-1)*limit)

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendance a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE %s
		ORDER BY %s %s, a.id
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, where, orderBy, sortOrder, argIdx, argIdx+1)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return records, total, nil
}

// GetOpenBefore implements attendance.Repository.
func (a *attendanceRepository) GetOpenBefore(ctx context.Context, before time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance a
		LEFT JOIN employees e ON e.id = a.employee_id
		WHERE a.date < $1
		  AND a.check_in IS NOT NULL
		  AND a.check_out IS NULL
		  AND a.status <> $2
		ORDER BY a.date, a.employee_id`

	rows, err := q.Query(ctx, query, before.Format("2006-01-02"), attendance.StatusAbsent)
	if err != nil {
		return nil, fmt.Errorf("failed to query open attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ListEmployeesWithoutRecord implements attendance.Repository.
func (a *attendanceRepository) ListEmployeesWithoutRecord(ctx context.Context, date time.Time) ([]string, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT e.id
		FROM employees e
		WHERE e.employment_status = 'active'
		  AND e.deleted_at IS NULL
		  AND NOT EXISTS (
			SELECT 1 FROM attendance a
			WHERE a.employee_id = e.id AND a.date = $1
		  )
		ORDER BY e.id
	`

	rows, err := q.Query(ctx, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query employees without attendance: %w", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan employee id: %w", err)
	}
	return ids, nil
}
