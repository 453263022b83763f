package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type settingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) attendance.SettingsRepository {
	return &settingsRepository{db: db}
}

// Get implements attendance.SettingsRepository. Window columns come back as
// HH:MM:SS text.
func (s *settingsRepository) Get(ctx context.Context) (attendance.Settings, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT id, check_in_start::text, check_in_end::text, check_out_start::text, check_out_end::text,
			work_hours, overtime_rate, grace_period, auto_checkout, updated_by, updated_at
		FROM attendance_settings
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var st attendance.Settings
	err := q.QueryRow(ctx, query).Scan(
		&st.ID, &st.CheckInStart, &st.CheckInEnd, &st.CheckOutStart, &st.CheckOutEnd,
		&st.WorkHours, &st.OvertimeRate, &st.GracePeriodMinutes, &st.AutoCheckout,
		&st.UpdatedBy, &st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Settings{}, attendance.ErrSettingsNotFound
		}
		return attendance.Settings{}, fmt.Errorf("failed to get attendance settings: %w", err)
	}
	return st, nil
}

// Upsert implements attendance.SettingsRepository. The table holds a single
// row keyed by the singleton flag.
func (s *settingsRepository) Upsert(ctx context.Context, st attendance.Settings) (attendance.Settings, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO attendance_settings (
			singleton, check_in_start, check_in_end, check_out_start, check_out_end,
			work_hours, overtime_rate, grace_period, auto_checkout, updated_by, updated_at
		) VALUES (TRUE, $1::time, $2::time, $3::time, $4::time, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (singleton) DO UPDATE SET
			check_in_start = EXCLUDED.check_in_start,
			check_in_end = EXCLUDED.check_in_end,
			check_out_start = EXCLUDED.check_out_start,
			check_out_end = EXCLUDED.check_out_end,
			work_hours = EXCLUDED.work_hours,
			overtime_rate = EXCLUDED.overtime_rate,
			grace_period = EXCLUDED.grace_period,
			auto_checkout = EXCLUDED.auto_checkout,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING id, updated_at
	`

	err := q.QueryRow(ctx, query,
		st.CheckInStart, st.CheckInEnd, st.CheckOutStart, st.CheckOutEnd,
		st.WorkHours, st.OvertimeRate, st.GracePeriodMinutes, st.AutoCheckout, st.UpdatedBy,
	).Scan(&st.ID, &st.UpdatedAt)
	if err != nil {
		return attendance.Settings{}, fmt.Errorf("failed to upsert attendance settings: %w", err)
	}
	return st, nil
}
