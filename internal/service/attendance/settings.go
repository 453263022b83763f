package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/go-chi/jwtauth/v5"
)

type SettingsServiceImpl struct {
	settingsRepo attendance.SettingsRepository
}

func NewSettingsService(settingsRepo attendance.SettingsRepository) attendance.SettingsService {
	return &SettingsServiceImpl{settingsRepo: settingsRepo}
}

// Get implements attendance.SettingsService.
func (s *SettingsServiceImpl) Get(ctx context.Context) (attendance.SettingsResponse, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, attendance.ErrSettingsNotFound) {
			resp := mapSettingsToResponse(attendance.DefaultSettings())
			resp.IsDefault = true
			return resp, nil
		}
		return attendance.SettingsResponse{}, fmt.Errorf("failed to get attendance settings: %w", err)
	}
	return mapSettingsToResponse(settings), nil
}

// Update implements attendance.SettingsService. Optional fields left out of
// the request keep their stored value.
func (s *SettingsServiceImpl) Update(ctx context.Context, req attendance.UpdateSettingsRequest) (attendance.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SettingsResponse{}, err
	}

	current, err := s.settingsRepo.Get(ctx)
	if err != nil {
		if !errors.Is(err, attendance.ErrSettingsNotFound) {
			return attendance.SettingsResponse{}, fmt.Errorf("failed to get attendance settings: %w", err)
		}
		current = attendance.DefaultSettings()
	}

	current.CheckInStart = normalizeClock(req.CheckInStart)
	current.CheckInEnd = normalizeClock(req.CheckInEnd)
	current.CheckOutStart = normalizeClock(req.CheckOutStart)
	current.CheckOutEnd = normalizeClock(req.CheckOutEnd)
	if req.WorkHours != nil {
		current.WorkHours = *req.WorkHours
	}
	if req.OvertimeRate != nil {
		current.OvertimeRate = *req.OvertimeRate
	}
	if req.GracePeriodMinutes != nil {
		current.GracePeriodMinutes = *req.GracePeriodMinutes
	}
	if req.AutoCheckout != nil {
		current.AutoCheckout = *req.AutoCheckout
	}

	if _, claims, err := jwtauth.FromContext(ctx); err == nil {
		if userID, ok := claims["user_id"].(string); ok && userID != "" {
			current.UpdatedBy = &userID
		}
	}

	saved, err := s.settingsRepo.Upsert(ctx, current)
	if err != nil {
		return attendance.SettingsResponse{}, fmt.Errorf("failed to save attendance settings: %w", err)
	}

	slog.Info("attendance settings updated",
		"check_in", saved.CheckInStart+"-"+saved.CheckInEnd,
		"check_out", saved.CheckOutStart+"-"+saved.CheckOutEnd)

	return mapSettingsToResponse(saved), nil
}

// normalizeClock renders a validated time as HH:MM.
func normalizeClock(s string) string {
	t, err := attendance.ParseTimeOfDay(s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return t.String()
}

func mapSettingsToResponse(s attendance.Settings) attendance.SettingsResponse {
	resp := attendance.SettingsResponse{
		CheckInStart:       normalizeClock(s.CheckInStart),
		CheckInEnd:         normalizeClock(s.CheckInEnd),
		CheckOutStart:      normalizeClock(s.CheckOutStart),
		CheckOutEnd:        normalizeClock(s.CheckOutEnd),
		WorkHours:          s.WorkHours.StringFixed(2),
		OvertimeRate:       s.OvertimeRate.StringFixed(2),
		GracePeriodMinutes: s.GracePeriodMinutes,
		AutoCheckout:       s.AutoCheckout,
		UpdatedBy:          s.UpdatedBy,
	}
	if !s.UpdatedAt.IsZero() {
		v := s.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &v
	}
	return resp
}
