package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Settings is the singleton attendance configuration. Window boundaries are
// 24-hour "HH:MM" strings.
type Settings struct {
	ID                 string
	CheckInStart       string
	CheckInEnd         string
	CheckOutStart      string
	CheckOutEnd        string
	WorkHours          decimal.Decimal
	OvertimeRate       decimal.Decimal
	GracePeriodMinutes int
	AutoCheckout       bool
	UpdatedBy          *string
	UpdatedAt          time.Time
}

// DefaultSettings applies only when no settings row exists at all.
func DefaultSettings() Settings {
	return Settings{
		CheckInStart:       "08:00",
		CheckInEnd:         "10:00",
		CheckOutStart:      "17:00",
		CheckOutEnd:        "19:00",
		WorkHours:          decimal.NewFromFloat(8.0),
		OvertimeRate:       decimal.NewFromFloat(1.5),
		GracePeriodMinutes: 15,
		AutoCheckout:       true,
	}
}

// TimeOfDay is a number of minutes since midnight.
type TimeOfDay int

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MinuteOfDay reads the wall clock of ts in its own location.
func MinuteOfDay(ts time.Time) TimeOfDay {
	return TimeOfDay(ts.Hour()*60 + ts.Minute())
}

// ParseTimeOfDay accepts "HH:MM" and the "HH:MM:SS" form PostgreSQL uses for
// time columns. Seconds are ignored.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay(t.Hour()*60 + t.Minute()), nil
		}
	}
	return 0, fmt.Errorf("%w: %q is not a valid HH:MM time", ErrInvalidSettings, s)
}

// Windows are the parsed check-in and check-out boundaries.
type Windows struct {
	CheckInStart  TimeOfDay
	CheckInEnd    TimeOfDay
	CheckOutStart TimeOfDay
	CheckOutEnd   TimeOfDay
}

// Windows parses the four boundaries. A malformed value is a configuration
// error and is never replaced with a default.
func (s Settings) Windows() (Windows, error) {
	var w Windows
	fields := []struct {
		name string
		raw  string
		dst  *TimeOfDay
	}{
		{"check_in_start", s.CheckInStart, &w.CheckInStart},
		{"check_in_end", s.CheckInEnd, &w.CheckInEnd},
		{"check_out_start", s.CheckOutStart, &w.CheckOutStart},
		{"check_out_end", s.CheckOutEnd, &w.CheckOutEnd},
	}
	for _, f := range fields {
		v, err := ParseTimeOfDay(f.raw)
		if err != nil {
			return Windows{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return w, nil
}
