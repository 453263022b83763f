package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const settingsKey = "attendance:settings"

type cachedSettings struct {
	ID                 string          `json:"id"`
	CheckInStart       string          `json:"check_in_start"`
	CheckInEnd         string          `json:"check_in_end"`
	CheckOutStart      string          `json:"check_out_start"`
	CheckOutEnd        string          `json:"check_out_end"`
	WorkHours          decimal.Decimal `json:"work_hours"`
	OvertimeRate       decimal.Decimal `json:"overtime_rate"`
	GracePeriodMinutes int             `json:"grace_period"`
	AutoCheckout       bool            `json:"auto_checkout"`
	UpdatedBy          *string         `json:"updated_by,omitempty"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// settingsCache is a read-through cache in front of the settings store. Redis
// failures are logged and the store is used directly.
type settingsCache struct {
	next   attendance.SettingsRepository
	client goredis.Cmdable
	ttl    time.Duration
}

func NewSettingsCache(next attendance.SettingsRepository, client goredis.Cmdable, ttl time.Duration) attendance.SettingsRepository {
	return &settingsCache{next: next, client: client, ttl: ttl}
}

// Get implements attendance.SettingsRepository. A missing row is never cached.
func (c *settingsCache) Get(ctx context.Context) (attendance.Settings, error) {
	raw, err := c.client.Get(ctx, settingsKey).Bytes()
	switch {
	case err == nil:
		var cs cachedSettings
		if err := json.Unmarshal(raw, &cs); err == nil {
			return attendance.Settings(cs), nil
		}
		slog.Warn("discarding malformed cached settings", "key", settingsKey)
	case !errors.Is(err, goredis.Nil):
		slog.Warn("settings cache read failed", "error", err)
	}

	s, err := c.next.Get(ctx)
	if err != nil {
		return attendance.Settings{}, err
	}
	c.store(ctx, s)
	return s, nil
}

// Upsert implements attendance.SettingsRepository.
func (c *settingsCache) Upsert(ctx context.Context, s attendance.Settings) (attendance.Settings, error) {
	saved, err := c.next.Upsert(ctx, s)
	if err != nil {
		return attendance.Settings{}, err
	}
	c.store(ctx, saved)
	return saved, nil
}

func (c *settingsCache) store(ctx context.Context, s attendance.Settings) {
	data, err := json.Marshal(cachedSettings(s))
	if err != nil {
		slog.Warn("failed to encode settings for cache", "error", err)
		return
	}
	if err := c.client.Set(ctx, settingsKey, data, c.ttl).Err(); err != nil {
		slog.Warn("settings cache write failed", "error", err)
	}
}

// NewClient connects to addr and pings it once.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
