package models

import (
	"time"
)

// AlertState 每个温度传感器的报警节流状态（对应 alert_states 表）
// 阈值与冷却时间在首次发现设备时由配置默认值落库，
// 之后以数据库中的值为准，不再从配置读取
type AlertState struct {
	DeviceID           int64      `json:"device_id" db:"device_id"`
	ThresholdCelsius   float64    `json:"threshold_celsius" db:"threshold_celsius"`
	CooldownHours      float64    `json:"cooldown_hours" db:"cooldown_hours"`
	Enabled            bool       `json:"enabled" db:"enabled"`
	LastCheckAt        *time.Time `json:"last_check_at,omitempty" db:"last_check_at"`
	NextAllowedAlertAt *time.Time `json:"next_allowed_alert_at,omitempty" db:"next_allowed_alert_at"`
	LastReadingCelsius *float64   `json:"last_reading_celsius,omitempty" db:"last_reading_celsius"`
}

// AlertDefaults 首次发现设备时写入 alert_states 的默认值
type AlertDefaults struct {
	ThresholdCelsius float64
	CooldownHours    float64
	Enabled          bool
}
