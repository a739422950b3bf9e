package models

import (
	"time"
)

// HistoryRecord 一次读数评估的审计记录（对应 sensor_readings 表，只追加不修改）
type HistoryRecord struct {
	DeviceID           int64     `json:"device_id" db:"device_id"`
	RecordedAt         time.Time `json:"recorded_at" db:"recorded_at"`
	TemperatureCelsius float64   `json:"temperature_celsius" db:"temperature_celsius"`
	AlertTriggered     bool      `json:"alert_triggered" db:"alert_triggered"`
	ThresholdCelsius   float64   `json:"threshold_celsius" db:"threshold_celsius"`
	Message            *string   `json:"message,omitempty" db:"message"`
}
