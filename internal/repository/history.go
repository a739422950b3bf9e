package repository

import (
	"context"
	"database/sql"
	"fmt"

	"homgar-monitor/internal/models"

	"go.uber.org/zap"
)

// HistoryRepository 读数审计记录仓库（sensor_readings 表，只追加）
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository 创建审计记录仓库
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Append 追加一条读数记录；记录创建后不再修改
func (r *HistoryRepository) Append(ctx context.Context, rec *models.HistoryRecord) error {
	if rec == nil {
		return fmt.Errorf("record is required")
	}

	query := `
		INSERT INTO sensor_readings (
			device_id,
			recorded_at,
			temperature_celsius,
			alert_triggered,
			threshold_celsius,
			message
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	var message sql.NullString
	if rec.Message != nil {
		message = sql.NullString{String: *rec.Message, Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, query,
		rec.DeviceID,
		rec.RecordedAt,
		rec.TemperatureCelsius,
		rec.AlertTriggered,
		rec.ThresholdCelsius,
		message,
	); err != nil {
		return fmt.Errorf("failed to append sensor reading for device %d: %w", rec.DeviceID, err)
	}

	return nil
}
