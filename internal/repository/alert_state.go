package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"homgar-monitor/internal/models"

	"go.uber.org/zap"
)

// AlertStateRepository 报警节流状态仓库（alert_states 表，按 device_id 主键）
type AlertStateRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertStateRepository 创建报警状态仓库
func NewAlertStateRepository(db *sql.DB, logger *zap.Logger) *AlertStateRepository {
	return &AlertStateRepository{
		db:     db,
		logger: logger,
	}
}

// GetOrCreate 读取设备的报警状态；首次发现设备时以默认值插入
// 阈值与冷却时间只在插入时落库，之后的周期以已落库的值为准
func (r *AlertStateRepository) GetOrCreate(ctx context.Context, deviceID int64, defaults models.AlertDefaults) (*models.AlertState, error) {
	insertQuery := `
		INSERT INTO alert_states (
			device_id,
			threshold_celsius,
			cooldown_hours,
			enabled,
			created_at,
			updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $5
		)
		ON CONFLICT (device_id) DO NOTHING
	`

	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, insertQuery,
		deviceID,
		defaults.ThresholdCelsius,
		defaults.CooldownHours,
		defaults.Enabled,
		now,
	); err != nil {
		return nil, fmt.Errorf("failed to seed alert state for device %d: %w", deviceID, err)
	}

	selectQuery := `
		SELECT
			device_id,
			threshold_celsius,
			cooldown_hours,
			enabled,
			last_check_at,
			next_allowed_alert_at,
			last_reading_celsius
		FROM alert_states
		WHERE device_id = $1
	`

	var state models.AlertState
	var lastCheckAt, nextAllowedAt sql.NullTime
	var lastReading sql.NullFloat64

	err := r.db.QueryRowContext(ctx, selectQuery, deviceID).Scan(
		&state.DeviceID,
		&state.ThresholdCelsius,
		&state.CooldownHours,
		&state.Enabled,
		&lastCheckAt,
		&nextAllowedAt,
		&lastReading,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get alert state for device %d: %w", deviceID, err)
	}

	// 处理可空字段
	if lastCheckAt.Valid {
		state.LastCheckAt = &lastCheckAt.Time
	}
	if nextAllowedAt.Valid {
		state.NextAllowedAlertAt = &nextAllowedAt.Time
	}
	if lastReading.Valid {
		state.LastReadingCelsius = &lastReading.Float64
	}

	return &state, nil
}

// MarkFired 报警触发时提交节流状态（last_check_at 与 next_allowed_alert_at 一并提交）
// 该提交必须在通知发送之前完成，冷却窗口以落库为准
func (r *AlertStateRepository) MarkFired(ctx context.Context, deviceID int64, lastCheckAt, nextAllowedAt time.Time, lastReading float64) error {
	query := `
		UPDATE alert_states
		SET last_check_at = $2,
		    next_allowed_alert_at = $3,
		    last_reading_celsius = $4,
		    updated_at = $2
		WHERE device_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, deviceID, lastCheckAt, nextAllowedAt, lastReading)
	if err != nil {
		return fmt.Errorf("failed to mark alert fired for device %d: %w", deviceID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for device %d: %w", deviceID, err)
	}
	if rows == 0 {
		return fmt.Errorf("alert state not found for device %d", deviceID)
	}

	return nil
}

// UpdateLastReading 更新审计用的最近读数（不触碰节流字段）
func (r *AlertStateRepository) UpdateLastReading(ctx context.Context, deviceID int64, reading float64, at time.Time) error {
	query := `
		UPDATE alert_states
		SET last_reading_celsius = $2,
		    updated_at = $3
		WHERE device_id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, deviceID, reading, at); err != nil {
		return fmt.Errorf("failed to update last reading for device %d: %w", deviceID, err)
	}

	return nil
}
