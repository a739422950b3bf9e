package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"homgar-monitor/internal/devices"
	"homgar-monitor/internal/models"

	"go.uber.org/zap"
)

// Outcome 一次评估的结果
type Outcome int

const (
	// OutcomeNone 无需报警（读数低于阈值或报警被禁用）
	OutcomeNone Outcome = iota
	// OutcomeSuppressed 超过阈值但仍在冷却窗口内
	OutcomeSuppressed
	// OutcomeFired 报警触发，节流状态已落库
	OutcomeFired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeFired:
		return "fired"
	default:
		return "none"
	}
}

// Alert 触发报警时交给调用方渲染通知的字段
type Alert struct {
	DeviceID         int64
	SensorName       string
	CurrentCelsius   float64 // 四舍五入到小数点后一位
	ThresholdCelsius float64
	NextAllowedAt    time.Time
}

// AlertStateStore 节流状态持久化接口
type AlertStateStore interface {
	GetOrCreate(ctx context.Context, deviceID int64, defaults models.AlertDefaults) (*models.AlertState, error)
	MarkFired(ctx context.Context, deviceID int64, lastCheckAt, nextAllowedAt time.Time, lastReading float64) error
	UpdateLastReading(ctx context.Context, deviceID int64, reading float64, at time.Time) error
}

// HistoryStore 读数审计记录接口
type HistoryStore interface {
	Append(ctx context.Context, rec *models.HistoryRecord) error
}

// Engine 报警节流引擎
// 同一传感器在一个冷却窗口内最多触发一次报警；
// 节流状态在通知发送前落库（宁可丢通知，不可重复报警）
type Engine struct {
	states   AlertStateStore
	history  HistoryStore
	defaults models.AlertDefaults
	logger   *zap.Logger
	now      func() time.Time
}

// NewEngine 创建节流引擎
func NewEngine(states AlertStateStore, history HistoryStore, defaults models.AlertDefaults, logger *zap.Logger) *Engine {
	return &Engine{
		states:   states,
		history:  history,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

// Evaluate 评估一个温度传感器的当前读数
// 返回的 error 仅表示节流状态无法落库（周期级失败）；
// 审计记录写入失败只记录日志，不影响评估结果。
func (e *Engine) Evaluate(ctx context.Context, sensor *devices.TemperatureAirSensor) (Outcome, *Alert, error) {
	celsius, ok := sensor.CurrentCelsius()
	if !ok {
		// 本周期没有上报读数
		e.logger.Debug("No temperature reading for sensor, skipping",
			zap.Int64("device_id", sensor.DID),
		)
		return OutcomeNone, nil, nil
	}

	state, err := e.states.GetOrCreate(ctx, sensor.DID, e.defaults)
	if err != nil {
		return OutcomeNone, nil, fmt.Errorf("failed to load alert state for device %d: %w", sensor.DID, err)
	}

	if !state.Enabled {
		return OutcomeNone, nil, nil
	}

	now := e.now().UTC()

	// 低于阈值：只更新审计读数
	if celsius < state.ThresholdCelsius {
		if err := e.states.UpdateLastReading(ctx, sensor.DID, celsius, now); err != nil {
			e.logger.Warn("Failed to update last reading",
				zap.Int64("device_id", sensor.DID),
				zap.Error(err),
			)
		}
		e.appendHistory(ctx, sensor.DID, now, celsius, false, state.ThresholdCelsius, nil)
		return OutcomeNone, nil, nil
	}

	// 达到或超过阈值（边界含等于）
	if state.NextAllowedAlertAt != nil && !now.After(*state.NextAllowedAlertAt) {
		e.logger.Info("Alert suppressed by cooldown",
			zap.Int64("device_id", sensor.DID),
			zap.Float64("temperature_celsius", celsius),
			zap.Time("next_allowed_alert_at", *state.NextAllowedAlertAt),
		)
		e.appendHistory(ctx, sensor.DID, now, celsius, false, state.ThresholdCelsius, nil)
		return OutcomeSuppressed, nil, nil
	}

	// 冷却时间为零或负数时视为始终可触发
	nextAllowed := now
	if state.CooldownHours > 0 {
		nextAllowed = now.Add(time.Duration(state.CooldownHours * float64(time.Hour)))
	}

	// 先落库再通知：即使通知发送失败，冷却窗口也必须生效
	if err := e.states.MarkFired(ctx, sensor.DID, now, nextAllowed, celsius); err != nil {
		return OutcomeNone, nil, fmt.Errorf("failed to commit alert state for device %d: %w", sensor.DID, err)
	}

	alert := &Alert{
		DeviceID:         sensor.DID,
		SensorName:       sensor.DisplayName(),
		CurrentCelsius:   math.Round(celsius*10) / 10,
		ThresholdCelsius: state.ThresholdCelsius,
		NextAllowedAt:    nextAllowed,
	}

	e.logger.Warn("Temperature alert fired",
		zap.Int64("device_id", sensor.DID),
		zap.String("sensor_name", alert.SensorName),
		zap.Float64("temperature_celsius", alert.CurrentCelsius),
		zap.Float64("threshold_celsius", alert.ThresholdCelsius),
		zap.Time("next_allowed_alert_at", nextAllowed),
	)

	message := fmt.Sprintf("alert fired: %.1f°C >= %.1f°C, next alert after %s",
		alert.CurrentCelsius, alert.ThresholdCelsius, nextAllowed.Format(time.RFC3339))
	e.appendHistory(ctx, sensor.DID, now, celsius, true, state.ThresholdCelsius, &message)

	return OutcomeFired, alert, nil
}

// appendHistory 追加审计记录；失败只记录日志，不回滚已提交的节流状态
func (e *Engine) appendHistory(ctx context.Context, deviceID int64, at time.Time, celsius float64, triggered bool, threshold float64, message *string) {
	rec := &models.HistoryRecord{
		DeviceID:           deviceID,
		RecordedAt:         at,
		TemperatureCelsius: celsius,
		AlertTriggered:     triggered,
		ThresholdCelsius:   threshold,
		Message:            message,
	}

	if err := e.history.Append(ctx, rec); err != nil {
		e.logger.Error("Failed to append sensor reading history",
			zap.Int64("device_id", deviceID),
			zap.Error(err),
		)
	}
}
