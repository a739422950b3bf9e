package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"homgar-monitor/internal/cache"
	"homgar-monitor/internal/config"
	"homgar-monitor/internal/database"
	"homgar-monitor/internal/devices"
	"homgar-monitor/internal/engine"
	"homgar-monitor/internal/homgar"
	"homgar-monitor/internal/models"
	"homgar-monitor/internal/notifier"
	"homgar-monitor/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// MonitorService 监控服务（整合各层）
// 每个轮询周期：凭证检查 → 家庭列表 → 设备树构建 → 状态分发 → 报警评估
type MonitorService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger

	// 各层组件
	client      *homgar.Client
	session     *homgar.Session
	stateRepo   *repository.AlertStateRepository
	historyRepo *repository.HistoryRepository
	engine      *engine.Engine
	notifier    notifier.Notifier
}

// NewMonitorService 创建监控服务
func NewMonitorService(cfg *config.Config, logger *zap.Logger) (*MonitorService, error) {
	// 1. 连接数据库
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 2. 连接 Redis
	redisClient := cache.NewRedisClient(&cfg.Redis)
	if err := cache.Ping(context.Background(), redisClient); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	// 3. 创建 Repository 层
	stateRepo := repository.NewAlertStateRepository(db, logger)
	historyRepo := repository.NewHistoryRepository(db, logger)

	// 4. 创建厂家 API 客户端与会话
	credStore := homgar.NewCredentialStore(redisClient)
	client := homgar.NewClient(cfg.Homgar.BaseURL, credStore, logger)
	session := homgar.NewSession(client, credStore, logger)

	// 5. 创建节流引擎
	defaults := models.AlertDefaults{
		ThresholdCelsius: cfg.Monitor.DefaultThresholdCelsius,
		CooldownHours:    cfg.Monitor.DefaultCooldownHours,
		Enabled:          cfg.Monitor.AlertsEnabled,
	}
	eng := engine.NewEngine(stateRepo, historyRepo, defaults, logger)

	// 6. 创建通知出口
	mqttNotifier, err := notifier.NewMQTTNotifier(&cfg.MQTT, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	return &MonitorService{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		logger:      logger,
		client:      client,
		session:     session,
		stateRepo:   stateRepo,
		historyRepo: historyRepo,
		engine:      eng,
		notifier:    mqttNotifier,
	}, nil
}

// Start 启动轮询（阻塞直到 ctx 取消）
func (s *MonitorService) Start(ctx context.Context) error {
	s.logger.Info("Monitor service started",
		zap.Int("poll_interval", s.config.Monitor.PollInterval),
	)

	ticker := time.NewTicker(time.Duration(s.config.Monitor.PollInterval) * time.Second)
	defer ticker.Stop()

	// 立即执行一次
	if err := s.RunCycle(ctx); err != nil {
		s.logger.Error("Poll cycle failed on startup",
			zap.Error(err),
		)
	}

	// 定期轮询；单协程循环保证周期不重叠
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Monitor service stopped")
			return nil
		case <-ticker.C:
			if err := s.RunCycle(ctx); err != nil {
				s.logger.Error("Poll cycle failed",
					zap.Error(err),
				)
				// 继续等待下一个周期，不中断
			}
		}
	}
}

// Stop 停止服务
func (s *MonitorService) Stop() error {
	s.logger.Info("Stopping monitor service")

	if n, ok := s.notifier.(*notifier.MQTTNotifier); ok {
		n.Close()
	}

	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database",
			zap.Error(err),
		)
	}

	if err := s.redisClient.Close(); err != nil {
		s.logger.Error("Failed to close redis",
			zap.Error(err),
		)
	}

	return nil
}

// RunCycle 执行一个完整的轮询周期
// 认证失败与节流状态落库失败作为周期级错误返回；
// 单个家庭或 hub 的厂家 API 错误只记录日志，不影响其余处理。
func (s *MonitorService) RunCycle(ctx context.Context) error {
	if err := s.session.EnsureLoggedIn(ctx, s.config.Homgar.Email, s.config.Homgar.Password, s.config.Homgar.AreaCode); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	homes, err := s.client.ListHomes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list homes: %w", err)
	}

	for _, home := range homes {
		// 检查上下文是否已取消
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.processHome(ctx, home); err != nil {
			return err
		}
	}

	s.logger.Info("Poll cycle complete",
		zap.Int("home_count", len(homes)),
	)

	return nil
}

// processHome 处理一个家庭；厂家 API 错误跳过该家庭，返回的 error 仅为周期级失败
func (s *MonitorService) processHome(ctx context.Context, home models.Home) error {
	s.logger.Info("Processing home",
		zap.Int64("hid", home.HID),
		zap.String("name", home.Name),
	)

	listing, err := s.client.ListDevices(ctx, home.HID)
	if err != nil {
		s.logger.Error("Failed to list devices, skipping home",
			zap.Int64("hid", home.HID),
			zap.Error(err),
		)
		return nil
	}

	hubs := devices.BuildTree(listing, s.logger)
	for _, hub := range hubs {
		if err := s.processHub(ctx, home, hub); err != nil {
			return err
		}
	}

	return nil
}

// processHub 拉取并分发一个 hub 的状态，评估其下的温度传感器
func (s *MonitorService) processHub(ctx context.Context, home models.Home, hub *devices.Hub) error {
	s.logger.Info("Processing hub",
		zap.Int64("hid", home.HID),
		zap.Int64("mid", hub.MID),
		zap.String("name", hub.DisplayName()),
		zap.Int("subdevice_count", len(hub.Subdevices)),
	)

	payload, err := s.client.GetDeviceStatus(ctx, hub.MID)
	if err != nil {
		s.logger.Error("Failed to get device status, skipping hub",
			zap.Int64("hid", home.HID),
			zap.Int64("mid", hub.MID),
			zap.Error(err),
		)
		return nil
	}

	devices.ApplyStatus(hub, payload, s.logger)

	for _, subdevice := range hub.Subdevices {
		sensor, ok := subdevice.(*devices.TemperatureAirSensor)
		if !ok {
			continue
		}

		outcome, alert, err := s.engine.Evaluate(ctx, sensor)
		if err != nil {
			// 节流状态落库失败：冷却保证无法成立，中止本周期
			return fmt.Errorf("alert evaluation failed for device %d: %w", sensor.DID, err)
		}

		if outcome == engine.OutcomeFired {
			s.sendAlert(ctx, alert)
		}
	}

	return nil
}

// sendAlert 渲染并发送报警通知；投递失败只记录日志，已落库的冷却窗口不回滚
func (s *MonitorService) sendAlert(ctx context.Context, alert *engine.Alert) {
	body := fmt.Sprintf(
		"Sensor %q is at %.1f°C, at or above the %.1f°C limit. No further alerts for this sensor before %s.",
		alert.SensorName,
		alert.CurrentCelsius,
		alert.ThresholdCelsius,
		alert.NextAllowedAt.Format("02/01 15:04"),
	)

	msg := &notifier.Message{
		Recipients: s.config.Monitor.Recipients,
		Subject:    "Temperature alert",
		Body:       body,
	}

	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Error("Failed to send notification",
			zap.Int64("device_id", alert.DeviceID),
			zap.Error(err),
		)
	}
}
