package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
	MaxIdle  int    `yaml:"max_idle"`
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MQTTConfig MQTT配置（报警消息出口）
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
}

// HomgarConfig HomGar 厂家 API 配置
type HomgarConfig struct {
	BaseURL  string `yaml:"base_url"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	AreaCode string `yaml:"area_code"` // 账号所属电话区号，如 "31"（荷兰）
}

// MonitorConfig 轮询与报警默认值配置
type MonitorConfig struct {
	PollInterval int `yaml:"poll_interval"` // 轮询间隔（秒），默认 300秒

	// 首次发现传感器时写入 alert_states 的默认值，
	// 之后以数据库中的每设备状态为准
	DefaultThresholdCelsius float64 `yaml:"default_threshold_celsius"`
	DefaultCooldownHours    float64 `yaml:"default_cooldown_hours"`
	AlertsEnabled           bool    `yaml:"alerts_enabled"`

	Recipients []string `yaml:"recipients"` // 报警通知收件人
}

// Config 监控服务配置
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Homgar   HomgarConfig   `yaml:"homgar"`
	Monitor  MonitorConfig  `yaml:"monitor"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load 加载配置
// 顺序：默认值 → CONFIG_FILE 指向的 YAML 文件（可选）→ 环境变量
func Load() (*Config, error) {
	cfg := &Config{}

	// 默认值
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "homgar"
	cfg.Database.SSLMode = "disable"

	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.DB = 0

	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "homgar-monitor"
	cfg.MQTT.Topic = "homgar/alerts"
	cfg.MQTT.QoS = 1

	cfg.Homgar.BaseURL = "https://region3.homgarus.com"
	cfg.Homgar.AreaCode = "31"

	cfg.Monitor.PollInterval = 300
	cfg.Monitor.DefaultThresholdCelsius = 34
	cfg.Monitor.DefaultCooldownHours = 6
	cfg.Monitor.AlertsEnabled = true

	cfg.Log.Level = "info"
	cfg.Log.Format = "json"

	// YAML 文件（可选）
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// 环境变量覆盖
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Database = getEnv("DB_NAME", cfg.Database.Database)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", cfg.MQTT.Broker)
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", cfg.MQTT.ClientID)
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", cfg.MQTT.Username)
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", cfg.MQTT.Password)
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", cfg.MQTT.Topic)

	cfg.Homgar.BaseURL = getEnv("HOMGAR_BASE_URL", cfg.Homgar.BaseURL)
	cfg.Homgar.Email = getEnv("HOMGAR_EMAIL", cfg.Homgar.Email)
	cfg.Homgar.Password = getEnv("HOMGAR_PASSWORD", cfg.Homgar.Password)
	cfg.Homgar.AreaCode = getEnv("HOMGAR_AREA_CODE", cfg.Homgar.AreaCode)

	cfg.Monitor.PollInterval = getEnvInt("POLL_INTERVAL", cfg.Monitor.PollInterval)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
