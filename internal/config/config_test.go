package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	// 清除环境变量
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// 验证默认值
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "homgar", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "homgar-monitor", cfg.MQTT.ClientID)
	assert.Equal(t, "homgar/alerts", cfg.MQTT.Topic)

	assert.Equal(t, "https://region3.homgarus.com", cfg.Homgar.BaseURL)
	assert.Equal(t, "31", cfg.Homgar.AreaCode)

	assert.Equal(t, 300, cfg.Monitor.PollInterval)
	assert.Equal(t, 34.0, cfg.Monitor.DefaultThresholdCelsius)
	assert.Equal(t, 6.0, cfg.Monitor.DefaultCooldownHours)
	assert.True(t, cfg.Monitor.AlertsEnabled)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// 设置环境变量
	os.Clearenv()
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_USER", "test-user")
	os.Setenv("DB_PASSWORD", "test-password")
	os.Setenv("DB_NAME", "test-db")
	os.Setenv("REDIS_ADDR", "test-redis:6380")
	os.Setenv("REDIS_PASSWORD", "test-redis-password")
	os.Setenv("HOMGAR_EMAIL", "user@example.com")
	os.Setenv("HOMGAR_PASSWORD", "secret")
	os.Setenv("POLL_INTERVAL", "60")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// 验证环境变量覆盖
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, "test-user", cfg.Database.User)
	assert.Equal(t, "test-password", cfg.Database.Password)
	assert.Equal(t, "test-db", cfg.Database.Database)

	assert.Equal(t, "test-redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "test-redis-password", cfg.Redis.Password)

	assert.Equal(t, "user@example.com", cfg.Homgar.Email)
	assert.Equal(t, "secret", cfg.Homgar.Password)
	assert.Equal(t, 60, cfg.Monitor.PollInterval)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	// 清理环境变量
	os.Clearenv()
}

func TestLoad_ConfigFile(t *testing.T) {
	os.Clearenv()

	yamlContent := `
homgar:
  email: file@example.com
  area_code: "33"
monitor:
  poll_interval: 120
  default_threshold_celsius: 30
  default_cooldown_hours: 2
  recipients:
    - alerts@example.com
`
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))
	os.Setenv("CONFIG_FILE", path)
	defer os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file@example.com", cfg.Homgar.Email)
	assert.Equal(t, "33", cfg.Homgar.AreaCode)
	assert.Equal(t, 120, cfg.Monitor.PollInterval)
	assert.Equal(t, 30.0, cfg.Monitor.DefaultThresholdCelsius)
	assert.Equal(t, 2.0, cfg.Monitor.DefaultCooldownHours)
	assert.Equal(t, []string{"alerts@example.com"}, cfg.Monitor.Recipients)

	// 未出现在文件中的字段保持默认值
	assert.Equal(t, "https://region3.homgarus.com", cfg.Homgar.BaseURL)
}

func TestLoad_EnvOverridesConfigFile(t *testing.T) {
	os.Clearenv()

	yamlContent := `
homgar:
  email: file@example.com
`
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))
	os.Setenv("CONFIG_FILE", path)
	os.Setenv("HOMGAR_EMAIL", "env@example.com")
	defer os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)

	// 环境变量优先于配置文件
	assert.Equal(t, "env@example.com", cfg.Homgar.Email)
}

func TestGetEnv(t *testing.T) {
	// 测试默认值
	os.Clearenv()
	value := getEnv("TEST_KEY", "default-value")
	assert.Equal(t, "default-value", value)

	// 测试环境变量存在
	os.Setenv("TEST_KEY", "env-value")
	value = getEnv("TEST_KEY", "default-value")
	assert.Equal(t, "env-value", value)

	// 清理
	os.Unsetenv("TEST_KEY")
}

func TestGetEnvInt_Invalid(t *testing.T) {
	os.Setenv("TEST_INT", "not-a-number")
	defer os.Unsetenv("TEST_INT")

	// 非法值回退到默认值
	assert.Equal(t, 42, getEnvInt("TEST_INT", 42))
}
