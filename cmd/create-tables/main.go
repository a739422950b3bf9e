package main

import (
	"fmt"
	"os"

	"homgar-monitor/internal/config"
	"homgar-monitor/internal/database"

	_ "github.com/lib/pq"
)

// 建表脚本：创建报警节流状态表与读数审计表
const schema = `
CREATE TABLE IF NOT EXISTS alert_states (
    device_id             BIGINT PRIMARY KEY,
    threshold_celsius     DOUBLE PRECISION NOT NULL,
    cooldown_hours        DOUBLE PRECISION NOT NULL,
    enabled               BOOLEAN NOT NULL DEFAULT TRUE,
    last_check_at         TIMESTAMPTZ,
    next_allowed_alert_at TIMESTAMPTZ,
    last_reading_celsius  DOUBLE PRECISION,
    created_at            TIMESTAMPTZ NOT NULL,
    updated_at            TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sensor_readings (
    id                  BIGSERIAL PRIMARY KEY,
    device_id           BIGINT NOT NULL,
    recorded_at         TIMESTAMPTZ NOT NULL,
    temperature_celsius DOUBLE PRECISION NOT NULL,
    alert_triggered     BOOLEAN NOT NULL,
    threshold_celsius   DOUBLE PRECISION NOT NULL,
    message             TEXT
);

CREATE INDEX IF NOT EXISTS idx_sensor_readings_device_time
    ON sensor_readings (device_id, recorded_at);
`

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 连接数据库
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3. 执行 SQL
	if _, err := db.Exec(schema); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute SQL: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ alert_states and sensor_readings tables created successfully!")
}
