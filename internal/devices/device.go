package devices

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DeviceListing 厂家设备列表接口返回的一个节点（/app/device/getDeviceByHid）
type DeviceListing struct {
	Model      string          `json:"model"`
	ModelCode  int             `json:"modelCode"`
	Name       string          `json:"name"`
	DID        int64           `json:"did"`
	MID        int64           `json:"mid"`
	Address    int             `json:"addr"`
	PortNumber int             `json:"portNumber"`
	Alerts     int             `json:"alerts"`
	SubDevices []DeviceListing `json:"subDevices,omitempty"`
}

// StatusRecord 状态接口返回的一条状态记录（/app/device/getDeviceStatus）
// Value 为逗号分隔的字段串，含义由设备类型决定
type StatusRecord struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
}

// StatusPayload 一个 hub（按 mid 查询）的完整状态载荷
type StatusPayload struct {
	SubDeviceStatus []StatusRecord `json:"subDeviceStatus"`
}

// Device 设备统一接口；Hub 与各类子设备都实现它
type Device interface {
	// Base 返回设备通用字段
	Base() *DeviceBase
	// StatusIDs 返回该设备应答的状态ID列表
	// 一个物理设备可能以多个ID上报子读数
	StatusIDs() []int
	// ApplyStatus 将一条状态记录写入设备实时字段
	ApplyStatus(rec StatusRecord) error
}

// DeviceBase 所有设备的通用字段
type DeviceBase struct {
	Model      string
	ModelCode  int
	Name       string
	DID        int64
	MID        int64
	Address    int
	PortNumber int
	RawAlerts  int
}

// Base 实现 Device 接口
func (d *DeviceBase) Base() *DeviceBase { return d }

// StatusIDs 默认以设备地址应答
func (d *DeviceBase) StatusIDs() []int { return []int{d.Address} }

// DisplayName 返回去除厂家尾部空格的设备名
func (d *DeviceBase) DisplayName() string {
	return strings.TrimRight(d.Name, " ")
}

// Hub 网关设备，持有其下挂的子设备列表（按厂家上报顺序）
type Hub struct {
	DeviceBase
	Subdevices []Device

	// 实时字段
	Connected *bool
	RSSI      *int
}

// ApplyStatus hub 自身状态：value = "<connected>,<rssi>"
func (h *Hub) ApplyStatus(rec StatusRecord) error {
	fields := strings.Split(rec.Value, ",")
	if len(fields) < 2 {
		return fmt.Errorf("hub status needs 2 fields, got %q", rec.Value)
	}

	connected, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("invalid connected flag %q: %w", fields[0], err)
	}
	rssi, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("invalid rssi %q: %w", fields[1], err)
	}

	c := connected != 0
	h.Connected = &c
	h.RSSI = &rssi
	return nil
}

// TemperatureAirSensor 空气温湿度传感器
type TemperatureAirSensor struct {
	DeviceBase

	// 实时字段
	BatteryPercent         *int
	TempMilliKelvinCurrent *int64 // 当前温度（毫开尔文）
	HumidityPercent        *int
}

// ApplyStatus 传感器状态：value = "<battery>,<temp_mk>,<humidity>"
func (s *TemperatureAirSensor) ApplyStatus(rec StatusRecord) error {
	fields := strings.Split(rec.Value, ",")
	if len(fields) < 3 {
		return fmt.Errorf("air sensor status needs 3 fields, got %q", rec.Value)
	}

	battery, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("invalid battery %q: %w", fields[0], err)
	}
	tempMK, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid temperature %q: %w", fields[1], err)
	}
	humidity, err := strconv.Atoi(fields[2])
	if err != nil {
		return fmt.Errorf("invalid humidity %q: %w", fields[2], err)
	}

	s.BatteryPercent = &battery
	s.TempMilliKelvinCurrent = &tempMK
	s.HumidityPercent = &humidity
	return nil
}

// CurrentCelsius 由毫开尔文读数换算摄氏度；无读数时返回 false
func (s *TemperatureAirSensor) CurrentCelsius() (float64, bool) {
	if s.TempMilliKelvinCurrent == nil {
		return 0, false
	}
	return float64(*s.TempMilliKelvinCurrent)/1000 - 273.15, true
}

// SoilMoistureSensor 土壤温湿度传感器
type SoilMoistureSensor struct {
	DeviceBase

	// 实时字段
	BatteryPercent      *int
	MoisturePercent     *int
	SoilTempMilliKelvin *int64
}

// ApplyStatus 传感器状态：value = "<battery>,<moisture>,<soil_temp_mk>"
func (s *SoilMoistureSensor) ApplyStatus(rec StatusRecord) error {
	fields := strings.Split(rec.Value, ",")
	if len(fields) < 3 {
		return fmt.Errorf("soil sensor status needs 3 fields, got %q", rec.Value)
	}

	battery, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("invalid battery %q: %w", fields[0], err)
	}
	moisture, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("invalid moisture %q: %w", fields[1], err)
	}
	soilTempMK, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid soil temperature %q: %w", fields[2], err)
	}

	s.BatteryPercent = &battery
	s.MoisturePercent = &moisture
	s.SoilTempMilliKelvin = &soilTempMK
	return nil
}

// RainSensor 雨量传感器
type RainSensor struct {
	DeviceBase

	// 实时字段
	BatteryPercent  *int
	RainfallMMTotal *int
}

// ApplyStatus 传感器状态：value = "<battery>,<rainfall_mm_total>"
func (s *RainSensor) ApplyStatus(rec StatusRecord) error {
	fields := strings.Split(rec.Value, ",")
	if len(fields) < 2 {
		return fmt.Errorf("rain sensor status needs 2 fields, got %q", rec.Value)
	}

	battery, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("invalid battery %q: %w", fields[0], err)
	}
	rainfall, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("invalid rainfall %q: %w", fields[1], err)
	}

	s.BatteryPercent = &battery
	s.RainfallMMTotal = &rainfall
	return nil
}

// WaterTimer 两路灌溉定时器
type WaterTimer struct {
	DeviceBase

	// 实时字段
	BatteryPercent *int
	Zone1Open      *bool
	Zone2Open      *bool
}

// ApplyStatus 定时器状态：value = "<battery>,<zone1>,<zone2>"
func (s *WaterTimer) ApplyStatus(rec StatusRecord) error {
	fields := strings.Split(rec.Value, ",")
	if len(fields) < 3 {
		return fmt.Errorf("water timer status needs 3 fields, got %q", rec.Value)
	}

	battery, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("invalid battery %q: %w", fields[0], err)
	}
	zone1, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("invalid zone1 state %q: %w", fields[1], err)
	}
	zone2, err := strconv.Atoi(fields[2])
	if err != nil {
		return fmt.Errorf("invalid zone2 state %q: %w", fields[2], err)
	}

	s.BatteryPercent = &battery
	z1, z2 := zone1 != 0, zone2 != 0
	s.Zone1Open = &z1
	s.Zone2Open = &z2
	return nil
}

// String 便于日志输出
func (h *Hub) String() string {
	data, _ := json.Marshal(struct {
		Model string `json:"model"`
		Name  string `json:"name"`
		DID   int64  `json:"did"`
		MID   int64  `json:"mid"`
		Subs  int    `json:"subdevices"`
	}{h.Model, h.DisplayName(), h.DID, h.MID, len(h.Subdevices)})
	return string(data)
}
