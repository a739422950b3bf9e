package devices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func hubListing(sub ...DeviceListing) DeviceListing {
	return DeviceListing{
		Model:      "RainPoint Display Hub",
		ModelCode:  ModelCodeDisplayHub,
		Name:       "Garden Hub",
		DID:        100,
		MID:        5000,
		Address:    10,
		SubDevices: sub,
	}
}

func airSensorListing(did int64, addr int) DeviceListing {
	return DeviceListing{
		Model:     "RainPoint Air Sensor",
		ModelCode: ModelCodeAirSensor,
		Name:      "Greenhouse ",
		DID:       did,
		MID:       5000,
		Address:   addr,
	}
}

func TestBuildTree_TypedSubdevices(t *testing.T) {
	listing := []DeviceListing{hubListing(
		airSensorListing(2, 2),
		DeviceListing{Model: "RainPoint Soil Sensor", ModelCode: ModelCodeSoilMoistureSensor, DID: 3, Address: 3},
		DeviceListing{Model: "RainPoint Rain Sensor", ModelCode: ModelCodeRainSensor, DID: 4, Address: 4},
		DeviceListing{Model: "RainPoint Water Timer", ModelCode: ModelCodeWaterTimer, DID: 5, Address: 5},
	)}

	hubs := BuildTree(listing, zap.NewNop())
	require.Len(t, hubs, 1)

	hub := hubs[0]
	assert.Equal(t, int64(100), hub.DID)
	assert.Equal(t, int64(5000), hub.MID)
	require.Len(t, hub.Subdevices, 4)

	// 按厂家上报顺序，类型各就各位
	assert.IsType(t, &TemperatureAirSensor{}, hub.Subdevices[0])
	assert.IsType(t, &SoilMoistureSensor{}, hub.Subdevices[1])
	assert.IsType(t, &RainSensor{}, hub.Subdevices[2])
	assert.IsType(t, &WaterTimer{}, hub.Subdevices[3])
}

func TestBuildTree_SkipsDisplaySubdevice(t *testing.T) {
	display := DeviceListing{Model: "Display", ModelCode: ModelCodeAirSensor, DID: 1, Address: 1}
	listing := []DeviceListing{hubListing(display, airSensorListing(2, 2))}

	hubs := BuildTree(listing, zap.NewNop())
	require.Len(t, hubs, 1)

	// 保留的显示屏子设备ID（1）绝不出现在树中
	require.Len(t, hubs[0].Subdevices, 1)
	assert.Equal(t, int64(2), hubs[0].Subdevices[0].Base().DID)
}

func TestBuildTree_UnknownModelCodeDropped(t *testing.T) {
	unknown := DeviceListing{Model: "Mystery Device", ModelCode: 9999, DID: 7, Address: 7}
	listing := []DeviceListing{hubListing(unknown, airSensorListing(2, 2))}

	// 未登记型号代码：丢弃该子设备，不报错
	hubs := BuildTree(listing, zap.NewNop())
	require.Len(t, hubs, 1)
	require.Len(t, hubs[0].Subdevices, 1)
	assert.Equal(t, int64(2), hubs[0].Subdevices[0].Base().DID)
}

func TestBuildTree_GenericHubFallback(t *testing.T) {
	listing := []DeviceListing{{
		Model:      "Future Hub",
		ModelCode:  8888,
		Name:       "New Hub",
		DID:        200,
		MID:        6000,
		Address:    10,
		SubDevices: []DeviceListing{airSensorListing(2, 2)},
	}}

	// hub 型号未登记：回落到通用 Hub，通用字段与子设备保留
	hubs := BuildTree(listing, zap.NewNop())
	require.Len(t, hubs, 1)
	assert.Equal(t, int64(200), hubs[0].DID)
	assert.Equal(t, int64(6000), hubs[0].MID)
	assert.Equal(t, 8888, hubs[0].ModelCode)
	assert.Len(t, hubs[0].Subdevices, 1)
}

func TestBuildTree_FreshTreeEveryCall(t *testing.T) {
	listing := []DeviceListing{hubListing(airSensorListing(2, 2))}

	first := BuildTree(listing, zap.NewNop())
	second := BuildTree(listing, zap.NewNop())

	// 每次调用构造全新实例，不跨周期复用
	assert.NotSame(t, first[0], second[0])
	assert.NotSame(t, first[0].Subdevices[0], second[0].Subdevices[0])
}

func TestDeviceBase_DisplayName(t *testing.T) {
	base := DeviceBase{Name: "Greenhouse  "}
	assert.Equal(t, "Greenhouse", base.DisplayName())
}
