package devices

// 厂家型号代码
const (
	ModelCodeDisplayHub         = 264 // RainPoint 显示网关
	ModelCodeWaterTimer         = 261 // 两路灌溉定时器
	ModelCodeSoilMoistureSensor = 72  // 土壤温湿度传感器
	ModelCodeRainSensor         = 79  // 雨量传感器
	ModelCodeAirSensor          = 87  // 空气温湿度传感器
)

// displaySubDeviceID 厂家保留的显示屏子设备ID，不建模为传感器
const displaySubDeviceID = 1

// modelRegistry 型号代码 → 设备构造函数的静态映射
// 未登记的型号代码不构造子设备；未登记的 hub 型号回落到通用 Hub
var modelRegistry = map[int]func(base DeviceBase) Device{
	ModelCodeDisplayHub: func(base DeviceBase) Device {
		return &Hub{DeviceBase: base}
	},
	ModelCodeWaterTimer: func(base DeviceBase) Device {
		return &WaterTimer{DeviceBase: base}
	},
	ModelCodeSoilMoistureSensor: func(base DeviceBase) Device {
		return &SoilMoistureSensor{DeviceBase: base}
	},
	ModelCodeRainSensor: func(base DeviceBase) Device {
		return &RainSensor{DeviceBase: base}
	},
	ModelCodeAirSensor: func(base DeviceBase) Device {
		return &TemperatureAirSensor{DeviceBase: base}
	},
}

// newDevice 按型号代码构造设备；未登记代码返回 nil
func newDevice(listing DeviceListing) Device {
	constructor, ok := modelRegistry[listing.ModelCode]
	if !ok {
		return nil
	}
	return constructor(baseFromListing(listing))
}

func baseFromListing(listing DeviceListing) DeviceBase {
	return DeviceBase{
		Model:      listing.Model,
		ModelCode:  listing.ModelCode,
		Name:       listing.Name,
		DID:        listing.DID,
		MID:        listing.MID,
		Address:    listing.Address,
		PortNumber: listing.PortNumber,
		RawAlerts:  listing.Alerts,
	}
}
