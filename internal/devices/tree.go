package devices

import (
	"go.uber.org/zap"
)

// BuildTree 将厂家设备列表转换为类型化的 hub/子设备树
// 每次调用都构造全新的树，不跨周期复用设备实例。
// 规则：
//   - 子设备ID等于保留的显示屏ID（1）时跳过
//   - 型号代码未登记的子设备记录警告后丢弃，不中断整棵树
//   - hub 自身型号未登记时回落到通用 Hub（仅通用字段）
func BuildTree(listing []DeviceListing, logger *zap.Logger) []*Hub {
	hubs := make([]*Hub, 0, len(listing))

	for _, hubListing := range listing {
		subdevices := make([]Device, 0, len(hubListing.SubDevices))
		for _, subListing := range hubListing.SubDevices {
			if subListing.DID == displaySubDeviceID {
				// 显示屏子设备
				continue
			}

			device := newDevice(subListing)
			if device == nil {
				logger.Warn("Unknown subdevice model code, dropping device",
					zap.String("model", subListing.Model),
					zap.Int("model_code", subListing.ModelCode),
					zap.Int64("did", subListing.DID),
				)
				continue
			}
			subdevices = append(subdevices, device)
		}

		var hub *Hub
		if device := newDevice(hubListing); device != nil {
			if h, ok := device.(*Hub); ok {
				hub = h
			}
		}
		if hub == nil {
			// 型号未登记或登记为非 hub 类型，回落到通用 Hub
			logger.Warn("Unknown hub model code, falling back to generic hub",
				zap.String("model", hubListing.Model),
				zap.Int("model_code", hubListing.ModelCode),
				zap.Int64("did", hubListing.DID),
			)
			hub = &Hub{DeviceBase: baseFromListing(hubListing)}
		}

		hub.Subdevices = subdevices
		hubs = append(hubs, hub)
	}

	return hubs
}
