package devices

import (
	"go.uber.org/zap"
)

// ApplyStatus 将一次状态载荷分发到 hub 及其子设备
// 按状态ID查找归属设备；树中不存在的ID静默丢弃（厂家会上报
// 未建模的内部ID）。单条记录解析失败只记录警告，不影响其余记录。
func ApplyStatus(hub *Hub, payload *StatusPayload, logger *zap.Logger) {
	idMap := make(map[int]Device)
	for _, device := range append([]Device{hub}, hub.Subdevices...) {
		for _, statusID := range device.StatusIDs() {
			idMap[statusID] = device
		}
	}

	for _, rec := range payload.SubDeviceStatus {
		device, ok := idMap[rec.ID]
		if !ok {
			continue
		}

		if err := device.ApplyStatus(rec); err != nil {
			logger.Warn("Malformed status record, skipping",
				zap.Int("status_id", rec.ID),
				zap.Int64("did", device.Base().DID),
				zap.String("value", rec.Value),
				zap.Error(err),
			)
		}
	}
}
