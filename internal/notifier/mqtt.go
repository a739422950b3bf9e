package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"homgar-monitor/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTNotifier 将报警通知发布到 MQTT 主题，
// 由下游投递服务（邮件网关等）订阅后发送给收件人
type MQTTNotifier struct {
	client mqtt.Client
	topic  string
	qos    byte
	logger *zap.Logger
}

// NewMQTTNotifier 创建 MQTT 通知出口并建立连接
func NewMQTTNotifier(cfg *config.MQTTConfig, logger *zap.Logger) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTNotifier{
		client: client,
		topic:  cfg.Topic,
		qos:    cfg.QoS,
		logger: logger,
	}, nil
}

// Send 发布一条通知消息
func (n *MQTTNotifier) Send(ctx context.Context, msg *Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	token := n.client.Publish(n.topic, n.qos, false, payload)
	token.Wait()

	if token.Error() != nil {
		return fmt.Errorf("failed to publish notification to %s: %w", n.topic, token.Error())
	}

	n.logger.Info("Notification published",
		zap.String("topic", n.topic),
		zap.String("subject", msg.Subject),
		zap.Int("recipient_count", len(msg.Recipients)),
	)

	return nil
}

// Close 断开 MQTT 连接
func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250) // 250ms等待时间
}
