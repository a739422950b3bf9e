package notifier

import (
	"context"
)

// Message 已渲染的报警通知
type Message struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
}

// Notifier 通知出口接口
// 投递失败由调用方记录日志，绝不回滚已提交的节流状态
type Notifier interface {
	Send(ctx context.Context, msg *Message) error
}
