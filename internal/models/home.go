package models

// Home 账号下的一个家庭（顶层分组），由 /app/member/appHome/list 返回
type Home struct {
	HID  int64  `json:"hid"`
	Name string `json:"homeName"`
}
