package types

// Level 提示消息级别.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification 工作流边界向用户展示的一次性提示.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Success 构造成功提示.
func Success(msg string) Notification {
	return Notification{Level: LevelSuccess, Message: msg}
}

// Failure 构造失败提示.
func Failure(msg string) Notification {
	return Notification{Level: LevelError, Message: msg}
}

// ProbeOutcome 通用探测的完整结果，包括请求、响应状态和原始响应.
type ProbeOutcome struct {
	URL        string    `json:"url"`
	Method     string    `json:"method"`
	Status     int       `json:"status"`
	StatusText string    `json:"status_text"`
	Request    *Envelope `json:"request"`
	// Response 为解析后的 JSON，或无法解析时的原始文本
	Response any      `json:"response"`
	Records  []Record `json:"records,omitempty"`
}
