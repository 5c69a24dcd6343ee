package entity

import "fmt"

// Status 订单/工单状态（制造订单与工单共用同一状态域，各自独立流转）
type Status string

const (
	StatusDraft      Status = "DRAFT"       // 草稿
	StatusConfirmed  Status = "CONFIRMED"   // 已确认
	StatusInProgress Status = "IN_PROGRESS" // 生产中
	StatusToClose    Status = "TO_CLOSE"    // 待关闭
	StatusDone       Status = "DONE"        // 完成
	StatusCancelled  Status = "CANCELLED"   // 已取消
)

// IsTerminal 终态不允许任何流转
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// Priority 优先级档位
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// ValidationError 实体构造校验错误
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("字段校验失败: %s: %s", e.Field, e.Reason)
}
