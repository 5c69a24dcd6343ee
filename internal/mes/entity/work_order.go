package entity

import (
	"time"

	"github.com/google/uuid"
)

// TimerState 工单计时器状态
const (
	TimerStopped   = "STOPPED"
	TimerRunning   = "RUNNING"
	TimerPaused    = "PAUSED"
	TimerCompleted = "COMPLETED"
	TimerCancelled = "CANCELLED"
)

// WorkOrder 工单，归属于一个制造订单，在一个工作中心执行一道工序
type WorkOrder struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	OrderNumber    string     `json:"order_number" gorm:"size:50;not null;uniqueIndex"`
	OrderID        string     `json:"order_id" gorm:"type:uuid;not null;index"`
	Operation      string     `json:"operation" gorm:"size:64;not null"`
	WorkCenterID   string     `json:"work_center_id" gorm:"type:uuid;index"`
	Status         Status     `json:"status" gorm:"size:20;not null;default:DRAFT"`
	Priority       Priority   `json:"priority" gorm:"size:10;not null;default:NORMAL"`
	PriorityScore  int        `json:"priority_score" gorm:"default:0"`
	DueDate        *time.Time `json:"due_date"`
	AssignedUserID string     `json:"assigned_user_id" gorm:"size:64"`

	// 工时，分钟。ActualMinutes 只允许由计时引擎推进
	EstimatedMinutes int `json:"estimated_minutes" gorm:"default:0"`
	ActualMinutes    int `json:"actual_minutes" gorm:"default:0"`

	// 计时器持久化字段
	TimerState       string     `json:"timer_state" gorm:"size:16;not null;default:STOPPED"`
	TimerBaseSeconds int64      `json:"timer_base_seconds" gorm:"default:0"`
	TimerStartedAt   *time.Time `json:"timer_started_at"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`
}

func (WorkOrder) TableName() string {
	return "mes_work_orders"
}

// NewWorkOrder 创建工单，隐式初始化计时器（未运行，基准秒数取自已有实际工时）
func NewWorkOrder(orderID, orderNumber, operation, workCenterID string, estimatedMinutes int) (*WorkOrder, error) {
	if orderID == "" {
		return nil, &ValidationError{Field: "order_id", Reason: "所属制造订单不能为空"}
	}
	if operation == "" {
		return nil, &ValidationError{Field: "operation", Reason: "工序名称不能为空"}
	}
	if estimatedMinutes < 0 {
		return nil, &ValidationError{Field: "estimated_minutes", Reason: "预计工时不能为负"}
	}
	return &WorkOrder{
		ID:               uuid.New().String(),
		OrderNumber:      orderNumber,
		OrderID:          orderID,
		Operation:        operation,
		WorkCenterID:     workCenterID,
		Status:           StatusDraft,
		Priority:         PriorityNormal,
		EstimatedMinutes: estimatedMinutes,
		TimerState:       TimerStopped,
		TimerBaseSeconds: 0,
	}, nil
}
