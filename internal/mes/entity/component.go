package entity

import (
	"time"

	"github.com/google/uuid"
)

// Component 订单物料，跟踪可用量与计划消耗量
type Component struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	OrderID      string     `json:"order_id" gorm:"type:uuid;not null;index"`
	Name         string     `json:"name" gorm:"size:128;not null"`
	SKU          string     `json:"sku" gorm:"size:64;not null;index"`
	Available    float64    `json:"available" gorm:"type:decimal(12,4);default:0"`
	ToConsume    float64    `json:"to_consume" gorm:"type:decimal(12,4);default:0"`
	Unit         string     `json:"unit" gorm:"size:20;not null;default:pcs"`
	MinThreshold float64    `json:"min_threshold" gorm:"type:decimal(12,4);default:0"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`
}

func (Component) TableName() string {
	return "mes_components"
}

// NewComponent 创建物料记录，数量字段不允许为负
func NewComponent(orderID, name, sku string, available, toConsume float64, unit string) (*Component, error) {
	if sku == "" {
		return nil, &ValidationError{Field: "sku", Reason: "SKU不能为空"}
	}
	if available < 0 {
		return nil, &ValidationError{Field: "available", Reason: "可用量不能为负"}
	}
	if toConsume < 0 {
		return nil, &ValidationError{Field: "to_consume", Reason: "消耗量不能为负"}
	}
	if unit == "" {
		unit = "pcs"
	}
	return &Component{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		Name:      name,
		SKU:       sku,
		Available: available,
		ToConsume: toConsume,
		Unit:      unit,
	}, nil
}

// Remaining 派生值：可用量减计划消耗量，不落库
func (c *Component) Remaining() float64 {
	return c.Available - c.ToConsume
}
