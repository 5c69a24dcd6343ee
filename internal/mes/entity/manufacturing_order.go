package entity

import (
	"time"

	"github.com/google/uuid"
)

// ManufacturingOrder 制造订单
type ManufacturingOrder struct {
	ID            string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	OrderNumber   string     `json:"order_number" gorm:"size:50;not null;uniqueIndex"`
	ProductID     string     `json:"product_id" gorm:"size:32;not null;index"`
	ProductCode   string     `json:"product_code" gorm:"size:64"`
	ProductName   string     `json:"product_name" gorm:"size:128"`
	Quantity      int        `json:"quantity" gorm:"not null"`
	Status        Status     `json:"status" gorm:"size:20;not null;default:DRAFT"`
	Priority      Priority   `json:"priority" gorm:"size:10;not null;default:NORMAL"`
	PriorityScore int        `json:"priority_score" gorm:"default:0"` // 0=按档位换算
	DueDate       *time.Time `json:"due_date"`
	AssigneeID    string     `json:"assignee_id" gorm:"size:64"`
	Notes         string     `json:"notes" gorm:"type:text"`
	CreatedBy     string     `json:"created_by" gorm:"size:64;not null"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at" gorm:"index"`

	Components []Component `json:"components,omitempty" gorm:"foreignKey:OrderID"`
	WorkOrders []WorkOrder `json:"work_orders,omitempty" gorm:"foreignKey:OrderID"`
}

func (ManufacturingOrder) TableName() string {
	return "mes_manufacturing_orders"
}

// NewManufacturingOrder 创建制造订单，数量必须为正
func NewManufacturingOrder(orderNumber, productID string, quantity int, createdBy string) (*ManufacturingOrder, error) {
	if orderNumber == "" {
		return nil, &ValidationError{Field: "order_number", Reason: "订单号不能为空"}
	}
	if quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "数量必须大于0"}
	}
	return &ManufacturingOrder{
		ID:          uuid.New().String(),
		OrderNumber: orderNumber,
		ProductID:   productID,
		Quantity:    quantity,
		Status:      StatusDraft,
		Priority:    PriorityNormal,
		CreatedBy:   createdBy,
	}, nil
}

// AddComponent 追加物料，SKU在同一订单内必须唯一
func (o *ManufacturingOrder) AddComponent(c Component) error {
	for i := range o.Components {
		if o.Components[i].SKU == c.SKU {
			return &ValidationError{Field: "sku", Reason: "SKU重复: " + c.SKU}
		}
	}
	c.OrderID = o.ID
	o.Components = append(o.Components, c)
	return nil
}
