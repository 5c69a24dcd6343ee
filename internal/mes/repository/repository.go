package repository

import "gorm.io/gorm"

// Repositories MES 仓库集合
type Repositories struct {
	Order      *OrderRepository
	WorkOrder  *WorkOrderRepository
	WorkCenter *WorkCenterRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Order:      NewOrderRepository(db),
		WorkOrder:  NewWorkOrderRepository(db),
		WorkCenter: NewWorkCenterRepository(db),
	}
}
