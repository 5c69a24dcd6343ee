package repository

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

func (r *WorkOrderRepository) Create(w *entity.WorkOrder) error {
	return r.db.Create(w).Error
}

func (r *WorkOrderRepository) GetByID(id string) (*entity.WorkOrder, error) {
	var w entity.WorkOrder
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&w).Error
	return &w, err
}

func (r *WorkOrderRepository) Update(w *entity.WorkOrder) error {
	return r.db.Save(w).Error
}

func (r *WorkOrderRepository) ListByOrder(orderID string) ([]entity.WorkOrder, error) {
	var workOrders []entity.WorkOrder
	err := r.db.Where("order_id = ? AND deleted_at IS NULL", orderID).
		Order("created_at ASC").Find(&workOrders).Error
	return workOrders, err
}

type WorkOrderListParams struct {
	Status       string
	WorkCenterID string
	Keyword      string
	Page         int
	Size         int
}

func (r *WorkOrderRepository) List(params WorkOrderListParams) ([]entity.WorkOrder, int64, error) {
	query := r.db.Model(&entity.WorkOrder{}).Where("deleted_at IS NULL")
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.WorkCenterID != "" {
		query = query.Where("work_center_id = ?", params.WorkCenterID)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("order_number ILIKE ? OR operation ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var workOrders []entity.WorkOrder
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&workOrders).Error
	return workOrders, total, err
}
