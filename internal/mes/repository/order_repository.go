package repository

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(o *entity.ManufacturingOrder) error {
	return r.db.Create(o).Error
}

func (r *OrderRepository) GetByID(id string) (*entity.ManufacturingOrder, error) {
	var o entity.ManufacturingOrder
	err := r.db.Preload("Components").Preload("WorkOrders").
		Where("id = ? AND deleted_at IS NULL", id).First(&o).Error
	return &o, err
}

func (r *OrderRepository) Update(o *entity.ManufacturingOrder) error {
	return r.db.Save(o).Error
}

// UpdateStatus 只更新状态列，避免整行覆盖
func (r *OrderRepository) UpdateStatus(id string, status entity.Status) error {
	return r.db.Model(&entity.ManufacturingOrder{}).
		Where("id = ?", id).Update("status", status).Error
}

type OrderListParams struct {
	Status    string
	ProductID string
	Keyword   string
	Page      int
	Size      int
}

func (r *OrderRepository) List(params OrderListParams) ([]entity.ManufacturingOrder, int64, error) {
	query := r.db.Model(&entity.ManufacturingOrder{}).Where("deleted_at IS NULL")
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.ProductID != "" {
		query = query.Where("product_id = ?", params.ProductID)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("order_number ILIKE ? OR product_name ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var orders []entity.ManufacturingOrder
	err := query.Preload("Components").Preload("WorkOrders").
		Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&orders).Error
	return orders, total, err
}

// ListActive 取全部未完结订单（含物料与工单），供看板快照排序用。
// DONE/CANCELLED 不进入队列。
func (r *OrderRepository) ListActive() ([]entity.ManufacturingOrder, error) {
	var orders []entity.ManufacturingOrder
	err := r.db.Preload("Components").Preload("WorkOrders").
		Where("deleted_at IS NULL AND status NOT IN ?",
			[]entity.Status{entity.StatusDone, entity.StatusCancelled}).
		Find(&orders).Error
	return orders, err
}

// CreateComponent 创建订单物料
func (r *OrderRepository) CreateComponent(c *entity.Component) error {
	return r.db.Create(c).Error
}

// UpdateComponent 更新订单物料
func (r *OrderRepository) UpdateComponent(c *entity.Component) error {
	return r.db.Save(c).Error
}

// DB 返回底层db用于事务
func (r *OrderRepository) DB() *gorm.DB {
	return r.db
}
