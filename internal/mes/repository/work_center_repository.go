package repository

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type WorkCenterRepository struct {
	db *gorm.DB
}

func NewWorkCenterRepository(db *gorm.DB) *WorkCenterRepository {
	return &WorkCenterRepository{db: db}
}

func (r *WorkCenterRepository) Create(w *entity.WorkCenter) error {
	return r.db.Create(w).Error
}

func (r *WorkCenterRepository) GetByID(id string) (*entity.WorkCenter, error) {
	var w entity.WorkCenter
	err := r.db.Where("id = ?", id).First(&w).Error
	return &w, err
}

func (r *WorkCenterRepository) List() ([]entity.WorkCenter, error) {
	var centers []entity.WorkCenter
	err := r.db.Order("code ASC").Find(&centers).Error
	return centers, err
}
