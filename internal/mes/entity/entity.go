package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有MES表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&WorkCenter{},
		&ManufacturingOrder{},
		&WorkOrder{},
		&Component{},
	)
}
