package entity

import "time"

// WorkCenter 工作中心，工单执行位置，仅作引用查找
type WorkCenter struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Code      string    `json:"code" gorm:"size:32;not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	Location  string    `json:"location" gorm:"size:128"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WorkCenter) TableName() string {
	return "mes_work_centers"
}
