package models

import (
	"time"
)

// Merchant 商户注册表（地址一次性认领，只增不改）
type Merchant struct {
	ID        uint      `gorm:"primarykey" json:"id"`                              // 主键
	Address   string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"address"` // 商户托管账户地址
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`            // 商户展示名称
	CreatedAt time.Time `gorm:"index" json:"created_at"`                           // 注册时间
}

// TableName 指定表名
func (Merchant) TableName() string {
	return "merchants"
}
