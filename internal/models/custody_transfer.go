package models

import (
	"time"
)

// CustodyTransfer 托管划转流水（与余额变更同事务写入，用于对账）
type CustodyTransfer struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                // 主键
	CardID    uint      `gorm:"index" json:"card_id"`                                // 关联礼品卡ID
	Direction string    `gorm:"type:varchar(16);index;not null" json:"direction"`    // deposit / payout
	Account   string    `gorm:"type:varchar(128);index;not null" json:"account"`     // 对端托管账户
	Amount    Money     `gorm:"type:decimal(20,2);not null" json:"amount"`           // 划转金额
	Reference string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"reference"` // 网关侧幂等引用
	Status    string    `gorm:"type:varchar(16);index;not null" json:"status"`       // pending / confirmed / failed
	Remark    string    `gorm:"type:varchar(255)" json:"remark"`                     // 备注（失败原因等）
	CreatedAt time.Time `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                          // 更新时间
}

// TableName 指定表名
func (CustodyTransfer) TableName() string {
	return "custody_transfers"
}
