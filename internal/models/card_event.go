package models

import (
	"time"
)

// CardEvent 卡片事件（只追加的审计流水，供管理端查询与外部索引器消费）
type CardEvent struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                       // 主键
	CardID       uint      `gorm:"uniqueIndex:uk_card_reference;index" json:"card_id"`         // 礼品卡ID（商户注册事件为 0）
	Type         string    `gorm:"type:varchar(32);index;not null" json:"type"`                // 事件类型
	Account      string    `gorm:"type:varchar(128);index" json:"account"`                     // 相关账户（商户 / 赠卡人）
	Amount       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`        // 涉及金额
	BalanceAfter Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance_after"` // 事件后的卡余额
	Reference    *string   `gorm:"type:varchar(128);uniqueIndex:uk_card_reference" json:"reference,omitempty"` // 调用方幂等引用（卡内唯一）
	Remark       string    `gorm:"type:varchar(255)" json:"remark"`                            // 备注
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                    // 发生时间
}

// TableName 指定表名
func (CardEvent) TableName() string {
	return "card_events"
}
