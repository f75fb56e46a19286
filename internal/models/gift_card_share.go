package models

import (
	"time"
)

// GiftCardShare 商户份额（核销上限按初始面额 × 比例计算，终身累计）
type GiftCardShare struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                             // 主键
	CardID         uint      `gorm:"uniqueIndex:uk_card_merchant;index;not null" json:"card_id"`       // 礼品卡ID
	Merchant       string    `gorm:"type:varchar(128);uniqueIndex:uk_card_merchant;not null" json:"merchant"` // 商户托管账户
	Percent        int       `gorm:"not null" json:"percent"`                                          // 份额比例（整数百分比）
	RedeemedAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"redeemed_amount"`     // 该商户累计已核销金额
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                          // 创建时间
	UpdatedAt      time.Time `json:"updated_at"`                                                       // 更新时间
}

// TableName 指定表名
func (GiftCardShare) TableName() string {
	return "gift_card_shares"
}

// CapFor 该份额在指定面额下的终身核销上限
func (s *GiftCardShare) CapFor(total Money) Money {
	return total.SharePortion(s.Percent)
}
