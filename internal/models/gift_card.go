package models

import (
	"time"
)

// GiftCard 礼品卡（以托管池余额背书的多商户卡）
type GiftCard struct {
	ID               uint            `gorm:"primarykey" json:"id"`                                       // 主键
	Giver            string          `gorm:"type:varchar(128);index;not null" json:"giver"`              // 赠卡人托管账户
	Recipient        string          `gorm:"type:varchar(128);index;not null" json:"recipient"`          // 受赠人托管账户（仅记录，不做核销门槛）
	TotalAmount      Money           `gorm:"type:decimal(20,2);not null" json:"total_amount"`            // 初始面额（商户份额上限的计算基数）
	RemainingBalance Money           `gorm:"type:decimal(20,2);not null" json:"remaining_balance"`       // 剩余可用余额
	Currency         string          `gorm:"type:varchar(16);not null;default:'USDC'" json:"currency"`   // 币种
	UnlockAt         time.Time       `gorm:"index;not null" json:"unlock_at"`                            // 核销窗口开始时间
	RefundAt         time.Time       `gorm:"index;not null" json:"refund_at"`                            // 核销窗口结束 / 可退款时间
	IsActive         bool            `gorm:"index;not null;default:true" json:"is_active"`               // 是否有效（仅退款可清除）
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt        time.Time       `gorm:"index" json:"updated_at"`                                    // 更新时间
	Shares           []GiftCardShare `gorm:"foreignKey:CardID" json:"shares,omitempty"`                  // 商户份额列表
}

// TableName 指定表名
func (GiftCard) TableName() string {
	return "gift_cards"
}

// IsUnlocked 当前时间是否已进入核销窗口
func (c *GiftCard) IsUnlocked(now time.Time) bool {
	return !now.Before(c.UnlockAt)
}

// IsExpired 当前时间是否已越过核销窗口
func (c *GiftCard) IsExpired(now time.Time) bool {
	return !now.Before(c.RefundAt)
}

// ShareFor 返回指定商户的份额记录（无则返回 nil）
func (c *GiftCard) ShareFor(merchant string) *GiftCardShare {
	for i := range c.Shares {
		if c.Shares[i].Merchant == merchant {
			return &c.Shares[i]
		}
	}
	return nil
}
