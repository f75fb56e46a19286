package repository

import "time"

// GiftCardListFilter 查询礼品卡列表的过滤条件
type GiftCardListFilter struct {
	Page        int
	PageSize    int
	Giver       string
	Recipient   string
	Merchant    string
	ActiveOnly  bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	UnlockFrom  *time.Time
	UnlockTo    *time.Time
}

// MerchantListFilter 查询商户列表的过滤条件
type MerchantListFilter struct {
	Page     int
	PageSize int
	Keyword  string
}

// CardEventListFilter 查询卡片事件列表的过滤条件
type CardEventListFilter struct {
	Page        int
	PageSize    int
	CardID      uint
	Type        string
	Account     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CustodyTransferListFilter 查询托管划转流水的过滤条件
type CustodyTransferListFilter struct {
	Page        int
	PageSize    int
	CardID      uint
	Direction   string
	Account     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
