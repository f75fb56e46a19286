package constants

// 卡片事件类型常量
const (
	CardEventTypeCardCreated        = "card_created"
	CardEventTypeMerchantAdded      = "merchant_added"
	CardEventTypeCardRedeemed       = "card_redeemed"
	CardEventTypeCardRefunded       = "card_refunded"
	CardEventTypeMerchantRegistered = "merchant_registered"
)

// 托管划转方向常量
const (
	CustodyTransferDirectionDeposit = "deposit"
	CustodyTransferDirectionPayout  = "payout"
)

// 托管划转状态常量
const (
	CustodyTransferStatusPending   = "pending"
	CustodyTransferStatusConfirmed = "confirmed"
	CustodyTransferStatusFailed    = "failed"
)

// 队列常量
const (
	QueueDefault             = "default"
	QueueCritical            = "critical"
	TaskCardEventWebhook     = "card_event:webhook"
	TaskCustodyReconcile     = "custody_transfer:reconcile"
	TaskMerchantCacheRefresh = "merchant:cache_refresh"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "ssg"
)

// 账户地址长度上限（托管网关侧约束）
const (
	AccountAddressMaxLen = 128
	MerchantNameMaxLen   = 100
)

// 份额比例常量
const (
	ShareTotalPercent = 100
)

// 币种常量
const (
	PoolCurrencyDefault = "USDC"
)
