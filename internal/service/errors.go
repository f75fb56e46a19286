package service

import "errors"

// 礼品卡相关错误
var (
	ErrGiftCardNotFound           = errors.New("gift card not found")
	ErrGiftCardFetchFailed        = errors.New("gift card fetch failed")
	ErrGiftCardCreateFailed       = errors.New("gift card create failed")
	ErrGiftCardUpdateFailed       = errors.New("gift card update failed")
	ErrGiftCardRecipientInvalid   = errors.New("gift card recipient invalid")
	ErrGiftCardAmountInvalid      = errors.New("gift card amount invalid")
	ErrGiftCardUnlockDateInvalid  = errors.New("gift card unlock date invalid")
	ErrGiftCardRefundDateInvalid  = errors.New("gift card refund date invalid")
	ErrGiftCardShareLengthMismatch = errors.New("gift card share length mismatch")
	ErrGiftCardShareSumInvalid    = errors.New("gift card share sum invalid")
	ErrGiftCardDepositFailed      = errors.New("gift card deposit failed")
	ErrGiftCardNotActive          = errors.New("gift card not active")
	ErrGiftCardNotYetUnlocked     = errors.New("gift card not yet unlocked")
	ErrGiftCardExpired            = errors.New("gift card expired")
	ErrGiftCardShareExceeded      = errors.New("gift card merchant share exceeded")
	ErrGiftCardInsufficientBalance = errors.New("gift card insufficient balance")
	ErrGiftCardPayoutFailed       = errors.New("gift card payout failed")
	ErrGiftCardRefundUnauthorized = errors.New("gift card refund unauthorized")
	ErrGiftCardRefundNotYetAvailable = errors.New("gift card refund not yet available")
	ErrGiftCardNothingToRefund    = errors.New("gift card nothing to refund")
)

// 商户相关错误
var (
	ErrMerchantNotRegistered     = errors.New("merchant not registered")
	ErrMerchantAlreadyRegistered = errors.New("merchant already registered")
	ErrMerchantNotAllowed        = errors.New("merchant not allowed")
	ErrMerchantInvalid           = errors.New("merchant invalid")
	ErrMerchantFetchFailed       = errors.New("merchant fetch failed")
	ErrMerchantRegisterFailed    = errors.New("merchant register failed")
)

// 认证相关错误
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrAdminNotFound      = errors.New("admin not found")
)
