package public

import (
	"errors"

	"github.com/ysongh/SmartSpendGift/internal/http/response"
	"github.com/ysongh/SmartSpendGift/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var giftCardCommonErrorRules = []mappedHandlerError{
	{target: service.ErrGiftCardNotFound, code: response.CodeNotFound, msg: "礼品卡不存在"},
	{target: service.ErrGiftCardNotActive, code: response.CodeBadRequest, msg: "礼品卡不存在或已失效"},
	{target: service.ErrGiftCardAmountInvalid, code: response.CodeBadRequest, msg: "金额无效"},
}

var giftCardCreateErrorRules = []mappedHandlerError{
	{target: service.ErrGiftCardRecipientInvalid, code: response.CodeBadRequest, msg: "受赠人地址无效"},
	{target: service.ErrGiftCardUnlockDateInvalid, code: response.CodeBadRequest, msg: "解锁时间必须晚于当前时间"},
	{target: service.ErrGiftCardRefundDateInvalid, code: response.CodeBadRequest, msg: "退款时间必须晚于解锁时间"},
	{target: service.ErrGiftCardShareLengthMismatch, code: response.CodeBadRequest, msg: "商户与份额数量不一致"},
	{target: service.ErrGiftCardShareSumInvalid, code: response.CodeBadRequest, msg: "份额之和必须为100"},
	{target: service.ErrMerchantInvalid, code: response.CodeBadRequest, msg: "商户地址无效或重复"},
	{target: service.ErrMerchantNotRegistered, code: response.CodeBadRequest, msg: "商户未注册"},
	{target: service.ErrGiftCardDepositFailed, code: response.CodeBadRequest, msg: "资金池入金失败"},
}

var giftCardRedeemErrorRules = []mappedHandlerError{
	{target: service.ErrGiftCardNotYetUnlocked, code: response.CodeBadRequest, msg: "礼品卡尚未解锁"},
	{target: service.ErrGiftCardExpired, code: response.CodeBadRequest, msg: "礼品卡已过核销窗口"},
	{target: service.ErrMerchantNotAllowed, code: response.CodeForbidden, msg: "商户无此卡份额"},
	{target: service.ErrGiftCardShareExceeded, code: response.CodeBadRequest, msg: "超出商户份额上限"},
	{target: service.ErrGiftCardInsufficientBalance, code: response.CodeBadRequest, msg: "卡余额不足"},
	{target: service.ErrGiftCardPayoutFailed, code: response.CodeBadRequest, msg: "资金池出金失败"},
}

var giftCardRefundErrorRules = []mappedHandlerError{
	{target: service.ErrGiftCardRefundUnauthorized, code: response.CodeForbidden, msg: "仅赠卡人可退款"},
	{target: service.ErrGiftCardRefundNotYetAvailable, code: response.CodeBadRequest, msg: "尚未到达可退款时间"},
	{target: service.ErrGiftCardNothingToRefund, code: response.CodeBadRequest, msg: "卡余额已用尽，无可退款金额"},
	{target: service.ErrGiftCardPayoutFailed, code: response.CodeBadRequest, msg: "资金池出金失败"},
}

var merchantRegisterErrorRules = []mappedHandlerError{
	{target: service.ErrMerchantInvalid, code: response.CodeBadRequest, msg: "商户地址或名称无效"},
	{target: service.ErrMerchantAlreadyRegistered, code: response.CodeBadRequest, msg: "该地址已注册"},
}

func respondGiftCardCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(giftCardCommonErrorRules, giftCardCreateErrorRules), response.CodeInternal, "创建礼品卡失败")
}

func respondGiftCardRedeemError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(giftCardCommonErrorRules, giftCardRedeemErrorRules), response.CodeInternal, "核销失败")
}

func respondGiftCardRefundError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(giftCardCommonErrorRules, giftCardRefundErrorRules), response.CodeInternal, "退款失败")
}

func respondMerchantRegisterError(c *gin.Context, err error) {
	respondWithMappedError(c, err, merchantRegisterErrorRules, response.CodeInternal, "商户注册失败")
}
