package public

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/ysongh/SmartSpendGift/internal/http/response"
	"github.com/ysongh/SmartSpendGift/internal/models"
	"github.com/ysongh/SmartSpendGift/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateGiftCardRequest 创建礼品卡请求
type CreateGiftCardRequest struct {
	Recipient string   `json:"recipient" binding:"required"`
	Amount    string   `json:"amount" binding:"required"`
	UnlockAt  int64    `json:"unlock_at" binding:"required"`
	RefundAt  int64    `json:"refund_at" binding:"required"`
	Merchants []string `json:"merchants"`
	Percents  []int    `json:"percents"`
}

// RedeemGiftCardRequest 商户核销请求
type RedeemGiftCardRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Reference string `json:"reference"`
}

// CreateGiftCard 赠卡人创建礼品卡（面额即时划入资金池）
func (h *Handler) CreateGiftCard(c *gin.Context) {
	giver, ok := getAccount(c)
	if !ok {
		return
	}
	var req CreateGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	amount, err := models.NewMoneyFromString(req.Amount)
	if err != nil {
		respondError(c, response.CodeBadRequest, "金额无效", nil)
		return
	}

	card, err := h.GiftCardService.CreateCard(c.Request.Context(), service.CreateCardInput{
		Giver:     giver,
		Recipient: strings.TrimSpace(req.Recipient),
		Amount:    amount,
		UnlockAt:  time.Unix(req.UnlockAt, 0),
		RefundAt:  time.Unix(req.RefundAt, 0),
		Merchants: req.Merchants,
		Percents:  req.Percents,
	})
	if err != nil {
		respondGiftCardCreateError(c, err)
		return
	}

	response.Success(c, card)
}

// RedeemGiftCard 商户核销礼品卡（出金到商户账户）
func (h *Handler) RedeemGiftCard(c *gin.Context) {
	merchant, ok := getAccount(c)
	if !ok {
		return
	}
	cardID, ok := getCardIDParam(c)
	if !ok {
		return
	}
	var req RedeemGiftCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	amount, err := models.NewMoneyFromString(req.Amount)
	if err != nil {
		respondError(c, response.CodeBadRequest, "金额无效", nil)
		return
	}

	card, event, err := h.GiftCardService.Redeem(c.Request.Context(), service.RedeemInput{
		Merchant:  merchant,
		CardID:    cardID,
		Amount:    amount,
		Reference: strings.TrimSpace(req.Reference),
	})
	if err != nil {
		respondGiftCardRedeemError(c, err)
		return
	}

	response.Success(c, gin.H{
		"card":  card,
		"event": event,
	})
}

// RefundGiftCard 赠卡人退款（收回剩余余额并使卡失效）
func (h *Handler) RefundGiftCard(c *gin.Context) {
	caller, ok := getAccount(c)
	if !ok {
		return
	}
	cardID, ok := getCardIDParam(c)
	if !ok {
		return
	}

	card, event, err := h.GiftCardService.Refund(c.Request.Context(), service.RefundInput{
		Caller: caller,
		CardID: cardID,
	})
	if err != nil {
		respondGiftCardRefundError(c, err)
		return
	}

	response.Success(c, gin.H{
		"card":  card,
		"event": event,
	})
}

// GetGiftCard 查询礼品卡详情
func (h *Handler) GetGiftCard(c *gin.Context) {
	cardID, ok := getCardIDParam(c)
	if !ok {
		return
	}

	card, err := h.GiftCardService.GetCard(cardID)
	if err != nil {
		if errors.Is(err, service.ErrGiftCardNotFound) {
			respondError(c, response.CodeNotFound, "礼品卡不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "礼品卡查询失败", err)
		return
	}

	response.Success(c, card)
}

// GetGiftCards 查询礼品卡列表
func (h *Handler) GetGiftCards(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	cards, total, err := h.GiftCardService.ListCards(service.GiftCardListInput{
		Giver:      strings.TrimSpace(c.Query("giver")),
		Recipient:  strings.TrimSpace(c.Query("recipient")),
		Merchant:   strings.TrimSpace(c.Query("merchant")),
		ActiveOnly: c.Query("active_only") == "true",
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "礼品卡查询失败", err)
		return
	}

	response.SuccessWithPage(c, cards, response.BuildPagination(page, pageSize, total))
}

// GetGiftCardEvents 查询卡片事件流水
func (h *Handler) GetGiftCardEvents(c *gin.Context) {
	cardID, ok := getCardIDParam(c)
	if !ok {
		return
	}

	if _, err := h.GiftCardService.GetCard(cardID); err != nil {
		if errors.Is(err, service.ErrGiftCardNotFound) {
			respondError(c, response.CodeNotFound, "礼品卡不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "礼品卡查询失败", err)
		return
	}

	events, err := h.GiftCardService.ListCardEvents(cardID)
	if err != nil {
		respondError(c, response.CodeInternal, "事件查询失败", err)
		return
	}

	response.Success(c, events)
}

// GetGiftCardMerchant 查询商户在该卡的份额资格
func (h *Handler) GetGiftCardMerchant(c *gin.Context) {
	cardID, ok := getCardIDParam(c)
	if !ok {
		return
	}
	address := strings.TrimSpace(c.Param("address"))
	if address == "" {
		respondError(c, response.CodeBadRequest, "商户地址无效", nil)
		return
	}

	percent, err := h.GiftCardService.GetMerchantPercent(cardID, address)
	if err != nil {
		respondError(c, response.CodeInternal, "份额查询失败", err)
		return
	}

	response.Success(c, gin.H{
		"card_id":  cardID,
		"merchant": address,
		"allowed":  percent > 0,
		"percent":  percent,
		"name":     h.MerchantService.GetName(address),
	})
}
