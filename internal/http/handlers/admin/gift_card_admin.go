package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/ysongh/SmartSpendGift/internal/constants"
	"github.com/ysongh/SmartSpendGift/internal/http/response"
	"github.com/ysongh/SmartSpendGift/internal/repository"
	"github.com/ysongh/SmartSpendGift/internal/service"

	"github.com/gin-gonic/gin"
)

func parseTimeQuery(c *gin.Context, key string) *time.Time {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
		t := time.Unix(ts, 0)
		return &t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	return nil
}

// GetAdminGiftCards 获取礼品卡列表 (Admin)
func (h *Handler) GetAdminGiftCards(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	cards, total, err := h.GiftCardService.ListCards(service.GiftCardListInput{
		Giver:       strings.TrimSpace(c.Query("giver")),
		Recipient:   strings.TrimSpace(c.Query("recipient")),
		Merchant:    strings.TrimSpace(c.Query("merchant")),
		ActiveOnly:  c.Query("active_only") == "true",
		CreatedFrom: parseTimeQuery(c, "created_from"),
		CreatedTo:   parseTimeQuery(c, "created_to"),
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "礼品卡查询失败", err)
		return
	}

	response.SuccessWithPage(c, cards, response.BuildPagination(page, pageSize, total))
}

// GetAdminGiftCard 获取礼品卡详情 (Admin)
func (h *Handler) GetAdminGiftCard(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "礼品卡ID无效", nil)
		return
	}

	card, err := h.GiftCardService.GetCard(uint(id))
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

// GetAdminCardEvents 获取卡片事件流水 (Admin)
func (h *Handler) GetAdminCardEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	cardID, _ := strconv.ParseUint(c.Query("card_id"), 10, 64)

	events, total, err := h.CardEventRepo.List(repository.CardEventListFilter{
		CardID:      uint(cardID),
		Type:        strings.TrimSpace(c.Query("type")),
		Account:     strings.TrimSpace(c.Query("account")),
		CreatedFrom: parseTimeQuery(c, "created_from"),
		CreatedTo:   parseTimeQuery(c, "created_to"),
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "事件查询失败", err)
		return
	}

	response.SuccessWithPage(c, events, response.BuildPagination(page, pageSize, total))
}

// GetAdminCustodyTransfers 获取托管划转流水 (Admin)
func (h *Handler) GetAdminCustodyTransfers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	cardID, _ := strconv.ParseUint(c.Query("card_id"), 10, 64)

	transfers, total, err := h.CustodyTransferRepo.List(repository.CustodyTransferListFilter{
		CardID:      uint(cardID),
		Direction:   strings.TrimSpace(c.Query("direction")),
		Account:     strings.TrimSpace(c.Query("account")),
		Status:      strings.TrimSpace(c.Query("status")),
		CreatedFrom: parseTimeQuery(c, "created_from"),
		CreatedTo:   parseTimeQuery(c, "created_to"),
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "划转流水查询失败", err)
		return
	}

	response.SuccessWithPage(c, transfers, response.BuildPagination(page, pageSize, total))
}

// ReconcileCustodyTransfer 手动触发划转对账 (Admin)
func (h *Handler) ReconcileCustodyTransfer(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "划转流水ID无效", nil)
		return
	}

	transfer, err := h.CustodyTransferRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "划转流水查询失败", err)
		return
	}
	if transfer == nil {
		respondError(c, response.CodeNotFound, "划转流水不存在", nil)
		return
	}
	if transfer.Status != constants.CustodyTransferStatusPending {
		respondError(c, response.CodeBadRequest, "仅待确认的划转可触发对账", nil)
		return
	}

	if err := h.QueueClient.EnqueueCustodyReconcile(transfer.ID); err != nil {
		respondError(c, response.CodeInternal, "对账任务下发失败", err)
		return
	}

	requestLog(c).Infow("custody_reconcile_enqueued", "transfer_id", transfer.ID)
	response.Success(c, gin.H{"transfer_id": transfer.ID})
}
