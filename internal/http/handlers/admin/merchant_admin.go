package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/ysongh/SmartSpendGift/internal/http/response"
	"github.com/ysongh/SmartSpendGift/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminMerchants 获取商户列表 (Admin)
func (h *Handler) GetAdminMerchants(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	merchants, total, err := h.MerchantService.ListMerchants(service.MerchantListInput{
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "商户查询失败", err)
		return
	}

	response.SuccessWithPage(c, merchants, response.BuildPagination(page, pageSize, total))
}

// GetAdminMerchant 获取商户详情 (Admin)
func (h *Handler) GetAdminMerchant(c *gin.Context) {
	address := strings.TrimSpace(c.Param("address"))
	if address == "" {
		respondError(c, response.CodeBadRequest, "商户地址无效", nil)
		return
	}

	merchant, err := h.MerchantService.GetMerchant(address)
	if err != nil {
		if errors.Is(err, service.ErrMerchantNotRegistered) {
			respondError(c, response.CodeNotFound, "商户未注册", nil)
			return
		}
		respondError(c, response.CodeInternal, "商户查询失败", err)
		return
	}

	response.Success(c, merchant)
}

// IssueAccountTokenRequest 签发账户令牌请求
type IssueAccountTokenRequest struct {
	Account string `json:"account" binding:"required"`
}

// IssueAccountToken 为托管账户签发 API 令牌（运营方代发）
func (h *Handler) IssueAccountToken(c *gin.Context) {
	var req IssueAccountTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	token, expiresAt, err := h.AuthService.GenerateAccountJWT(strings.TrimSpace(req.Account))
	if err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			respondError(c, response.CodeBadRequest, "账户地址无效", nil)
			return
		}
		respondError(c, response.CodeInternal, "令牌签发失败", err)
		return
	}

	requestLog(c).Infow("account_token_issued", "account", strings.TrimSpace(req.Account))
	response.Success(c, gin.H{
		"token":      token,
		"account":    strings.TrimSpace(req.Account),
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}
