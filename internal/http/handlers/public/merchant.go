package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ysongh/SmartSpendGift/internal/http/response"
	"github.com/ysongh/SmartSpendGift/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterMerchantRequest 商户注册请求
type RegisterMerchantRequest struct {
	Name string `json:"name" binding:"required"`
}

// RegisterMerchant 商户一次性认领当前令牌账户地址
func (h *Handler) RegisterMerchant(c *gin.Context) {
	address, ok := getAccount(c)
	if !ok {
		return
	}
	var req RegisterMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	merchant, err := h.MerchantService.Register(service.MerchantRegisterInput{
		Address: address,
		Name:    strings.TrimSpace(req.Name),
	})
	if err != nil {
		respondMerchantRegisterError(c, err)
		return
	}

	response.Success(c, merchant)
}

// GetMerchant 查询商户注册信息
func (h *Handler) GetMerchant(c *gin.Context) {
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

// GetMerchants 查询商户列表
func (h *Handler) GetMerchants(c *gin.Context) {
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
