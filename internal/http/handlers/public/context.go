package public

import (
	"strconv"

	handlershared "github.com/ysongh/SmartSpendGift/internal/http/handlers/shared"
	"github.com/ysongh/SmartSpendGift/internal/http/response"

	"github.com/gin-gonic/gin"
)

func getAccount(c *gin.Context) (string, bool) {
	return handlershared.GetContextAccount(c)
}

func getCardIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "礼品卡ID无效", nil)
		return 0, false
	}
	return uint(id), true
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}
