package shared

import (
	"strings"

	"github.com/ysongh/SmartSpendGift/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetContextAccount 从上下文读取调用方托管账户地址并统一处理错误响应。
func GetContextAccount(c *gin.Context) (string, bool) {
	value, exists := c.Get("account")
	if !exists {
		RespondError(c, response.CodeUnauthorized, "未授权访问", nil)
		return "", false
	}
	account, ok := value.(string)
	if !ok || strings.TrimSpace(account) == "" {
		RespondError(c, response.CodeUnauthorized, "账户地址无效", nil)
		return "", false
	}
	return strings.TrimSpace(account), true
}

// GetContextUint 从上下文读取 uint 值并统一处理错误响应。
func GetContextUint(c *gin.Context, key, invalidMsg string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "未授权访问", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidMsg, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidMsg, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, invalidMsg, nil)
		return 0, false
	}
}

// NormalizePagination 规范化分页参数
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
