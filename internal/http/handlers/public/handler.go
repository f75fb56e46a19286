package public

import "github.com/ysongh/SmartSpendGift/internal/provider"

// Handler 对外 API 处理器入口
// 说明：该处理器仅用于赠卡人 / 商户侧 API。
type Handler struct {
	*provider.Container
}

// New 创建对外处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
