package admin

import (
	handlershared "github.com/eleven-freight/internal/http/handlers/shared"
	"github.com/eleven-freight/internal/provider"
)

// Handler 后台管理接口处理器入口
// 说明：该处理器仅用于员工后台 API，角色判定由路由中间件完成。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	handlershared.RegisterValidators()
	return &Handler{Container: c}
}
