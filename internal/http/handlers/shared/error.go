package shared

import (
	"github.com/eleven-freight/internal/http/response"
	"github.com/eleven-freight/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 与员工角色的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	kv := make([]interface{}, 0, 4)
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			kv = append(kv, "request_id", id)
		}
	}
	if roles := StaffRoles(c); len(roles) > 0 {
		kv = append(kv, "staff_roles", roles)
	}
	return logger.SW(kv...)
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
// 4xx 记为 warn，其余记为 error。
func RespondError(c *gin.Context, code int, key string, err error) {
	appErr := response.WrapError(code, Message(key), err)
	if err != nil {
		log := RequestLog(c)
		if code >= 500 {
			log.Errorw("handler_error", "code", appErr.Code, "message", appErr.Message, "error", err)
		} else {
			log.Warnw("handler_error", "code", appErr.Code, "message", appErr.Message, "error", err)
		}
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// AbortWithError 返回错误响应并中断后续中间件
func AbortWithError(c *gin.Context, code int, key string, err error) {
	RespondError(c, code, key, err)
	c.Abort()
}
