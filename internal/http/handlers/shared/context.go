package shared

import (
	"strconv"
	"strings"

	"github.com/eleven-freight/internal/service"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	ContextKeyStaffID    = "staff_id"
	ContextKeyStaffRoles = "staff_roles"
)

// StaffActor 从上下文构造审计操作人
func StaffActor(c *gin.Context) service.AuditActor {
	actor := service.AuditActor{IP: c.ClientIP()}
	if value, ok := c.Get(ContextKeyStaffID); ok {
		if id, ok := value.(uint); ok && id > 0 {
			actor.UserID = &id
		}
	}
	return actor
}

// StaffRoles 返回上下文中的员工角色
func StaffRoles(c *gin.Context) []string {
	if value, ok := c.Get(ContextKeyStaffRoles); ok {
		if roles, ok := value.([]string); ok {
			return roles
		}
	}
	return nil
}

// ParseStaffID 解析员工 ID 请求头，非法值视为缺失
func ParseStaffID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ParseUintParam 解析路径中的正整数 ID
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
