package authz

import (
	"fmt"

	"github.com/eleven-freight/internal/constants"
)

// staffRole 所有员工角色共享的基础权限
const staffRole = "staff"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: staffRole,
			Policies: []Policy{
				{Object: "/admin/receipts", Action: "GET"},
				{Object: "/admin/receipts", Action: "POST"},
				{Object: "/admin/receipts/export", Action: "GET"},
				{Object: "/admin/receipts/:id", Action: "GET"},
				{Object: "/admin/receipts/:id/qr", Action: "GET"},
				{Object: "/admin/receipts/:id/card", Action: "GET"},
				{Object: "/admin/receipts/:id/card", Action: "POST"},
			},
		},
		{
			Role: constants.RoleAdmin,
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
		},
		{
			Role:     constants.RoleOperationManager,
			Inherits: []string{staffRole},
			Policies: []Policy{
				{Object: "/admin/shipments", Action: "GET"},
				{Object: "/admin/shipments/:id/receipts", Action: "POST"},
			},
		},
		{
			Role:     constants.RoleWarehouseStaff,
			Inherits: []string{staffRole},
			Policies: []Policy{
				{Object: "/admin/shipments", Action: "GET"},
				{Object: "/admin/warehouse/intake", Action: "POST"},
			},
		},
		{
			Role:     constants.RoleFinance,
			Inherits: []string{staffRole},
			Policies: []Policy{
				{Object: "/admin/payments/:id/receipt", Action: "POST"},
				{Object: "/admin/supplier-settlements/:id/receipt", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	for _, seed := range BuiltinRoleSeeds() {
		if _, err := s.EnsureRole(seed.Role); err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			if err := s.InheritRole(seed.Role, parent); err != nil {
				return err
			}
		}
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(seed.Role, policy.Object, policy.Action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
