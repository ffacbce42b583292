package authz

import (
	"reflect"
	"testing"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService()
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	return svc
}

func TestBuiltinRoleMatrix(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	cases := []struct {
		name   string
		roles  []string
		object string
		action string
		want   bool
	}{
		{"admin audit logs", []string{"admin"}, "/api/v1/admin/audit-logs", "GET", true},
		{"admin intake", []string{"admin"}, "/api/v1/admin/warehouse/intake", "POST", true},
		{"warehouse intake", []string{"warehouse_staff"}, "/api/v1/admin/warehouse/intake", "post", true},
		{"warehouse payment receipt", []string{"warehouse_staff"}, "/api/v1/admin/payments/9/receipt", "POST", false},
		{"finance payment receipt", []string{"finance"}, "/api/v1/admin/payments/9/receipt", "POST", true},
		{"finance settlement receipt", []string{"finance"}, "/api/v1/admin/supplier-settlements/3/receipt", "POST", true},
		{"finance audit logs", []string{"finance"}, "/api/v1/admin/audit-logs", "GET", false},
		{"ops shipment receipt", []string{"operation_manager"}, "/api/v1/admin/shipments/4/receipts", "POST", true},
		{"ops receipt list", []string{"operation_manager"}, "/api/v1/admin/receipts", "GET", true},
		{"ops card render", []string{"operation_manager"}, "/api/v1/admin/receipts/12/card", "POST", true},
		{"multiple roles", []string{"unknown", "finance"}, "/api/v1/admin/receipts/12", "GET", true},
		{"no roles", nil, "/api/v1/admin/receipts", "GET", false},
		{"unknown role", []string{"guest"}, "/api/v1/admin/receipts", "GET", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.EnforceRoles(tc.roles, tc.object, tc.action)
			if err != nil {
				t.Fatalf("enforce failed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("enforce %v %s %s want %v got %v", tc.roles, tc.action, tc.object, tc.want, got)
			}
		})
	}
}

func TestListRolesAndPolicies(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	want := []string{"admin", "finance", "operation_manager", "staff", "warehouse_staff"}
	if !reflect.DeepEqual(roles, want) {
		t.Fatalf("roles want %v got %v", want, roles)
	}

	policies, err := svc.GetRolePolicies("warehouse_staff")
	if err != nil {
		t.Fatalf("get role policies failed: %v", err)
	}
	if len(policies) != 1 || policies[0].Object != "/admin/warehouse/intake" || policies[0].Action != "POST" {
		t.Fatalf("unexpected warehouse policies: %+v", policies)
	}
}

func TestParseRoles(t *testing.T) {
	got := ParseRoles(" Admin, finance;finance  warehouse_staff ")
	want := []string{"admin", "finance", "warehouse_staff"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("roles want %v got %v", want, got)
	}
	if len(ParseRoles("")) != 0 {
		t.Fatalf("expected no roles for empty header")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := map[string]string{
		"":                           "/",
		"admin/receipts":             "/admin/receipts",
		"/api/v1":                    "/",
		"/api/v1/admin/receipts/:id": "/admin/receipts/:id",
	}
	for input, want := range cases {
		if got := NormalizeObject(input); got != want {
			t.Fatalf("NormalizeObject(%q) want %s got %s", input, want, got)
		}
	}
}
