package repository

import "time"

// ReceiptListFilter 查询收据列表的过滤条件
type ReceiptListFilter struct {
	Page        int
	PageSize    int
	Type        string
	LinkedID    uint
	Search      string
	OnlyIssued  bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AuditLogListFilter 查询审计日志列表的过滤条件
type AuditLogListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Action      string
	Module      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ShipmentListFilter 查询货运列表的过滤条件
type ShipmentListFilter struct {
	Page       int
	PageSize   int
	CustomerID uint
	Status     string
	ShelfCode  string
}
