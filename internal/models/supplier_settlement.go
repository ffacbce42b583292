package models

import (
	"time"

	"gorm.io/gorm"
)

// SupplierSettlement 供应商结算记录
type SupplierSettlement struct {
	ID           uint           `gorm:"primarykey" json:"id"`                          // 主键
	PaymentID    uint           `gorm:"index;not null" json:"payment_id"`              // 关联付款ID
	SupplierName string         `gorm:"type:varchar(150);not null" json:"supplier_name"` // 供应商名称
	ProofPath    string         `gorm:"type:varchar(255)" json:"proof_path"`           // 凭证路径
	Status       string         `gorm:"type:varchar(20);index;not null" json:"status"` // 结算状态
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                       // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (SupplierSettlement) TableName() string {
	return "supplier_settlements"
}
