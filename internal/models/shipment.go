package models

import (
	"time"

	"gorm.io/gorm"
)

// Shipment 货运记录
type Shipment struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                     // 主键
	ShipmentCode string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"shipment_code"` // 货运编号
	CustomerID   uint           `gorm:"index;not null" json:"customer_id"`                        // 客户ID
	SupplierName string         `gorm:"type:varchar(150)" json:"supplier_name"`                   // 供应商名称
	Weight       Money          `gorm:"type:decimal(10,2);not null;default:0" json:"weight"`      // 重量（kg）
	ShelfCode    string         `gorm:"type:varchar(50);index" json:"shelf_code"`                 // 货架编号
	Status       string         `gorm:"type:varchar(20);index;not null" json:"status"`            // 货运状态
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (Shipment) TableName() string {
	return "shipments"
}
