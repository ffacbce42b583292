package models

import "time"

// WarehouseInventory 仓库入库记录
type WarehouseInventory struct {
	ID         uint      `gorm:"primarykey" json:"id"`                       // 主键
	ShipmentID uint      `gorm:"index;not null" json:"shipment_id"`         // 货运ID
	Shelf      string    `gorm:"type:varchar(50);index" json:"shelf"`       // 货架
	PhotoPath  string    `gorm:"type:varchar(255)" json:"photo_path"`       // 照片路径
	IntakeBy   *uint     `gorm:"index" json:"intake_by,omitempty"`          // 入库操作员
	IntakeTime time.Time `gorm:"index;not null" json:"intake_time"`         // 入库时间
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                   // 创建时间
}

// TableName 指定表名
func (WarehouseInventory) TableName() string {
	return "warehouse_inventory"
}
