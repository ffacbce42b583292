package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment 客户付款记录
type Payment struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                 // 主键
	CustomerID    uint           `gorm:"index;not null" json:"customer_id"`                    // 客户ID
	ReferenceCode string         `gorm:"type:varchar(100);index" json:"reference_code"`        // 付款参考号
	Amount        Money          `gorm:"type:decimal(20,2);not null" json:"amount"`            // 金额
	Status        string         `gorm:"type:varchar(20);index;not null" json:"status"`        // 付款状态
	ApprovedBy    *uint          `gorm:"index" json:"approved_by,omitempty"`                   // 审批人
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                              // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                       // 软删除时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
