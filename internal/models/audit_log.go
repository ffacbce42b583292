package models

import "time"

// AuditLog 业务审计日志
// 说明：由服务层在变更成功后显式写入，记录操作人、动作与前后快照。
type AuditLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	Action    string    `gorm:"type:varchar(100);index;not null" json:"action"`
	Module    string    `gorm:"type:varchar(100);index;not null" json:"module"`
	OldData   JSON      `gorm:"type:json" json:"old_data,omitempty"`
	NewData   JSON      `gorm:"type:json" json:"new_data,omitempty"`
	IPAddress string    `gorm:"type:varchar(64);not null;default:''" json:"ip_address"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string {
	return "audit_logs"
}
