package models

import (
	"path"
	"strings"
	"time"
)

// Receipt 收据记录
// 说明：创建后只允许回填一次 qr_code；qr_code 为空表示二维码尚未生成完成，不可对外展示。
type Receipt struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                         // 主键
	ReceiptNumber string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"receipt_number"` // 收据编号
	Type          string    `gorm:"type:varchar(2);index;not null" json:"type"`                   // 收据类型 PR/WR/SR/AR/DR/SS
	LinkedID      *uint     `gorm:"index" json:"linked_id"`                                       // 关联业务ID（仅作参考，无外键）
	QRCode        *string   `gorm:"type:varchar(255);index" json:"qr_code"`                       // 二维码产物存储键
	CreatedAt     time.Time `gorm:"index;not null;autoCreateTime:false" json:"created_at"`        // 签发时间
}

// TableName 指定表名
func (Receipt) TableName() string {
	return "receipts"
}

// HasQRCode 二维码产物是否已就绪
func (r *Receipt) HasQRCode() bool {
	return r != nil && r.QRCode != nil && strings.TrimSpace(*r.QRCode) != ""
}

// QRCodeKey 返回二维码存储键，未就绪时为空
func (r *Receipt) QRCodeKey() string {
	if !r.HasQRCode() {
		return ""
	}
	return *r.QRCode
}

// QRCodeBasename 返回二维码存储键的文件名部分
func (r *Receipt) QRCodeBasename() string {
	key := r.QRCodeKey()
	if key == "" {
		return ""
	}
	return path.Base(key)
}
