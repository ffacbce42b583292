package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// receiptNumberPattern 自定义收据编号，可直接作为文件名使用
var receiptNumberPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,99}$`)

// GenerateReceiptNumber 生成收据编号 {TYPE}-11F-{YYYYMMDD}-{毫秒时间戳末四位}
// 不保证唯一，冲突由存储唯一索引兜底。
func GenerateReceiptNumber(receiptType string, now time.Time) string {
	return fmt.Sprintf("%s-11F-%s-%04d",
		strings.ToUpper(strings.TrimSpace(receiptType)),
		now.Format("20060102"),
		now.UnixMilli()%10000,
	)
}

// ValidReceiptNumber 校验自定义收据编号
func ValidReceiptNumber(value string) bool {
	return receiptNumberPattern.MatchString(value)
}
