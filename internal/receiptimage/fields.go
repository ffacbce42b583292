package receiptimage

import (
	"strconv"
	"strings"
	"time"

	"github.com/eleven-freight/internal/constants"
	"github.com/eleven-freight/internal/models"
)

const (
	defaultDateFormat = "Jan 02, 2006 03:04 PM"
	emptyValue        = "N/A"
)

type fieldResolver func(receipt *models.Receipt, field FieldConfig, loc *time.Location) string

var fieldResolvers = map[string]fieldResolver{
	"type": func(r *models.Receipt, _ FieldConfig, _ *time.Location) string {
		return r.Type
	},
	"type_label": func(r *models.Receipt, _ FieldConfig, _ *time.Location) string {
		return constants.ReceiptTypeLabel(r.Type)
	},
	"receipt_number": func(r *models.Receipt, _ FieldConfig, _ *time.Location) string {
		return r.ReceiptNumber
	},
	"id": func(r *models.Receipt, _ FieldConfig, _ *time.Location) string {
		return strconv.FormatUint(uint64(r.ID), 10)
	},
	"linked_id": func(r *models.Receipt, _ FieldConfig, _ *time.Location) string {
		if r.LinkedID == nil {
			return ""
		}
		return strconv.FormatUint(uint64(*r.LinkedID), 10)
	},
	"created_at": func(r *models.Receipt, field FieldConfig, loc *time.Location) string {
		if r.CreatedAt.IsZero() {
			return ""
		}
		format := field.Format
		if strings.TrimSpace(format) == "" {
			format = defaultDateFormat
		}
		return r.CreatedAt.In(loc).Format(format)
	},
}

var transforms = map[string]func(string) string{
	"":      func(s string) string { return s },
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

// fieldRow 一行 标签/值
type fieldRow struct {
	Label string
	Value string
}

// resolveFields 按配置顺序解析字段值，空值显示为 N/A
func resolveFields(receipt *models.Receipt, fields []FieldConfig, loc *time.Location) []fieldRow {
	rows := make([]fieldRow, 0, len(fields))
	for _, field := range fields {
		resolver, ok := fieldResolvers[field.Key]
		if !ok {
			continue
		}
		value := resolver(receipt, field, loc)
		if transform, ok := transforms[strings.ToLower(field.Transform)]; ok {
			value = transform(value)
		}
		if strings.TrimSpace(value) == "" {
			value = emptyValue
		}
		label := field.Label
		if label == "" {
			label = strings.ToUpper(strings.ReplaceAll(field.Key, "_", " "))
		}
		rows = append(rows, fieldRow{Label: label, Value: value})
	}
	return rows
}
