package shared

// messages 错误消息表，键名与处理器中使用的 key 对应
var messages = map[string]string{
	"error.bad_request":                "bad request",
	"error.unauthorized":               "unauthorized",
	"error.forbidden":                  "forbidden",
	"error.not_found":                  "not found",
	"error.too_many_requests":          "too many requests, please retry later",
	"error.internal":                   "internal server error",
	"error.invalid_id":                 "invalid id",
	"error.receipt_not_found":          "receipt not found",
	"error.receipt_invalid_type":       "invalid receipt type",
	"error.receipt_invalid_number":     "invalid receipt number",
	"error.receipt_number_taken":       "receipt number already exists",
	"error.receipt_invalid_linked_id":  "linked id must be a positive integer",
	"error.receipt_linked_not_found":   "linked record not found",
	"error.receipt_create_failed":      "receipt could not be issued",
	"error.receipt_qr_missing":         "receipt qr artifact not found",
	"error.receipt_card_missing":       "receipt card has not been rendered",
	"error.receipt_card_disabled":      "receipt card rendering is disabled",
	"error.receipt_card_failed":        "receipt card rendering failed",
	"error.receipt_export_failed":      "receipt export failed",
	"error.receipt_verify_failed":      "receipt verification failed",
	"error.shipment_not_found":         "shipment not found",
	"error.shipment_fetch_failed":      "failed to load shipments",
	"error.payment_not_found":          "payment not found",
	"error.settlement_not_found":       "supplier settlement not found",
	"error.intake_invalid":             "customer, supplier and a positive weight are required",
	"error.intake_failed":              "warehouse intake failed",
	"error.audit_log_fetch_failed":     "audit log query failed",
	"error.shipment_receipt_type_only": "shipment receipts must be WR, SR, AR or DR",
	"error.staff_role_required":        "staff role is required",
	"error.authz_unavailable":          "authorization is unavailable",
	"error.verify_rate_limited":        "too many verification attempts, please retry later",
}

// Message 返回 key 对应的消息，缺失时返回 key 本身
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}
