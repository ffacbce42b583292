package constants

import "strings"

// 收据类型常量
const (
	ReceiptTypePayment            = "PR"
	ReceiptTypeWarehouse          = "WR"
	ReceiptTypeShipping           = "SR"
	ReceiptTypeArrival            = "AR"
	ReceiptTypeDelivery           = "DR"
	ReceiptTypeSupplierSettlement = "SS"
)

// ReceiptTypes 全部收据类型（顺序固定）
func ReceiptTypes() []string {
	return []string{
		ReceiptTypePayment,
		ReceiptTypeWarehouse,
		ReceiptTypeShipping,
		ReceiptTypeArrival,
		ReceiptTypeDelivery,
		ReceiptTypeSupplierSettlement,
	}
}

var receiptTypeLabels = map[string]string{
	ReceiptTypePayment:            "Payment Receipt",
	ReceiptTypeWarehouse:          "Warehouse Receipt",
	ReceiptTypeShipping:           "Shipping Receipt",
	ReceiptTypeArrival:            "Arrival Receipt",
	ReceiptTypeDelivery:           "Delivery Receipt",
	ReceiptTypeSupplierSettlement: "Supplier Settlement Receipt",
}

// IsValidReceiptType 判断收据类型是否合法（区分大小写）
func IsValidReceiptType(value string) bool {
	_, ok := receiptTypeLabels[value]
	return ok
}

// ReceiptTypeLabel 返回收据类型展示名
func ReceiptTypeLabel(value string) string {
	if label, ok := receiptTypeLabels[strings.TrimSpace(value)]; ok {
		return label
	}
	return value
}

// 收据校验结果原因码
const (
	VerifyReasonEmptyInput             = "empty_input"
	VerifyReasonMatchedByPayload       = "matched_by_payload"
	VerifyReasonPayloadMismatch        = "payload_mismatch"
	VerifyReasonMatchedByQRPath        = "matched_by_qr_path"
	VerifyReasonMatchedByQRBasename    = "matched_by_qr_basename"
	VerifyReasonMatchedByReceiptNumber = "matched_by_receipt_number"
	VerifyReasonNotFound               = "not_found"
)

// 收据产物存储命名空间
const (
	ReceiptQRNamespace    = "receipts_qr"
	ReceiptImageNamespace = "receipts_images"
)

// 货运状态常量
const (
	ShipmentStatusReceived     = "RECEIVED"
	ShipmentStatusInWarehouse  = "IN_WAREHOUSE"
	ShipmentStatusInContainer  = "IN_CONTAINER"
	ShipmentStatusDispatched   = "DISPATCHED"
	ShipmentStatusArrivedGhana = "ARRIVED_GHANA"
	ShipmentStatusDelivered    = "DELIVERED"
	ShipmentStatusVoid         = "VOID"
)

// 付款状态常量
const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusApproved = "APPROVED"
	PaymentStatusRejected = "REJECTED"
)

// 供应商结算状态常量
const (
	SettlementStatusPending = "PENDING"
	SettlementStatusPaid    = "PAID"
)

// 审计动作常量
const (
	AuditActionReceiptCreated    = "RECEIPT_CREATED"
	AuditActionReceiptRolledBack = "RECEIPT_ROLLED_BACK"
	AuditActionReceiptCardRender = "RECEIPT_CARD_RENDERED"
	AuditActionWarehouseIntake   = "WAREHOUSE_INTAKE"
)

// 审计模块常量
const (
	AuditModuleReceipt   = "receipt"
	AuditModuleWarehouse = "warehouse"
)

// 员工角色常量
const (
	RoleAdmin            = "admin"
	RoleOperationManager = "operation_manager"
	RoleWarehouseStaff   = "warehouse_staff"
	RoleFinance          = "finance"
)

// 异步任务常量
const (
	QueueDefault            = "default"
	TaskReceiptCardRender   = "receipt:render_card"
	ReceiptCardRenderMaxTry = 5
)
