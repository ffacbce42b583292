package admin

import (
	"errors"
	"strings"

	handlershared "github.com/eleven-freight/internal/http/handlers/shared"
	"github.com/eleven-freight/internal/http/response"
	"github.com/eleven-freight/internal/service"

	"github.com/gin-gonic/gin"
)

// ShipmentReceiptRequest 货运收据签发请求
type ShipmentReceiptRequest struct {
	Type string `json:"type" binding:"required,receipt_type"`
}

// IssuePaymentReceipt 为付款签发收据
func (h *Handler) IssuePaymentReceipt(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.invalid_id", nil)
		return
	}
	payment, err := h.PaymentRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if payment == nil {
		respondError(c, response.CodeNotFound, "error.payment_not_found", nil)
		return
	}
	receipt, err := h.ReceiptService.PaymentReceipt(c.Request.Context(), payment, handlershared.StaffActor(c))
	if err != nil {
		respondReceiptError(c, err)
		return
	}
	h.respondIssued(c, receipt.ID)
}

// IssueSupplierSettlementReceipt 为供应商结算签发收据
func (h *Handler) IssueSupplierSettlementReceipt(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.invalid_id", nil)
		return
	}
	settlement, err := h.SupplierSettlementRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if settlement == nil {
		respondError(c, response.CodeNotFound, "error.settlement_not_found", nil)
		return
	}
	receipt, err := h.ReceiptService.SupplierSettlementReceipt(c.Request.Context(), settlement, handlershared.StaffActor(c))
	if err != nil {
		respondReceiptError(c, err)
		return
	}
	h.respondIssued(c, receipt.ID)
}

// IssueShipmentReceipt 为货运签发入库/发运/到港/交付收据
func (h *Handler) IssueShipmentReceipt(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.invalid_id", nil)
		return
	}
	var req ShipmentReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.receipt_invalid_type", err)
		return
	}
	shipment, err := h.ShipmentRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if shipment == nil {
		respondError(c, response.CodeNotFound, "error.shipment_not_found", nil)
		return
	}
	receipt, err := h.ReceiptService.ShipmentReceipt(c.Request.Context(), strings.TrimSpace(req.Type), shipment, handlershared.StaffActor(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidReceiptType) {
			respondError(c, response.CodeBadRequest, "error.shipment_receipt_type_only", err)
			return
		}
		respondReceiptError(c, err)
		return
	}
	h.respondIssued(c, receipt.ID)
}
