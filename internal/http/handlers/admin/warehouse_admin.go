package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/eleven-freight/internal/http/handlers/shared"
	"github.com/eleven-freight/internal/http/response"
	"github.com/eleven-freight/internal/models"
	"github.com/eleven-freight/internal/repository"
	"github.com/eleven-freight/internal/service"

	"github.com/gin-gonic/gin"
)

// WarehouseIntakeRequest 入库请求
type WarehouseIntakeRequest struct {
	CustomerID   uint         `json:"customer_id" binding:"required"`
	SupplierName string       `json:"supplier_name" binding:"required,max=150"`
	Weight       models.Money `json:"weight"`
	ShelfCode    string       `json:"shelf_code" binding:"omitempty,max=50"`
	PhotoPath    string       `json:"photo_path" binding:"omitempty,max=255"`
}

// WarehouseIntake 登记入库并签发入库收据
func (h *Handler) WarehouseIntake(c *gin.Context) {
	var req WarehouseIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.intake_invalid", err)
		return
	}
	result, err := h.WarehouseIntakeService.Intake(c.Request.Context(), service.WarehouseIntakeInput{
		CustomerID:   req.CustomerID,
		SupplierName: strings.TrimSpace(req.SupplierName),
		Weight:       req.Weight,
		ShelfCode:    req.ShelfCode,
		PhotoPath:    req.PhotoPath,
		Actor:        handlershared.StaffActor(c),
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(c, response.CodeBadRequest, "error.intake_invalid", err)
			return
		}
		respondError(c, response.CodeInternal, "error.intake_failed", err)
		return
	}
	if result.Receipt == nil {
		requestLog(c).Warnw("admin_warehouse_intake_without_receipt", "shipment_id", result.Shipment.ID)
	}
	response.Created(c, result)
}

// ListShipments 货运列表
func (h *Handler) ListShipments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var customerID uint
	if raw := strings.TrimSpace(c.Query("customer_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		customerID = uint(parsed)
	}

	items, total, err := h.WarehouseIntakeService.ListShipments(c.Request.Context(), repository.ShipmentListFilter{
		Page:       page,
		PageSize:   pageSize,
		CustomerID: customerID,
		Status:     c.Query("status"),
		ShelfCode:  c.Query("shelf_code"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.shipment_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, items, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}
