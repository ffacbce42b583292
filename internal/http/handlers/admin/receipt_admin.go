package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	handlershared "github.com/eleven-freight/internal/http/handlers/shared"
	"github.com/eleven-freight/internal/http/response"
	"github.com/eleven-freight/internal/repository"
	"github.com/eleven-freight/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CreateReceiptRequest 手工签发收据请求
type CreateReceiptRequest struct {
	Type          string `json:"type" binding:"required,receipt_type"`
	LinkedID      *int64 `json:"linked_id"`
	ReceiptNumber string `json:"receipt_number" binding:"omitempty,max=100"`
}

// ListReceipts 获取收据列表
func (h *Handler) ListReceipts(c *gin.Context) {
	filter, ok := parseReceiptFilter(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter.Page, filter.PageSize = normalizePagination(page, pageSize)

	items, total, err := h.ReceiptService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	pagination := response.Pagination{
		Page:      filter.Page,
		PageSize:  filter.PageSize,
		Total:     total,
		TotalPage: (total + int64(filter.PageSize) - 1) / int64(filter.PageSize),
	}
	response.SuccessWithPage(c, items, pagination)
}

// CreateReceipt 手工签发收据
func (h *Handler) CreateReceipt(c *gin.Context) {
	var req CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if handlershared.FailedOnTag(err, "receipt_type") {
			respondError(c, response.CodeBadRequest, "error.receipt_invalid_type", err)
			return
		}
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var linkedID *uint
	if req.LinkedID != nil {
		if *req.LinkedID <= 0 {
			respondError(c, response.CodeBadRequest, "error.receipt_invalid_linked_id", nil)
			return
		}
		id := uint(*req.LinkedID)
		linkedID = &id
	}

	receipt, err := h.ReceiptService.Create(c.Request.Context(), service.CreateReceiptInput{
		Type:          req.Type,
		LinkedID:      linkedID,
		ReceiptNumber: req.ReceiptNumber,
		Actor:         handlershared.StaffActor(c),
	})
	if err != nil {
		respondReceiptError(c, err)
		return
	}
	h.respondIssued(c, receipt.ID)
}

// GetReceipt 获取收据详情
func (h *Handler) GetReceipt(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.invalid_id", nil)
		return
	}
	detail, err := h.ReceiptService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.receipt_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, detail)
}

// ExportReceipts 导出收据 XLSX
func (h *Handler) ExportReceipts(c *gin.Context) {
	filter, ok := parseReceiptFilter(c)
	if !ok {
		return
	}
	data, err := h.ReceiptService.ExportXLSX(c.Request.Context(), filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.receipt_export_failed", err)
		return
	}
	filename := fmt.Sprintf("receipts-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetReceiptQR 输出二维码产物
func (h *Handler) GetReceiptQR(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.invalid_id", nil)
		return
	}
	data, contentType, err := h.ReceiptService.ReadQRArtifact(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.receipt_qr_missing", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

// GetReceiptCard 输出可打印的收据卡片
func (h *Handler) GetReceiptCard(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.invalid_id", nil)
		return
	}
	data, contentType, err := h.ReceiptService.ReadCard(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCardNotRendered):
			respondError(c, response.CodeNotFound, "error.receipt_card_missing", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.receipt_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}
	if c.Query("download") == "1" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"receipt-%d.png\"", id))
	}
	c.Data(http.StatusOK, contentType, data)
}

// RenderReceiptCard 重新生成收据卡片
func (h *Handler) RenderReceiptCard(c *gin.Context) {
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.invalid_id", nil)
		return
	}
	detail, err := h.ReceiptService.RenderCard(c.Request.Context(), id, handlershared.StaffActor(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrReceiptPending):
			respondError(c, response.CodeNotFound, "error.receipt_not_found", nil)
		case errors.Is(err, service.ErrCardDisabled):
			respondError(c, response.CodeBadRequest, "error.receipt_card_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.receipt_card_failed", err)
		}
		return
	}
	response.Success(c, detail)
}

// respondIssued 返回新签发收据的详情
func (h *Handler) respondIssued(c *gin.Context, id uint) {
	detail, err := h.ReceiptService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Created(c, detail)
}

func parseReceiptFilter(c *gin.Context) (repository.ReceiptListFilter, bool) {
	filter := repository.ReceiptListFilter{
		Type:   strings.TrimSpace(c.Query("type")),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("linked_id")); raw != "" {
		linkedID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || linkedID == 0 {
			respondError(c, response.CodeBadRequest, "error.receipt_invalid_linked_id", err)
			return filter, false
		}
		filter.LinkedID = uint(linkedID)
	}
	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return filter, false
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return filter, false
	}
	filter.CreatedFrom = createdFrom
	filter.CreatedTo = createdTo
	return filter, true
}
