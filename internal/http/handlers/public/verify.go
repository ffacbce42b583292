package public

import (
	"strings"
	"time"

	"github.com/eleven-freight/internal/cache"
	handlershared "github.com/eleven-freight/internal/http/handlers/shared"
	"github.com/eleven-freight/internal/http/response"
	"github.com/eleven-freight/internal/service"

	"github.com/gin-gonic/gin"
)

// 已签发收据不会被删除，命中结果可以短期缓存
const verifyCacheTTL = 10 * time.Minute

// VerifyReceiptRequest 收据校验请求
type VerifyReceiptRequest struct {
	QRInput string `json:"qr_input"`
}

// VerifyReceipt 校验扫码内容（POST）
func (h *Handler) VerifyReceipt(c *gin.Context) {
	var req VerifyReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlershared.RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	h.verify(c, req.QRInput)
}

// VerifyReceiptQuery 校验扫码内容（GET ?q=）
func (h *Handler) VerifyReceiptQuery(c *gin.Context) {
	h.verify(c, c.Query("q"))
}

func (h *Handler) verify(c *gin.Context, input string) {
	value := strings.TrimSpace(input)
	ctx := c.Request.Context()

	cacheKey := cache.ReceiptVerifyKey(value)
	if value != "" {
		var cached service.VerifyResult
		hit, err := cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			handlershared.RequestLog(c).Warnw("public_receipt_verify_cache_read_failed", "error", err)
		} else if hit {
			response.Success(c, cached)
			return
		}
	}

	result, err := h.ReceiptService.Verify(ctx, value)
	if err != nil {
		handlershared.RespondError(c, response.CodeInternal, "error.receipt_verify_failed", err)
		return
	}
	if result.Valid {
		if err := cache.SetJSON(ctx, cacheKey, result, verifyCacheTTL); err != nil {
			handlershared.RequestLog(c).Warnw("public_receipt_verify_cache_write_failed", "error", err)
		}
	}
	handlershared.RequestLog(c).Debugw("public_receipt_verify",
		"valid", result.Valid,
		"reason", result.Reason,
	)
	response.Success(c, result)
}
