package admin

import (
	"errors"
	"time"

	handlershared "github.com/eleven-freight/internal/http/handlers/shared"
	"github.com/eleven-freight/internal/http/response"
	"github.com/eleven-freight/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// respondReceiptError 收据签发错误映射
func respondReceiptError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidReceiptType):
		respondError(c, response.CodeBadRequest, "error.receipt_invalid_type", err)
	case errors.Is(err, service.ErrInvalidReceiptNumber):
		respondError(c, response.CodeBadRequest, "error.receipt_invalid_number", err)
	case errors.Is(err, service.ErrReceiptNumberTaken):
		respondError(c, response.CodeConflict, "error.receipt_number_taken", err)
	case errors.Is(err, service.ErrInvalidLinkedID):
		respondError(c, response.CodeBadRequest, "error.receipt_invalid_linked_id", err)
	case errors.Is(err, service.ErrLinkedEntityNotFound):
		respondError(c, response.CodeNotFound, "error.receipt_linked_not_found", err)
	case errors.Is(err, service.ErrValidation):
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, "error.receipt_not_found", nil)
	default:
		var createErr *service.CreateError
		if errors.As(err, &createErr) {
			requestLog(c).Errorw("admin_receipt_create_failed",
				"receipt_id", createErr.ReceiptID,
				"receipt_number", createErr.ReceiptNumber,
				"step", createErr.Step,
				"error", createErr.Err,
			)
			respondError(c, response.CodeInternal, "error.receipt_create_failed", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.receipt_create_failed", err)
	}
}
