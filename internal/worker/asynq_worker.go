package worker

import (
	"context"
	"errors"

	"github.com/eleven-freight/internal/logger"
	"github.com/eleven-freight/internal/provider"
	"github.com/eleven-freight/internal/queue"
	"github.com/eleven-freight/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskReceiptCardRender, c.handleReceiptCardRender)
}

// handleReceiptCardRender 重绘收据卡片
// 收据不存在、尚未签发完成或卡片渲染关闭时直接确认任务，其余错误交给 asynq 重试。
func (c *Consumer) handleReceiptCardRender(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_receipt_card_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseReceiptCardRenderPayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_receipt_card_unmarshal_failed", "error", err)
		return err
	}
	if c.ReceiptService == nil {
		logger.Warnw("worker_receipt_card_skip_service_nil", "receipt_id", payload.ReceiptID)
		return nil
	}
	detail, err := c.ReceiptService.RenderCard(ctx, payload.ReceiptID, service.AuditActor{})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			logger.Debugw("worker_receipt_card_skip_not_found", "receipt_id", payload.ReceiptID)
			return nil
		case errors.Is(err, service.ErrReceiptPending):
			logger.Debugw("worker_receipt_card_skip_pending", "receipt_id", payload.ReceiptID)
			return nil
		case errors.Is(err, service.ErrCardDisabled):
			logger.Debugw("worker_receipt_card_skip_disabled", "receipt_id", payload.ReceiptID)
			return nil
		default:
			logger.Warnw("worker_receipt_card_render_failed", "receipt_id", payload.ReceiptID, "error", err)
			return err
		}
	}
	logger.Infow("worker_receipt_card_rendered",
		"receipt_id", detail.ID,
		"receipt_number", detail.ReceiptNumber,
	)
	return nil
}
