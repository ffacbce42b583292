package queue

import (
	"encoding/json"
	"errors"

	"github.com/eleven-freight/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskReceiptCardRender 收据卡片重绘任务
	TaskReceiptCardRender = constants.TaskReceiptCardRender
)

// ReceiptCardRenderPayload 收据卡片重绘任务载荷
type ReceiptCardRenderPayload struct {
	ReceiptID uint `json:"receipt_id"`
}

// NewReceiptCardRenderTask 创建收据卡片重绘任务
func NewReceiptCardRenderTask(payload ReceiptCardRenderPayload) (*asynq.Task, error) {
	if payload.ReceiptID == 0 {
		return nil, errors.New("receipt id is required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReceiptCardRender, body), nil
}

// ParseReceiptCardRenderPayload 解析任务载荷
func ParseReceiptCardRenderPayload(body []byte) (ReceiptCardRenderPayload, error) {
	var payload ReceiptCardRenderPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, err
	}
	if payload.ReceiptID == 0 {
		return payload, errors.New("receipt id is required")
	}
	return payload, nil
}
