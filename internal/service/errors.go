package service

import (
	"errors"
	"fmt"
)

// 通用错误
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// 收据相关错误，校验类错误均可用 errors.Is(err, ErrValidation) 判定
var (
	ErrInvalidReceiptType   = fmt.Errorf("%w: invalid receipt type", ErrValidation)
	ErrInvalidReceiptNumber = fmt.Errorf("%w: invalid receipt number", ErrValidation)
	ErrReceiptNumberTaken   = fmt.Errorf("%w: receipt number already exists", ErrValidation)
	ErrInvalidLinkedID      = fmt.Errorf("%w: linked id must be positive", ErrValidation)
	ErrLinkedEntityNotFound = fmt.Errorf("%w: linked entity not found", ErrValidation)
	ErrStorageWrite         = errors.New("artifact storage write failed")
	ErrReceiptPending       = errors.New("receipt qr artifact not ready")
	ErrCardNotRendered      = errors.New("receipt card not rendered")
)

// 入库相关错误
var (
	ErrShipmentCodeTaken = fmt.Errorf("%w: shipment code already exists", ErrValidation)
	ErrInvalidIntake     = fmt.Errorf("%w: invalid intake", ErrValidation)
)

// 创建收据失败的步骤
const (
	CreateStepInsert   = "insert"
	CreateStepEncodeQR = "encode_qr"
	CreateStepStoreQR  = "store_qr"
	CreateStepUpdateQR = "update_qr"
)

// CreateError 收据创建失败
// ReceiptID 非零时记录已被补偿删除。
type CreateError struct {
	ReceiptID     uint
	ReceiptNumber string
	Step          string
	Err           error
}

func (e *CreateError) Error() string {
	if e.ReceiptNumber == "" {
		return fmt.Sprintf("create receipt failed at %s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("create receipt %s failed at %s: %v", e.ReceiptNumber, e.Step, e.Err)
}

func (e *CreateError) Unwrap() error {
	return e.Err
}

// ErrCardDisabled 收据卡片渲染未启用
var ErrCardDisabled = errors.New("receipt card rendering disabled")
