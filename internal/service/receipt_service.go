package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/eleven-freight/internal/constants"
	"github.com/eleven-freight/internal/logger"
	"github.com/eleven-freight/internal/models"
	"github.com/eleven-freight/internal/qrcode"
	"github.com/eleven-freight/internal/queue"
	"github.com/eleven-freight/internal/repository"
	"github.com/eleven-freight/internal/storage"

	"gorm.io/gorm"
)

const (
	defaultNumberRetry = 3
	cardRetryDelay     = 30 * time.Second
	cardContentType    = "image/png"
	cardExtension      = ".png"
)

// CardComposer 收据卡片合成
type CardComposer interface {
	Render(receipt *models.Receipt, qr image.Image) (image.Image, error)
	Encode(img image.Image) ([]byte, error)
}

// ReceiptServiceOptions 收据服务选项
type ReceiptServiceOptions struct {
	NumberRetry        int
	StrictLinkedEntity bool
	RenderCard         bool
	QRSize             int
	Clock              func() time.Time
}

// ReceiptService 收据签发与校验服务
type ReceiptService struct {
	repo           repository.ReceiptRepository
	shipmentRepo   repository.ShipmentRepository
	paymentRepo    repository.PaymentRepository
	settlementRepo repository.SupplierSettlementRepository
	qr             qrcode.Backend
	composer       CardComposer
	store          storage.Store
	audit          *AuditLogService
	queue          *queue.Client
	opts           ReceiptServiceOptions
}

// NewReceiptService 创建收据服务
func NewReceiptService(
	repo repository.ReceiptRepository,
	shipmentRepo repository.ShipmentRepository,
	paymentRepo repository.PaymentRepository,
	settlementRepo repository.SupplierSettlementRepository,
	qr qrcode.Backend,
	composer CardComposer,
	store storage.Store,
	audit *AuditLogService,
	queueClient *queue.Client,
	opts ReceiptServiceOptions,
) *ReceiptService {
	if opts.NumberRetry < 0 {
		opts.NumberRetry = defaultNumberRetry
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if qr == nil {
		qr = qrcode.UnavailableBackend{}
	}
	return &ReceiptService{
		repo:           repo,
		shipmentRepo:   shipmentRepo,
		paymentRepo:    paymentRepo,
		settlementRepo: settlementRepo,
		qr:             qr,
		composer:       composer,
		store:          store,
		audit:          audit,
		queue:          queueClient,
		opts:           opts,
	}
}

// CreateReceiptInput 创建收据输入
type CreateReceiptInput struct {
	Type          string
	LinkedID      *uint
	ReceiptNumber string
	Actor         AuditActor
}

// ReceiptDetail 收据详情（含产物地址）
type ReceiptDetail struct {
	models.Receipt
	TypeLabel       string `json:"type_label"`
	QRCodeURL       string `json:"qr_code_url"`
	ReceiptImageURL string `json:"receipt_image_url,omitempty"`
}

// verifyPayload 二维码载荷，只携带引用
type verifyPayload struct {
	ID            uint   `json:"id"`
	ReceiptNumber string `json:"receipt_number"`
}

// Create 签发收据
// 插入记录、编码并存储二维码、回填 qr_code 任一步失败都会删除记录并返回 *CreateError。
// 卡片渲染失败只记录日志。
func (s *ReceiptService) Create(ctx context.Context, input CreateReceiptInput) (*models.Receipt, error) {
	receiptType := strings.TrimSpace(input.Type)
	customNumber := strings.TrimSpace(input.ReceiptNumber)
	if err := s.validateCreate(ctx, receiptType, input.LinkedID, customNumber); err != nil {
		return nil, err
	}

	receipt, err := s.insert(ctx, receiptType, input.LinkedID, customNumber)
	if err != nil {
		if errors.Is(err, ErrReceiptNumberTaken) {
			return nil, err
		}
		return nil, &CreateError{ReceiptNumber: customNumber, Step: CreateStepInsert, Err: err}
	}

	artifact, storedKey, step, err := s.issueQR(ctx, receipt)
	if err != nil {
		return nil, s.rollback(ctx, receipt, storedKey, step, err, input.Actor)
	}

	s.recordAudit(ctx, input.Actor, constants.AuditActionReceiptCreated, nil, receiptSnapshot(receipt))
	logger.Infow("receipt_created",
		"receipt_id", receipt.ID,
		"receipt_number", receipt.ReceiptNumber,
		"type", receipt.Type,
		"qr_backend", s.qr.Name(),
	)

	if s.opts.RenderCard && s.composer != nil {
		if _, err := s.storeCard(ctx, receipt, artifact.Image); err != nil {
			logger.Warnw("receipt_card_render_failed",
				"receipt_id", receipt.ID,
				"receipt_number", receipt.ReceiptNumber,
				"error", err,
			)
			s.enqueueCardRetry(receipt.ID)
		}
	}
	return receipt, nil
}

// WarehouseReceipt 入库收据
func (s *ReceiptService) WarehouseReceipt(ctx context.Context, shipment *models.Shipment, actor AuditActor) (*models.Receipt, error) {
	return s.createForShipment(ctx, constants.ReceiptTypeWarehouse, shipment, actor)
}

// ShippingReceipt 发运收据
func (s *ReceiptService) ShippingReceipt(ctx context.Context, shipment *models.Shipment, actor AuditActor) (*models.Receipt, error) {
	return s.createForShipment(ctx, constants.ReceiptTypeShipping, shipment, actor)
}

// ArrivalReceipt 到港收据
func (s *ReceiptService) ArrivalReceipt(ctx context.Context, shipment *models.Shipment, actor AuditActor) (*models.Receipt, error) {
	return s.createForShipment(ctx, constants.ReceiptTypeArrival, shipment, actor)
}

// DeliveryReceipt 交付收据
func (s *ReceiptService) DeliveryReceipt(ctx context.Context, shipment *models.Shipment, actor AuditActor) (*models.Receipt, error) {
	return s.createForShipment(ctx, constants.ReceiptTypeDelivery, shipment, actor)
}

// PaymentReceipt 付款收据
func (s *ReceiptService) PaymentReceipt(ctx context.Context, payment *models.Payment, actor AuditActor) (*models.Receipt, error) {
	if payment == nil || payment.ID == 0 {
		return nil, ErrLinkedEntityNotFound
	}
	id := payment.ID
	return s.Create(ctx, CreateReceiptInput{Type: constants.ReceiptTypePayment, LinkedID: &id, Actor: actor})
}

// SupplierSettlementReceipt 供应商结算收据
func (s *ReceiptService) SupplierSettlementReceipt(ctx context.Context, settlement *models.SupplierSettlement, actor AuditActor) (*models.Receipt, error) {
	if settlement == nil || settlement.ID == 0 {
		return nil, ErrLinkedEntityNotFound
	}
	id := settlement.ID
	return s.Create(ctx, CreateReceiptInput{Type: constants.ReceiptTypeSupplierSettlement, LinkedID: &id, Actor: actor})
}

// ShipmentReceipt 按类型签发货运相关收据
func (s *ReceiptService) ShipmentReceipt(ctx context.Context, receiptType string, shipment *models.Shipment, actor AuditActor) (*models.Receipt, error) {
	switch receiptType {
	case constants.ReceiptTypeWarehouse, constants.ReceiptTypeShipping,
		constants.ReceiptTypeArrival, constants.ReceiptTypeDelivery:
		return s.createForShipment(ctx, receiptType, shipment, actor)
	default:
		return nil, ErrInvalidReceiptType
	}
}

func (s *ReceiptService) createForShipment(ctx context.Context, receiptType string, shipment *models.Shipment, actor AuditActor) (*models.Receipt, error) {
	if shipment == nil || shipment.ID == 0 {
		return nil, ErrLinkedEntityNotFound
	}
	id := shipment.ID
	return s.Create(ctx, CreateReceiptInput{Type: receiptType, LinkedID: &id, Actor: actor})
}

func (s *ReceiptService) validateCreate(ctx context.Context, receiptType string, linkedID *uint, customNumber string) error {
	if !constants.IsValidReceiptType(receiptType) {
		return ErrInvalidReceiptType
	}
	if customNumber != "" {
		if !ValidReceiptNumber(customNumber) {
			return ErrInvalidReceiptNumber
		}
		existing, err := s.repo.GetByNumber(ctx, customNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrReceiptNumberTaken
		}
	}
	if linkedID != nil {
		if *linkedID == 0 {
			return ErrInvalidLinkedID
		}
		if s.opts.StrictLinkedEntity {
			return s.checkLinkedEntity(ctx, receiptType, *linkedID)
		}
	}
	return nil
}

// checkLinkedEntity 严格模式下校验关联业务存在
func (s *ReceiptService) checkLinkedEntity(ctx context.Context, receiptType string, linkedID uint) error {
	var (
		found bool
		err   error
	)
	switch receiptType {
	case constants.ReceiptTypePayment:
		if s.paymentRepo == nil {
			return nil
		}
		var payment *models.Payment
		payment, err = s.paymentRepo.GetByID(ctx, linkedID)
		found = payment != nil
	case constants.ReceiptTypeSupplierSettlement:
		if s.settlementRepo == nil {
			return nil
		}
		var settlement *models.SupplierSettlement
		settlement, err = s.settlementRepo.GetByID(ctx, linkedID)
		found = settlement != nil
	default:
		if s.shipmentRepo == nil {
			return nil
		}
		var shipment *models.Shipment
		shipment, err = s.shipmentRepo.GetByID(ctx, linkedID)
		found = shipment != nil
	}
	if err != nil {
		return err
	}
	if !found {
		return ErrLinkedEntityNotFound
	}
	return nil
}

// insert 写入收据记录；自动编号冲突时按毫秒偏移重新生成
func (s *ReceiptService) insert(ctx context.Context, receiptType string, linkedID *uint, customNumber string) (*models.Receipt, error) {
	now := s.opts.Clock()
	attempts := s.opts.NumberRetry + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		number := customNumber
		if number == "" {
			number = GenerateReceiptNumber(receiptType, now.Add(time.Duration(attempt)*time.Millisecond))
		}
		receipt := &models.Receipt{
			ReceiptNumber: number,
			Type:          receiptType,
			LinkedID:      linkedID,
			CreatedAt:     now,
		}
		err := s.repo.Create(ctx, receipt)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		if customNumber != "" {
			return nil, ErrReceiptNumberTaken
		}
		logger.Warnw("receipt_number_collision", "receipt_number", number, "attempt", attempt+1)
		lastErr = err
	}
	return nil, fmt.Errorf("receipt number collision after %d attempts: %w", attempts, lastErr)
}

// issueQR 编码并存储二维码，回填存储键
// 返回已写入的存储键，供失败补偿时清理。
func (s *ReceiptService) issueQR(ctx context.Context, receipt *models.Receipt) (*qrcode.Artifact, string, string, error) {
	payload, err := buildPayload(receipt)
	if err != nil {
		return nil, "", CreateStepEncodeQR, err
	}
	artifact, err := s.qr.Encode(payload, s.opts.QRSize)
	if err != nil {
		return nil, "", CreateStepEncodeQR, err
	}
	if s.store == nil {
		return nil, "", CreateStepStoreQR, fmt.Errorf("%w: store not configured", ErrStorageWrite)
	}
	key := storage.Key(constants.ReceiptQRNamespace, receipt.ReceiptNumber+"."+artifact.Extension)
	if err := s.store.Put(ctx, key, artifact.Data, artifact.ContentType); err != nil {
		return nil, "", CreateStepStoreQR, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	if err := s.repo.UpdateQRCode(ctx, receipt.ID, key); err != nil {
		return nil, key, CreateStepUpdateQR, err
	}
	receipt.QRCode = &key
	return artifact, key, "", nil
}

// rollback 补偿删除已写入的记录与二维码产物
// 使用脱离取消的上下文，请求中断时仍完成清理。
func (s *ReceiptService) rollback(ctx context.Context, receipt *models.Receipt, storedKey, step string, cause error, actor AuditActor) error {
	cleanupCtx := context.WithoutCancel(ctx)
	if storedKey != "" && s.store != nil {
		if err := s.store.Delete(cleanupCtx, storedKey); err != nil {
			logger.Errorw("receipt_rollback_artifact_delete_failed",
				"receipt_id", receipt.ID,
				"key", storedKey,
				"error", err,
			)
		}
	}
	if err := s.repo.Delete(cleanupCtx, receipt.ID); err != nil {
		logger.Errorw("receipt_rollback_delete_failed",
			"receipt_id", receipt.ID,
			"receipt_number", receipt.ReceiptNumber,
			"error", err,
		)
	}
	logger.Errorw("receipt_create_rolled_back",
		"receipt_id", receipt.ID,
		"receipt_number", receipt.ReceiptNumber,
		"step", step,
		"error", cause,
	)
	s.recordAudit(cleanupCtx, actor, constants.AuditActionReceiptRolledBack, models.JSON{
		"id":             receipt.ID,
		"receipt_number": receipt.ReceiptNumber,
		"type":           receipt.Type,
		"step":           step,
		"error":          cause.Error(),
	}, nil)
	return &CreateError{
		ReceiptID:     receipt.ID,
		ReceiptNumber: receipt.ReceiptNumber,
		Step:          step,
		Err:           cause,
	}
}

// RenderCard 重新渲染并存储收据卡片
func (s *ReceiptService) RenderCard(ctx context.Context, id uint, actor AuditActor) (*ReceiptDetail, error) {
	receipt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, ErrNotFound
	}
	if !receipt.HasQRCode() {
		return nil, ErrReceiptPending
	}
	if s.composer == nil {
		return nil, ErrCardDisabled
	}
	payload, err := buildPayload(receipt)
	if err != nil {
		return nil, err
	}
	artifact, err := s.qr.Encode(payload, s.opts.QRSize)
	if err != nil {
		return nil, err
	}
	key, err := s.storeCard(ctx, receipt, artifact.Image)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, constants.AuditActionReceiptCardRender, nil, models.JSON{
		"id":             receipt.ID,
		"receipt_number": receipt.ReceiptNumber,
		"image":          key,
	})
	return s.detail(ctx, receipt)
}

func (s *ReceiptService) storeCard(ctx context.Context, receipt *models.Receipt, qr image.Image) (string, error) {
	img, err := s.composer.Render(receipt, qr)
	if err != nil {
		return "", err
	}
	data, err := s.composer.Encode(img)
	if err != nil {
		return "", err
	}
	if s.store == nil {
		return "", fmt.Errorf("%w: store not configured", ErrStorageWrite)
	}
	key := cardKey(receipt)
	if err := s.store.Put(ctx, key, data, cardContentType); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return key, nil
}

func (s *ReceiptService) enqueueCardRetry(receiptID uint) {
	if s.queue == nil || !s.queue.Enabled() {
		return
	}
	payload := queue.ReceiptCardRenderPayload{ReceiptID: receiptID}
	if err := s.queue.EnqueueReceiptCardRender(payload, cardRetryDelay); err != nil {
		logger.Warnw("receipt_card_retry_enqueue_failed", "receipt_id", receiptID, "error", err)
	}
}

// GetByID 获取收据详情，未签发完成的收据视为不存在
func (s *ReceiptService) GetByID(ctx context.Context, id uint) (*ReceiptDetail, error) {
	receipt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil || !receipt.HasQRCode() {
		return nil, ErrNotFound
	}
	return s.detail(ctx, receipt)
}

// List 后台收据列表，只返回已签发完成的收据
func (s *ReceiptService) List(ctx context.Context, filter repository.ReceiptListFilter) ([]ReceiptDetail, int64, error) {
	filter.OnlyIssued = true
	receipts, total, err := s.repo.ListAdmin(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]ReceiptDetail, 0, len(receipts))
	for i := range receipts {
		items = append(items, ReceiptDetail{
			Receipt:   receipts[i],
			TypeLabel: constants.ReceiptTypeLabel(receipts[i].Type),
			QRCodeURL: s.artifactURL(receipts[i].QRCodeKey()),
		})
	}
	return items, total, nil
}

// ReadQRArtifact 读取二维码产物
func (s *ReceiptService) ReadQRArtifact(ctx context.Context, id uint) ([]byte, string, error) {
	receipt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if receipt == nil || !receipt.HasQRCode() {
		return nil, "", ErrNotFound
	}
	data, err := s.readArtifact(ctx, receipt.QRCodeKey())
	if err != nil {
		return nil, "", err
	}
	return data, contentTypeByKey(receipt.QRCodeKey()), nil
}

// ReadCard 读取收据卡片
func (s *ReceiptService) ReadCard(ctx context.Context, id uint) ([]byte, string, error) {
	receipt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if receipt == nil || !receipt.HasQRCode() {
		return nil, "", ErrNotFound
	}
	data, err := s.readArtifact(ctx, cardKey(receipt))
	if errors.Is(err, ErrNotFound) {
		return nil, "", ErrCardNotRendered
	}
	if err != nil {
		return nil, "", err
	}
	return data, cardContentType, nil
}

func (s *ReceiptService) readArtifact(ctx context.Context, key string) ([]byte, error) {
	if s.store == nil {
		return nil, ErrNotFound
	}
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *ReceiptService) detail(ctx context.Context, receipt *models.Receipt) (*ReceiptDetail, error) {
	detail := &ReceiptDetail{
		Receipt:   *receipt,
		TypeLabel: constants.ReceiptTypeLabel(receipt.Type),
		QRCodeURL: s.artifactURL(receipt.QRCodeKey()),
	}
	if s.store != nil {
		key := cardKey(receipt)
		exists, err := s.store.Exists(ctx, key)
		if err != nil {
			return nil, err
		}
		if exists {
			detail.ReceiptImageURL = s.store.URL(key)
		}
	}
	return detail, nil
}

func (s *ReceiptService) artifactURL(key string) string {
	if key == "" || s.store == nil {
		return ""
	}
	return s.store.URL(key)
}

func (s *ReceiptService) recordAudit(ctx context.Context, actor AuditActor, action string, oldData, newData models.JSON) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, AuditRecordInput{
		Actor:   actor,
		Action:  action,
		Module:  constants.AuditModuleReceipt,
		OldData: oldData,
		NewData: newData,
	})
	if err != nil {
		logger.Warnw("receipt_audit_record_failed", "action", action, "error", err)
	}
}

// receiptSnapshot 审计快照，不含二维码存储键
func receiptSnapshot(receipt *models.Receipt) models.JSON {
	snapshot := models.JSON{
		"id":             receipt.ID,
		"receipt_number": receipt.ReceiptNumber,
		"type":           receipt.Type,
		"created_at":     receipt.CreatedAt,
	}
	if receipt.LinkedID != nil {
		snapshot["linked_id"] = *receipt.LinkedID
	}
	return snapshot
}

func buildPayload(receipt *models.Receipt) ([]byte, error) {
	return json.Marshal(verifyPayload{ID: receipt.ID, ReceiptNumber: receipt.ReceiptNumber})
}

func cardKey(receipt *models.Receipt) string {
	return storage.Key(constants.ReceiptImageNamespace, receipt.ReceiptNumber+cardExtension)
}

func contentTypeByKey(key string) string {
	switch {
	case strings.HasSuffix(key, ".svg"):
		return "image/svg+xml"
	case strings.HasSuffix(key, ".png"):
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
