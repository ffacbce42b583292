package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/eleven-freight/internal/constants"
	"github.com/eleven-freight/internal/logger"
	"github.com/eleven-freight/internal/models"
	"github.com/eleven-freight/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 未分配集装箱时的货架前缀
const unassignedContainerCode = "C-NA"

// WarehouseIntakeInput 入库输入
type WarehouseIntakeInput struct {
	CustomerID   uint
	SupplierName string
	Weight       models.Money
	ShelfCode    string
	PhotoPath    string
	Actor        AuditActor
}

// WarehouseIntakeResult 入库结果
// Receipt 为空表示收据签发失败，入库本身已成功。
type WarehouseIntakeResult struct {
	Shipment  *models.Shipment           `json:"shipment"`
	Inventory *models.WarehouseInventory `json:"inventory"`
	Receipt   *models.Receipt            `json:"receipt,omitempty"`
}

// WarehouseIntakeService 仓库入库流程
type WarehouseIntakeService struct {
	shipmentRepo  repository.ShipmentRepository
	inventoryRepo repository.WarehouseInventoryRepository
	receipts      *ReceiptService
	audit         *AuditLogService
	clock         func() time.Time
}

// NewWarehouseIntakeService 创建入库服务
func NewWarehouseIntakeService(
	shipmentRepo repository.ShipmentRepository,
	inventoryRepo repository.WarehouseInventoryRepository,
	receipts *ReceiptService,
	audit *AuditLogService,
) *WarehouseIntakeService {
	return &WarehouseIntakeService{
		shipmentRepo:  shipmentRepo,
		inventoryRepo: inventoryRepo,
		receipts:      receipts,
		audit:         audit,
		clock:         time.Now,
	}
}

// Intake 登记入库：同一事务内创建货运与入库记录，随后签发入库收据并写审计
func (s *WarehouseIntakeService) Intake(ctx context.Context, input WarehouseIntakeInput) (*WarehouseIntakeResult, error) {
	supplier := strings.TrimSpace(input.SupplierName)
	if input.CustomerID == 0 || supplier == "" || !input.Weight.Decimal.IsPositive() {
		return nil, ErrInvalidIntake
	}
	shelfCode := strings.TrimSpace(input.ShelfCode)
	if shelfCode == "" {
		shelfCode = allocateShelfCode(unassignedContainerCode)
	}
	now := s.clock()

	shipment := &models.Shipment{
		ShipmentCode: newShipmentCode(),
		CustomerID:   input.CustomerID,
		SupplierName: supplier,
		Weight:       input.Weight,
		ShelfCode:    shelfCode,
		Status:       constants.ShipmentStatusInWarehouse,
	}
	inventory := &models.WarehouseInventory{
		Shelf:      shelfCode,
		PhotoPath:  strings.TrimSpace(input.PhotoPath),
		IntakeBy:   input.Actor.UserID,
		IntakeTime: now,
	}
	err := s.shipmentRepo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.shipmentRepo.WithTx(tx).Create(ctx, shipment); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrShipmentCodeTaken
			}
			return err
		}
		inventory.ShipmentID = shipment.ID
		return s.inventoryRepo.WithTx(tx).Create(ctx, inventory)
	})
	if err != nil {
		return nil, err
	}

	result := &WarehouseIntakeResult{Shipment: shipment, Inventory: inventory}
	if s.receipts != nil {
		receipt, err := s.receipts.WarehouseReceipt(ctx, shipment, input.Actor)
		if err != nil {
			logger.Warnw("warehouse_intake_receipt_failed",
				"shipment_id", shipment.ID,
				"error", err,
			)
		} else {
			result.Receipt = receipt
		}
	}

	if err := s.audit.Record(ctx, AuditRecordInput{
		Actor:   input.Actor,
		Action:  constants.AuditActionWarehouseIntake,
		Module:  constants.AuditModuleWarehouse,
		NewData: shipmentSnapshot(shipment),
	}); err != nil {
		logger.Warnw("warehouse_intake_audit_failed", "shipment_id", shipment.ID, "error", err)
	}
	return result, nil
}

func newShipmentCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "SHP-" + strings.ToUpper(raw[:10])
}

// allocateShelfCode 容器编号-货架-槽位
func allocateShelfCode(containerCode string) string {
	return fmt.Sprintf("%s-S%02d-P%03d", containerCode, rand.IntN(20)+1, rand.IntN(100)+1)
}

func shipmentSnapshot(shipment *models.Shipment) models.JSON {
	return models.JSON{
		"id":            shipment.ID,
		"shipment_code": shipment.ShipmentCode,
		"customer_id":   shipment.CustomerID,
		"supplier_name": shipment.SupplierName,
		"weight":        shipment.Weight.String(),
		"shelf_code":    shipment.ShelfCode,
		"status":        shipment.Status,
	}
}

// ListShipments 后台货运列表
func (s *WarehouseIntakeService) ListShipments(ctx context.Context, filter repository.ShipmentListFilter) ([]models.Shipment, int64, error) {
	filter.Status = strings.ToUpper(strings.TrimSpace(filter.Status))
	filter.ShelfCode = strings.TrimSpace(filter.ShelfCode)
	return s.shipmentRepo.ListAdmin(ctx, filter)
}
