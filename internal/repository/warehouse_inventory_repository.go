package repository

import (
	"context"

	"github.com/eleven-freight/internal/models"

	"gorm.io/gorm"
)

// WarehouseInventoryRepository 入库记录数据访问接口
type WarehouseInventoryRepository interface {
	Create(ctx context.Context, record *models.WarehouseInventory) error
	ListByShipment(ctx context.Context, shipmentID uint) ([]models.WarehouseInventory, error)
	WithTx(tx *gorm.DB) *GormWarehouseInventoryRepository
}

// GormWarehouseInventoryRepository GORM 实现
type GormWarehouseInventoryRepository struct {
	db *gorm.DB
}

// NewWarehouseInventoryRepository 创建入库记录仓库
func NewWarehouseInventoryRepository(db *gorm.DB) *GormWarehouseInventoryRepository {
	return &GormWarehouseInventoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWarehouseInventoryRepository) WithTx(tx *gorm.DB) *GormWarehouseInventoryRepository {
	if tx == nil {
		return r
	}
	return &GormWarehouseInventoryRepository{db: tx}
}

// Create 创建入库记录
func (r *GormWarehouseInventoryRepository) Create(ctx context.Context, record *models.WarehouseInventory) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// ListByShipment 获取货运的入库记录
func (r *GormWarehouseInventoryRepository) ListByShipment(ctx context.Context, shipmentID uint) ([]models.WarehouseInventory, error) {
	records := make([]models.WarehouseInventory, 0)
	if err := r.db.WithContext(ctx).Where("shipment_id = ?", shipmentID).Order("id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
