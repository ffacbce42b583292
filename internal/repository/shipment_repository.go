package repository

import (
	"context"
	"errors"

	"github.com/eleven-freight/internal/models"

	"gorm.io/gorm"
)

// ShipmentRepository 货运数据访问接口
type ShipmentRepository interface {
	Create(ctx context.Context, shipment *models.Shipment) error
	GetByID(ctx context.Context, id uint) (*models.Shipment, error)
	GetByCode(ctx context.Context, code string) (*models.Shipment, error)
	ListAdmin(ctx context.Context, filter ShipmentListFilter) ([]models.Shipment, int64, error)
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormShipmentRepository
}

// GormShipmentRepository GORM 实现
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewShipmentRepository 创建货运仓库
func NewShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShipmentRepository) WithTx(tx *gorm.DB) *GormShipmentRepository {
	if tx == nil {
		return r
	}
	return &GormShipmentRepository{db: tx}
}

// Transaction 在事务内执行
func (r *GormShipmentRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(fn)
}

// Create 创建货运记录
func (r *GormShipmentRepository) Create(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Create(shipment).Error
}

// GetByID 根据 ID 获取货运记录
func (r *GormShipmentRepository) GetByID(ctx context.Context, id uint) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.WithContext(ctx).First(&shipment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// GetByCode 根据货运编号获取
func (r *GormShipmentRepository) GetByCode(ctx context.Context, code string) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.WithContext(ctx).Where("shipment_code = ?", code).First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// ListAdmin 后台货运列表
func (r *GormShipmentRepository) ListAdmin(ctx context.Context, filter ShipmentListFilter) ([]models.Shipment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Shipment{})
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ShelfCode != "" {
		query = query.Where("shelf_code = ?", filter.ShelfCode)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	shipments := make([]models.Shipment, 0)
	if err := query.Order("id DESC").Find(&shipments).Error; err != nil {
		return nil, 0, err
	}
	return shipments, total, nil
}
