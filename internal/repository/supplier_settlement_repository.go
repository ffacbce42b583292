package repository

import (
	"context"
	"errors"

	"github.com/eleven-freight/internal/models"

	"gorm.io/gorm"
)

// SupplierSettlementRepository 供应商结算数据访问接口
type SupplierSettlementRepository interface {
	Create(ctx context.Context, settlement *models.SupplierSettlement) error
	GetByID(ctx context.Context, id uint) (*models.SupplierSettlement, error)
	WithTx(tx *gorm.DB) *GormSupplierSettlementRepository
}

// GormSupplierSettlementRepository GORM 实现
type GormSupplierSettlementRepository struct {
	db *gorm.DB
}

// NewSupplierSettlementRepository 创建供应商结算仓库
func NewSupplierSettlementRepository(db *gorm.DB) *GormSupplierSettlementRepository {
	return &GormSupplierSettlementRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSupplierSettlementRepository) WithTx(tx *gorm.DB) *GormSupplierSettlementRepository {
	if tx == nil {
		return r
	}
	return &GormSupplierSettlementRepository{db: tx}
}

// Create 创建结算记录
func (r *GormSupplierSettlementRepository) Create(ctx context.Context, settlement *models.SupplierSettlement) error {
	return r.db.WithContext(ctx).Create(settlement).Error
}

// GetByID 根据 ID 获取结算记录
func (r *GormSupplierSettlementRepository) GetByID(ctx context.Context, id uint) (*models.SupplierSettlement, error) {
	var settlement models.SupplierSettlement
	if err := r.db.WithContext(ctx).First(&settlement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settlement, nil
}
