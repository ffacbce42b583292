package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/eleven-freight/internal/models"

	"gorm.io/gorm"
)

// exportLimit 导出单次最大条数
const exportLimit = 10000

// ErrQRCodeAlreadySet 二维码已回填，不允许再次修改
var ErrQRCodeAlreadySet = errors.New("receipt qr code already set")

// ReceiptRepository 收据数据访问接口
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *models.Receipt) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Receipt, error)
	GetByNumber(ctx context.Context, receiptNumber string) (*models.Receipt, error)
	GetByQRCode(ctx context.Context, key string) (*models.Receipt, error)
	GetByQRCodeBasename(ctx context.Context, basename string) (*models.Receipt, error)
	UpdateQRCode(ctx context.Context, id uint, key string) error
	ListAdmin(ctx context.Context, filter ReceiptListFilter) ([]models.Receipt, int64, error)
	ListForExport(ctx context.Context, filter ReceiptListFilter) ([]models.Receipt, error)
	WithTx(tx *gorm.DB) *GormReceiptRepository
}

// GormReceiptRepository GORM 实现
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository 创建收据仓库
func NewReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReceiptRepository) WithTx(tx *gorm.DB) *GormReceiptRepository {
	if tx == nil {
		return r
	}
	return &GormReceiptRepository{db: tx}
}

// Create 创建收据，编号冲突时返回 gorm.ErrDuplicatedKey
func (r *GormReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

// Delete 物理删除收据（仅用于创建失败后的补偿）
func (r *GormReceiptRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Receipt{}, id).Error
}

// GetByID 根据 ID 获取收据
func (r *GormReceiptRepository) GetByID(ctx context.Context, id uint) (*models.Receipt, error) {
	if id == 0 {
		return nil, nil
	}
	var receipt models.Receipt
	if err := r.db.WithContext(ctx).First(&receipt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &receipt, nil
}

// GetByNumber 根据收据编号精确查找
func (r *GormReceiptRepository) GetByNumber(ctx context.Context, receiptNumber string) (*models.Receipt, error) {
	if receiptNumber == "" {
		return nil, nil
	}
	return r.first(ctx, "receipt_number = ?", receiptNumber)
}

// GetByQRCode 根据二维码存储键精确查找
func (r *GormReceiptRepository) GetByQRCode(ctx context.Context, key string) (*models.Receipt, error) {
	if key == "" {
		return nil, nil
	}
	return r.first(ctx, "qr_code = ?", key)
}

// GetByQRCodeBasename 根据文件名查找：存储键等于文件名或以 "/"+文件名 结尾
// LIKE 在部分方言下不区分大小写，候选结果再按字面量后缀过滤。
func (r *GormReceiptRepository) GetByQRCodeBasename(ctx context.Context, basename string) (*models.Receipt, error) {
	if basename == "" || strings.Contains(basename, "/") {
		return nil, nil
	}
	suffix := "/" + basename
	var candidates []models.Receipt
	err := r.db.WithContext(ctx).
		Where("qr_code = ? OR qr_code LIKE ? ESCAPE '"+likeEscapeChar+"'", basename, likeSuffix(suffix)).
		Order("id asc").
		Limit(50).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		key := candidates[i].QRCodeKey()
		if key == basename || strings.HasSuffix(key, suffix) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// UpdateQRCode 回填二维码存储键，只允许在为空时写入一次
func (r *GormReceiptRepository) UpdateQRCode(ctx context.Context, id uint, key string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Receipt{}).
		Where("id = ? AND qr_code IS NULL", id).
		Update("qr_code", key)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Receipt{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrQRCodeAlreadySet
	}
	return nil
}

// ListAdmin 后台收据列表
func (r *GormReceiptRepository) ListAdmin(ctx context.Context, filter ReceiptListFilter) ([]models.Receipt, int64, error) {
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	receipts := make([]models.Receipt, 0)
	if err := query.Order("id DESC").Find(&receipts).Error; err != nil {
		return nil, 0, err
	}
	return receipts, total, nil
}

// ListForExport 导出收据列表（不分页，按签发顺序）
func (r *GormReceiptRepository) ListForExport(ctx context.Context, filter ReceiptListFilter) ([]models.Receipt, error) {
	receipts := make([]models.Receipt, 0)
	if err := r.filtered(ctx, filter).Order("id ASC").Limit(exportLimit).Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

func (r *GormReceiptRepository) filtered(ctx context.Context, filter ReceiptListFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Receipt{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.LinkedID != 0 {
		query = query.Where("linked_id = ?", filter.LinkedID)
	}
	if filter.OnlyIssued {
		query = query.Where("qr_code IS NOT NULL AND qr_code <> ''")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"receipt_number", "qr_code"})
		query = query.Where("("+condition+")", repeatLikeArgs(likeContains(search), argCount)...)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	return query
}

func (r *GormReceiptRepository) first(ctx context.Context, condition string, args ...interface{}) (*models.Receipt, error) {
	var receipt models.Receipt
	result := r.db.WithContext(ctx).Where(condition, args...).Order("id asc").Limit(1).Find(&receipt)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &receipt, nil
}
