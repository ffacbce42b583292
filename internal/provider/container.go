package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eleven-freight/internal/authz"
	"github.com/eleven-freight/internal/cache"
	"github.com/eleven-freight/internal/config"
	"github.com/eleven-freight/internal/logger"
	"github.com/eleven-freight/internal/models"
	"github.com/eleven-freight/internal/qrcode"
	"github.com/eleven-freight/internal/queue"
	"github.com/eleven-freight/internal/receiptimage"
	"github.com/eleven-freight/internal/repository"
	"github.com/eleven-freight/internal/service"
	"github.com/eleven-freight/internal/storage"

	"gorm.io/gorm"
)

const storageInitTimeout = 15 * time.Second

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Store       storage.Store
	QRBackend   qrcode.Backend
	Composer    *receiptimage.Composer

	// Repositories
	ReceiptRepo            repository.ReceiptRepository
	ShipmentRepo           repository.ShipmentRepository
	PaymentRepo            repository.PaymentRepository
	SupplierSettlementRepo repository.SupplierSettlementRepository
	WarehouseInventoryRepo repository.WarehouseInventoryRepository
	AuditLogRepo           repository.AuditLogRepository

	// Services
	AuthzService           *authz.Service
	AuditLogService        *service.AuditLogService
	ReceiptService         *service.ReceiptService
	WarehouseIntakeService *service.WarehouseIntakeService
}

// NewContainer 初始化容器
// 二维码后端全部不可用或产物存储无法初始化时返回错误，服务不应启动。
func NewContainer(cfg *config.Config) (*Container, error) {
	return NewContainerWithDB(cfg, models.DB)
}

// NewContainerWithDB 使用指定数据库连接初始化容器
func NewContainerWithDB(cfg *config.Config, db *gorm.DB) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if db == nil {
		return nil, fmt.Errorf("database is not initialized")
	}

	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories(db)

	// 2. 初始化收据基础设施
	if err := c.initReceiptInfra(); err != nil {
		return nil, err
	}

	// 3. 初始化 Services
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.ReceiptRepo = repository.NewReceiptRepository(db)
	c.ShipmentRepo = repository.NewShipmentRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.SupplierSettlementRepo = repository.NewSupplierSettlementRepository(db)
	c.WarehouseInventoryRepo = repository.NewWarehouseInventoryRepository(db)
	c.AuditLogRepo = repository.NewAuditLogRepository(db)
}

func (c *Container) initReceiptInfra() error {
	qrCfg := c.Config.Receipt.QR
	level, err := qrcode.ParseRecoveryLevel(qrCfg.RecoveryLevel)
	if err != nil {
		return fmt.Errorf("receipt qr config invalid: %w", err)
	}
	backend, err := qrcode.Select(qrCfg.Backend, level)
	if err != nil {
		logger.Errorw("provider_qr_backend_unavailable", "mode", qrCfg.Backend, "error", err)
		return fmt.Errorf("receipt qr backend unavailable: %w", err)
	}
	c.QRBackend = backend

	store, err := NewStore(c.Config.Storage)
	if err != nil {
		logger.Errorw("provider_init_storage_failed", "driver", c.Config.Storage.Driver, "error", err)
		return err
	}
	c.Store = store

	if c.Config.Receipt.RenderCard {
		composer, err := receiptimage.NewComposer(c.Config.Receipt.ToLayoutConfig())
		if err != nil {
			// 卡片属于尽力而为，版式错误只关闭卡片渲染
			logger.Warnw("provider_init_receipt_composer_failed", "error", err)
		} else {
			c.Composer = composer
			logger.Infow("provider_receipt_composer_ready", "font", composer.FontSource())
		}
	}
	return nil
}

// NewStore 按配置创建产物存储
func NewStore(cfg config.StorageConfig) (storage.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "local":
		return storage.NewLocalStore(cfg.Local.Root, cfg.Local.PublicPrefix)
	case "gcs":
		ctx, cancel := context.WithTimeout(context.Background(), storageInitTimeout)
		defer cancel()
		return storage.NewGCSStore(ctx, storage.GCSOptions{
			Bucket:          cfg.GCS.Bucket,
			CredentialsFile: cfg.GCS.CredentialsFile,
			PublicBaseURL:   cfg.GCS.PublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

func (c *Container) initServices() error {
	authzService, err := authz.NewService()
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}
	c.AuthzService = authzService

	var composer service.CardComposer
	if c.Composer != nil {
		composer = c.Composer
	}

	c.AuditLogService = service.NewAuditLogService(c.AuditLogRepo)
	c.ReceiptService = service.NewReceiptService(
		c.ReceiptRepo,
		c.ShipmentRepo,
		c.PaymentRepo,
		c.SupplierSettlementRepo,
		c.QRBackend,
		composer,
		c.Store,
		c.AuditLogService,
		c.QueueClient,
		service.ReceiptServiceOptions{
			NumberRetry:        c.Config.Receipt.NumberRetry,
			StrictLinkedEntity: c.Config.Receipt.StrictLinkedEntity,
			RenderCard:         c.Config.Receipt.RenderCard,
			QRSize:             c.Config.Receipt.QR.Size,
		},
	)
	c.WarehouseIntakeService = service.NewWarehouseIntakeService(c.ShipmentRepo, c.WarehouseInventoryRepo, c.ReceiptService, c.AuditLogService)
	return nil
}

// Close 释放外部资源
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if closer, ok := c.Store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Warnw("provider_close_storage_failed", "error", err)
		}
	}
}
