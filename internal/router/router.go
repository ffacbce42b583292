package router

import (
	"fmt"
	"strings"

	"github.com/eleven-freight/internal/cache"
	"github.com/eleven-freight/internal/config"
	adminhandlers "github.com/eleven-freight/internal/http/handlers/admin"
	publichandlers "github.com/eleven-freight/internal/http/handlers/public"
	"github.com/eleven-freight/internal/logger"
	"github.com/eleven-freight/internal/provider"
	"github.com/eleven-freight/internal/storage"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按公开/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "11f"
	}
	verifyRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:receipt_verify", redisPrefix),
		WindowSeconds: cfg.Security.VerifyRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.VerifyRateLimit.MaxRequests,
		MessageKey:    "error.verify_rate_limited",
	}
	verifyLimit := RateLimitMiddleware(cache.Client(), verifyRule, KeyByIP)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 本地存储的收据产物
	if local, ok := c.Store.(*storage.LocalStore); ok && local.PublicPrefix() != "" {
		r.Static(local.PublicPrefix(), local.Root())
	}

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.POST("/receipts/verify", verifyLimit, publicHandler.VerifyReceipt)
			public.GET("/receipts/verify", verifyLimit, publicHandler.VerifyReceiptQuery)
		}

		// 后台接口（按角色鉴权）
		admin := apiV1.Group("/admin")
		admin.Use(StaffRoleMiddleware(c.AuthzService, cfg.Authz))
		{
			admin.GET("/receipts", adminHandler.ListReceipts)
			admin.POST("/receipts", adminHandler.CreateReceipt)
			admin.GET("/receipts/export", adminHandler.ExportReceipts)
			admin.GET("/receipts/:id", adminHandler.GetReceipt)
			admin.GET("/receipts/:id/qr", adminHandler.GetReceiptQR)
			admin.GET("/receipts/:id/card", adminHandler.GetReceiptCard)
			admin.POST("/receipts/:id/card", adminHandler.RenderReceiptCard)

			admin.POST("/payments/:id/receipt", adminHandler.IssuePaymentReceipt)
			admin.POST("/supplier-settlements/:id/receipt", adminHandler.IssueSupplierSettlementReceipt)
			admin.POST("/shipments/:id/receipts", adminHandler.IssueShipmentReceipt)
			admin.GET("/shipments", adminHandler.ListShipments)
			admin.POST("/warehouse/intake", adminHandler.WarehouseIntake)

			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
		}
	}

	return r
}
