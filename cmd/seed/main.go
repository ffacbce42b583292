package main

import (
	"errors"

	"github.com/eleven-freight/internal/app"
	"github.com/eleven-freight/internal/config"
	"github.com/eleven-freight/internal/constants"
	"github.com/eleven-freight/internal/logger"
	"github.com/eleven-freight/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()
	if err := app.InitDatabase(cfg); err != nil {
		stdLog.Fatalf("Failed to init database: %v", err)
	}

	// 货运记录
	shipments := []models.Shipment{
		{ShipmentCode: "SHP-DEMO-0001", CustomerID: 1, SupplierName: "Guangzhou Textiles Co.", Weight: models.NewMoneyFromDecimal(decimal.RequireFromString("125.50")), ShelfCode: "A-01", Status: constants.ShipmentStatusInWarehouse},
		{ShipmentCode: "SHP-DEMO-0002", CustomerID: 1, SupplierName: "Yiwu Home Goods", Weight: models.NewMoneyFromDecimal(decimal.RequireFromString("48.00")), ShelfCode: "B-07", Status: constants.ShipmentStatusInContainer},
		{ShipmentCode: "SHP-DEMO-0003", CustomerID: 2, SupplierName: "Shenzhen Electronics Ltd.", Weight: models.NewMoneyFromDecimal(decimal.RequireFromString("310.25")), ShelfCode: "C-12", Status: constants.ShipmentStatusArrivedGhana},
	}
	for i := range shipments {
		item := &shipments[i]
		var existing models.Shipment
		err := models.DB.Where("shipment_code = ?", item.ShipmentCode).First(&existing).Error
		if err == nil {
			stdLog.Printf("Shipment already exists: %s", item.ShipmentCode)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			stdLog.Fatalf("Failed to load shipment %s: %v", item.ShipmentCode, err)
		}
		if err := models.DB.Create(item).Error; err != nil {
			stdLog.Printf("Failed to create shipment %s: %v", item.ShipmentCode, err)
			continue
		}
		stdLog.Printf("Created shipment: %s (id=%d)", item.ShipmentCode, item.ID)
	}

	// 付款与供应商结算
	payments := []models.Payment{
		{CustomerID: 1, ReferenceCode: "MOMO-DEMO-7781", Amount: models.NewMoneyFromDecimal(decimal.RequireFromString("1500.00")), Status: constants.PaymentStatusApproved},
		{CustomerID: 2, ReferenceCode: "BANK-DEMO-0420", Amount: models.NewMoneyFromDecimal(decimal.RequireFromString("820.75")), Status: constants.PaymentStatusPending},
	}
	for i := range payments {
		item := &payments[i]
		var existing models.Payment
		err := models.DB.Where("reference_code = ?", item.ReferenceCode).First(&existing).Error
		if err == nil {
			stdLog.Printf("Payment already exists: %s", item.ReferenceCode)
			payments[i] = existing
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			stdLog.Fatalf("Failed to load payment %s: %v", item.ReferenceCode, err)
		}
		if err := models.DB.Create(item).Error; err != nil {
			stdLog.Printf("Failed to create payment %s: %v", item.ReferenceCode, err)
			continue
		}
		stdLog.Printf("Created payment: %s (id=%d)", item.ReferenceCode, item.ID)
	}

	if payments[0].ID == 0 {
		stdLog.Printf("Skip supplier settlement seed: payment not available")
		return
	}
	var count int64
	if err := models.DB.Model(&models.SupplierSettlement{}).Where("payment_id = ?", payments[0].ID).Count(&count).Error; err != nil {
		stdLog.Fatalf("Failed to count supplier settlements: %v", err)
	}
	if count > 0 {
		stdLog.Printf("Supplier settlement already exists for payment %d", payments[0].ID)
		return
	}
	settlement := models.SupplierSettlement{
		PaymentID:    payments[0].ID,
		SupplierName: "Guangzhou Textiles Co.",
		Status:       constants.SettlementStatusPaid,
	}
	if err := models.DB.Create(&settlement).Error; err != nil {
		stdLog.Printf("Failed to create supplier settlement: %v", err)
		return
	}
	stdLog.Printf("Created supplier settlement: id=%d", settlement.ID)
}
