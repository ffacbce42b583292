package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/eleven-freight/internal/constants"
	"github.com/eleven-freight/internal/models"
	"github.com/eleven-freight/internal/qrcode"
	"github.com/eleven-freight/internal/repository"

	goqr "github.com/skip2/go-qrcode"
)

func newIntakeService(env *receiptTestEnv, qr qrcode.Backend) *WarehouseIntakeService {
	receipts := env.service(qr, nil, ReceiptServiceOptions{})
	return NewWarehouseIntakeService(
		repository.NewShipmentRepository(env.db),
		repository.NewWarehouseInventoryRepository(env.db),
		receipts,
		env.audit,
	)
}

func TestWarehouseIntakeCreatesShipmentInventoryAndReceipt(t *testing.T) {
	env := newReceiptTestEnv(t)
	svc := newIntakeService(env, qrcode.NewVectorBackend(goqr.Medium))
	weight, _ := models.ParseMoney("12.5")
	operator := uint(3)

	result, err := svc.Intake(context.Background(), WarehouseIntakeInput{
		CustomerID:   1,
		SupplierName: " Guangzhou Textiles ",
		Weight:       weight,
		PhotoPath:    "shipments/photo-1.jpg",
		Actor:        AuditActor{UserID: &operator, IP: "127.0.0.1"},
	})
	if err != nil {
		t.Fatalf("intake failed: %v", err)
	}
	if result.Shipment.Status != constants.ShipmentStatusInWarehouse {
		t.Fatalf("unexpected status: %s", result.Shipment.Status)
	}
	if !strings.HasPrefix(result.Shipment.ShipmentCode, "SHP-") {
		t.Fatalf("unexpected shipment code: %s", result.Shipment.ShipmentCode)
	}
	if !strings.HasPrefix(result.Shipment.ShelfCode, unassignedContainerCode+"-S") {
		t.Fatalf("unexpected shelf code: %s", result.Shipment.ShelfCode)
	}
	if result.Inventory.ShipmentID != result.Shipment.ID || result.Inventory.Shelf != result.Shipment.ShelfCode {
		t.Fatalf("inventory not linked to shipment: %+v", result.Inventory)
	}
	if result.Receipt == nil || result.Receipt.Type != constants.ReceiptTypeWarehouse {
		t.Fatalf("expected warehouse receipt, got %+v", result.Receipt)
	}
	if *result.Receipt.LinkedID != result.Shipment.ID {
		t.Fatalf("receipt not linked to shipment")
	}
	log := env.auditLog(t, constants.AuditActionWarehouseIntake)
	if log == nil || log.UserID == nil || *log.UserID != operator {
		t.Fatalf("expected intake audit log, got %+v", log)
	}
	if log.NewData["supplier_name"] != "Guangzhou Textiles" {
		t.Fatalf("unexpected audit payload: %v", log.NewData)
	}
}

func TestWarehouseIntakeKeepsShipmentWhenReceiptFails(t *testing.T) {
	env := newReceiptTestEnv(t)
	svc := newIntakeService(env, qrcode.UnavailableBackend{})
	weight, _ := models.ParseMoney("3")

	result, err := svc.Intake(context.Background(), WarehouseIntakeInput{
		CustomerID:   2,
		SupplierName: "Shenzhen Parts",
		Weight:       weight,
		ShelfCode:    "C-01-S02-P003",
	})
	if err != nil {
		t.Fatalf("receipt failure must not fail intake: %v", err)
	}
	if result.Receipt != nil {
		t.Fatalf("expected no receipt")
	}
	if result.Shipment.ShelfCode != "C-01-S02-P003" {
		t.Fatalf("explicit shelf code not kept: %s", result.Shipment.ShelfCode)
	}
	var shipments int64
	if err := env.db.Model(&models.Shipment{}).Count(&shipments).Error; err != nil {
		t.Fatalf("count shipments failed: %v", err)
	}
	if shipments != 1 {
		t.Fatalf("expected shipment kept, got %d", shipments)
	}
	if count := env.countReceipts(t); count != 0 {
		t.Fatalf("failed receipt should be rolled back, got %d", count)
	}
}

func TestWarehouseIntakeValidatesInput(t *testing.T) {
	env := newReceiptTestEnv(t)
	svc := newIntakeService(env, qrcode.NewVectorBackend(goqr.Medium))
	zero, _ := models.ParseMoney("0")
	_, err := svc.Intake(context.Background(), WarehouseIntakeInput{CustomerID: 1, SupplierName: "x", Weight: zero})
	if !errors.Is(err, ErrInvalidIntake) || !errors.Is(err, ErrValidation) {
		t.Fatalf("expected invalid intake, got %v", err)
	}
}
