package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eleven-freight/internal/config"
	"github.com/eleven-freight/internal/constants"
	handlershared "github.com/eleven-freight/internal/http/handlers/shared"
	"github.com/eleven-freight/internal/models"
	"github.com/eleven-freight/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type adminResponse struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupAdminReceiptHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_receipt_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := models.Open("sqlite", dsn, gormlogger.Silent)
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	cfg := &config.Config{
		Storage: config.StorageConfig{
			Driver: "local",
			Local:  config.LocalStorageConfig{Root: t.TempDir(), PublicPrefix: "/storage"},
		},
		Receipt: config.ReceiptConfig{
			NumberRetry: 3,
			QR:          config.ReceiptQRConfig{Backend: "raster", Size: 200},
		},
	}
	container, err := provider.NewContainerWithDB(cfg, db)
	if err != nil {
		t.Fatalf("init container failed: %v", err)
	}
	h := New(container)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(handlershared.ContextKeyStaffID, uint(9))
		c.Next()
	})
	r.POST("/admin/receipts", h.CreateReceipt)
	r.GET("/admin/receipts", h.ListReceipts)
	r.GET("/admin/receipts/:id/card", h.GetReceiptCard)
	r.POST("/admin/receipts/:id/card", h.RenderReceiptCard)
	r.POST("/admin/payments/:id/receipt", h.IssuePaymentReceipt)
	r.POST("/admin/shipments/:id/receipts", h.IssueShipmentReceipt)
	r.POST("/admin/warehouse/intake", h.WarehouseIntake)
	r.GET("/admin/shipments", h.ListShipments)
	r.GET("/admin/audit-logs", h.ListAuditLogs)
	return r, db
}

func performAdmin(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, adminResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp adminResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestCreateReceiptValidation(t *testing.T) {
	r, _ := setupAdminReceiptHandlerTest(t)
	cases := []struct {
		name string
		body gin.H
		want int
		msg  string
	}{
		{"bad type", gin.H{"type": "pr"}, http.StatusBadRequest, "invalid receipt type"},
		{"zero linked id", gin.H{"type": "PR", "linked_id": 0}, http.StatusBadRequest, "linked id must be a positive integer"},
		{"bad number", gin.H{"type": "PR", "receipt_number": "has space"}, http.StatusBadRequest, "invalid receipt number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := performAdmin(t, r, http.MethodPost, "/admin/receipts", tc.body)
			if w.Code != tc.want || resp.Msg != tc.msg {
				t.Fatalf("want %d/%s got %d/%s", tc.want, tc.msg, w.Code, resp.Msg)
			}
		})
	}
}

func TestCreateReceiptDuplicateNumber(t *testing.T) {
	r, _ := setupAdminReceiptHandlerTest(t)
	body := gin.H{"type": "WR", "receipt_number": "WR-MANUAL-1"}
	w, _ := performAdmin(t, r, http.MethodPost, "/admin/receipts", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("first create want 201 got %d body=%s", w.Code, w.Body.String())
	}
	w, resp := performAdmin(t, r, http.MethodPost, "/admin/receipts", body)
	if w.Code != http.StatusConflict || resp.StatusCode != 409 {
		t.Fatalf("duplicate want 409 got %d/%d", w.Code, resp.StatusCode)
	}

	w, resp = performAdmin(t, r, http.MethodGet, "/admin/receipts?type=WR", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list want 200 got %d", w.Code)
	}
	var items []map[string]interface{}
	if err := json.Unmarshal(resp.Data, &items); err != nil {
		t.Fatalf("unmarshal list failed: %v", err)
	}
	if len(items) != 1 || items[0]["receipt_number"] != "WR-MANUAL-1" {
		t.Fatalf("unexpected list: %+v", items)
	}
}

func TestIssuePaymentReceipt(t *testing.T) {
	r, db := setupAdminReceiptHandlerTest(t)
	payment := models.Payment{
		CustomerID: 4,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(120)),
		Status:     constants.PaymentStatusApproved,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("create payment failed: %v", err)
	}

	w, _ := performAdmin(t, r, http.MethodPost, "/admin/payments/999/receipt", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing payment want 404 got %d", w.Code)
	}

	w, resp := performAdmin(t, r, http.MethodPost, fmt.Sprintf("/admin/payments/%d/receipt", payment.ID), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("payment receipt want 201 got %d body=%s", w.Code, w.Body.String())
	}
	var detail struct {
		Type     string `json:"type"`
		LinkedID uint   `json:"linked_id"`
	}
	if err := json.Unmarshal(resp.Data, &detail); err != nil {
		t.Fatalf("unmarshal detail failed: %v", err)
	}
	if detail.Type != constants.ReceiptTypePayment || detail.LinkedID != payment.ID {
		t.Fatalf("unexpected detail: %+v", detail)
	}
}

func TestIssueShipmentReceiptRejectsPaymentType(t *testing.T) {
	r, db := setupAdminReceiptHandlerTest(t)
	shipment := models.Shipment{
		ShipmentCode: "SHP-TEST-1",
		CustomerID:   2,
		SupplierName: "Guangzhou Textiles",
		Weight:       models.NewMoneyFromDecimal(decimal.NewFromInt(40)),
		Status:       constants.ShipmentStatusDispatched,
	}
	if err := db.Create(&shipment).Error; err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}
	path := fmt.Sprintf("/admin/shipments/%d/receipts", shipment.ID)

	w, resp := performAdmin(t, r, http.MethodPost, path, gin.H{"type": "PR"})
	if w.Code != http.StatusBadRequest || resp.Msg != "shipment receipts must be WR, SR, AR or DR" {
		t.Fatalf("want 400 got %d/%s", w.Code, resp.Msg)
	}
	w, _ = performAdmin(t, r, http.MethodPost, path, gin.H{"type": "SR"})
	if w.Code != http.StatusCreated {
		t.Fatalf("shipping receipt want 201 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestWarehouseIntakeAndAuditLogs(t *testing.T) {
	r, _ := setupAdminReceiptHandlerTest(t)

	w, _ := performAdmin(t, r, http.MethodPost, "/admin/warehouse/intake", gin.H{
		"customer_id":   5,
		"supplier_name": "Yiwu Hardware",
		"weight":        "0",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("zero weight want 400 got %d", w.Code)
	}

	w, resp := performAdmin(t, r, http.MethodPost, "/admin/warehouse/intake", gin.H{
		"customer_id":   5,
		"supplier_name": "Yiwu Hardware",
		"weight":        "12.50",
		"shelf_code":    "C-01-S02-P003",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("intake want 201 got %d body=%s", w.Code, w.Body.String())
	}
	var result struct {
		Shipment struct {
			ID        uint   `json:"id"`
			Status    string `json:"status"`
			ShelfCode string `json:"shelf_code"`
		} `json:"shipment"`
		Receipt *struct {
			Type string `json:"type"`
		} `json:"receipt"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		t.Fatalf("unmarshal intake failed: %v", err)
	}
	if result.Shipment.Status != constants.ShipmentStatusInWarehouse || result.Shipment.ShelfCode != "C-01-S02-P003" {
		t.Fatalf("unexpected shipment: %+v", result.Shipment)
	}
	if result.Receipt == nil || result.Receipt.Type != constants.ReceiptTypeWarehouse {
		t.Fatalf("expected warehouse receipt, got %+v", result.Receipt)
	}

	w, resp = performAdmin(t, r, http.MethodGet, "/admin/shipments?status=in_warehouse&shelf_code=C-01-S02-P003", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("shipments want 200 got %d", w.Code)
	}
	var shipments []models.Shipment
	if err := json.Unmarshal(resp.Data, &shipments); err != nil {
		t.Fatalf("unmarshal shipments failed: %v", err)
	}
	if len(shipments) != 1 || shipments[0].ID != result.Shipment.ID {
		t.Fatalf("unexpected shipments: %+v", shipments)
	}
	if w, _ := performAdmin(t, r, http.MethodGet, "/admin/shipments?customer_id=abc", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad customer id want 400 got %d", w.Code)
	}

	w, resp = performAdmin(t, r, http.MethodGet, "/admin/audit-logs?module=warehouse", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("audit logs want 200 got %d", w.Code)
	}
	var logs []models.AuditLog
	if err := json.Unmarshal(resp.Data, &logs); err != nil {
		t.Fatalf("unmarshal logs failed: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != constants.AuditActionWarehouseIntake {
		t.Fatalf("unexpected audit logs: %+v", logs)
	}
	if logs[0].UserID == nil || *logs[0].UserID != 9 {
		t.Fatalf("expected staff id 9 on audit log, got %v", logs[0].UserID)
	}
}

func TestReceiptCardDisabled(t *testing.T) {
	r, _ := setupAdminReceiptHandlerTest(t)
	w, resp := performAdmin(t, r, http.MethodPost, "/admin/receipts", gin.H{"type": "DR"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create want 201 got %d", w.Code)
	}
	var detail struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &detail); err != nil {
		t.Fatalf("unmarshal detail failed: %v", err)
	}
	cardPath := fmt.Sprintf("/admin/receipts/%d/card", detail.ID)

	w, resp = performAdmin(t, r, http.MethodGet, cardPath, nil)
	if w.Code != http.StatusNotFound || resp.Msg != "receipt card has not been rendered" {
		t.Fatalf("card want 404 got %d/%s", w.Code, resp.Msg)
	}
	w, resp = performAdmin(t, r, http.MethodPost, cardPath, nil)
	if w.Code != http.StatusBadRequest || resp.Msg != "receipt card rendering is disabled" {
		t.Fatalf("render want 400 got %d/%s", w.Code, resp.Msg)
	}
}
