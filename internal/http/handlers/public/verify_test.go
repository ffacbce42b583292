package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eleven-freight/internal/config"
	"github.com/eleven-freight/internal/models"
	"github.com/eleven-freight/internal/provider"
	"github.com/eleven-freight/internal/service"

	"github.com/gin-gonic/gin"
	gormlogger "gorm.io/gorm/logger"
)

func setupVerifyHandlerTest(t *testing.T) (*gin.Engine, *provider.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:public_verify_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := models.Open("sqlite", dsn, gormlogger.Silent)
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	cfg := &config.Config{
		Storage: config.StorageConfig{
			Local: config.LocalStorageConfig{Root: t.TempDir(), PublicPrefix: "/storage"},
		},
		Receipt: config.ReceiptConfig{QR: config.ReceiptQRConfig{Backend: "vector"}},
	}
	container, err := provider.NewContainerWithDB(cfg, db)
	if err != nil {
		t.Fatalf("init container failed: %v", err)
	}
	h := New(container)
	r := gin.New()
	r.POST("/public/receipts/verify", h.VerifyReceipt)
	r.GET("/public/receipts/verify", h.VerifyReceiptQuery)
	return r, container
}

func decodeVerify(t *testing.T, w *httptest.ResponseRecorder) service.VerifyResult {
	t.Helper()
	var resp struct {
		StatusCode int                  `json:"status_code"`
		Data       service.VerifyResult `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp.Data
}

func TestVerifyReceiptEdgeInputs(t *testing.T) {
	r, _ := setupVerifyHandlerTest(t)
	cases := []struct {
		name   string
		body   string
		reason string
	}{
		{"empty", `{"qr_input":"   "}`, "empty_input"},
		{"missing field", `{}`, "empty_input"},
		{"payload for missing receipt", `{"qr_input":"{\"id\":77,\"receipt_number\":\"X\"}"}`, "payload_mismatch"},
		{"unknown", `{"qr_input":"nothing-here"}`, "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/public/receipts/verify", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("status want 200 got %d", w.Code)
			}
			result := decodeVerify(t, w)
			if result.Valid || result.Reason != tc.reason {
				t.Fatalf("want invalid/%s got %v/%s", tc.reason, result.Valid, result.Reason)
			}
		})
	}
}

func TestVerifyReceiptMalformedBody(t *testing.T) {
	r, _ := setupVerifyHandlerTest(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/public/receipts/verify", strings.NewReader(`{"qr_input":`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body want 400 got %d", w.Code)
	}
}

func TestVerifyReceiptQueryMatchesIssued(t *testing.T) {
	r, container := setupVerifyHandlerTest(t)
	receipt, err := container.ReceiptService.Create(t.Context(), service.CreateReceiptInput{Type: "AR"})
	if err != nil {
		t.Fatalf("create receipt failed: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public/receipts/verify?q="+receipt.ReceiptNumber, nil)
	r.ServeHTTP(w, req)
	result := decodeVerify(t, w)
	if !result.Valid || result.Reason != "matched_by_receipt_number" {
		t.Fatalf("want valid/matched_by_receipt_number got %v/%s", result.Valid, result.Reason)
	}
	if result.Receipt == nil || result.Receipt.ID != receipt.ID {
		t.Fatalf("unexpected receipt in result: %+v", result.Receipt)
	}
}
