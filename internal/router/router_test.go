package router

import (
	"bytes"
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

	"github.com/gin-gonic/gin"
	gormlogger "gorm.io/gorm/logger"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupRouterTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := models.Open("sqlite", dsn, gormlogger.Silent)
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		Authz:  config.AuthzConfig{Enabled: true},
		Storage: config.StorageConfig{
			Driver: "local",
			Local:  config.LocalStorageConfig{Root: t.TempDir(), PublicPrefix: "/storage"},
		},
		Receipt: config.ReceiptConfig{
			NumberRetry: 3,
			QR:          config.ReceiptQRConfig{Backend: "auto", Size: 200, RecoveryLevel: "medium"},
		},
	}
	container, err := provider.NewContainerWithDB(cfg, db)
	if err != nil {
		t.Fatalf("init container failed: %v", err)
	}
	return SetupRouter(cfg, container)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, roles string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if roles != "" {
		req.Header.Set(defaultRoleHeader, roles)
		req.Header.Set(defaultUserHeader, "3")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
		}
	}
	return w, resp
}

func TestReceiptIssueAndVerifyFlow(t *testing.T) {
	r := setupRouterTest(t)

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/receipts", "operation_manager", gin.H{"type": "PR"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status want 201 got %d body=%s", w.Code, w.Body.String())
	}
	var issued struct {
		ID            uint   `json:"id"`
		ReceiptNumber string `json:"receipt_number"`
		QRCode        string `json:"qr_code"`
		QRCodeURL     string `json:"qr_code_url"`
		TypeLabel     string `json:"type_label"`
	}
	if err := json.Unmarshal(resp.Data, &issued); err != nil {
		t.Fatalf("unmarshal receipt failed: %v", err)
	}
	if !strings.HasPrefix(issued.ReceiptNumber, "PR-11F-") {
		t.Fatalf("unexpected receipt number %s", issued.ReceiptNumber)
	}
	if issued.QRCode != "receipts_qr/"+issued.ReceiptNumber+".svg" {
		t.Fatalf("unexpected qr key %s", issued.QRCode)
	}
	if issued.QRCodeURL != "/storage/"+issued.QRCode {
		t.Fatalf("unexpected qr url %s", issued.QRCodeURL)
	}
	if issued.TypeLabel != "Payment Receipt" {
		t.Fatalf("unexpected type label %s", issued.TypeLabel)
	}

	qrPath := fmt.Sprintf("/api/v1/admin/receipts/%d/qr", issued.ID)
	w, _ = doJSON(t, r, http.MethodGet, qrPath, "finance", nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "image/svg+xml") {
		t.Fatalf("qr artifact status=%d type=%s", w.Code, w.Header().Get("Content-Type"))
	}

	w, _ = doJSON(t, r, http.MethodGet, issued.QRCodeURL, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("static qr status want 200 got %d", w.Code)
	}

	cases := []struct {
		name   string
		input  string
		reason string
	}{
		{"number", issued.ReceiptNumber, "matched_by_receipt_number"},
		{"qr path", issued.QRCode, "matched_by_qr_path"},
		{"basename", issued.ReceiptNumber + ".svg", "matched_by_qr_basename"},
		{"payload", fmt.Sprintf(`{"id":%d,"receipt_number":%q}`, issued.ID, issued.ReceiptNumber), "matched_by_payload"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := doJSON(t, r, http.MethodPost, "/api/v1/public/receipts/verify", "", gin.H{"qr_input": tc.input})
			if w.Code != http.StatusOK {
				t.Fatalf("verify status want 200 got %d", w.Code)
			}
			var result struct {
				Valid  bool   `json:"valid"`
				Reason string `json:"reason"`
			}
			if err := json.Unmarshal(resp.Data, &result); err != nil {
				t.Fatalf("unmarshal verify result failed: %v", err)
			}
			if !result.Valid || result.Reason != tc.reason {
				t.Fatalf("verify want valid/%s got %v/%s", tc.reason, result.Valid, result.Reason)
			}
		})
	}

	w, resp = doJSON(t, r, http.MethodGet, "/api/v1/public/receipts/verify?q=UNKNOWN-1", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(string(resp.Data), `"not_found"`) {
		t.Fatalf("unknown input should be not_found, status=%d data=%s", w.Code, string(resp.Data))
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/admin/receipts/export", "admin", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != xlsxContentTypeForTest {
		t.Fatalf("export status=%d type=%s", w.Code, w.Header().Get("Content-Type"))
	}
}

const xlsxContentTypeForTest = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func TestAdminRoutesEnforceRoles(t *testing.T) {
	r := setupRouterTest(t)

	w, _ := doJSON(t, r, http.MethodGet, "/api/v1/admin/receipts", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing roles want 401 got %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/admin/audit-logs", "finance", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("finance audit logs want 403 got %d", w.Code)
	}
	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/admin/receipts", "finance", gin.H{"type": "XX"})
	if w.Code != http.StatusBadRequest || resp.Msg != "invalid receipt type" {
		t.Fatalf("invalid type want 400 got %d msg=%s", w.Code, resp.Msg)
	}
	w, _ = doJSON(t, r, http.MethodGet, "/api/v1/admin/receipts/999", "finance", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing receipt want 404 got %d", w.Code)
	}
}
