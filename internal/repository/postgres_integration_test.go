//go:build integration
// +build integration

package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/eleven-freight/internal/constants"
	"github.com/eleven-freight/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	_ = db.Migrator().DropTable(&models.Receipt{})
	if err := db.AutoMigrate(&models.Receipt{}); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(&models.Receipt{})
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresReceiptSearchAndLookups(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewReceiptRepository(db)
	ctx := context.Background()

	first := createReceipt(t, repo, "PR-20260101-120000-001", constants.ReceiptTypePayment, "receipts_qr/PR-20260101-120000-001.svg")
	createReceipt(t, repo, "WR-20260101-120000-002", constants.ReceiptTypeWarehouse, "receipts_qr/WR-20260101-120000-002.svg")
	createReceipt(t, repo, "pr_50%_off", constants.ReceiptTypePayment, "")

	// ILIKE 不区分大小写
	items, total, err := repo.ListAdmin(ctx, ReceiptListFilter{Page: 1, PageSize: 10, Search: "pr-2026", OnlyIssued: true})
	if err != nil {
		t.Fatalf("list receipts failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != first.ID {
		t.Fatalf("unexpected search result total=%d items=%+v", total, items)
	}

	// 通配符按字面量匹配
	_, total, err = repo.ListAdmin(ctx, ReceiptListFilter{Page: 1, PageSize: 10, Search: "50%"})
	if err != nil || total != 1 {
		t.Fatalf("literal wildcard search want 1 got %d err=%v", total, err)
	}

	found, err := repo.GetByQRCodeBasename(ctx, "PR-20260101-120000-001.svg")
	if err != nil || found == nil || found.ID != first.ID {
		t.Fatalf("basename lookup failed: %+v %v", found, err)
	}

	from := time.Now().Add(-time.Hour)
	exported, err := repo.ListForExport(ctx, ReceiptListFilter{CreatedFrom: &from, OnlyIssued: true})
	if err != nil || len(exported) != 2 {
		t.Fatalf("export want 2 got %d err=%v", len(exported), err)
	}
}
