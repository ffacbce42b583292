package service

import (
	"context"
	"fmt"

	"github.com/eleven-freight/internal/constants"
	"github.com/eleven-freight/internal/logger"
	"github.com/eleven-freight/internal/repository"

	"github.com/xuri/excelize/v2"
)

const receiptExportSheet = "Receipts"

var receiptExportHeaders = []interface{}{
	"ID", "Receipt Number", "Type", "Type Label", "Linked ID", "QR Code", "QR Code URL", "Created At",
}

// ExportXLSX 导出已签发收据为 Excel
func (s *ReceiptService) ExportXLSX(ctx context.Context, filter repository.ReceiptListFilter) ([]byte, error) {
	filter.OnlyIssued = true
	receipts, err := s.repo.ListForExport(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warnw("receipt_export_close_failed", "error", err)
		}
	}()
	if err := f.SetSheetName("Sheet1", receiptExportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(receiptExportSheet, "A1", &receiptExportHeaders); err != nil {
		return nil, err
	}
	for i := range receipts {
		receipt := &receipts[i]
		linkedID := ""
		if receipt.LinkedID != nil {
			linkedID = fmt.Sprint(*receipt.LinkedID)
		}
		row := []interface{}{
			receipt.ID,
			receipt.ReceiptNumber,
			receipt.Type,
			constants.ReceiptTypeLabel(receipt.Type),
			linkedID,
			receipt.QRCodeKey(),
			s.artifactURL(receipt.QRCodeKey()),
			receipt.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(receiptExportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(receiptExportSheet, "B", "B", 28); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
