package service

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"strconv"
	"strings"

	"github.com/eleven-freight/internal/constants"
	"github.com/eleven-freight/internal/models"
)

// VerifyResult 收据校验结果
type VerifyResult struct {
	Valid   bool            `json:"valid"`
	Receipt *models.Receipt `json:"receipt"`
	Reason  string          `json:"reason"`
}

// Verify 校验扫码内容或手工输入
// 依次尝试：JSON 载荷、二维码存储键、文件名、收据编号，首个命中即返回。
// 载荷解析成功但与存储不一致时返回 payload_mismatch，不再尝试其他方式。
// 只读；输入不合法不会返回 error，error 仅表示存储查询失败。
func (s *ReceiptService) Verify(ctx context.Context, input string) (*VerifyResult, error) {
	value := strings.TrimSpace(input)
	if value == "" {
		return rejected(constants.VerifyReasonEmptyInput), nil
	}

	if payload, ok := parseVerifyPayload(value); ok {
		if !payload.valid {
			return rejected(constants.VerifyReasonPayloadMismatch), nil
		}
		receipt, err := s.repo.GetByID(ctx, payload.id)
		if err != nil {
			return nil, err
		}
		if receipt == nil || !receipt.HasQRCode() || receipt.ReceiptNumber != payload.receiptNumber {
			return rejected(constants.VerifyReasonPayloadMismatch), nil
		}
		return matched(receipt, constants.VerifyReasonMatchedByPayload), nil
	}

	receipt, err := s.repo.GetByQRCode(ctx, value)
	if err != nil {
		return nil, err
	}
	if receipt.HasQRCode() {
		return matched(receipt, constants.VerifyReasonMatchedByQRPath), nil
	}

	if basename := path.Base(value); basename != "." && basename != "/" {
		receipt, err = s.repo.GetByQRCodeBasename(ctx, basename)
		if err != nil {
			return nil, err
		}
		if receipt.HasQRCode() {
			return matched(receipt, constants.VerifyReasonMatchedByQRBasename), nil
		}
	}

	receipt, err = s.repo.GetByNumber(ctx, value)
	if err != nil {
		return nil, err
	}
	if receipt.HasQRCode() {
		return matched(receipt, constants.VerifyReasonMatchedByReceiptNumber), nil
	}
	return rejected(constants.VerifyReasonNotFound), nil
}

type parsedPayload struct {
	id            uint
	receiptNumber string
	valid         bool
}

// parseVerifyPayload 识别 {"id":..,"receipt_number":..} 载荷
// 两个键都存在且非 null 时视为载荷；id 可为整数或数字字符串，receipt_number 必须为字符串。
func parseVerifyPayload(value string) (parsedPayload, bool) {
	if !strings.HasPrefix(value, "{") {
		return parsedPayload{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(value), &fields); err != nil {
		return parsedPayload{}, false
	}
	rawID, okID := fields["id"]
	rawNumber, okNumber := fields["receipt_number"]
	if !okID || !okNumber || isJSONNull(rawID) || isJSONNull(rawNumber) {
		return parsedPayload{}, false
	}

	var number string
	if err := json.Unmarshal(rawNumber, &number); err != nil {
		return parsedPayload{}, true
	}
	id, ok := parsePayloadID(rawID)
	if !ok {
		return parsedPayload{}, true
	}
	return parsedPayload{id: id, receiptNumber: number, valid: true}, true
}

func parsePayloadID(raw json.RawMessage) (uint, bool) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		text = string(bytes.TrimSpace(raw))
	}
	id, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func matched(receipt *models.Receipt, reason string) *VerifyResult {
	return &VerifyResult{Valid: true, Receipt: receipt, Reason: reason}
}

func rejected(reason string) *VerifyResult {
	return &VerifyResult{Valid: false, Reason: reason}
}
