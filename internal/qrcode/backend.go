package qrcode

import (
	"errors"
	"fmt"
	"image"
	"strings"

	goqr "github.com/skip2/go-qrcode"
)

// ErrEncodingUnavailable 没有可用的二维码编码后端
var ErrEncodingUnavailable = errors.New("qr encoding unavailable")

// 后端选择模式
const (
	ModeAuto   = "auto"
	ModeVector = "vector"
	ModeRaster = "raster"
)

const defaultSize = 400

// Artifact 编码产物
// Image 始终是同一符号的位图，供收据卡片直接嵌入。
type Artifact struct {
	Data        []byte
	Extension   string
	ContentType string
	Image       image.Image
}

// Backend 二维码编码后端
type Backend interface {
	Name() string
	Encode(payload []byte, size int) (*Artifact, error)
}

// ParseRecoveryLevel 解析纠错等级，空值为 medium
func ParseRecoveryLevel(raw string) (goqr.RecoveryLevel, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "medium", "m":
		return goqr.Medium, nil
	case "low", "l":
		return goqr.Low, nil
	case "high", "q":
		return goqr.High, nil
	case "highest", "h":
		return goqr.Highest, nil
	default:
		return goqr.Medium, fmt.Errorf("unknown qr recovery level: %s", raw)
	}
}

func newSymbol(payload []byte, level goqr.RecoveryLevel) (*goqr.QRCode, error) {
	if len(payload) == 0 {
		return nil, errors.New("qr payload is empty")
	}
	symbol, err := goqr.New(string(payload), level)
	if err != nil {
		return nil, fmt.Errorf("encode qr symbol: %w", err)
	}
	return symbol, nil
}

func normalizeSize(size int) int {
	if size <= 0 {
		return defaultSize
	}
	return size
}

// UnavailableBackend 占位后端，所有编码请求均失败
type UnavailableBackend struct{}

// Name 后端名称
func (UnavailableBackend) Name() string { return "unavailable" }

// Encode 始终返回 ErrEncodingUnavailable
func (UnavailableBackend) Encode([]byte, int) (*Artifact, error) {
	return nil, ErrEncodingUnavailable
}
