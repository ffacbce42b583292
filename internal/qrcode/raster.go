package qrcode

import (
	goqr "github.com/skip2/go-qrcode"
)

// RasterBackend 输出 PNG 位图二维码
type RasterBackend struct {
	level goqr.RecoveryLevel
}

// NewRasterBackend 创建位图后端
func NewRasterBackend(level goqr.RecoveryLevel) *RasterBackend {
	return &RasterBackend{level: level}
}

// Name 后端名称
func (b *RasterBackend) Name() string { return ModeRaster }

// Encode 编码为 PNG
func (b *RasterBackend) Encode(payload []byte, size int) (*Artifact, error) {
	symbol, err := newSymbol(payload, b.level)
	if err != nil {
		return nil, err
	}
	size = normalizeSize(size)
	data, err := symbol.PNG(size)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Data:        data,
		Extension:   "png",
		ContentType: "image/png",
		Image:       symbol.Image(size),
	}, nil
}
