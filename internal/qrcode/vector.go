package qrcode

import (
	"bytes"
	"fmt"

	goqr "github.com/skip2/go-qrcode"
)

// VectorBackend 输出 SVG 矢量二维码
type VectorBackend struct {
	level goqr.RecoveryLevel
}

// NewVectorBackend 创建矢量后端
func NewVectorBackend(level goqr.RecoveryLevel) *VectorBackend {
	return &VectorBackend{level: level}
}

// Name 后端名称
func (b *VectorBackend) Name() string { return ModeVector }

// Encode 编码为 SVG，viewBox 以模块为单位，宽高为目标像素尺寸
func (b *VectorBackend) Encode(payload []byte, size int) (*Artifact, error) {
	symbol, err := newSymbol(payload, b.level)
	if err != nil {
		return nil, err
	}
	size = normalizeSize(size)
	return &Artifact{
		Data:        renderSVG(symbol.Bitmap(), size),
		Extension:   "svg",
		ContentType: "image/svg+xml",
		Image:       symbol.Image(size),
	}, nil
}

// renderSVG 按行合并相邻深色模块，输出单个 path
func renderSVG(bitmap [][]bool, size int) []byte {
	modules := len(bitmap)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<?xml version="1.0" encoding="UTF-8"?>`+"\n")
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		size, size, modules, modules)
	fmt.Fprintf(&buf, `<rect width="%d" height="%d" fill="#ffffff"/>`, modules, modules)
	buf.WriteString(`<path fill="#000000" d="`)
	for y, row := range bitmap {
		for x := 0; x < len(row); {
			if !row[x] {
				x++
				continue
			}
			start := x
			for x < len(row) && row[x] {
				x++
			}
			fmt.Fprintf(&buf, "M%d %dh%dv1h-%dz", start, y, x-start, x-start)
		}
	}
	buf.WriteString(`"/></svg>`)
	buf.WriteByte('\n')
	return buf.Bytes()
}
