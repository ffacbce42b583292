package receiptimage

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"strings"

	"github.com/eleven-freight/internal/logger"

	"github.com/disintegration/imaging"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrFontUnavailable 找不到可用字体且未启用内置位图字体
var ErrFontUnavailable = errors.New("receipt font unavailable")

// textRenderer 单行文本的测量与绘制，top 为文本框上沿
type textRenderer interface {
	measure(text string, size float64, spacing int) (width, height int)
	draw(dst draw.Image, text string, x, top int, size float64, spacing int, c color.Color)
}

// loadFont 按顺序查找第一个可解析的 TrueType 字体
func loadFont(paths []string) (*truetype.Font, string, error) {
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		parsed, err := truetype.Parse(data)
		if err != nil {
			logger.Warnw("receipt_font_parse_failed", "path", path, "error", err)
			continue
		}
		return parsed, path, nil
	}
	return nil, "", ErrFontUnavailable
}

func spacingPixels(spacing int, dpi float64) int {
	if spacing <= 0 {
		return 0
	}
	return int(math.Round(float64(spacing) * dpi / 72))
}

// ttfRenderer 矢量字体渲染，face 按字号缓存，不可跨 goroutine 共享
type ttfRenderer struct {
	font  *truetype.Font
	dpi   float64
	faces map[float64]font.Face
}

func newTTFRenderer(f *truetype.Font, dpi float64) *ttfRenderer {
	return &ttfRenderer{font: f, dpi: dpi, faces: make(map[float64]font.Face)}
}

func (r *ttfRenderer) face(size float64) font.Face {
	if face, ok := r.faces[size]; ok {
		return face
	}
	face := truetype.NewFace(r.font, &truetype.Options{
		Size:    size,
		DPI:     r.dpi,
		Hinting: font.HintingFull,
	})
	r.faces[size] = face
	return face
}

func (r *ttfRenderer) measure(text string, size float64, spacing int) (int, int) {
	face := r.face(size)
	metrics := face.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil()

	gap := fixed.I(spacingPixels(spacing, r.dpi))
	runes := []rune(text)
	var width fixed.Int26_6
	for i, ch := range runes {
		if i > 0 {
			width += face.Kern(runes[i-1], ch) + gap
		}
		advance, ok := face.GlyphAdvance(ch)
		if !ok {
			advance, _ = face.GlyphAdvance('?')
		}
		width += advance
	}
	return width.Ceil(), height
}

func (r *ttfRenderer) draw(dst draw.Image, text string, x, top int, size float64, spacing int, c color.Color) {
	face := r.face(size)
	gap := fixed.I(spacingPixels(spacing, r.dpi))
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(top) + face.Metrics().Ascent},
	}
	runes := []rune(text)
	for i, ch := range runes {
		if i > 0 {
			drawer.Dot.X += face.Kern(runes[i-1], ch) + gap
		}
		drawer.DrawString(string(ch))
	}
}

// bitmapRenderer 内置 7x13 点阵字体，按近邻放大到接近目标字号
// 字宽固定，居中只按字符数估算，非 ASCII 字符会被替换。
type bitmapRenderer struct {
	dpi float64
}

const (
	bitmapGlyphWidth  = 7
	bitmapGlyphHeight = 13
)

func (r bitmapRenderer) scale(size float64) int {
	k := int(math.Round(size * r.dpi / 72 / bitmapGlyphHeight))
	if k < 1 {
		return 1
	}
	return k
}

func (r bitmapRenderer) measure(text string, size float64, spacing int) (int, int) {
	k := r.scale(size)
	n := len([]rune(asciiFallback(text)))
	if n == 0 {
		return 0, bitmapGlyphHeight * k
	}
	width := n*bitmapGlyphWidth*k + (n-1)*spacingPixels(spacing, r.dpi)
	return width, bitmapGlyphHeight * k
}

func (r bitmapRenderer) draw(dst draw.Image, text string, x, top int, size float64, spacing int, c color.Color) {
	k := r.scale(size)
	gap := spacingPixels(spacing, r.dpi)
	face := basicfont.Face7x13
	for _, ch := range asciiFallback(text) {
		glyph := image.NewNRGBA(image.Rect(0, 0, bitmapGlyphWidth, bitmapGlyphHeight))
		drawer := &font.Drawer{
			Dst:  glyph,
			Src:  image.NewUniform(c),
			Face: face,
			Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
		}
		drawer.DrawString(string(ch))
		scaled := imaging.Resize(glyph, bitmapGlyphWidth*k, bitmapGlyphHeight*k, imaging.NearestNeighbor)
		target := image.Rect(x, top, x+scaled.Bounds().Dx(), top+scaled.Bounds().Dy())
		draw.Draw(dst, target, scaled, image.Point{}, draw.Over)
		x += bitmapGlyphWidth*k + gap
	}
}

// asciiFallback 点阵字体只覆盖 ASCII
func asciiFallback(text string) string {
	var b strings.Builder
	for _, ch := range text {
		switch {
		case ch == '•' || ch == '–' || ch == '—':
			b.WriteRune('-')
		case ch < 32 || ch > 126:
			b.WriteRune('?')
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}
