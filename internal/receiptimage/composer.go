package receiptimage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/eleven-freight/internal/logger"
	"github.com/eleven-freight/internal/models"

	"github.com/disintegration/imaging"
	"github.com/golang/freetype/truetype"
)

// ErrLayoutOverflow 内容高度超出画布，与页脚重叠
var ErrLayoutOverflow = errors.New("receipt layout overflow")

const fallbackDPI = 96

var (
	defaultTextColor = color.NRGBA{R: 30, G: 41, B: 59, A: 255}
	white            = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Composer 收据卡片合成器
// 配置在创建时校验一次；Render 无共享可变状态，可并发调用。
type Composer struct {
	cfg      LayoutConfig
	palette  map[string]color.NRGBA
	font     *truetype.Font
	fontPath string
	logo     image.Image
	shadow   image.Image
	location *time.Location
}

// NewComposer 校验版式并加载字体与标志
func NewComposer(cfg LayoutConfig) (*Composer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Image.DPI <= 0 {
		cfg.Image.DPI = fallbackDPI
	}
	location := time.Local
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidLayout, tz, err)
		}
		location = loc
	}

	c := &Composer{
		cfg:      cfg,
		palette:  make(map[string]color.NRGBA, len(cfg.Colors)),
		location: location,
	}
	for name, rgb := range cfg.Colors {
		c.palette[name] = rgb.nrgba()
	}

	parsed, path, err := loadFont(cfg.Font.Paths)
	if err != nil {
		logger.Warnw("receipt_font_not_found",
			"paths", cfg.Font.Paths,
			"fallback_allowed", cfg.Font.AllowFallback,
		)
	} else {
		c.font = parsed
		c.fontPath = path
	}

	if cfg.Logo.Enabled {
		c.loadLogo()
	}
	return c, nil
}

// FontSource 当前使用的字体来源
func (c *Composer) FontSource() string {
	if c.font != nil {
		return c.fontPath
	}
	if c.cfg.Font.AllowFallback {
		return "builtin-7x13"
	}
	return ""
}

func (c *Composer) loadLogo() {
	src, err := imaging.Open(c.cfg.Logo.Path, imaging.AutoOrientation(true))
	if err != nil {
		logger.Warnw("receipt_logo_load_failed", "path", c.cfg.Logo.Path, "error", err)
		return
	}
	c.logo = imaging.Resize(src, c.cfg.Logo.Width, 0, imaging.Lanczos)
	if c.cfg.Logo.ShadowEnabled {
		silhouette := imaging.AdjustFunc(c.logo, func(px color.NRGBA) color.NRGBA {
			return color.NRGBA{A: uint8(int(px.A) * 90 / 255)}
		})
		sigma := c.cfg.Logo.ShadowBlur
		if sigma <= 0 {
			sigma = 4
		}
		c.shadow = imaging.Blur(silhouette, sigma)
	}
}

func (c *Composer) color(name string, fallback color.NRGBA) color.NRGBA {
	if value, ok := c.palette[name]; ok {
		return value
	}
	return fallback
}

func (c *Composer) textRenderer() (textRenderer, error) {
	if c.font != nil {
		return newTTFRenderer(c.font, c.cfg.Image.DPI), nil
	}
	if c.cfg.Font.AllowFallback {
		return bitmapRenderer{dpi: c.cfg.Image.DPI}, nil
	}
	return nil, ErrFontUnavailable
}

// Render 自上而下单次排版：每一段的起点等于之前各段高度与边距之和。
// 二维码容器不高于 height-bottom_margin_to_qr，页脚贴底；内容越过页脚时返回 ErrLayoutOverflow。
func (c *Composer) Render(receipt *models.Receipt, qr image.Image) (image.Image, error) {
	if receipt == nil {
		return nil, errors.New("receipt is nil")
	}
	if c.cfg.QRCode.Enabled && qr == nil {
		return nil, errors.New("qr image is required")
	}
	text, err := c.textRenderer()
	if err != nil {
		return nil, err
	}

	cfg := c.cfg
	width, height := cfg.Image.Width, cfg.Image.Height
	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	c.paintBackground(canvas)

	y := 0
	if cfg.AccentBar.Enabled {
		bar := image.Rect(0, 0, width, cfg.AccentBar.Height)
		horizontalGradient(canvas, bar, cfg.AccentBar.StartColor.nrgba(), cfg.AccentBar.EndColor.nrgba())
		y = bar.Max.Y
	}
	if c.logo != nil {
		y += cfg.Logo.TopMargin
		y = c.drawLogo(canvas, y)
	}
	y = c.drawCentered(canvas, text, cfg.Company, cfg.Company.Text, y)
	y = c.drawCentered(canvas, text, cfg.Header, cfg.Header.Text, y)
	y = c.drawCentered(canvas, text, cfg.ReceiptNumber, receipt.ReceiptNumber, y)
	y = c.drawInfoSection(canvas, text, resolveFields(receipt, cfg.Fields, c.location), y)

	if cfg.QRCode.Enabled {
		top := y
		if anchored := height - cfg.QRCode.BottomMarginToQR; anchored > top {
			top = anchored
		}
		y = c.drawQR(canvas, qr, top)
		y = c.drawCentered(canvas, text, cfg.QRNote, cfg.QRNote.Text, y)
	}

	footer := cfg.Footer.Text
	if cfg.Footer.Uppercase {
		footer = strings.ToUpper(footer)
	}
	footerWidth, footerHeight := text.measure(footer, cfg.Footer.FontSize, cfg.Footer.LetterSpacing)
	footerTop := height - cfg.Footer.BottomMargin - footerHeight
	limit := footerTop
	if cfg.Layout.UseBorders {
		limit = footerTop - cfg.Footer.TopMargin
	}
	if y > limit {
		return nil, fmt.Errorf("%w: content ends at %d, footer area starts at %d", ErrLayoutOverflow, y, limit)
	}
	if cfg.Layout.UseBorders {
		hline(canvas, cfg.InfoSection.LeftMargin, width-cfg.InfoSection.RightMargin, limit, 1, c.color("border_light", white))
	}
	if footer != "" {
		text.draw(canvas, footer, (width-footerWidth)/2, footerTop,
			cfg.Footer.FontSize, cfg.Footer.LetterSpacing, c.color(cfg.Footer.Color, defaultTextColor))
	}
	if cfg.Layout.UseBorders {
		strokeRect(canvas, canvas.Bounds(), 1, c.color("border", white))
	}
	return canvas, nil
}

func (c *Composer) paintBackground(canvas *image.NRGBA) {
	bounds := canvas.Bounds()
	if !c.cfg.Layout.GradientBackground {
		fillRect(canvas, bounds, c.color("white", white))
		return
	}
	verticalGradient(canvas, bounds, c.color("background", white), c.color("background_gradient", white))
}

func (c *Composer) drawLogo(canvas *image.NRGBA, top int) int {
	size := c.logo.Bounds().Size()
	x := (c.cfg.Image.Width - size.X) / 2
	if c.shadow != nil {
		offset := c.cfg.Logo.ShadowOffset
		target := image.Rect(x+offset, top+offset, x+offset+size.X, top+offset+size.Y)
		draw.Draw(canvas, target, c.shadow, c.shadow.Bounds().Min, draw.Over)
	}
	target := image.Rect(x, top, x+size.X, top+size.Y)
	draw.Draw(canvas, target, c.logo, c.logo.Bounds().Min, draw.Over)
	return target.Max.Y
}

// drawCentered 绘制水平居中的单行文本，返回下一段起点；空文本不占位
func (c *Composer) drawCentered(canvas *image.NRGBA, text textRenderer, tc TextConfig, content string, y int) int {
	if strings.TrimSpace(content) == "" {
		return y
	}
	if tc.Uppercase {
		content = strings.ToUpper(content)
	}
	y += tc.TopMargin
	w, h := text.measure(content, tc.FontSize, tc.LetterSpacing)
	text.draw(canvas, content, (c.cfg.Image.Width-w)/2, y, tc.FontSize, tc.LetterSpacing, c.color(tc.Color, defaultTextColor))
	return y + h + tc.BottomMargin
}

// drawInfoSection 标签左对齐、值右对齐，行间以分隔线隔开
func (c *Composer) drawInfoSection(canvas *image.NRGBA, text textRenderer, rows []fieldRow, y int) int {
	info := c.cfg.InfoSection
	if len(rows) == 0 {
		return y
	}
	left := info.LeftMargin
	right := c.cfg.Image.Width - info.RightMargin
	lineColor := c.color(info.LineColor, white)
	labelColor := c.color(info.LabelColor, defaultTextColor)
	valueColor := c.color(info.ValueColor, defaultTextColor)

	y += info.TopMargin
	if c.cfg.Layout.UseBorders {
		hline(canvas, left, right, y, info.LineThickness, lineColor)
		y += info.LineThickness
	}
	for _, row := range rows {
		_, labelHeight := text.measure(row.Label, info.LabelFontSize, 0)
		valueWidth, valueHeight := text.measure(row.Value, info.ValueFontSize, 0)
		rowHeight := labelHeight
		if valueHeight > rowHeight {
			rowHeight = valueHeight
		}
		rowHeight += info.RowHeight

		text.draw(canvas, row.Label, left, y+(rowHeight-labelHeight)/2, info.LabelFontSize, 0, labelColor)
		text.draw(canvas, row.Value, right-valueWidth, y+(rowHeight-valueHeight)/2, info.ValueFontSize, 0, valueColor)
		y += rowHeight
		if c.cfg.Layout.UseBorders {
			hline(canvas, left, right, y, info.LineThickness, lineColor)
			y += info.LineThickness
		}
	}
	return y + info.BottomMargin
}

// drawQR 绘制二维码容器并近邻缩放二维码，返回容器下沿
func (c *Composer) drawQR(canvas *image.NRGBA, qr image.Image, top int) int {
	section := c.cfg.QRCode
	box := section.containerSize()
	x := (c.cfg.Image.Width - box) / 2
	container := image.Rect(x, top, x+box, top+box)

	fillRect(canvas, container, c.color(section.ContainerBackground, white))
	strokeRect(canvas, container, section.ContainerBorder, c.color(section.ContainerBorderColor, white))

	inset := section.ContainerBorder + section.ContainerPadding
	scaled := imaging.Resize(qr, section.Size, section.Size, imaging.NearestNeighbor)
	target := image.Rect(x+inset, top+inset, x+inset+section.Size, top+inset+section.Size)
	draw.Draw(canvas, target, scaled, image.Point{}, draw.Over)
	return container.Max.Y
}

// Encode 以配置的压缩等级输出 PNG
func (c *Composer) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(pngLevel(c.cfg.Image.Compression))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pngLevel 0-9 映射为标准库压缩档位
func pngLevel(compression int) png.CompressionLevel {
	switch {
	case compression <= 0:
		return png.NoCompression
	case compression <= 3:
		return png.BestSpeed
	case compression <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}
