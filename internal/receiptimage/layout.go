package receiptimage

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// ErrInvalidLayout 版式配置不合法
var ErrInvalidLayout = errors.New("invalid receipt layout")

// RGB 颜色三元组
type RGB [3]uint8

func (c RGB) nrgba() color.NRGBA {
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: 255}
}

// LayoutConfig 收据卡片版式
type LayoutConfig struct {
	Image         ImageConfig       `mapstructure:"image"`
	Colors        map[string]RGB    `mapstructure:"colors"`
	AccentBar     AccentBarConfig   `mapstructure:"accent_bar"`
	Logo          LogoConfig        `mapstructure:"logo"`
	Company       TextConfig        `mapstructure:"company"`
	Header        TextConfig        `mapstructure:"header"`
	ReceiptNumber TextConfig        `mapstructure:"receipt_number"`
	InfoSection   InfoSectionConfig `mapstructure:"info_section"`
	Fields        []FieldConfig     `mapstructure:"fields"`
	QRCode        QRSectionConfig   `mapstructure:"qr_code"`
	QRNote        TextConfig        `mapstructure:"qr_note"`
	Footer        TextConfig        `mapstructure:"footer"`
	Layout        ToggleConfig      `mapstructure:"layout"`
	Font          FontConfig        `mapstructure:"font"`
	Timezone      string            `mapstructure:"timezone"`
}

// ImageConfig 画布配置
type ImageConfig struct {
	Width       int     `mapstructure:"width"`
	Height      int     `mapstructure:"height"`
	DPI         float64 `mapstructure:"dpi"`
	Compression int     `mapstructure:"compression"` // 0-9
}

// AccentBarConfig 顶部渐变色条
type AccentBarConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Height     int  `mapstructure:"height"`
	StartColor RGB  `mapstructure:"start_color"`
	EndColor   RGB  `mapstructure:"end_color"`
}

// LogoConfig 标志配置
type LogoConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	Path          string  `mapstructure:"path"`
	Width         int     `mapstructure:"width"`
	TopMargin     int     `mapstructure:"top_margin"`
	ShadowEnabled bool    `mapstructure:"shadow_enabled"`
	ShadowOffset  int     `mapstructure:"shadow_offset"`
	ShadowBlur    float64 `mapstructure:"shadow_blur"`
}

// TextConfig 单行居中文本
type TextConfig struct {
	Text          string  `mapstructure:"text"`
	TopMargin     int     `mapstructure:"top_margin"`
	BottomMargin  int     `mapstructure:"bottom_margin"`
	FontSize      float64 `mapstructure:"font_size"`
	LetterSpacing int     `mapstructure:"letter_spacing"`
	Color         string  `mapstructure:"color"`
	Uppercase     bool    `mapstructure:"uppercase"`
}

// InfoSectionConfig 字段信息区
type InfoSectionConfig struct {
	TopMargin     int     `mapstructure:"top_margin"`
	BottomMargin  int     `mapstructure:"bottom_margin"`
	RowHeight     int     `mapstructure:"row_height"`
	LeftMargin    int     `mapstructure:"left_margin"`
	RightMargin   int     `mapstructure:"right_margin"`
	LabelFontSize float64 `mapstructure:"label_font_size"`
	ValueFontSize float64 `mapstructure:"value_font_size"`
	LabelColor    string  `mapstructure:"label_color"`
	ValueColor    string  `mapstructure:"value_color"`
	LineColor     string  `mapstructure:"line_color"`
	LineThickness int     `mapstructure:"line_thickness"`
}

// FieldConfig 单个字段
// Key 取值 type/type_label/linked_id/created_at/receipt_number/id，Transform 取值 upper/lower/空。
type FieldConfig struct {
	Key       string `mapstructure:"key"`
	Label     string `mapstructure:"label"`
	Transform string `mapstructure:"transform"`
	Format    string `mapstructure:"format"`
}

// QRSectionConfig 二维码容器
type QRSectionConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Size                 int    `mapstructure:"size"`
	ContainerPadding     int    `mapstructure:"container_padding"`
	ContainerBorder      int    `mapstructure:"container_border"`
	ContainerBorderColor string `mapstructure:"container_border_color"`
	ContainerBackground  string `mapstructure:"container_background"`
	BottomMarginToQR     int    `mapstructure:"bottom_margin_to_qr"`
}

// ToggleConfig 版式开关
type ToggleConfig struct {
	GradientBackground bool `mapstructure:"gradient_background"`
	UseBorders         bool `mapstructure:"use_borders"`
}

// FontConfig 字体查找
type FontConfig struct {
	Paths         []string `mapstructure:"paths"`
	AllowFallback bool     `mapstructure:"allow_fallback"`
}

// DefaultLayoutConfig 默认版式
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		Image: ImageConfig{Width: 1200, Height: 1800, DPI: 144, Compression: 9},
		Colors: map[string]RGB{
			"white":               {255, 255, 255},
			"background":          {248, 249, 250},
			"background_gradient": {240, 242, 245},
			"primary":             {102, 126, 234},
			"primary_dark":        {118, 75, 162},
			"text_dark":           {30, 41, 59},
			"text_light":          {100, 116, 139},
			"border":              {226, 232, 240},
			"border_light":        {203, 213, 225},
		},
		AccentBar: AccentBarConfig{
			Enabled:    true,
			Height:     8,
			StartColor: RGB{102, 126, 234},
			EndColor:   RGB{118, 75, 162},
		},
		Logo: LogoConfig{
			Enabled:      true,
			Path:         "assets/logo.jpeg",
			Width:        200,
			TopMargin:    60,
			ShadowOffset: 4,
			ShadowBlur:   6,
		},
		Company: TextConfig{
			Text:          "11 Freight",
			TopMargin:     20,
			FontSize:      16,
			LetterSpacing: 2,
			Color:         "text_light",
			Uppercase:     true,
		},
		Header: TextConfig{
			Text:          "OFFICIAL RECEIPT",
			TopMargin:     40,
			FontSize:      19,
			LetterSpacing: 2,
			Color:         "text_dark",
		},
		ReceiptNumber: TextConfig{
			TopMargin:     12,
			FontSize:      29,
			LetterSpacing: 1,
			Color:         "primary",
		},
		InfoSection: InfoSectionConfig{
			TopMargin:     40,
			BottomMargin:  40,
			RowHeight:     21,
			LeftMargin:    60,
			RightMargin:   60,
			LabelFontSize: 16,
			ValueFontSize: 19,
			LabelColor:    "text_light",
			ValueColor:    "text_dark",
			LineColor:     "border",
			LineThickness: 1,
		},
		Fields: []FieldConfig{
			{Key: "type", Label: "TYPE", Transform: "upper"},
			{Key: "linked_id", Label: "LINKED ID"},
			{Key: "created_at", Label: "ISSUE DATE", Format: "Jan 02, 2006 • 03:04 PM"},
		},
		QRCode: QRSectionConfig{
			Enabled:              true,
			Size:                 320,
			ContainerPadding:     24,
			ContainerBorder:      1,
			ContainerBorderColor: "border",
			ContainerBackground:  "white",
			BottomMarginToQR:     560,
		},
		QRNote: TextConfig{
			Text:          "SCAN TO VERIFY AUTHENTICITY",
			TopMargin:     24,
			FontSize:      15,
			LetterSpacing: 1,
			Color:         "text_light",
		},
		Footer: TextConfig{
			Text:          "DIGITALLY GENERATED • VALID WITHOUT SIGNATURE",
			TopMargin:     20,
			BottomMargin:  30,
			FontSize:      13,
			LetterSpacing: 1,
			Color:         "border_light",
		},
		Layout: ToggleConfig{GradientBackground: true, UseBorders: true},
		Font: FontConfig{
			Paths: []string{
				"assets/fonts/DejaVuSans-Bold.ttf",
				"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
				"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
				"/usr/share/fonts/liberation-sans/LiberationSans-Bold.ttf",
				"/Library/Fonts/Arial Bold.ttf",
				"C:/Windows/Fonts/arialbd.ttf",
			},
			AllowFallback: true,
		},
	}
}

// Validate 校验版式几何与引用
func (c LayoutConfig) Validate() error {
	if c.Image.Width <= 0 || c.Image.Height <= 0 {
		return fmt.Errorf("%w: image size must be positive", ErrInvalidLayout)
	}
	if c.Image.Compression < 0 || c.Image.Compression > 9 {
		return fmt.Errorf("%w: compression must be within 0-9", ErrInvalidLayout)
	}
	if c.AccentBar.Enabled && c.AccentBar.Height <= 0 {
		return fmt.Errorf("%w: accent bar height must be positive", ErrInvalidLayout)
	}
	if c.Logo.Enabled && c.Logo.Width <= 0 {
		return fmt.Errorf("%w: logo width must be positive", ErrInvalidLayout)
	}
	if c.QRCode.Enabled {
		if c.QRCode.Size <= 0 {
			return fmt.Errorf("%w: qr size must be positive", ErrInvalidLayout)
		}
		if c.QRCode.containerSize() > c.Image.Width {
			return fmt.Errorf("%w: qr container wider than image", ErrInvalidLayout)
		}
	}
	if c.InfoSection.LeftMargin+c.InfoSection.RightMargin >= c.Image.Width {
		return fmt.Errorf("%w: info section margins exceed image width", ErrInvalidLayout)
	}

	texts := map[string]TextConfig{
		"company":        c.Company,
		"header":         c.Header,
		"receipt_number": c.ReceiptNumber,
		"qr_note":        c.QRNote,
		"footer":         c.Footer,
	}
	for name, text := range texts {
		if text.FontSize <= 0 {
			return fmt.Errorf("%w: %s font size must be positive", ErrInvalidLayout, name)
		}
		if err := c.checkColor(text.Color); err != nil {
			return fmt.Errorf("%w (%s)", err, name)
		}
	}
	if c.InfoSection.LabelFontSize <= 0 || c.InfoSection.ValueFontSize <= 0 {
		return fmt.Errorf("%w: info section font sizes must be positive", ErrInvalidLayout)
	}
	for _, name := range []string{
		c.InfoSection.LabelColor,
		c.InfoSection.ValueColor,
		c.InfoSection.LineColor,
		c.QRCode.ContainerBorderColor,
		c.QRCode.ContainerBackground,
	} {
		if err := c.checkColor(name); err != nil {
			return err
		}
	}
	for _, field := range c.Fields {
		if _, ok := fieldResolvers[field.Key]; !ok {
			return fmt.Errorf("%w: unknown field key %q", ErrInvalidLayout, field.Key)
		}
		if _, ok := transforms[strings.ToLower(field.Transform)]; !ok {
			return fmt.Errorf("%w: unknown transform %q", ErrInvalidLayout, field.Transform)
		}
	}
	return nil
}

func (c LayoutConfig) checkColor(name string) error {
	if name == "" {
		return nil
	}
	if _, ok := c.Colors[name]; !ok {
		return fmt.Errorf("%w: unknown color %q", ErrInvalidLayout, name)
	}
	return nil
}

func (q QRSectionConfig) containerSize() int {
	return q.Size + 2*q.ContainerPadding + 2*q.ContainerBorder
}
