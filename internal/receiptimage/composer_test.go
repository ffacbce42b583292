package receiptimage

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/eleven-freight/internal/models"
)

func testLayout() LayoutConfig {
	cfg := DefaultLayoutConfig()
	cfg.Logo.Enabled = false
	cfg.Font.Paths = nil
	cfg.Font.AllowFallback = true
	cfg.Timezone = "UTC"
	return cfg
}

func testReceipt() *models.Receipt {
	linked := uint(17)
	qr := "receipts_qr/WR-11F-20250301-0042.svg"
	return &models.Receipt{
		ID:            42,
		ReceiptNumber: "WR-11F-20250301-0042",
		Type:          "WR",
		LinkedID:      &linked,
		QRCode:        &qr,
		CreatedAt:     time.Date(2025, 3, 1, 14, 5, 0, 0, time.UTC),
	}
}

func checkerQR(size int) image.Image {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/4+y/4)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func sameRGB(c color.Color, want RGB) bool {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return n.R == want[0] && n.G == want[1] && n.B == want[2]
}

func nearRGB(c color.Color, want RGB) bool {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	near := func(a, b uint8) bool {
		d := int(a) - int(b)
		return d >= -2 && d <= 2
	}
	return near(n.R, want[0]) && near(n.G, want[1]) && near(n.B, want[2])
}

func TestRenderProducesConfiguredCanvas(t *testing.T) {
	cfg := testLayout()
	composer, err := NewComposer(cfg)
	if err != nil {
		t.Fatalf("new composer failed: %v", err)
	}
	if composer.FontSource() == "" {
		t.Fatalf("expected a font source")
	}
	img, err := composer.Render(testReceipt(), checkerQR(64))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if img.Bounds().Dx() != cfg.Image.Width || img.Bounds().Dy() != cfg.Image.Height {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if !nearRGB(img.At(1, 2), cfg.AccentBar.StartColor) {
		t.Fatalf("accent bar should start with start color, got %v", img.At(1, 2))
	}
	if !nearRGB(img.At(cfg.Image.Width-2, 2), cfg.AccentBar.EndColor) {
		t.Fatalf("accent bar should end with end color, got %v", img.At(cfg.Image.Width-2, 2))
	}
}

func TestRenderAnchorsQRContainer(t *testing.T) {
	cfg := testLayout()
	composer, err := NewComposer(cfg)
	if err != nil {
		t.Fatalf("new composer failed: %v", err)
	}
	img, err := composer.Render(testReceipt(), checkerQR(64))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	top := cfg.Image.Height - cfg.QRCode.BottomMarginToQR
	box := cfg.QRCode.containerSize()
	left := (cfg.Image.Width - box) / 2
	if !sameRGB(img.At(cfg.Image.Width/2, top), cfg.Colors["border"]) {
		t.Fatalf("expected container border at y=%d, got %v", top, img.At(cfg.Image.Width/2, top))
	}
	inset := cfg.QRCode.ContainerBorder + cfg.QRCode.ContainerPadding
	if !sameRGB(img.At(left+inset+1, top+inset+1), RGB{0, 0, 0}) {
		t.Fatalf("expected qr module inside container, got %v", img.At(left+inset+1, top+inset+1))
	}
	if !sameRGB(img.At(left+2, top+2), cfg.Colors["white"]) {
		t.Fatalf("expected container padding background, got %v", img.At(left+2, top+2))
	}
}

func TestRenderFailsWithoutFontWhenFallbackDisabled(t *testing.T) {
	cfg := testLayout()
	cfg.Font.AllowFallback = false
	composer, err := NewComposer(cfg)
	if err != nil {
		t.Fatalf("new composer failed: %v", err)
	}
	if _, err := composer.Render(testReceipt(), checkerQR(64)); !errors.Is(err, ErrFontUnavailable) {
		t.Fatalf("expected ErrFontUnavailable, got %v", err)
	}
}

func TestRenderReportsOverflow(t *testing.T) {
	cfg := testLayout()
	cfg.Image.Height = 700
	cfg.QRCode.BottomMarginToQR = 400
	composer, err := NewComposer(cfg)
	if err != nil {
		t.Fatalf("new composer failed: %v", err)
	}
	if _, err := composer.Render(testReceipt(), checkerQR(64)); !errors.Is(err, ErrLayoutOverflow) {
		t.Fatalf("expected ErrLayoutOverflow, got %v", err)
	}
}

func TestRenderRequiresQRImage(t *testing.T) {
	composer, err := NewComposer(testLayout())
	if err != nil {
		t.Fatalf("new composer failed: %v", err)
	}
	if _, err := composer.Render(testReceipt(), nil); err == nil {
		t.Fatalf("expected error without qr image")
	}
}

func TestEncodeWritesPNG(t *testing.T) {
	cfg := testLayout()
	cfg.Image.Compression = 1
	composer, err := NewComposer(cfg)
	if err != nil {
		t.Fatalf("new composer failed: %v", err)
	}
	img, err := composer.Render(testReceipt(), checkerQR(64))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	data, err := composer.Encode(img)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("decoded bounds mismatch: %v", decoded.Bounds())
	}
}

func TestValidateRejectsBadLayout(t *testing.T) {
	cases := map[string]func(*LayoutConfig){
		"field key":   func(c *LayoutConfig) { c.Fields = append(c.Fields, FieldConfig{Key: "customer"}) },
		"transform":   func(c *LayoutConfig) { c.Fields[0].Transform = "title" },
		"color":       func(c *LayoutConfig) { c.Header.Color = "gold" },
		"compression": func(c *LayoutConfig) { c.Image.Compression = 12 },
		"qr width":    func(c *LayoutConfig) { c.Image.Width = 300 },
		"font size":   func(c *LayoutConfig) { c.Footer.FontSize = 0 },
	}
	for name, mutate := range cases {
		cfg := testLayout()
		mutate(&cfg)
		if _, err := NewComposer(cfg); !errors.Is(err, ErrInvalidLayout) {
			t.Fatalf("%s: expected ErrInvalidLayout, got %v", name, err)
		}
	}
}

func TestResolveFields(t *testing.T) {
	receipt := testReceipt()
	receipt.LinkedID = nil
	rows := resolveFields(receipt, []FieldConfig{
		{Key: "type", Label: "TYPE", Transform: "lower"},
		{Key: "type_label"},
		{Key: "linked_id", Label: "LINKED ID"},
		{Key: "created_at", Label: "ISSUE DATE", Format: "Jan 02, 2006 • 03:04 PM"},
	}, time.UTC)

	want := []fieldRow{
		{Label: "TYPE", Value: "wr"},
		{Label: "TYPE LABEL", Value: "Warehouse Receipt"},
		{Label: "LINKED ID", Value: "N/A"},
		{Label: "ISSUE DATE", Value: "Mar 01, 2025 • 02:05 PM"},
	}
	if len(rows) != len(want) {
		t.Fatalf("row count want %d got %d", len(want), len(rows))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d want %+v got %+v", i, want[i], rows[i])
		}
	}
}

func TestBitmapRendererMeasure(t *testing.T) {
	r := bitmapRenderer{dpi: 72}
	w, h := r.measure("AB", 13, 2)
	if w != 16 || h != 13 {
		t.Fatalf("want 16x13 got %dx%d", w, h)
	}
	w, h = r.measure("AB", 26, 0)
	if w != 28 || h != 26 {
		t.Fatalf("want 28x26 got %dx%d", w, h)
	}
	if got := asciiFallback("A • B"); got != "A - B" {
		t.Fatalf("unexpected fallback text %q", got)
	}
}
