package receiptimage

import (
	"image"
	"image/color"
	"image/draw"
)

func fillRect(dst draw.Image, rect image.Rectangle, c color.Color) {
	draw.Draw(dst, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// verticalGradient 自上而下逐行插值
func verticalGradient(dst draw.Image, rect image.Rectangle, from, to color.NRGBA) {
	span := rect.Dy() - 1
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := image.Rect(rect.Min.X, y, rect.Max.X, y+1)
		fillRect(dst, row, lerpColor(from, to, y-rect.Min.Y, span))
	}
}

// horizontalGradient 自左向右逐列插值
func horizontalGradient(dst draw.Image, rect image.Rectangle, from, to color.NRGBA) {
	span := rect.Dx() - 1
	for x := rect.Min.X; x < rect.Max.X; x++ {
		col := image.Rect(x, rect.Min.Y, x+1, rect.Max.Y)
		fillRect(dst, col, lerpColor(from, to, x-rect.Min.X, span))
	}
}

func lerpColor(from, to color.NRGBA, step, span int) color.NRGBA {
	if span <= 0 {
		return from
	}
	mix := func(a, b uint8) uint8 {
		return uint8(int(a) + (int(b)-int(a))*step/span)
	}
	return color.NRGBA{
		R: mix(from.R, to.R),
		G: mix(from.G, to.G),
		B: mix(from.B, to.B),
		A: mix(from.A, to.A),
	}
}

// strokeRect 向内描边
func strokeRect(dst draw.Image, rect image.Rectangle, thickness int, c color.Color) {
	if thickness <= 0 {
		return
	}
	fillRect(dst, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+thickness), c)
	fillRect(dst, image.Rect(rect.Min.X, rect.Max.Y-thickness, rect.Max.X, rect.Max.Y), c)
	fillRect(dst, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+thickness, rect.Max.Y), c)
	fillRect(dst, image.Rect(rect.Max.X-thickness, rect.Min.Y, rect.Max.X, rect.Max.Y), c)
}

func hline(dst draw.Image, x0, x1, y, thickness int, c color.Color) {
	if thickness <= 0 {
		return
	}
	fillRect(dst, image.Rect(x0, y, x1, y+thickness), c)
}
