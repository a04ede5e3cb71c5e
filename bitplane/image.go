package bitplane

import (
	"image"
	"image/color"
	"image/draw"
)

// Bit is a 1-bit color: true is a mirror in the on position.
type Bit bool

// RGBA converts the Bit to opaque black or white.
func (c Bit) RGBA() (r, g, b, a uint32) {
	if c {
		return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
	}
	return 0, 0, 0, 0xFFFF
}

// toBit converts any color.Color to Bit by thresholding its luminance at half scale.
func toBit(c color.Color) color.Color {
	if b, ok := c.(Bit); ok {
		return b
	}
	r, g, b, _ := c.RGBA()
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Bit(y >= 0x8000)
}

// BitModel converts colors to Bit.
var BitModel = color.ModelFunc(toBit)

// Image is a draw.Image over a single plane of a Buffer.
// Bounds are anchored at (0, 0); pixels outside of them read as off and ignore writes.
type Image struct {
	buf *Buffer // single plane
}

var _ draw.Image = (*Image)(nil)

// Image returns plane n as a draw.Image. Writes go straight to b.
func (b *Buffer) Image(n int) *Image {
	return &Image{buf: b.Plane(n)}
}

// ColorModel returns BitModel.
func (m *Image) ColorModel() color.Model {
	return BitModel
}

// Bounds returns the plane size anchored at the origin.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.buf.width, m.buf.height)
}

// At implements image.Image.
func (m *Image) At(x, y int) color.Color {
	return m.BitAt(x, y)
}

// BitAt returns the pixel at (x, y).
func (m *Image) BitAt(x, y int) Bit {
	if !m.buf.In(0, x, y) {
		return false
	}
	return Bit(m.buf.Get(0, x, y))
}

// Set implements draw.Image.
func (m *Image) Set(x, y int, c color.Color) {
	m.SetBit(x, y, BitModel.Convert(c).(Bit))
}

// SetBit sets the pixel at (x, y) without color conversion.
func (m *Image) SetBit(x, y int, c Bit) {
	if !m.buf.In(0, x, y) {
		return
	}
	m.buf.Set(0, x, y, bool(c))
}
