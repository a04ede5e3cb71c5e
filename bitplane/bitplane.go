package bitplane

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrOutOfRange is returned by the checked accessors for coordinates outside the buffer.
	ErrOutOfRange = errors.New("bitplane: coordinate out of range")
	// ErrShortBuffer is returned when wrapped memory is smaller than the requested layout.
	ErrShortBuffer = errors.New("bitplane: buffer too short")
	// ErrBadStride is returned when a stride cannot hold one row or one plane.
	ErrBadStride = errors.New("bitplane: invalid stride")
)

// Func computes the value of one pixel of one plane.
// It is called exactly once per coordinate; callers must not depend on the call order.
type Func func(plane, x, y int) bool

// Buffer is a set of equally sized bit-planes stored back to back in one byte slice.
//
// A Buffer either owns its memory (New, FromFunc, Clone) or is a view into memory owned by
// someone else (Wrap, WrapStrided, Plane, PlaneRange, SplitAtPlane). Views must not be used
// after the memory they borrow is reused for something else.
type Buffer struct {
	width       int
	height      int
	planes      int
	rowStride   int // bytes per row
	planeStride int // bytes per plane
	pix         []byte
}

// RowStride returns the number of bytes needed to pack a row of width pixels.
func RowStride(width int) int {
	return (width + 7) / 8
}

// Size returns the number of bytes of a tightly packed buffer with the given geometry.
func Size(planes, width, height int) int {
	return RowStride(width) * height * planes
}

// New allocates a zeroed buffer of planes planes of width×height pixels.
func New(planes, width, height int) *Buffer {
	if planes < 0 || width < 0 || height < 0 {
		panic("bitplane: negative dimensions")
	}
	rowStride := RowStride(width)
	planeStride := rowStride * height
	return &Buffer{
		width:       width,
		height:      height,
		planes:      planes,
		rowStride:   rowStride,
		planeStride: planeStride,
		pix:         make([]byte, planeStride*planes),
	}
}

// FromFunc allocates a buffer and sets every pixel to f(plane, x, y).
func FromFunc(planes, width, height int, f Func) *Buffer {
	b := New(planes, width, height)
	b.FillFunc(f)
	return b
}

// Wrap returns a tightly packed buffer backed by data.
// data is not copied; writes through the buffer are visible in data.
func Wrap(data []byte, planes, width, height int) (*Buffer, error) {
	rowStride := RowStride(width)
	return WrapStrided(data, planes, width, height, rowStride, rowStride*height)
}

// WrapStrided returns a buffer backed by data with explicit row and plane strides.
// Strides larger than needed leave padding bytes after each row or plane, which is
// how layouts of other producers can be read and written in place.
func WrapStrided(data []byte, planes, width, height, rowStride, planeStride int) (*Buffer, error) {
	if planes < 0 || width < 0 || height < 0 {
		return nil, errors.Errorf("bitplane: negative dimensions %dx%dx%d", planes, width, height)
	}
	if rowStride < RowStride(width) {
		return nil, errors.Wrapf(ErrBadStride, "row stride %d for width %d", rowStride, width)
	}
	if planeStride < rowStride*height {
		return nil, errors.Wrapf(ErrBadStride, "plane stride %d for %d rows of %d bytes", planeStride, height, rowStride)
	}
	n := planeStride * planes
	if len(data) < n {
		return nil, errors.Wrapf(ErrShortBuffer, "got %d bytes, need %d", len(data), n)
	}
	return &Buffer{
		width:       width,
		height:      height,
		planes:      planes,
		rowStride:   rowStride,
		planeStride: planeStride,
		pix:         data[:n:n],
	}, nil
}

// Width returns the width of each plane in pixels.
func (b *Buffer) Width() int {
	return b.width
}

// Height returns the height of each plane in pixels.
func (b *Buffer) Height() int {
	return b.height
}

// Planes returns the number of planes.
func (b *Buffer) Planes() int {
	return b.planes
}

// RowStride returns the distance in bytes between two rows.
func (b *Buffer) RowStride() int {
	return b.rowStride
}

// PlaneStride returns the distance in bytes between two planes.
func (b *Buffer) PlaneStride() int {
	return b.planeStride
}

// Bytes returns the backing memory, exactly PlaneStride()*Planes() bytes long.
// This is the layout accepted by the device when the strides are tightly packed.
func (b *Buffer) Bytes() []byte {
	return b.pix
}

// WriteTo writes the raw bytes of the buffer to w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.pix)
	return int64(n), err
}

// String returns a short description of the buffer geometry.
func (b *Buffer) String() string {
	return fmt.Sprintf("bitplane.Buffer{%dx%dx%d}", b.planes, b.width, b.height)
}

func (b *Buffer) raw() []byte {
	return b.pix
}

// Offset returns the byte offset and bit index of pixel (x, y) in plane.
// Bit 7 is the leftmost pixel of a byte. Coordinates are not checked and must not be negative.
func (b *Buffer) Offset(plane, x, y int) (offset int, bit uint) {
	offset = b.planeStride*plane + b.rowStride*y + x/8
	bit = uint(7 - x%8)
	return
}

// In reports whether (plane, x, y) addresses a pixel of the buffer.
func (b *Buffer) In(plane, x, y int) bool {
	return plane >= 0 && plane < b.planes &&
		x >= 0 && x < b.width &&
		y >= 0 && y < b.height
}

// Get returns the pixel at (x, y) in plane.
// Coordinates are not checked: x beyond Width reads padding or the next row, and anything
// past the end of the buffer panics. The result for negative coordinates is unspecified.
// Use CheckedGet for untrusted input.
func (b *Buffer) Get(plane, x, y int) bool {
	offset, bit := b.Offset(plane, x, y)
	return b.pix[offset]&(1<<bit) != 0
}

// Set sets the pixel at (x, y) in plane, leaving the other bits of the byte untouched.
// Coordinates are not checked, see Get.
func (b *Buffer) Set(plane, x, y int, v bool) {
	offset, bit := b.Offset(plane, x, y)
	if v {
		b.pix[offset] |= 1 << bit
	} else {
		b.pix[offset] &^= 1 << bit
	}
}

// CheckedGet is Get with bounds checking.
func (b *Buffer) CheckedGet(plane, x, y int) (bool, error) {
	if !b.In(plane, x, y) {
		return false, errors.Wrapf(ErrOutOfRange, "(%d, %d, %d) in %v", plane, x, y, b)
	}
	return b.Get(plane, x, y), nil
}

// CheckedSet is Set with bounds checking. Nothing is written on error.
func (b *Buffer) CheckedSet(plane, x, y int, v bool) error {
	if !b.In(plane, x, y) {
		return errors.Wrapf(ErrOutOfRange, "(%d, %d, %d) in %v", plane, x, y, b)
	}
	b.Set(plane, x, y, v)
	return nil
}

// Fill sets every pixel of every plane to v.
// Padding bits and bytes are overwritten too.
func (b *Buffer) Fill(v bool) {
	c := byte(0x00)
	if v {
		c = 0xFF
	}
	for i := range b.pix {
		b.pix[i] = c
	}
}

// FillFunc sets every pixel to f(plane, x, y).
// Pixels are visited plane by plane, row by row, left to right.
func (b *Buffer) FillFunc(f Func) {
	for p := 0; p < b.planes; p++ {
		for y := 0; y < b.height; y++ {
			start := b.planeStride*p + b.rowStride*y
			row := b.pix[start : start+b.rowStride]
			for x := 0; x < b.width; x++ {
				mask := byte(1) << uint(7-x%8)
				if f(p, x, y) {
					row[x/8] |= mask
				} else {
					row[x/8] &^= mask
				}
			}
		}
	}
}
