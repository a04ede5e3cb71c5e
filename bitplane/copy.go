package bitplane

import "fmt"

// strategy is the way CopyFrom moves bytes between two layouts.
type strategy int

const (
	copyWhole  strategy = iota // same row and plane strides: one copy
	copyPlanes                 // same row stride: one copy per plane
	copyRows                   // different row strides: one copy per row
)

func (s strategy) String() string {
	switch s {
	case copyWhole:
		return "whole"
	case copyPlanes:
		return "planes"
	case copyRows:
		return "rows"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

func chooseStrategy(dst, src Reader) strategy {
	switch {
	case dst.RowStride() == src.RowStride() && dst.PlaneStride() == src.PlaneStride():
		return copyWhole
	case dst.RowStride() == src.RowStride():
		return copyPlanes
	default:
		return copyRows
	}
}

// CopyFrom copies every pixel of src into b.
//
// b and src must have the same number of planes, width and height; anything else is a
// programming error and panics. Their strides may differ. Only when both strides match is
// the result byte-identical including padding; otherwise padding bytes of b are left alone.
func (b *Buffer) CopyFrom(src Reader) {
	if b.planes != src.Planes() {
		panic(fmt.Sprintf("bitplane: different number of planes (%d != %d)", b.planes, src.Planes()))
	}
	if b.width != src.Width() {
		panic(fmt.Sprintf("bitplane: different plane widths (%d != %d)", b.width, src.Width()))
	}
	if b.height != src.Height() {
		panic(fmt.Sprintf("bitplane: different plane heights (%d != %d)", b.height, src.Height()))
	}

	dst, s := b.pix, src.raw()
	srcPlaneStride, srcRowStride := src.PlaneStride(), src.RowStride()

	switch chooseStrategy(b, src) {
	case copyWhole:
		copy(dst, s)
	case copyPlanes:
		n := b.rowStride * b.height
		for p := 0; p < b.planes; p++ {
			d0, s0 := p*b.planeStride, p*srcPlaneStride
			copy(dst[d0:d0+n], s[s0:s0+n])
		}
	case copyRows:
		n := RowStride(b.width)
		for p := 0; p < b.planes; p++ {
			for y := 0; y < b.height; y++ {
				d0 := p*b.planeStride + y*b.rowStride
				s0 := p*srcPlaneStride + y*srcRowStride
				copy(dst[d0:d0+n], s[s0:s0+n])
			}
		}
	}
}

// Clone returns a copy of b that owns its memory and keeps b's strides.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{
		width:       b.width,
		height:      b.height,
		planes:      b.planes,
		rowStride:   b.rowStride,
		planeStride: b.planeStride,
		pix:         make([]byte, len(b.pix)),
	}
	c.CopyFrom(b)
	return c
}
