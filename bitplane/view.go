package bitplane

import "fmt"

// view returns a buffer with the geometry of b over the planes [start, end).
func (b *Buffer) view(start, end int) *Buffer {
	lo, hi := start*b.planeStride, end*b.planeStride
	return &Buffer{
		width:       b.width,
		height:      b.height,
		planes:      end - start,
		rowStride:   b.rowStride,
		planeStride: b.planeStride,
		pix:         b.pix[lo:hi:hi],
	}
}

// Plane returns a single-plane view of plane n.
func (b *Buffer) Plane(n int) *Buffer {
	return b.PlaneRange(n, n+1)
}

// PlaneRange returns a view of the planes [start, end).
// It panics if the range is inverted or does not fit the buffer.
func (b *Buffer) PlaneRange(start, end int) *Buffer {
	if start < 0 || start > end || end > b.planes {
		panic(fmt.Sprintf("bitplane: invalid plane range [%d, %d) of %d planes", start, end, b.planes))
	}
	return b.view(start, end)
}

// SplitAtPlane splits b into a view of the planes [0, p) and a view of the planes [p, Planes()).
// The two views cover disjoint memory, so writes through one never show up in the other.
// It panics if p is not in [0, Planes()].
func (b *Buffer) SplitAtPlane(p int) (*Buffer, *Buffer) {
	if p < 0 || p > b.planes {
		panic(fmt.Sprintf("bitplane: split point %d out of range of %d planes", p, b.planes))
	}
	return b.view(0, p), b.view(p, b.planes)
}

// SwapPlanes exchanges the content of planes p0 and p1 in place.
// Swapping a plane with itself is a programming error and panics.
func (b *Buffer) SwapPlanes(p0, p1 int) {
	if p0 == p1 {
		panic(fmt.Sprintf("bitplane: cannot swap plane %d with itself", p0))
	}
	if p0 < 0 || p1 < 0 || p0 >= b.planes || p1 >= b.planes {
		panic(fmt.Sprintf("bitplane: swap of planes %d and %d out of range of %d planes", p0, p1, b.planes))
	}
	if p0 > p1 {
		p0, p1 = p1, p0
	}
	// The first plane lives entirely before the split, the second after it.
	head, tail := b.pix[:p1*b.planeStride], b.pix[p1*b.planeStride:]
	x := head[p0*b.planeStride : (p0+1)*b.planeStride]
	y := tail[:b.planeStride]
	for i := range x {
		x[i], y[i] = y[i], x[i]
	}
}
