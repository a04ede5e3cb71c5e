package bitplane

import "io"

// Reader is the read side shared by Buffer and ReadOnly.
// It is implemented only by this package.
type Reader interface {
	Width() int
	Height() int
	Planes() int
	RowStride() int
	PlaneStride() int
	Get(plane, x, y int) bool
	WriteTo(w io.Writer) (int64, error)

	raw() []byte
}

var (
	_ Reader = (*Buffer)(nil)
	_ Reader = ReadOnly{}
)

// ReadOnly is a view of a buffer that exposes no way to modify it.
type ReadOnly struct {
	b *Buffer
}

// ReadOnly returns a read-only view sharing memory with b.
func (b *Buffer) ReadOnly() ReadOnly {
	return ReadOnly{b: b}
}

// WrapReadOnly is Wrap for memory the caller wants to protect from writes.
func WrapReadOnly(data []byte, planes, width, height int) (ReadOnly, error) {
	b, err := Wrap(data, planes, width, height)
	if err != nil {
		return ReadOnly{}, err
	}
	return ReadOnly{b: b}, nil
}

func (r ReadOnly) Width() int       { return r.b.width }
func (r ReadOnly) Height() int      { return r.b.height }
func (r ReadOnly) Planes() int      { return r.b.planes }
func (r ReadOnly) RowStride() int   { return r.b.rowStride }
func (r ReadOnly) PlaneStride() int { return r.b.planeStride }
func (r ReadOnly) String() string   { return r.b.String() }
func (r ReadOnly) raw() []byte      { return r.b.pix }

// Get returns the pixel at (x, y) in plane. Coordinates are not checked.
func (r ReadOnly) Get(plane, x, y int) bool {
	return r.b.Get(plane, x, y)
}

// CheckedGet is Get with bounds checking.
func (r ReadOnly) CheckedGet(plane, x, y int) (bool, error) {
	return r.b.CheckedGet(plane, x, y)
}

// Plane returns a read-only view of plane n.
func (r ReadOnly) Plane(n int) ReadOnly {
	return ReadOnly{b: r.b.Plane(n)}
}

// PlaneRange returns a read-only view of the planes [start, end).
func (r ReadOnly) PlaneRange(start, end int) ReadOnly {
	return ReadOnly{b: r.b.PlaneRange(start, end)}
}

// Clone returns a writable copy of the view that owns its memory.
func (r ReadOnly) Clone() *Buffer {
	return r.b.Clone()
}

// WriteTo writes the raw bytes of the view to w.
func (r ReadOnly) WriteTo(w io.Writer) (int64, error) {
	return r.b.WriteTo(w)
}

// Equal reports whether a and b have the same geometry and the same value at every pixel.
// Strides and padding are ignored.
func Equal(a, b Reader) bool {
	if a.Planes() != b.Planes() || a.Width() != b.Width() || a.Height() != b.Height() {
		return false
	}
	for p := 0; p < a.Planes(); p++ {
		for y := 0; y < a.Height(); y++ {
			for x := 0; x < a.Width(); x++ {
				if a.Get(p, x, y) != b.Get(p, x, y) {
					return false
				}
			}
		}
	}
	return true
}
