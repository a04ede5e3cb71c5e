// Package bitplane provides a packed 1-bit multi-plane buffer for binary spatial light
// modulators such as DMDs.
//
// A DMD shows one binary image (a bit-plane) at a time. A sequence of planes is uploaded
// to the device as one contiguous byte region, so the buffer keeps every plane in a single
// slice:
//
//	plane 0 | plane 1 | ... | plane N-1
//
// Each plane is Height rows of RowStride bytes, and each row packs 8 pixels per byte,
// most-significant bit first. For a 10 pixel wide row:
//
//	Pixels: 0 1 2 3 4 5 6 7 | 8 9 - - - - - -
//	Bytes:  byte 0          | byte 1
//
// The trailing bits of the last byte in a row are padding and carry no meaning.
//
// Views returned by Plane, PlaneRange and SplitAtPlane share the parent's memory. The two
// halves of SplitAtPlane never overlap and can be written independently.
//
// Example usage:
//
//	// Three 1024x768 planes
//	buf := bitplane.New(3, 1024, 768)
//
//	// Vertical stripes on plane 0
//	buf.Plane(0).FillFunc(func(_, x, _ int) bool { return x%2 == 0 })
//
//	// Move the last plane to the front
//	buf.SwapPlanes(0, 2)
//
//	// Hand the raw bytes to the device
//	seq.Put(0, buf.Planes(), buf.Bytes())
package bitplane
