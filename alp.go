package alp

import (
	"fmt"
	"time"
)

// Device is an opened DMD controller.
//
// Implementations wrap the vendor library; see package virtual for an in-memory one.
// Errors returned by implementations should be values of type Error where the
// controller reported a status code.
type Device interface {
	// AllocateSequence reserves on-board memory for pictures images of bitPlanes bits each.
	AllocateSequence(bitPlanes, pictures int) (Sequence, error)
	// DisplaySize returns the mirror array size in pixels.
	DisplaySize() (width, height int, err error)
	// CurrentSequence returns the ID of the sequence being projected, if any.
	CurrentSequence() (id uint64, projecting bool, err error)
	// Projecting reports whether the projection is active.
	Projecting() (bool, error)
	// Halt stops the running projection.
	Halt() error
	// Wait blocks until the running projection finishes.
	Wait() error
	// Free releases the device.
	Free() error
}

// Sequence is a block of pictures in device memory.
type Sequence interface {
	ID() uint64
	// Put writes n pictures starting at picture offset. data holds the pictures in
	// the sequence's data format, back to back.
	Put(offset, n int, data []byte) error
	// SetPictureTime sets how long each picture is displayed.
	SetPictureTime(d time.Duration) error
	// SetDataFormat selects the layout Put expects.
	SetDataFormat(f DataFormat) error
	// StartCont starts projecting the sequence in a loop.
	StartCont() error
	// Free releases the device memory.
	Free() error
}

// DataFormat is the pixel layout of data passed to Sequence.Put.
type DataFormat int64

const (
	// MSBAlign is one byte per pixel, using the most significant bits.
	MSBAlign DataFormat = 0
	// LSBAlign is one byte per pixel, using the least significant bits.
	LSBAlign DataFormat = 1
	// BinaryTopDown is 8 pixels per byte, MSB first, first row at the top.
	// This is the layout of a bitplane.Buffer.
	BinaryTopDown DataFormat = 2
	// BinaryBottomUp is BinaryTopDown with the rows in reverse order.
	BinaryBottomUp DataFormat = 3
)

func (f DataFormat) String() string {
	switch f {
	case MSBAlign:
		return "MSBAlign"
	case LSBAlign:
		return "LSBAlign"
	case BinaryTopDown:
		return "BinaryTopDown"
	case BinaryBottomUp:
		return "BinaryBottomUp"
	}
	return fmt.Sprintf("DataFormat(%d)", int64(f))
}

// Binary reports whether f packs 8 pixels per byte.
func (f DataFormat) Binary() bool {
	return f == BinaryTopDown || f == BinaryBottomUp
}
