// Package alp projects bit-plane buffers on a digital micromirror device (DMD).
//
// A DMD shows one binary picture at a time. Gray levels are formed by showing a
// sequence of pictures, one per bit-plane, for time slots that may differ from plane to
// plane. This package uploads a bitplane buffer as such a sequence and starts it in a
// continuous loop. It implements the display.Drawer interface from periph.io, so any
// image.Image can be drawn on the device after being thresholded to one plane.
//
// # Controller
//
// The controller is reached through the Device and Sequence interfaces, which mirror
// the calls of the vendor API (allocate, upload, set timing, start, halt, free). The
// vendor reports failures as numeric status codes; FromCode maps them to the Error
// values declared in this package:
//
//	if err := FromCode(status); err != nil {
//		return errors.Wrap(err, "alp: failed to allocate sequence")
//	}
//
// Unknown codes map to ErrUnknown. Error values compare with errors.Is after wrapping.
//
// The virtual subpackage provides an in-memory Device for tests and for running the
// demo without hardware.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"periph.io/x/devices/v3/alp"
//		"periph.io/x/devices/v3/alp/bitplane"
//		"periph.io/x/devices/v3/alp/virtual"
//		"periph.io/x/conn/v3/physic"
//	)
//
//	func main() {
//		dev, _ := alp.New(virtual.New(nil, nil), nil)
//		defer dev.Halt()
//
//		// 2 kHz: each plane is shown for 500µs.
//		dev.SetFrameRate(2 * physic.KiloHertz)
//
//		b := dev.Bounds()
//		buf := bitplane.FromFunc(4, b.Dx(), b.Dy(), func(p, x, y int) bool {
//			return (x>>uint(p))&1 == 1
//		})
//		dev.Load(buf)
//		dev.Start()
//	}
//
// # Upload Format
//
// Planes are uploaded in the binary data formats, one picture per plane, rows packed
// MSB first. Buffers whose strides carry padding are repacked before upload; tightly
// packed buffers are sent as is. Opts.BottomUp selects BinaryBottomUp, which flips the
// projected picture vertically.
//
// Loading a new buffer allocates its sequence before the previous one is freed, so the
// device needs room for both. A projected sequence is halted before it is freed.
package alp
