package alp

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"

	"periph.io/x/devices/v3/alp/bitplane"
)

var (
	// ErrHalted is returned by every operation after Halt.
	ErrHalted = errors.New("alp: halted")
	// ErrGeometry is returned for buffers that do not match the display size.
	ErrGeometry = errors.New("alp: buffer does not match display")
	// ErrNotLoaded is returned by Start before anything was loaded.
	ErrNotLoaded = errors.New("alp: no sequence loaded")
)

// Opts is the configuration for a Dev.
type Opts struct {
	// PictureTime is how long each plane is shown. Zero keeps the device default.
	PictureTime time.Duration
	// BottomUp uploads rows in BinaryBottomUp format, showing buffers upside down.
	BottomUp bool
	// Logger receives upload and projection events. Nil disables logging.
	Logger *zap.Logger
}

// Dev projects bitplane buffers on a DMD.
//
// Each Load replaces the sequence in device memory. Dev implements display.Drawer, so any
// image can be drawn on it; it is thresholded to a single plane.
type Dev struct {
	d      Device
	logger *zap.Logger

	rect        image.Rectangle
	format      DataFormat
	pictureTime time.Duration

	seq    Sequence         // currently loaded sequence, nil if none
	planes int              // pictures in seq
	next   *bitplane.Buffer // single plane used by Draw, lazily allocated

	halted bool
}

var _ display.Drawer = (*Dev)(nil)

// New returns a Dev projecting on d.
//
// opts can be nil to use defaults (device picture time, top-down rows, no logging).
func New(d Device, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	if opts.PictureTime < 0 {
		return nil, errors.Errorf("alp: negative picture time %s", opts.PictureTime)
	}

	w, h, err := d.DisplaySize()
	if err != nil {
		return nil, errors.Wrap(err, "alp: failed to query display size")
	}
	if w <= 0 || h <= 0 {
		return nil, errors.Errorf("alp: invalid display size %dx%d", w, h)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	format := BinaryTopDown
	if opts.BottomUp {
		format = BinaryBottomUp
	}

	dev := &Dev{
		d:           d,
		logger:      logger,
		rect:        image.Rect(0, 0, w, h),
		format:      format,
		pictureTime: opts.PictureTime,
	}
	logger.Info("opened", zap.Stringer("dev", dev), zap.Stringer("format", format))
	return dev, nil
}

// Load uploads every plane of buf as one picture of a new sequence and releases the
// previous one, halting the projection first if it was showing it.
//
// Buffers with padded strides are repacked; tightly packed ones are sent as is.
// On error the previous sequence stays loaded.
func (d *Dev) Load(buf bitplane.Reader) error {
	if d.halted {
		return ErrHalted
	}
	w, h := d.rect.Dx(), d.rect.Dy()
	if buf.Width() != w || buf.Height() != h {
		return errors.Wrapf(ErrGeometry, "%dx%d buffer on %dx%d display", buf.Width(), buf.Height(), w, h)
	}
	if buf.Planes() == 0 {
		return errors.New("alp: empty buffer")
	}
	data := packed(buf)

	seq, err := d.d.AllocateSequence(1, buf.Planes())
	if err != nil {
		return errors.Wrapf(err, "alp: failed to allocate %d pictures", buf.Planes())
	}
	if err := d.upload(seq, buf.Planes(), data); err != nil {
		if ferr := seq.Free(); ferr != nil {
			d.logger.Warn("free failed", zap.Uint64("seq", seq.ID()), zap.Error(ferr))
		}
		return err
	}
	if err := d.release(); err != nil {
		if ferr := seq.Free(); ferr != nil {
			d.logger.Warn("free failed", zap.Uint64("seq", seq.ID()), zap.Error(ferr))
		}
		return errors.Wrap(err, "alp: failed to release previous sequence")
	}

	d.seq, d.planes = seq, buf.Planes()
	d.logger.Debug("loaded",
		zap.Uint64("seq", seq.ID()),
		zap.Int("planes", buf.Planes()),
		zap.Stringer("size", bytesize.New(float64(len(data)))))
	return nil
}

// packed returns the bytes of buf in the layout the device expects.
func packed(buf bitplane.Reader) []byte {
	if b, ok := buf.(*bitplane.Buffer); ok && isTight(b) {
		return b.Bytes()
	}
	tight := bitplane.New(buf.Planes(), buf.Width(), buf.Height())
	tight.CopyFrom(buf)
	return tight.Bytes()
}

func isTight(b bitplane.Reader) bool {
	rs := bitplane.RowStride(b.Width())
	return b.RowStride() == rs && b.PlaneStride() == rs*b.Height()
}

func (d *Dev) upload(seq Sequence, planes int, data []byte) error {
	if err := seq.SetDataFormat(d.format); err != nil {
		return errors.Wrap(err, "alp: failed to set data format")
	}
	if d.pictureTime > 0 {
		if err := seq.SetPictureTime(d.pictureTime); err != nil {
			return errors.Wrapf(err, "alp: failed to set picture time %s", d.pictureTime)
		}
	}
	if err := seq.Put(0, planes, data); err != nil {
		return errors.Wrap(err, "alp: failed to write sequence")
	}
	return nil
}

// release frees the loaded sequence, halting the projection if it is the one shown.
// The sequence stays loaded when any step fails, so the call can be retried.
func (d *Dev) release() error {
	if d.seq == nil {
		return nil
	}
	id, projecting, err := d.d.CurrentSequence()
	if err != nil {
		return errors.Wrap(err, "alp: failed to query projection")
	}
	if projecting && id == d.seq.ID() {
		if err := d.d.Halt(); err != nil {
			return errors.Wrap(err, "alp: failed to halt projection")
		}
	}
	if err := d.seq.Free(); err != nil {
		return errors.Wrapf(err, "alp: failed to free sequence %d", d.seq.ID())
	}
	d.seq, d.planes = nil, 0
	return nil
}

// Start projects the loaded sequence in a loop.
func (d *Dev) Start() error {
	if d.halted {
		return ErrHalted
	}
	if d.seq == nil {
		return ErrNotLoaded
	}
	if err := d.seq.StartCont(); err != nil {
		return errors.Wrapf(err, "alp: failed to start sequence %d", d.seq.ID())
	}
	d.logger.Debug("started", zap.Uint64("seq", d.seq.ID()), zap.Int("planes", d.planes))
	return nil
}

// Wait blocks until the projection stops.
func (d *Dev) Wait() error {
	if d.halted {
		return ErrHalted
	}
	return d.d.Wait()
}

// Projecting reports whether the device is showing a sequence.
func (d *Dev) Projecting() (bool, error) {
	if d.halted {
		return false, ErrHalted
	}
	return d.d.Projecting()
}

// SetPictureTime sets how long each plane is shown, for the loaded sequence and the next ones.
func (d *Dev) SetPictureTime(t time.Duration) error {
	if d.halted {
		return ErrHalted
	}
	if t <= 0 {
		return errors.Errorf("alp: invalid picture time %s", t)
	}
	if d.seq != nil {
		if err := d.seq.SetPictureTime(t); err != nil {
			return errors.Wrapf(err, "alp: failed to set picture time %s", t)
		}
	}
	d.pictureTime = t
	return nil
}

// SetFrameRate sets the rate at which planes are shown.
func (d *Dev) SetFrameRate(f physic.Frequency) error {
	if f <= 0 {
		return errors.Errorf("alp: invalid frame rate %s", f)
	}
	return d.SetPictureTime(f.Period())
}

// ColorModel returns bitplane.BitModel.
func (d *Dev) ColorModel() color.Model {
	return bitplane.BitModel
}

// Bounds returns the display size.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw thresholds src onto a single plane and projects it.
// Pixels outside dst keep the value of the previous Draw.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return ErrHalted
	}
	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}
	if d.next == nil {
		d.next = bitplane.New(1, d.rect.Dx(), d.rect.Dy())
	}
	draw.Draw(d.next.Image(0), dst, src, sp, draw.Src)

	if err := d.Load(d.next); err != nil {
		return err
	}
	return d.Start()
}

// Halt stops the projection and frees the loaded sequence.
// The Dev cannot be used afterwards; the Device itself is left open.
// If any step fails the Dev stays usable and Halt can be called again.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	var err error
	if herr := d.d.Halt(); herr != nil {
		err = errors.Wrap(herr, "alp: failed to halt projection")
	}
	err = multierr.Append(err, d.release())
	if err != nil {
		return err
	}
	d.halted = true
	return nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("alp.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
