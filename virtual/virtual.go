// Package virtual implements an in-memory alp.Device.
//
// It behaves like a controller with a fixed amount of sequence memory and reports the
// same status codes a real one would for invalid calls, which makes it suitable for tests
// and for running the demo without hardware. Uploaded sequences can optionally be dumped
// to a filesystem for inspection.
package virtual

import (
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"periph.io/x/devices/v3/alp"
	"periph.io/x/devices/v3/alp/bitplane"
)

// Opts is the configuration of a virtual device.
type Opts struct {
	W, H int // mirror array size (default: 1024x768)

	// Memory is the sequence memory in bytes (default: 64 MiB).
	Memory int

	// Fs receives a copy of each sequence after every Put, as Dir/seq-<id>.bin.
	// Nil disables dumping.
	Fs  afero.Fs
	Dir string
}

// Device is an in-memory DMD controller. It is not safe for concurrent use.
type Device struct {
	l    *zap.Logger
	opts Opts

	used       int
	nextID     uint64
	seqs       map[uint64]*Sequence
	current    uint64
	projecting bool
	freed      bool
}

var _ alp.Device = (*Device)(nil)

// New returns a virtual device. opts can be nil to use defaults.
func New(logger *zap.Logger, opts *Opts) *Device {
	o := Opts{W: 1024, H: 768, Memory: 64 << 20}
	if opts != nil {
		if opts.W > 0 {
			o.W = opts.W
		}
		if opts.H > 0 {
			o.H = opts.H
		}
		if opts.Memory > 0 {
			o.Memory = opts.Memory
		}
		o.Fs, o.Dir = opts.Fs, opts.Dir
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Device{
		l:      logger,
		opts:   o,
		nextID: 1,
		seqs:   map[uint64]*Sequence{},
	}
}

// AllocateSequence implements alp.Device.
func (d *Device) AllocateSequence(bitPlanes, pictures int) (alp.Sequence, error) {
	if d.freed {
		return nil, alp.ErrNotOnline
	}
	if bitPlanes < 1 || bitPlanes > 8 || pictures < 1 {
		return nil, alp.ErrParameterInvalid
	}
	// Memory is reserved for one byte per pixel, the widest data format.
	size := d.opts.W * d.opts.H * pictures
	if d.used+size > d.opts.Memory {
		return nil, alp.ErrMemoryFull
	}
	s := &Sequence{
		dev:       d,
		id:        d.nextID,
		bitPlanes: bitPlanes,
		pictures:  pictures,
		size:      size,
		format:    alp.MSBAlign,
	}
	d.nextID++
	d.used += size
	d.seqs[s.id] = s
	d.l.With(
		zap.Uint64("seq", s.id),
		zap.Int("bitplanes", bitPlanes),
		zap.Int("pictures", pictures),
	).Info("allocate-sequence")
	return s, nil
}

// DisplaySize implements alp.Device.
func (d *Device) DisplaySize() (int, int, error) {
	if d.freed {
		return 0, 0, alp.ErrNotOnline
	}
	return d.opts.W, d.opts.H, nil
}

// CurrentSequence implements alp.Device.
func (d *Device) CurrentSequence() (uint64, bool, error) {
	if d.freed {
		return 0, false, alp.ErrNotOnline
	}
	if !d.projecting {
		return 0, false, nil
	}
	return d.current, true, nil
}

// Projecting implements alp.Device.
func (d *Device) Projecting() (bool, error) {
	if d.freed {
		return false, alp.ErrNotOnline
	}
	return d.projecting, nil
}

// Halt implements alp.Device.
func (d *Device) Halt() error {
	if d.freed {
		return alp.ErrNotOnline
	}
	d.projecting = false
	d.l.Info("halt")
	return nil
}

// Wait implements alp.Device. Sequences never finish on their own, so it returns at once.
func (d *Device) Wait() error {
	if d.freed {
		return alp.ErrNotOnline
	}
	return nil
}

// Free implements alp.Device. All sequences are released with the device.
func (d *Device) Free() error {
	if d.freed {
		return alp.ErrNotOnline
	}
	for _, s := range d.seqs {
		s.freed = true
	}
	d.seqs = nil
	d.used = 0
	d.projecting = false
	d.freed = true
	d.l.Info("free")
	return nil
}

// Sequences returns the IDs of the allocated sequences in ascending order.
func (d *Device) Sequences() []uint64 {
	ids := lo.Keys(d.seqs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Sequence returns the allocated sequence with the given ID.
func (d *Device) Sequence(id uint64) (*Sequence, bool) {
	s, ok := d.seqs[id]
	return s, ok
}

// Used returns the number of bytes of sequence memory in use.
func (d *Device) Used() int {
	return d.used
}

// Sequence is a sequence in the memory of a virtual device.
type Sequence struct {
	dev       *Device
	id        uint64
	bitPlanes int
	pictures  int
	size      int

	format      alp.DataFormat
	pictureTime time.Duration
	data        []byte
	freed       bool
}

var _ alp.Sequence = (*Sequence)(nil)

// ID implements alp.Sequence.
func (s *Sequence) ID() uint64 {
	return s.id
}

// pictureBytes returns the size of one picture in the current data format.
func (s *Sequence) pictureBytes() int {
	w, h := s.dev.opts.W, s.dev.opts.H
	if s.format.Binary() {
		return bitplane.Size(1, w, h)
	}
	return w * h
}

func (s *Sequence) check() error {
	if s.freed || s.dev.freed {
		return alp.ErrParameterInvalid
	}
	return nil
}

func (s *Sequence) inUse() bool {
	return s.dev.projecting && s.dev.current == s.id
}

// Put implements alp.Sequence.
func (s *Sequence) Put(offset, n int, data []byte) error {
	if err := s.check(); err != nil {
		return err
	}
	if offset < 0 || n < 1 || offset+n > s.pictures {
		return alp.ErrParameterInvalid
	}
	if s.inUse() {
		return alp.ErrSequenceInUse
	}
	pb := s.pictureBytes()
	if len(data) < n*pb {
		return alp.ErrParameterInvalid
	}
	if len(s.data) != s.pictures*pb {
		s.data = make([]byte, s.pictures*pb)
	}
	copy(s.data[offset*pb:], data[:n*pb])
	s.dev.l.With(
		zap.Uint64("seq", s.id),
		zap.Int("offset", offset),
		zap.Int("n", n),
		zap.Int("bytes", n*pb),
	).Info("put")
	return s.dump()
}

func (s *Sequence) dump() error {
	fs := s.dev.opts.Fs
	if fs == nil {
		return nil
	}
	if err := fs.MkdirAll(s.dev.opts.Dir, 0o755); err != nil {
		return errors.Wrap(err, "virtual: failed to create dump directory")
	}
	name := path.Join(s.dev.opts.Dir, fmt.Sprintf("seq-%d.bin", s.id))
	if err := afero.WriteFile(fs, name, s.data, 0o644); err != nil {
		return errors.Wrapf(err, "virtual: failed to dump sequence %d", s.id)
	}
	return nil
}

// SetPictureTime implements alp.Sequence. The device works in whole microseconds.
func (s *Sequence) SetPictureTime(t time.Duration) error {
	if err := s.check(); err != nil {
		return err
	}
	if t < time.Microsecond {
		return alp.ErrParameterInvalid
	}
	s.pictureTime = t.Truncate(time.Microsecond)
	s.dev.l.With(zap.Uint64("seq", s.id), zap.Duration("picture-time", s.pictureTime)).Info("set-picture-time")
	return nil
}

// SetDataFormat implements alp.Sequence. Data already written is dropped when the
// picture size changes.
func (s *Sequence) SetDataFormat(f alp.DataFormat) error {
	if err := s.check(); err != nil {
		return err
	}
	if f < alp.MSBAlign || f > alp.BinaryBottomUp {
		return alp.ErrParameterInvalid
	}
	if s.inUse() {
		return alp.ErrSequenceInUse
	}
	if f.Binary() != s.format.Binary() {
		s.data = nil
	}
	s.format = f
	s.dev.l.With(zap.Uint64("seq", s.id), zap.Stringer("format", f)).Info("set-data-format")
	return nil
}

// StartCont implements alp.Sequence.
func (s *Sequence) StartCont() error {
	if err := s.check(); err != nil {
		return err
	}
	if s.dev.projecting {
		return alp.ErrNotIdle
	}
	s.dev.current = s.id
	s.dev.projecting = true
	s.dev.l.With(zap.Uint64("seq", s.id)).Info("start-cont")
	return nil
}

// Free implements alp.Sequence.
func (s *Sequence) Free() error {
	if err := s.check(); err != nil {
		return err
	}
	if s.inUse() {
		return alp.ErrSequenceInUse
	}
	s.freed = true
	s.dev.used -= s.size
	delete(s.dev.seqs, s.id)
	s.dev.l.With(zap.Uint64("seq", s.id)).Info("free-sequence")
	return nil
}

// Format returns the data format.
func (s *Sequence) Format() alp.DataFormat {
	return s.format
}

// PictureTime returns the picture time, zero if never set.
func (s *Sequence) PictureTime() time.Duration {
	return s.pictureTime
}

// BitPlanes returns the bit depth of each picture.
func (s *Sequence) BitPlanes() int {
	return s.bitPlanes
}

// Pictures returns the number of pictures the sequence holds.
func (s *Sequence) Pictures() int {
	return s.pictures
}

// Data returns the uploaded pictures, nil before the first Put.
func (s *Sequence) Data() []byte {
	return s.data
}

// Picture returns picture n of a binary sequence as a read-only single-plane buffer.
func (s *Sequence) Picture(n int) (bitplane.ReadOnly, error) {
	if !s.format.Binary() || s.data == nil || n < 0 || n >= s.pictures {
		return bitplane.ReadOnly{}, alp.ErrParameterInvalid
	}
	all, err := bitplane.WrapReadOnly(s.data, s.pictures, s.dev.opts.W, s.dev.opts.H)
	if err != nil {
		return bitplane.ReadOnly{}, err
	}
	return all.Plane(n), nil
}
