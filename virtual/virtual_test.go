package virtual

import (
	"bytes"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"periph.io/x/devices/v3/alp"
	"periph.io/x/devices/v3/alp/bitplane"
)

// 16x4 pixels: 8 bytes per binary picture, 64 bytes per byte-per-pixel picture.
func newSmall(opts *Opts) *Device {
	o := Opts{W: 16, H: 4}
	if opts != nil {
		o.Memory, o.Fs, o.Dir = opts.Memory, opts.Fs, opts.Dir
	}
	return New(nil, &o)
}

func allocate(t *testing.T, d *Device, pictures int) *Sequence {
	t.Helper()
	s, err := d.AllocateSequence(1, pictures)
	if err != nil {
		t.Fatalf("AllocateSequence(1, %d): %v", pictures, err)
	}
	return s.(*Sequence)
}

func TestDefaults(t *testing.T) {
	d := New(nil, nil)
	w, h, err := d.DisplaySize()
	if err != nil || w != 1024 || h != 768 {
		t.Errorf("DisplaySize() = (%d, %d, %v), want (1024, 768, nil)", w, h, err)
	}
	if p, err := d.Projecting(); err != nil || p {
		t.Errorf("Projecting() = (%v, %v), want (false, nil)", p, err)
	}
}

func TestAllocateSequence(t *testing.T) {
	tests := []struct {
		name      string
		bitPlanes int
		pictures  int
		wantErr   error
	}{
		{"binary", 1, 3, nil},
		{"8 bit", 8, 1, nil},
		{"no bits", 0, 1, alp.ErrParameterInvalid},
		{"9 bits", 9, 1, alp.ErrParameterInvalid},
		{"no pictures", 1, 0, alp.ErrParameterInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newSmall(nil)
			s, err := d.AllocateSequence(tt.bitPlanes, tt.pictures)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AllocateSequence() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			vs := s.(*Sequence)
			if vs.BitPlanes() != tt.bitPlanes || vs.Pictures() != tt.pictures {
				t.Errorf("sequence = %d bits x %d pictures, want %d x %d", vs.BitPlanes(), vs.Pictures(), tt.bitPlanes, tt.pictures)
			}
			if vs.Format() != alp.MSBAlign {
				t.Errorf("Format() = %v, want MSBAlign", vs.Format())
			}
		})
	}
}

func TestMemoryFull(t *testing.T) {
	d := newSmall(&Opts{Memory: 3 * 64})

	first := allocate(t, d, 2)
	if d.Used() != 128 {
		t.Errorf("Used() = %d, want 128", d.Used())
	}
	if _, err := d.AllocateSequence(1, 2); !errors.Is(err, alp.ErrMemoryFull) {
		t.Errorf("AllocateSequence past memory error = %v, want ErrMemoryFull", err)
	}
	if err := first.Free(); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if d.Used() != 0 {
		t.Errorf("Used() after Free = %d, want 0", d.Used())
	}
	allocate(t, d, 3)
}

func TestPutBinary(t *testing.T) {
	d := newSmall(nil)
	s := allocate(t, d, 3)
	if err := s.SetDataFormat(alp.BinaryTopDown); err != nil {
		t.Fatalf("SetDataFormat: %v", err)
	}

	buf := bitplane.FromFunc(2, 16, 4, func(p, x, y int) bool { return (x+y+p)%2 == 0 })
	if err := s.Put(1, 2, buf.Bytes()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(s.Data()) != 24 {
		t.Fatalf("len(Data()) = %d, want 24", len(s.Data()))
	}
	if !bytes.Equal(s.Data()[8:], buf.Bytes()) {
		t.Error("Data() does not hold the uploaded pictures at offset 1")
	}
	for p := 0; p < 2; p++ {
		pic, err := s.Picture(p + 1)
		if err != nil {
			t.Fatalf("Picture(%d): %v", p+1, err)
		}
		if !bitplane.Equal(pic, buf.Plane(p)) {
			t.Errorf("Picture(%d) differs from plane %d", p+1, p)
		}
	}
	if _, err := s.Picture(3); !errors.Is(err, alp.ErrParameterInvalid) {
		t.Errorf("Picture(3) error = %v, want ErrParameterInvalid", err)
	}
}

func TestPutInvalid(t *testing.T) {
	d := newSmall(nil)
	s := allocate(t, d, 2)

	tests := []struct {
		name      string
		offset, n int
		size      int
	}{
		{"negative offset", -1, 1, 64},
		{"no pictures", 0, 0, 64},
		{"past end", 1, 2, 128},
		{"short data", 0, 2, 127},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Put(tt.offset, tt.n, make([]byte, tt.size)); !errors.Is(err, alp.ErrParameterInvalid) {
				t.Errorf("Put() error = %v, want ErrParameterInvalid", err)
			}
		})
	}

	// Byte-per-pixel pictures need the full size.
	if err := s.Put(0, 2, make([]byte, 128)); err != nil {
		t.Errorf("Put(MSBAlign) error = %v", err)
	}
	if _, err := s.Picture(0); !errors.Is(err, alp.ErrParameterInvalid) {
		t.Errorf("Picture() of a non-binary sequence error = %v, want ErrParameterInvalid", err)
	}
}

func TestProjection(t *testing.T) {
	d := newSmall(nil)
	a := allocate(t, d, 1)
	b := allocate(t, d, 1)

	if err := a.StartCont(); err != nil {
		t.Fatalf("StartCont: %v", err)
	}
	id, projecting, err := d.CurrentSequence()
	if err != nil || !projecting || id != a.ID() {
		t.Errorf("CurrentSequence() = (%d, %v, %v), want (%d, true, nil)", id, projecting, err, a.ID())
	}
	if err := b.StartCont(); !errors.Is(err, alp.ErrNotIdle) {
		t.Errorf("second StartCont() error = %v, want ErrNotIdle", err)
	}
	if err := a.Free(); !errors.Is(err, alp.ErrSequenceInUse) {
		t.Errorf("Free() of projected sequence error = %v, want ErrSequenceInUse", err)
	}
	if err := a.Put(0, 1, make([]byte, 64)); !errors.Is(err, alp.ErrSequenceInUse) {
		t.Errorf("Put() to projected sequence error = %v, want ErrSequenceInUse", err)
	}
	if err := b.Free(); err != nil {
		t.Errorf("Free() of idle sequence: %v", err)
	}

	if err := d.Halt(); err != nil {
		t.Fatalf("Halt: %v", err)
	}
	if _, projecting, _ := d.CurrentSequence(); projecting {
		t.Error("CurrentSequence() still projecting after Halt")
	}
	if err := a.Free(); err != nil {
		t.Errorf("Free() after Halt: %v", err)
	}
	if err := a.Free(); !errors.Is(err, alp.ErrParameterInvalid) {
		t.Errorf("double Free() error = %v, want ErrParameterInvalid", err)
	}
	if got := d.Sequences(); len(got) != 0 {
		t.Errorf("Sequences() = %v, want none", got)
	}
}

func TestSequences(t *testing.T) {
	d := newSmall(nil)
	for i := 0; i < 4; i++ {
		allocate(t, d, 1)
	}
	s, _ := d.Sequence(2)
	if err := s.Free(); err != nil {
		t.Fatalf("Free: %v", err)
	}

	want := []uint64{1, 3, 4}
	got := d.Sequences()
	if len(got) != len(want) {
		t.Fatalf("Sequences() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sequences() = %v, want %v", got, want)
			break
		}
	}
	if _, ok := d.Sequence(2); ok {
		t.Error("Sequence(2) still found after Free")
	}
}

func TestSetPictureTime(t *testing.T) {
	s := allocate(t, newSmall(nil), 1)

	if err := s.SetPictureTime(500 * time.Nanosecond); !errors.Is(err, alp.ErrParameterInvalid) {
		t.Errorf("SetPictureTime(500ns) error = %v, want ErrParameterInvalid", err)
	}
	if err := s.SetPictureTime(1500500 * time.Nanosecond); err != nil {
		t.Fatalf("SetPictureTime: %v", err)
	}
	if got, want := s.PictureTime(), 1500*time.Microsecond; got != want {
		t.Errorf("PictureTime() = %v, want %v", got, want)
	}
}

func TestSetDataFormat(t *testing.T) {
	s := allocate(t, newSmall(nil), 1)

	if err := s.SetDataFormat(alp.DataFormat(7)); !errors.Is(err, alp.ErrParameterInvalid) {
		t.Errorf("SetDataFormat(7) error = %v, want ErrParameterInvalid", err)
	}
	if err := s.Put(0, 1, make([]byte, 64)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.SetDataFormat(alp.BinaryBottomUp); err != nil {
		t.Fatalf("SetDataFormat: %v", err)
	}
	if s.Data() != nil {
		t.Error("Data() kept after switching to a binary format")
	}
}

func TestDump(t *testing.T) {
	fs := afero.NewMemMapFs()
	d := newSmall(&Opts{Fs: fs, Dir: "dumps"})
	s := allocate(t, d, 1)
	if err := s.SetDataFormat(alp.BinaryTopDown); err != nil {
		t.Fatalf("SetDataFormat: %v", err)
	}

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := s.Put(0, 1, data); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := afero.ReadFile(fs, "dumps/seq-1.bin")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("dump = % X, want % X", got, data)
	}
}

func TestDumpReadOnlyFs(t *testing.T) {
	d := newSmall(&Opts{Fs: afero.NewReadOnlyFs(afero.NewMemMapFs()), Dir: "dumps"})
	s := allocate(t, d, 1)
	if err := s.Put(0, 1, make([]byte, 64)); err == nil {
		t.Error("Put() with a read-only dump filesystem should fail")
	}
}

func TestFree(t *testing.T) {
	d := newSmall(nil)
	s := allocate(t, d, 1)

	if err := d.Free(); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if _, err := d.AllocateSequence(1, 1); !errors.Is(err, alp.ErrNotOnline) {
		t.Errorf("AllocateSequence() after Free error = %v, want ErrNotOnline", err)
	}
	if _, _, err := d.DisplaySize(); !errors.Is(err, alp.ErrNotOnline) {
		t.Errorf("DisplaySize() after Free error = %v, want ErrNotOnline", err)
	}
	if err := d.Halt(); !errors.Is(err, alp.ErrNotOnline) {
		t.Errorf("Halt() after Free error = %v, want ErrNotOnline", err)
	}
	if err := s.StartCont(); !errors.Is(err, alp.ErrParameterInvalid) {
		t.Errorf("StartCont() after device Free error = %v, want ErrParameterInvalid", err)
	}
	if err := d.Free(); !errors.Is(err, alp.ErrNotOnline) {
		t.Errorf("second Free() error = %v, want ErrNotOnline", err)
	}
}
