package hal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestChordRune(t *testing.T) {
	tests := []struct {
		name string
		want rune
		ok   bool
	}{
		{"A", 'a', true},
		{"Z", 'z', true},
		{"Digit0", '0', true},
		{"Digit6", '6', true},
		{"Backquote", '`', true},
		{"Enter", 0, false},
		{"DigitX", 0, false},
		{"F1", 0, false},
	}
	for _, tc := range tests {
		got, ok := chordRune(tc.name)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("chordRune(%q) = %q, %v; want %q, %v", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFramebufferPresentPublishesFrame(t *testing.T) {
	fb := newHostFramebuffer(2, 1)
	fb.ClearRGB(255, 0, 0)

	dst := make([]byte, 2*1*4)
	if n := fb.snapshotRGBA(dst); n != 0 || dst[0] != 0 {
		t.Fatalf("before Present: frames = %d, red = %d", n, dst[0])
	}
	if err := fb.Present(); err != nil {
		t.Fatal(err)
	}
	if n := fb.snapshotRGBA(dst); n != 1 {
		t.Fatalf("frames = %d, want 1", n)
	}
	if dst[0] != 255 || dst[1] != 0 || dst[2] != 0 || dst[3] != 255 || dst[4] != 255 {
		t.Fatalf("pixels = %v", dst)
	}
}

func TestHostFlash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.flash")
	f := newHostFlash(path, 2*hostFlashEraseBlockBytes)
	defer f.Close()

	if f.SizeBytes() != 2*hostFlashEraseBlockBytes {
		t.Fatalf("size = %d", f.SizeBytes())
	}
	buf := make([]byte, 4)
	if _, err := f.ReadAt(buf, 0); err != nil || buf[0] != 0xFF {
		t.Fatalf("fresh image read = %v, %v; want erased", buf, err)
	}
	if _, err := f.WriteAt([]byte{0x0F}, 0); err != nil {
		t.Fatalf("WriteAt() error = %v", err)
	}
	if _, err := f.WriteAt([]byte{0xF0}, 0); !errors.Is(err, ErrFlashWriteRequiresErase) {
		t.Fatalf("WriteAt over programmed bits error = %v", err)
	}
	if err := f.Erase(0, hostFlashEraseBlockBytes); err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteAt([]byte{0xF0}, 0); err != nil {
		t.Fatalf("WriteAt after erase error = %v", err)
	}
	if err := f.Erase(1, hostFlashEraseBlockBytes); err == nil {
		t.Fatal("unaligned erase succeeded")
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	again := newHostFlash(path, 0)
	defer again.Close()
	if _, err := again.ReadAt(buf[:1], 0); err != nil || buf[0] != 0xF0 {
		t.Fatalf("reopened read = %#x, %v", buf[0], err)
	}
}

func TestNewWithoutFlashPath(t *testing.T) {
	h := New(Options{})
	if w, ht := h.Display().Framebuffer().Width(), h.Display().Framebuffer().Height(); w != 240 || ht != 160 {
		t.Fatalf("framebuffer = %dx%d", w, ht)
	}
	if _, err := h.Flash().ReadAt(make([]byte, 1), 0); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("flash read error = %v", err)
	}
}

func TestRunHeadlessAdvancesClockPerTick(t *testing.T) {
	h := New(Options{})
	start := h.Time().Now()

	var steps int
	err := RunHeadless(context.Background(), h, HeadlessConfig{Hz: 100, Ticks: 5}, func() error {
		steps++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if steps != 5 {
		t.Fatalf("steps = %d, want 5", steps)
	}
	if got := h.Time().Now().Sub(start); got != 50*time.Millisecond {
		t.Fatalf("clock advanced %v, want 50ms", got)
	}
}

func TestRunHeadlessStopsOnStepError(t *testing.T) {
	boom := errors.New("boom")
	err := RunHeadless(context.Background(), New(Options{}), HeadlessConfig{Hz: 1000}, func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
}

func TestHostFlashOpenErrorSurfaces(t *testing.T) {
	f := newHostFlash(filepath.Join(t.TempDir(), "missing", "x.flash"), 0)
	_, err := f.ReadAt(make([]byte, 1), 0)
	if err == nil || errors.Is(err, ErrNotImplemented) {
		t.Fatalf("read error = %v, want the open error", err)
	}
	if err := f.Erase(0, hostFlashEraseBlockBytes); err == nil {
		t.Fatal("erase on unopened flash succeeded")
	}
}
