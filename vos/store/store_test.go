package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type memFlash struct {
	buf   []byte
	block uint32
}

func newMemFlash(size, block uint32) *memFlash {
	f := &memFlash{buf: make([]byte, size), block: block}
	for i := range f.buf {
		f.buf[i] = 0xFF
	}
	return f
}

func (f *memFlash) SizeBytes() uint32       { return uint32(len(f.buf)) }
func (f *memFlash) EraseBlockBytes() uint32 { return f.block }

func (f *memFlash) ReadAt(p []byte, off uint32) (int, error) {
	return copy(p, f.buf[off:]), nil
}

func (f *memFlash) WriteAt(p []byte, off uint32) (int, error) {
	for i := range p {
		if f.buf[int(off)+i]&p[i] != p[i] {
			return 0, errors.New("write requires erase")
		}
	}
	return copy(f.buf[off:], p), nil
}

func (f *memFlash) Erase(off, size uint32) error {
	if off%f.block != 0 || size%f.block != 0 {
		return errors.New("unaligned erase")
	}
	for i := off; i < off+size; i++ {
		f.buf[i] = 0xFF
	}
	return nil
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory()

	if _, ok := s.Get("a"); ok {
		t.Fatal("Get(a) ok = true on empty store")
	}
	if err := s.Set("b", []byte("2")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("a", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if got := s.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Keys() = %v, want [a b]", got)
	}
	if err := s.Delete("a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("missing"); err != nil {
		t.Fatalf("Delete(missing) = %v, want nil", err)
	}
	if s.Has("a") {
		t.Fatal("Has(a) = true after delete")
	}
}

func TestSetCopiesValue(t *testing.T) {
	s := NewMemory()
	v := []byte("abc")
	if err := s.Set("k", v); err != nil {
		t.Fatal(err)
	}
	v[0] = 'X'
	got, _ := s.Get("k")
	if string(got) != "abc" {
		t.Fatalf("Get(k) = %q, want %q", got, "abc")
	}
}

func TestFileBackendPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	s, err := Open(ctx, NewFileBackend(path), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("P/hello", []byte("3")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("P:3", []byte("line\x00bin")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("gone", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("gone"); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s2, err := Open(ctx, NewFileBackend(path), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := s2.Get("P:3"); string(got) != "line\x00bin" {
		t.Fatalf("reopened Get(P:3) = %q", got)
	}
	if s2.Has("gone") {
		t.Fatal("reopened store still has deleted key")
	}
	if s2.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s2.Len())
	}
}

func TestFileBackendCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(context.Background(), NewFileBackend(path), nil)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Open(corrupt) error = %v, want ErrCorrupt", err)
	}
}

func TestFlashBackendPersists(t *testing.T) {
	f := newMemFlash(64*1024, 4096)
	ctx := context.Background()

	s, err := Open(ctx, NewFlashBackend(f), nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Fatalf("erased flash Len() = %d, want 0", s.Len())
	}
	for i, v := range []string{"one", "two", "three"} {
		if err := s.Set(v, []byte{byte(i)}); err != nil {
			t.Fatalf("Set(%s) = %v", v, err)
		}
	}
	if err := s.Delete("two"); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(ctx, NewFlashBackend(f), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := s2.Keys(); len(got) != 2 || got[0] != "one" || got[1] != "three" {
		t.Fatalf("Keys() = %v, want [one three]", got)
	}
	if v, _ := s2.Get("three"); len(v) != 1 || v[0] != 2 {
		t.Fatalf("Get(three) = %v, want [2]", v)
	}
}

func TestFlashBackendChecksum(t *testing.T) {
	f := newMemFlash(8192, 4096)
	s, err := Open(context.Background(), NewFlashBackend(f), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("k", []byte("value")); err != nil {
		t.Fatal(err)
	}
	f.buf[flashHeaderSize] ^= 0x01

	if _, err := Open(context.Background(), NewFlashBackend(f), nil); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Open(tampered) error = %v, want ErrCorrupt", err)
	}
}

func TestFlashBackendTooLarge(t *testing.T) {
	f := newMemFlash(4096, 4096)
	s, err := Open(context.Background(), NewFlashBackend(f), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("big", make([]byte, 5000)); err == nil {
		t.Fatal("Set(big) error = nil, want error")
	}
	if s.Has("big") {
		t.Fatal("failed Set left the key in the cache")
	}
}

func TestFlashBackendRejectsOverlongKey(t *testing.T) {
	f := newMemFlash(256*1024, 4096)
	ctx := context.Background()
	s, err := Open(ctx, NewFlashBackend(f), nil)
	if err != nil {
		t.Fatal(err)
	}
	long := "P/" + strings.Repeat("a", 70000)
	if err := s.Set(long, []byte("0")); !errors.Is(err, ErrKeyTooLong) {
		t.Fatalf("Set(long key) error = %v, want ErrKeyTooLong", err)
	}
	if s.Has(long) {
		t.Fatal("rejected key left in the cache")
	}
	if err := s.Set("P/ok", []byte("1")); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(ctx, NewFlashBackend(f), nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if v, ok := s2.Get("P/ok"); !ok || string(v) != "1" {
		t.Fatalf("Get(P/ok) = %q, %v; want 1, true", v, ok)
	}
}

func TestOpenDriverUnknown(t *testing.T) {
	if _, err := OpenDriver(context.Background(), Options{Driver: "tape"}, nil); err == nil {
		t.Fatal("OpenDriver(tape) error = nil, want error")
	}
}

func TestPostgresBackend(t *testing.T) {
	dsn := os.Getenv("PHOSPHOR_TEST_DSN")
	if dsn == "" {
		t.Skip("PHOSPHOR_TEST_DSN not set")
	}
	ctx := context.Background()
	b, err := NewPostgresBackend(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if err := b.Put(ctx, "test/key", []byte("v")); err != nil {
		t.Fatal(err)
	}
	m, err := b.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if string(m["test/key"]) != "v" {
		t.Fatalf("Load()[test/key] = %q, want v", m["test/key"])
	}
	if err := b.Remove(ctx, "test/key"); err != nil {
		t.Fatal(err)
	}
}
