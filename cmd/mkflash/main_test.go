package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"phosphor/hal"
	"phosphor/internal/logging"
	"phosphor/vos/store"
	"phosphor/vos/vfs"
)

func TestRunImportsDirectory(t *testing.T) {
	src := t.TempDir()
	write := func(name, contents string) {
		if err := os.WriteFile(filepath.Join(src, name), []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("notes", "buy milk\n")
	write("hello", "print 'hi'")
	write("bad name", "skipped")
	if err := os.Mkdir(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "test.flash")
	if err := run(context.Background(), src, out, 64*1024, logging.Discard()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	h := hal.New(hal.Options{FlashPath: out})
	defer h.Close()
	if got := h.Flash().SizeBytes(); got != 64*1024 {
		t.Fatalf("image size = %d", got)
	}

	st, err := store.Open(context.Background(), store.NewFlashBackend(h.Flash()), nil)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	fs, err := vfs.New(st, nil)
	if err != nil {
		t.Fatal(err)
	}

	for name, want := range map[string]string{"notes": "buy milk\n", "hello": "print 'hi'"} {
		f, err := fs.Open(name, "r")
		if err != nil {
			t.Fatalf("Open(%q) error = %v", name, err)
		}
		v, _ := f.Read(vfs.FormatAll)
		if v.Str != want {
			t.Fatalf("%s = %q, want %q", name, v.Str, want)
		}
	}
	if fs.Exists("bad name") || fs.Exists("sub") {
		t.Fatalf("unexpected files: %v", fs.List())
	}
	if !fs.Exists("dream") {
		t.Fatal("default files were not seeded")
	}
}

func TestCreateImageRejectsOddSize(t *testing.T) {
	if _, err := createImage(filepath.Join(t.TempDir(), "x"), 1000); err == nil {
		t.Fatal("odd size accepted")
	}
}

func TestCreateImageReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.flash")
	if err := os.WriteFile(path, make([]byte, 3*eraseSize), 0o644); err != nil {
		t.Fatal(err)
	}
	h, err := createImage(path, eraseSize)
	if err != nil {
		t.Fatalf("createImage() error = %v", err)
	}
	defer h.Close()
	b := make([]byte, 1)
	if _, err := h.Flash().ReadAt(b, 0); err != nil || b[0] != 0xFF {
		t.Fatalf("first byte = %#x, %v; want erased", b[0], err)
	}
	if got := h.Flash().SizeBytes(); got != eraseSize {
		t.Fatalf("size = %d, want %d", got, eraseSize)
	}
}
