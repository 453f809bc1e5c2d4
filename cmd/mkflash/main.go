// Command mkflash builds a flash image holding the files of a host directory,
// for booting the machine with the flash store driver.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"phosphor/hal"
	"phosphor/internal/logging"
	"phosphor/vos/store"
	"phosphor/vos/vfs"
)

const (
	defaultFlashPath = "phosphor.flash"
	defaultFlashSize = 2 * 1024 * 1024
	eraseSize        = 4096
)

// createImage writes a fully erased image of size bytes at path, replacing any
// existing file, and returns the host whose flash device is backed by it.
func createImage(path string, size uint32) (*hal.Host, error) {
	if size == 0 || size%eraseSize != 0 {
		return nil, fmt.Errorf("flash: size %d not multiple of erase size %d", size, eraseSize)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("replace flash file %q: %w", path, err)
	}
	h := hal.New(hal.Options{FlashPath: path, FlashSize: size})
	if _, err := h.Flash().ReadAt(make([]byte, 1), 0); err != nil {
		_ = h.Close()
		return nil, err
	}
	return h, nil
}

func main() {
	var srcDir, outPath string
	var flashSize uint
	flag.StringVar(&srcDir, "src", "", "Directory whose files are copied into the image.")
	flag.StringVar(&outPath, "out", defaultFlashPath, "Output flash image path.")
	flag.UintVar(&flashSize, "size", defaultFlashSize, "Flash image size (bytes).")
	flag.Parse()

	if srcDir == "" {
		fmt.Fprintln(os.Stderr, "error: -src is required")
		os.Exit(2)
	}

	log := logging.New(os.Stderr, logging.Options{Level: "info"})
	if err := run(context.Background(), srcDir, outPath, uint32(flashSize), log); err != nil {
		log.Error("mkflash failed", logging.Err(err))
		os.Exit(1)
	}
}

// run imports the regular files directly inside srcDir. Subdirectories and names
// the filesystem cannot hold are skipped. The default files are seeded first, so
// a host file with the same name replaces one.
func run(ctx context.Context, srcDir, outPath string, flashSize uint32, log *slog.Logger) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("read src %q: %w", srcDir, err)
	}

	h, err := createImage(outPath, flashSize)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	st, err := store.Open(ctx, store.NewFlashBackend(h.Flash()), log)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	vol, err := vfs.New(st, log)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		switch {
		case !e.Type().IsRegular():
			continue
		case !vfs.ValidName(e.Name()):
			log.Warn("skipping file", slog.String("name", e.Name()), slog.String("reason", "invalid name"))
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if err := copyFile(vol, filepath.Join(srcDir, name), name); err != nil {
			return err
		}
	}
	log.Info("flash image written", slog.String("path", outPath), slog.Int("files", len(vol.List())))
	return nil
}

func copyFile(vol *vfs.FS, hostPath, name string) error {
	b, err := os.ReadFile(hostPath)
	if err != nil {
		return fmt.Errorf("read %q: %w", hostPath, err)
	}
	f, err := vol.Open(name, "w")
	if err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(b); err != nil {
		return fmt.Errorf("write %q: %w", name, err)
	}
	return nil
}
