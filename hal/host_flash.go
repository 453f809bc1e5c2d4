package hal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

const (
	hostFlashDefaultSizeBytes = 2 * 1024 * 1024
	hostFlashEraseBlockBytes  = 4096
)

var ErrFlashWriteRequiresErase = errors.New("flash write requires erase")

var erasedBlock = bytes.Repeat([]byte{0xFF}, hostFlashEraseBlockBytes)

// hostFlash emulates NOR flash in a file: programming only clears bits and
// erase sets whole blocks back to 0xFF.
type hostFlash struct {
	mu   sync.Mutex
	f    *os.File
	err  error // why f is nil
	size uint32
}

// newHostFlash opens or creates the flash image at path. An existing image keeps
// its size; a new one is size bytes of erased flash. A failure is kept and
// returned by every later operation.
func newHostFlash(path string, size uint32) *hostFlash {
	if size == 0 || size%hostFlashEraseBlockBytes != 0 {
		size = hostFlashDefaultSizeBytes
	}
	f, size, err := openFlashImage(path, size)
	if err != nil {
		return &hostFlash{err: fmt.Errorf("flash image %s: %w", path, err)}
	}
	return &hostFlash{f: f, size: size}
}

func openFlashImage(path string, size uint32) (*os.File, uint32, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, 0, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	switch n := st.Size(); {
	case n > int64(^uint32(0)):
		_ = f.Close()
		return nil, 0, fmt.Errorf("%d bytes is too large", n)
	case n > 0:
		return f, uint32(n), nil
	}
	for off := int64(0); off < int64(size); off += hostFlashEraseBlockBytes {
		if _, err := f.WriteAt(erasedBlock, off); err != nil {
			_ = f.Close()
			return nil, 0, err
		}
	}
	return f, size, nil
}

func (f *hostFlash) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f, f.err = nil, os.ErrClosed
	return err
}

func (f *hostFlash) SizeBytes() uint32       { return f.size }
func (f *hostFlash) EraseBlockBytes() uint32 { return hostFlashEraseBlockBytes }

// clip trims p to the device end. Callers hold mu.
func (f *hostFlash) clip(op string, p []byte, off uint32) ([]byte, error) {
	if f.f == nil {
		if f.err != nil {
			return nil, f.err
		}
		return nil, ErrNotImplemented
	}
	if off >= f.size {
		return nil, fmt.Errorf("flash %s at %d: %w", op, off, os.ErrInvalid)
	}
	if rest := f.size - off; uint32(len(p)) > rest {
		p = p[:rest]
	}
	return p, nil
}

func (f *hostFlash) ReadAt(p []byte, off uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.clip("read", p, off)
	if err != nil {
		return 0, err
	}
	return f.f.ReadAt(p, int64(off))
}

func (f *hostFlash) WriteAt(p []byte, off uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.clip("write", p, off)
	if err != nil {
		return 0, err
	}
	cur := make([]byte, len(p))
	if _, err := f.f.ReadAt(cur, int64(off)); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("flash write at %d: %w", off, err)
	}
	for i, b := range p {
		if cur[i]&b != b {
			return 0, ErrFlashWriteRequiresErase
		}
	}
	return f.f.WriteAt(p, int64(off))
}

func (f *hostFlash) Erase(off, size uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if size == 0 {
		return nil
	}
	if _, err := f.clip("erase", nil, off); err != nil {
		return err
	}
	if off%hostFlashEraseBlockBytes != 0 || size%hostFlashEraseBlockBytes != 0 || size > f.size-off {
		return fmt.Errorf("flash erase off=%d size=%d: %w", off, size, os.ErrInvalid)
	}
	for end := off + size; off < end; off += hostFlashEraseBlockBytes {
		if _, err := f.f.WriteAt(erasedBlock, int64(off)); err != nil {
			return fmt.Errorf("flash erase block at %d: %w", off, err)
		}
	}
	return nil
}
