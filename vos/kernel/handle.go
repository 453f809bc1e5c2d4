package kernel

import (
	"phosphor/vos/vfs"
)

// Handle is an open file as seen through a descriptor.
//
// Read may complete later; done is called exactly once on the dispatcher.
type Handle interface {
	Read(fm vfs.Format, done func(vfs.Value, error))
	Write(chunks ...[]byte) (int, error)
	Seek(offset int64, whence vfs.Whence) (int64, error)
	Close() error
}

type fileHandle struct {
	f *vfs.File
}

func (h fileHandle) Read(fm vfs.Format, done func(vfs.Value, error)) {
	done(h.f.Read(fm))
}

func (h fileHandle) Write(chunks ...[]byte) (int, error) { return h.f.Write(chunks...) }

func (h fileHandle) Seek(offset int64, whence vfs.Whence) (int64, error) {
	return h.f.Seek(offset, whence), nil
}

func (h fileHandle) Close() error { return h.f.Close() }

// ttyHandle routes descriptor I/O to a TTY program. Every read format reads a line.
type ttyHandle struct {
	k   *Kernel
	tty TTY
}

func (h ttyHandle) Read(_ vfs.Format, done func(vfs.Value, error)) {
	h.tty.ReadLine(func(line string) {
		done(vfs.StringValue(line), nil)
	})
}

func (h ttyHandle) Write(chunks ...[]byte) (int, error) {
	n := 0
	for _, c := range chunks {
		m, err := h.tty.Write(c)
		n += m
		if err != nil {
			return n, err
		}
	}
	h.k.requestRedraw()
	return n, nil
}

func (h ttyHandle) Seek(int64, vfs.Whence) (int64, error) { return 0, nil }

func (h ttyHandle) Close() error { return nil }
