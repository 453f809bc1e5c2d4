// Package vfs is the flat inode filesystem kept in the Store.
//
// Store keys:
//
//	P/          initialized marker
//	P/<name>    decimal inode id
//	P:<id>      file contents
//	P.next_inode decimal next inode id
//
// Names never alias: every name owns exactly one inode, and copying a file duplicates
// its bytes under a fresh inode.
package vfs

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"phosphor/internal/logging"
	"phosphor/vos/store"
)

const (
	keyMarker    = "P/"
	keyNextInode = "P.next_inode"
	prefixName   = "P/"
	prefixInode  = "P:"
)

// Ino identifies one blob of file contents.
type Ino int64

// Info describes one file.
type Info struct {
	Name string
	Ino  Ino
	Size int
}

// FS is not safe for concurrent use; the kernel dispatcher serializes all calls.
type FS struct {
	st  *store.Store
	log *slog.Logger
}

// New returns a filesystem over st, seeding the default files on first use.
func New(st *store.Store, log *slog.Logger) (*FS, error) {
	if log == nil {
		log = logging.Discard()
	}
	fs := &FS{st: st, log: log.With(slog.String("component", "vfs"))}
	if err := fs.init(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FS) init() error {
	if fs.st.Has(keyMarker) {
		return nil
	}
	if err := fs.st.Set(keyMarker, []byte("true")); err != nil {
		return fmt.Errorf("vfs: init: %w", err)
	}

	next := Ino(0)
	for _, f := range defaultFiles {
		if err := fs.st.Set(nameKey(f.name), []byte(strconv.FormatInt(int64(next), 10))); err != nil {
			return fmt.Errorf("vfs: init %s: %w", f.name, err)
		}
		if err := fs.st.Set(inodeKey(next), []byte(f.contents)); err != nil {
			return fmt.Errorf("vfs: init %s: %w", f.name, err)
		}
		next++
	}
	if err := fs.st.Set(keyNextInode, []byte(strconv.FormatInt(int64(next), 10))); err != nil {
		return fmt.Errorf("vfs: init: %w", err)
	}
	fs.log.Info("filesystem initialized", slog.Int("files", len(defaultFiles)))
	return nil
}

// ValidName reports whether name is non-empty and uses only [A-Za-z0-9._-].
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

// Lookup returns the inode a name refers to.
func (fs *FS) Lookup(name string) (Ino, bool) {
	if name == "" {
		return 0, false
	}
	v, ok := fs.st.Get(nameKey(name))
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		fs.log.Warn("bad directory entry", slog.String("name", name), slog.String("value", string(v)))
		return 0, false
	}
	return Ino(n), true
}

// Exists reports whether name is present.
func (fs *FS) Exists(name string) bool {
	_, ok := fs.Lookup(name)
	return ok
}

// Stat describes a file by name.
func (fs *FS) Stat(name string) (Info, error) {
	ino, ok := fs.Lookup(name)
	if !ok {
		return Info{}, ErrNotFound
	}
	b, _ := fs.st.Get(inodeKey(ino))
	return Info{Name: name, Ino: ino, Size: len(b)}, nil
}

// Open opens name with a mode string such as "r", "w+" or "ab".
func (fs *FS) Open(name, mode string) (*File, error) {
	m, ok := ParseMode(mode)
	if !ok {
		return nil, ErrBadMode
	}
	return fs.OpenMode(name, m)
}

// OpenMode opens name. Missing names are created unless m reads; write intent
// truncates existing contents immediately.
func (fs *FS) OpenMode(name string, m Mode) (*File, error) {
	if !ValidName(name) {
		return nil, ErrBadName
	}

	ino, ok := fs.Lookup(name)
	switch {
	case !ok && m.Intent() == 'r':
		return nil, ErrNotFound
	case !ok:
		var err error
		ino, err = fs.create(name)
		if err != nil {
			return nil, err
		}
	case m.Intent() == 'w':
		if err := fs.st.Set(inodeKey(ino), nil); err != nil {
			return nil, ioError(err)
		}
	}
	return &File{fs: fs, ino: ino, mode: m}, nil
}

func (fs *FS) create(name string) (Ino, error) {
	next := Ino(0)
	if v, ok := fs.st.Get(keyNextInode); ok {
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return 0, ioError(fmt.Errorf("bad inode counter %q", v))
		}
		next = Ino(n)
	}

	if err := fs.st.Set(keyNextInode, []byte(strconv.FormatInt(int64(next+1), 10))); err != nil {
		return 0, ioError(err)
	}
	if err := fs.st.Set(inodeKey(next), nil); err != nil {
		return 0, ioError(err)
	}
	if err := fs.st.Set(nameKey(name), []byte(strconv.FormatInt(int64(next), 10))); err != nil {
		return 0, ioError(err)
	}
	fs.log.Debug("inode created", slog.String("name", name), slog.Int64("ino", int64(next)))
	return next, nil
}

// Delete removes name and its inode. Once the name is gone the delete has
// happened; an inode that cannot be removed after that is only logged.
func (fs *FS) Delete(name string) error {
	ino, ok := fs.Lookup(name)
	if !ok {
		return ErrNotFound
	}
	if err := fs.st.Delete(nameKey(name)); err != nil {
		return ioError(err)
	}
	if err := fs.st.Delete(inodeKey(ino)); err != nil {
		fs.log.Warn("orphaned inode", slog.String("name", name), slog.Int64("ino", int64(ino)), logging.Err(err))
	}
	return nil
}

// List returns every file name. The order is not significant.
func (fs *FS) List() []string {
	var names []string
	for _, k := range fs.st.Keys() {
		if !strings.HasPrefix(k, prefixName) {
			continue
		}
		name := k[len(prefixName):]
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}
	return names
}

func (fs *FS) contents(ino Ino) ([]byte, bool) {
	return fs.st.Get(inodeKey(ino))
}

func (fs *FS) setContents(ino Ino, b []byte) error {
	if err := fs.st.Set(inodeKey(ino), b); err != nil {
		return ioError(err)
	}
	return nil
}

func nameKey(name string) string { return prefixName + name }
func inodeKey(ino Ino) string    { return prefixInode + strconv.FormatInt(int64(ino), 10) }
