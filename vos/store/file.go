package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

type fileImage struct {
	Version int               `json:"version"`
	Keys    map[string][]byte `json:"keys"`
}

const fileImageVersion = 1

// FileBackend keeps the whole map as one JSON document and rewrites it on every change.
type FileBackend struct {
	path string
	m    map[string][]byte
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path, m: make(map[string][]byte)}
}

func (f *FileBackend) Load(_ context.Context) (map[string][]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string][]byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return map[string][]byte{}, nil
	}

	var img fileImage
	if err := json.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", f.path, ErrCorrupt, err)
	}
	if img.Version != fileImageVersion {
		return nil, fmt.Errorf("%s: %w: version %d", f.path, ErrCorrupt, img.Version)
	}
	if img.Keys == nil {
		img.Keys = make(map[string][]byte)
	}
	f.m = img.Keys

	out := make(map[string][]byte, len(f.m))
	for k, v := range f.m {
		out[k] = v
	}
	return out, nil
}

func (f *FileBackend) Put(_ context.Context, key string, value []byte) error {
	old, had := f.m[key]
	f.m[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.m[key] = old
		} else {
			delete(f.m, key)
		}
		return err
	}
	return nil
}

func (f *FileBackend) Remove(_ context.Context, key string) error {
	old, had := f.m[key]
	if !had {
		return nil
	}
	delete(f.m, key)
	if err := f.flush(); err != nil {
		f.m[key] = old
		return err
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }

func (f *FileBackend) flush() error {
	data, err := json.Marshal(fileImage{Version: fileImageVersion, Keys: f.m})
	if err != nil {
		return fmt.Errorf("encode store image: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp image: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
