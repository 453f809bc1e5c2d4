package store

import (
	"context"
	"fmt"
	"log/slog"
)

// Options selects and configures a backend for OpenDriver.
type Options struct {
	Driver string // memory, file, flash, postgres
	Path   string // file
	DSN    string // postgres
	Flash  Flash  // flash
}

// OpenDriver builds the backend named by opts.Driver and opens a Store over it.
func OpenDriver(ctx context.Context, opts Options, log *slog.Logger) (*Store, error) {
	var b Backend
	switch opts.Driver {
	case "", "memory":
	case "file":
		if opts.Path == "" {
			return nil, fmt.Errorf("store: file driver needs a path")
		}
		b = NewFileBackend(opts.Path)
	case "flash":
		if opts.Flash == nil {
			return nil, fmt.Errorf("store: flash driver needs a device")
		}
		b = NewFlashBackend(opts.Flash)
	case "postgres":
		if opts.DSN == "" {
			return nil, fmt.Errorf("store: postgres driver needs a dsn")
		}
		pb, err := NewPostgresBackend(ctx, opts.DSN)
		if err != nil {
			return nil, err
		}
		b = pb
	default:
		return nil, fmt.Errorf("store: unknown driver %q", opts.Driver)
	}

	s, err := Open(ctx, b, log)
	if err != nil {
		if b != nil {
			_ = b.Close()
		}
		return nil, err
	}
	if log != nil {
		log.Info("store opened", slog.String("driver", driverName(opts.Driver)), slog.Int("keys", s.Len()))
	}
	return s, nil
}

func driverName(d string) string {
	if d == "" {
		return "memory"
	}
	return d
}
