// Package app assembles the machine: store, filesystem, display memory, kernel
// and the stock programs, over whatever HAL the entrypoint provides.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"phosphor/hal"
	"phosphor/internal/logging"
	"phosphor/vos/kernel"
	"phosphor/vos/programs/around"
	"phosphor/vos/programs/palette"
	"phosphor/vos/programs/shell"
	"phosphor/vos/programs/terminal"
	"phosphor/vos/raster"
	"phosphor/vos/store"
	"phosphor/vos/vfs"
)

type Config struct {
	Store store.Options
	// Slots overrides the console table when non-empty.
	Slots []kernel.Slot
	// Programs are registered after the stock programs and may replace them.
	Programs map[string]kernel.Factory
	Seed     uint64
}

// System is a booted machine. Step drives it and must be called from a single
// goroutine; other goroutines go through Kernel().Do and Kernel().Call.
type System struct {
	h   hal.HAL
	k   *kernel.Kernel
	st  *store.Store
	fb  hal.Framebuffer
	log *slog.Logger

	crashed bool
}

// New opens the store, builds the kernel and boots into the login console.
// When cfg.Store.Driver is "flash" and no device is given, the HAL's flash is used.
func New(ctx context.Context, h hal.HAL, cfg Config, log *slog.Logger) (*System, error) {
	if log == nil {
		log = logging.Discard()
	}
	if cfg.Store.Driver == "flash" && cfg.Store.Flash == nil {
		cfg.Store.Flash = h.Flash()
	}

	st, err := store.OpenDriver(ctx, cfg.Store, log)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	sys, err := boot(h, st, cfg, log)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return sys, nil
}

func boot(h hal.HAL, st *store.Store, cfg Config, log *slog.Logger) (*System, error) {
	fs, err := vfs.New(st, log)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	mem := raster.New()
	if err := mem.LoadCharset(st, log); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	s := &System{h: h, st: st, log: log.With(slog.String("component", "app"))}
	var disp kernel.Display
	if d := h.Display(); d != nil {
		if fb := d.Framebuffer(); fb != nil && fb.Format() == hal.PixelFormatRGB565 {
			s.fb = fb
			disp = fb
		}
	}

	k, err := kernel.New(kernel.Options{
		FS:      fs,
		Memory:  mem,
		Display: disp,
		Log:     log,
		Slots:   cfg.Slots,
		Seed:    cfg.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	Register(k)
	for name, f := range cfg.Programs {
		k.Register(name, f)
	}
	s.k = k

	if err := k.Boot(); err != nil {
		return nil, fmt.Errorf("app: boot: %w", err)
	}
	s.log.Info("booted", slog.Int("console", k.ActiveConsole()), slog.Any("programs", k.Programs()))
	return s, nil
}

// Register installs the stock programs.
func Register(k *kernel.Kernel) {
	k.Register("terminal", terminal.New)
	k.Register("shell", shell.New)
	k.Register("palette", palette.New)
	k.Register("around", around.New)
}

func (s *System) Kernel() *kernel.Kernel { return s.k }

// Step feeds pending host input to the kernel and runs one dispatcher
// iteration at the HAL's current time. A panic inside a program stops the
// machine on a crash screen; later Steps do nothing.
func (s *System) Step() error {
	if s.crashed {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			s.crash(r)
		}
	}()

	s.pollInput()
	s.k.Step(s.h.Time().Now())
	return nil
}

// Close flushes the charset and closes the store.
func (s *System) Close() error {
	if err := s.k.Memory().SaveCharset(s.st); err != nil {
		s.log.Warn("charset not saved", logging.Err(err))
	}
	return s.st.Close()
}
