package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"phosphor/app"
	"phosphor/hal"
	"phosphor/internal/buildinfo"
	"phosphor/internal/config"
	"phosphor/internal/logging"
	"phosphor/vos/debugsrv"
	"phosphor/vos/kernel"
	"phosphor/vos/raster"
	"phosphor/vos/store"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to a YAML config file (environment only when empty).")
	headless := flag.Bool("headless", false, "Run without a window.")
	ticks := flag.Uint64("ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *headless {
		cfg.Headless.Enabled = true
	}
	if *ticks > 0 {
		cfg.Headless.Ticks = *ticks
	}

	if err := run(cfg); err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx = logging.MakeContextWithNewSession(ctx)
	log := logging.New(os.Stderr, logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}).
		With(slog.String("session", logging.GetSessionFromCtx(ctx)))
	log.Info("starting", slog.String("version", buildinfo.Full()), slog.String("store", cfg.Store.Driver))

	flashPath := ""
	if cfg.Store.Driver == "flash" {
		flashPath = cfg.Store.FlashPath
	}
	h := hal.New(hal.Options{Width: raster.Width, Height: raster.Height, FlashPath: flashPath})
	defer h.Close()

	sys, err := app.New(ctx, h, app.Config{
		Store: store.Options{Driver: cfg.Store.Driver, Path: cfg.Store.Path, DSN: cfg.Store.DSN},
		Slots: slots(cfg.Consoles),
	}, log)
	if err != nil {
		log.Error("boot failed", logging.Err(err))
		return err
	}
	defer func() {
		if err := sys.Close(); err != nil {
			log.Error("shutdown", logging.Err(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Debug.Addr != "" {
		srv := debugsrv.New(sys.Kernel(), log)
		g.Go(func() error { return srv.Run(gctx, cfg.Debug.Addr) })
	}

	if cfg.Headless.Enabled {
		err = hal.RunHeadless(gctx, h, hal.HeadlessConfig{Hz: cfg.Headless.Hz, Ticks: cfg.Headless.Ticks}, sys.Step)
	} else {
		title := cfg.Window.Title + " (" + buildinfo.Short() + ")"
		err = hal.RunWindow(gctx, h, hal.WindowOptions{Title: title, Scale: cfg.Window.Scale}, sys.Step)
	}
	cancel()
	if werr := g.Wait(); werr != nil && !errors.Is(werr, context.Canceled) && err == nil {
		err = werr
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("stopped", logging.Err(err))
	}
	return err
}

// slots turns the configured console table into kernel slots. An empty table
// keeps the stock one.
func slots(cs []config.ConsoleSlot) []kernel.Slot {
	if len(cs) == 0 {
		return nil
	}
	out := make([]kernel.Slot, 0, len(cs))
	for _, c := range cs {
		out = append(out, kernel.Slot{ID: c.Slot, Program: c.Program, Args: c.Args})
	}
	return out
}
