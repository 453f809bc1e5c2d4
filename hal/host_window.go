//go:build cgo

package hal

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

// WindowOptions configures the desktop window.
type WindowOptions struct {
	Title string
	Scale int
}

// RunWindow opens a desktop window that shows the framebuffer and forwards
// keyboard and pointer input, calling step once per frame. It blocks until the
// window closes, step fails or ctx ends, and must run on the main goroutine.
func RunWindow(ctx context.Context, h *Host, opts WindowOptions, step func() error) error {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	g := &hostGame{ctx: ctx, h: h, step: step}
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(h.fb.width*opts.Scale, h.fb.height*opts.Scale)
	ebiten.SetTPS(60)
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

type hostGame struct {
	ctx   context.Context
	h     *Host
	pix   []byte
	img   *ebiten.Image
	frame uint64
	step  func() error
}

func (g *hostGame) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	g.h.kbd.poll()
	g.h.ptr.poll()
	g.h.t.sync()
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil {
		g.pix = make([]byte, fb.width*fb.height*4)
		g.img = ebiten.NewImage(fb.width, fb.height)
	}
	if n := fb.snapshotRGBA(g.pix); n != g.frame {
		g.frame = n
		g.img.WritePixels(g.pix)
	}
	screen.DrawImage(g.img, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
