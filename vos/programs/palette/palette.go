// Package palette shows the 64 display colors as an 8x8 grid of swatches.
// Clicking a swatch selects it and shows its index and RGB value.
package palette

import (
	"fmt"

	"phosphor/vos/kernel"
	"phosphor/vos/raster"
)

const (
	cols    = 8
	cellW   = raster.Width / cols
	cellH   = 18
	barY    = cellH * 8
	textPad = 2
)

type Palette struct {
	ctx      *kernel.Context
	selected int
}

func New(ctx *kernel.Context) kernel.Program {
	return &Palette{ctx: ctx, selected: raster.Green}
}

func (p *Palette) Draw() {
	p.ctx.Clear(raster.Black)
	for c := 0; c < 64; c++ {
		x, y := (c%cols)*cellW, (c/cols)*cellH
		p.ctx.Box(x, y, cellW, cellH, c)
		p.ctx.Text(fmt.Sprintf("%2d", c), x+textPad, y+(cellH-raster.GlyphHeight)/2, label(c), c)
	}
	sx, sy := (p.selected%cols)*cellW, (p.selected/cols)*cellH
	p.ctx.Rect(sx, sy, cellW, cellH, raster.NoColor, raster.White)

	rgb := raster.Palette(byte(p.selected))
	info := fmt.Sprintf("color %2d  #%02x%02x%02x", p.selected, rgb.R, rgb.G, rgb.B)
	p.ctx.Text(info, textPad, barY+(raster.Height-barY-raster.GlyphHeight)/2, raster.DefaultFG, raster.Black)
}

// label picks a text color readable on swatch c.
func label(c int) int {
	r, g, b := c>>4&3, c>>2&3, c&3
	if r+2*g+b >= 6 {
		return raster.Black
	}
	return raster.White
}

func (p *Palette) PointerDown(ev kernel.PointerEvent) {
	if ev.X < 0 || ev.Y < 0 || ev.Y >= barY || ev.X >= cols*cellW {
		return
	}
	p.selected = ev.Y/cellH*cols + ev.X/cellW
}

// KeyDown moves the selection with the arrow keys.
func (p *Palette) KeyDown(ev kernel.KeyEvent) {
	switch ev.Code {
	case kernel.KeyLeft:
		p.selected = (p.selected + 63) % 64
	case kernel.KeyRight:
		p.selected = (p.selected + 1) % 64
	case kernel.KeyUp:
		p.selected = (p.selected + 64 - cols) % 64
	case kernel.KeyDown:
		p.selected = (p.selected + cols) % 64
	}
}
