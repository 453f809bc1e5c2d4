package app

import (
	"fmt"
	"image/color"
	"log/slog"
	"runtime/debug"
	"strings"

	"tinygo.org/x/tinyfont"

	"phosphor/hal"
	"phosphor/internal/logging"
	"phosphor/vos/fonts/font6x8"
	"phosphor/vos/raster"
)

// crash logs a program panic and paints it over the display.
func (s *System) crash(v any) {
	s.crashed = true
	stack := string(debug.Stack())
	name := "?"
	if p := s.k.Current(); p != nil {
		name = p.Name()
	}
	s.log.Error("program panic", slog.String("program", name), slog.Any("panic", v), slog.String("stack", stack))

	if s.fb == nil {
		return
	}
	s.fb.ClearRGB(0, 0, 0)
	d := panicDisplay{fb: s.fb}

	lines := []string{
		"PANIC",
		"program: " + name,
		fmt.Sprintf("panic: %v", v),
	}
	for _, line := range strings.Split(stack, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	fg := raster.Palette(raster.Red)
	cols := max(s.fb.Width()/font6x8.Width, 1)
	y := 0
	for _, line := range lines {
		for len(line) > 0 && y+font6x8.Height <= s.fb.Height() {
			chunk := line[:min(len(line), cols)]
			drawTextLine(d, 0, y, chunk, fg)
			y += font6x8.Height
			line = line[len(chunk):]
		}
		fg = raster.Palette(raster.White)
	}
	if err := s.fb.Present(); err != nil {
		s.log.Error("present failed", logging.Err(err))
	}
}

func drawTextLine(d panicDisplay, x0, y0 int, s string, fg color.RGBA) {
	x := int16(x0)
	for _, r := range s {
		tinyfont.DrawChar(d, font6x8.Font, x, int16(y0+font6x8.Height-1), r, fg)
		x += font6x8.Width
	}
}

type panicDisplay struct {
	fb hal.Framebuffer
}

func (d panicDisplay) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d panicDisplay) SetPixel(x, y int16, c color.RGBA) {
	w, h := d.fb.Width(), d.fb.Height()
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= w || iy < 0 || iy >= h {
		return
	}
	pixel := uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
	off := iy*d.fb.StrideBytes() + ix*2
	buf := d.fb.Buffer()
	if off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d panicDisplay) Display() error { return nil }
