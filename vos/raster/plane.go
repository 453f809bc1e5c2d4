package raster

import (
	"image/color"

	"tinygo.org/x/drivers"
)

// Plane is an off-screen 240x160 surface that renderers written against the TinyGo
// display drivers can draw into. Colors are quantized to the palette on write.
type Plane struct {
	pix    [ScreenBytes]byte
	scroll int16
}

func NewPlane() *Plane { return &Plane{} }

func (p *Plane) Size() (x, y int16) { return Width, Height }

func (p *Plane) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= Width || y >= Height {
		return
	}
	p.pix[int(y)*Width+int(x)] = Quantize(c)
}

func (p *Plane) Display() error { return nil }

func (p *Plane) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+width, Width), min(y+height, Height)
	v := Quantize(c)
	for yy := y0; yy < y1; yy++ {
		row := p.pix[int(yy)*Width:]
		for xx := x0; xx < x1; xx++ {
			row[xx] = v
		}
	}
	return nil
}

// SetScroll records the hardware scroll line. The plane only supports software
// scrolling, so it has no effect on the pixels.
func (p *Plane) SetScroll(line int16) { p.scroll = line }

func (p *Plane) SetRotation(drivers.Rotation) error { return nil }

// ScrollUp moves the contents up by n rows and fills the freed rows with bg.
func (p *Plane) ScrollUp(n int16, bg color.RGBA) error {
	if n <= 0 {
		return nil
	}
	if n > Height {
		n = Height
	}
	off := int(n) * Width
	copy(p.pix[:], p.pix[off:])
	v := Quantize(bg)
	for i := ScreenBytes - off; i < ScreenBytes; i++ {
		p.pix[i] = v
	}
	return nil
}

// Fill sets every pixel to palette index c.
func (p *Plane) Fill(c byte) {
	for i := range p.pix {
		p.pix[i] = c
	}
}

// At returns the palette index at x, y.
func (p *Plane) At(x, y int) byte {
	if x < 0 || y < 0 || x >= Width || y >= Height {
		return 0
	}
	return p.pix[y*Width+x]
}
