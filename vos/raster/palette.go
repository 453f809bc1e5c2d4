package raster

import "image/color"

// Named colors used by the system programs.
const (
	Black = 0
	Green = 28
	Amber = 56
	Red   = 48
	White = 63
)

var levels = [4]uint8{0x00, 0x55, 0xaa, 0xff}

// Palette maps a 6-bit rrggbb color index to RGB. Only the low 6 bits of c are used.
func Palette(c byte) color.RGBA {
	return color.RGBA{levels[c>>4&3], levels[c>>2&3], levels[c&3], 0xff}
}

// Quantize returns the palette index nearest to c.
func Quantize(c color.RGBA) byte {
	q := func(v uint8) byte { return byte((int(v) + 0x2a) / 0x55) }
	return q(c.R)<<4 | q(c.G)<<2 | q(c.B)
}

// Framebuffer is an RGB565 little-endian pixel buffer.
type Framebuffer interface {
	Width() int
	Height() int
	StrideBytes() int
	Buffer() []byte
}

var rgb565 = func() (t [64][2]byte) {
	for i := range t {
		c := Palette(byte(i))
		p := uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
		t[i] = [2]byte{byte(p), byte(p >> 8)}
	}
	return t
}()

// Upload converts the screen through the palette into fb, scaling with nearest
// neighbour sampling when fb is not 240x160.
func (m *Memory) Upload(fb Framebuffer) {
	w, h, stride := fb.Width(), fb.Height(), fb.StrideBytes()
	buf := fb.Buffer()
	if w <= 0 || h <= 0 {
		return
	}

	for y := 0; y < h; y++ {
		row := buf[y*stride:]
		src := m.b[(y*Height/h)*Width:]
		for x := 0; x < w && 2*x+1 < len(row); x++ {
			px := rgb565[src[x*Width/w]&0x3f]
			row[2*x] = px[0]
			row[2*x+1] = px[1]
		}
	}
}
