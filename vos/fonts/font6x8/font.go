// Package font6x8 is the machine's 6x8 system font.
package font6x8

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

const (
	Width  = 6
	Height = 8

	first = 0x20
	last  = 0x7e
)

// Font implements tinyfont.Fonter so it can be used by tinyterm.
// Concurrent access is not safe due to internal glyph reuse.
var Font tinyfont.Fonter = &font6x8{}

type font6x8 struct {
	g glyph
}

type glyph struct {
	r rune
}

func (g *glyph) Draw(display drivers.Displayer, x, y int16, c color.RGBA) {
	rows := Glyph(g.r)
	for row := 0; row < Height; row++ {
		b := rows[row]
		for col := 0; col < Width; col++ {
			if b&(0x80>>col) == 0 {
				continue
			}
			display.SetPixel(x+int16(col), y-int16(Height-1-row), c)
		}
	}
}

func (g *glyph) Info() tinyfont.GlyphInfo {
	return tinyfont.GlyphInfo{
		Rune:     g.r,
		Width:    Width,
		Height:   Height,
		XAdvance: Width,
		XOffset:  0,
		YOffset:  -(Height - 1),
	}
}

func (f *font6x8) GetYAdvance() uint8 { return Height }

func (f *font6x8) GetGlyph(r rune) tinyfont.Glypher {
	f.g.r = r
	return &f.g
}

// Glyph returns the eight rows of r. Runes outside printable ASCII render as '?'.
func Glyph(r rune) []byte {
	if r < first || r > last {
		r = '?'
	}
	base := int(r-first) * Height
	return glyphData[base : base+Height]
}

// Charset returns a 256-glyph charset image, 8 bytes per glyph indexed by character code.
// Codes without a glyph are blank.
func Charset() []byte {
	out := make([]byte, 256*Height)
	copy(out[first*Height:], glyphData[:])
	return out
}
