// Package raster is the machine's shared display memory.
//
// Memory map:
//
//	0x0000-0x95FF  screen, 240x160, one byte per pixel (low 6 bits rrggbb)
//	0x9600-0x9DFF  charset, 256 glyphs x 8 rows, bit 0x80 is the leftmost of 6 columns
//	0x9E00-0x1FFFF free for programs
//
// Writes that land outside the memory are dropped.
package raster

import (
	"math/rand/v2"
)

const (
	Size   = 0x20000
	Width  = 240
	Height = 160

	ScreenBytes  = Width * Height
	CharsetAddr  = 0x9600
	CharsetBytes = 256 * GlyphHeight

	GlyphWidth  = 6
	GlyphHeight = 8

	// Default char/text colors.
	DefaultFG = 42
	DefaultBG = 21

	// NoColor skips the fill or border of Rect.
	NoColor = -1
)

// Memory is 128K of byte-addressed display memory.
type Memory struct {
	b [Size]byte
}

func New() *Memory { return &Memory{} }

// Bytes exposes the whole memory.
func (m *Memory) Bytes() []byte { return m.b[:] }

// Screen exposes the screen region.
func (m *Memory) Screen() []byte { return m.b[:ScreenBytes] }

func (m *Memory) set(i, c int) {
	if i < 0 || i >= Size {
		return
	}
	m.b[i] = byte(c)
}

// fill sets [start, end) resolved like typed array bounds: negative values
// count back from the end of memory and both ends are clamped.
func (m *Memory) fill(c, start, end int) {
	start, end = resolve(start), resolve(end)
	for i := start; i < end; i++ {
		m.b[i] = byte(c)
	}
}

func resolve(i int) int {
	if i < 0 {
		i += Size
		if i < 0 {
			return 0
		}
	}
	if i > Size {
		return Size
	}
	return i
}

// Clear fills the screen with c.
func (m *Memory) Clear(c int) {
	m.fill(c, 0, ScreenBytes)
}

// Box fills w*h pixels starting at x, y. Rows are not clipped at the screen
// edge, so an overlong row continues on the next line.
func (m *Memory) Box(x, y, w, h, c int) {
	for i := y; i < y+h; i++ {
		m.fill(c, i*Width+x, i*Width+x+w)
	}
}

// Char draws one glyph from the charset region.
func (m *Memory) Char(ch byte, x, y, c1, c2 int) {
	a := CharsetAddr + int(ch)*GlyphHeight
	for i := 0; i < GlyphHeight; i++ {
		b := m.b[a+i]
		for j := 0; j < GlyphWidth; j++ {
			c := c2
			if b&(0x80>>j) != 0 {
				c = c1
			}
			m.set((y+i)*Width+(x+j), c)
		}
	}
}

// Text draws s one byte per glyph with a 6 pixel advance.
func (m *Memory) Text(s string, x, y, c1, c2 int) {
	for i := 0; i < len(s); i++ {
		m.Char(s[i], x, y, c1, c2)
		x += GlyphWidth
	}
}

// Rect fills with fill and draws a one pixel border with border. Either may be NoColor.
func (m *Memory) Rect(x, y, w, h, fill, border int) {
	if fill != NoColor {
		m.Box(x, y, w, h, fill)
	}
	if border != NoColor {
		m.Box(x, y, w, 1, border)
		m.Box(x, y, 1, h, border)
		m.Box(x+w-1, y, 1, h, border)
		m.Box(x, y+h-1, w, 1, border)
	}
}

// Peek returns the byte at addr, or 0 outside memory.
func (m *Memory) Peek(addr int) byte {
	if addr < 0 || addr >= Size {
		return 0
	}
	return m.b[addr]
}

func (m *Memory) Poke(addr, v int) { m.set(addr, v) }

// Noise fills the screen with random colors. It is drawn when the active process has no
// draw hook.
func (m *Memory) Noise(rng *rand.Rand) {
	for i := 0; i < ScreenBytes; i++ {
		m.b[i] = byte(rng.IntN(64))
	}
}

// Blit copies a full-screen plane onto the screen.
func (m *Memory) Blit(p *Plane) {
	copy(m.b[:ScreenBytes], p.pix[:])
}
