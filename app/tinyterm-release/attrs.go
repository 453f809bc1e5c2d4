package tinyterm

import "image/color"

// SGR parameter values understood by the terminal.
const (
	SGRReset          = 0
	SGRBold           = 1
	SGRFgBlack        = 30
	SGRFgRed          = 31
	SGRFgGreen        = 32
	SGRFgYellow       = 33
	SGRFgBlue         = 34
	SGRFgMagenta      = 35
	SGRFgCyan         = 36
	SGRFgWhite        = 37
	SGRSetFgColor     = 38
	SGRDefaultFgColor = 39
	SGRBgBlack        = 40
	SGRBgRed          = 41
	SGRBgGreen        = 42
	SGRBgYellow       = 43
	SGRBgBlue         = 44
	SGRBgMagenta      = 45
	SGRBgCyan         = 46
	SGRBgWhite        = 47
	SGRSetBgColor     = 48
	SGRDefaultBgColor = 49
)

// Color is an xterm 256-color index: 0-15 are the ANSI colors, 16-231 the
// 6x6x6 cube and 232-255 the gray ramp.
type Color uint8

const (
	ColorBlack Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
)

var ansi = [16]color.RGBA{
	{0x00, 0x00, 0x00, 0xff},
	{0xcd, 0x00, 0x00, 0xff},
	{0x00, 0xcd, 0x00, 0xff},
	{0xcd, 0xcd, 0x00, 0xff},
	{0x00, 0x00, 0xee, 0xff},
	{0xcd, 0x00, 0xcd, 0xff},
	{0x00, 0xcd, 0xcd, 0xff},
	{0xe5, 0xe5, 0xe5, 0xff},
	{0x7f, 0x7f, 0x7f, 0xff},
	{0xff, 0x00, 0x00, 0xff},
	{0x00, 0xff, 0x00, 0xff},
	{0xff, 0xff, 0x00, 0xff},
	{0x5c, 0x5c, 0xff, 0xff},
	{0xff, 0x00, 0xff, 0xff},
	{0x00, 0xff, 0xff, 0xff},
	{0xff, 0xff, 0xff, 0xff},
}

var cubeLevels = [6]uint8{0x00, 0x5f, 0x87, 0xaf, 0xd7, 0xff}

// RGBA returns the color's xterm value.
func (c Color) RGBA() color.RGBA {
	switch {
	case c < 16:
		return ansi[c]
	case c < 232:
		i := c - 16
		return color.RGBA{cubeLevels[i/36], cubeLevels[(i/6)%6], cubeLevels[i%6], 0xff}
	default:
		v := 8 + 10*(uint8(c)-232)
		return color.RGBA{v, v, v, 0xff}
	}
}

type sgrAttrs struct {
	attrs byte
	fg    Color
	bg    Color
	fgcol color.RGBA
	bgcol color.RGBA
}

func (a *sgrAttrs) reset() {
	a.attrs = 0
	a.setFG(ColorWhite)
	a.setBG(ColorBlack)
}

func (a *sgrAttrs) setFG(c Color) {
	a.fg = c
	a.fgcol = c.RGBA()
}

func (a *sgrAttrs) setBG(c Color) {
	a.bg = c
	a.bgcol = c.RGBA()
}

// Cursor returns the pixel position of the next character cell.
func (t *Terminal) Cursor() (x, y int16) {
	return t.next * t.fontWidth, t.scroll
}

// Size returns the text grid dimensions.
func (t *Terminal) Size() (cols, rows int16) {
	return t.cols, t.rows
}
