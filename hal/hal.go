// Package hal is the machine's only contact with the host: a framebuffer to
// present into, keyboard and pointer events, a flash device and a clock.
package hal

import (
	"errors"
	"time"
)

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat is how a framebuffer encodes pixels.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a pixel buffer the machine draws into. Nothing is shown until
// Present.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// KeyCode names the keys the machine reacts to. Printable keys are KeyRune.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyRune
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyTab
	KeyDelete
	KeyHome
	KeyEnd
)

// KeyEvent is a keyboard event. Text arrives as KeyRune presses. While Ctrl or
// Alt is held no text is produced; chords carry the key's own character instead,
// lower case for letters.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
	Shift bool
	Ctrl  bool
	Alt   bool
}

// PointerEvent is a primary button press or release in framebuffer pixels.
type PointerEvent struct {
	X, Y  int
	Press bool
}

type Keyboard interface {
	Events() <-chan KeyEvent
}

type Pointer interface {
	Events() <-chan PointerEvent
}

// Display owns the screen.
type Display interface {
	Framebuffer() Framebuffer
}

type Input interface {
	Keyboard() Keyboard
	Pointer() Pointer
}

// Flash is NOR-style storage: writes only clear bits, Erase sets whole erase
// blocks back to 0xFF.
type Flash interface {
	SizeBytes() uint32
	EraseBlockBytes() uint32
	ReadAt(p []byte, off uint32) (int, error)
	WriteAt(p []byte, off uint32) (int, error)
	Erase(off, size uint32) error
}

// Time is the clock the machine runs on. Runners advance it once per frame.
type Time interface {
	Now() time.Time
}

// HAL bundles the devices a machine is booted with.
type HAL interface {
	Display() Display
	Input() Input
	Flash() Flash
	Time() Time
}
