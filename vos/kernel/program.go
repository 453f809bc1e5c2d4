package kernel

import "io"

// Program is an instance of a built-in program. A program opts into lifecycle
// callbacks by implementing the hook interfaces below; all of them run on the
// dispatcher.
type Program any

// Factory creates a program bound to its process context.
type Factory func(ctx *Context) Program

// Mainer is the entry hook. args[0] is the program name. The program calls exit
// once, possibly much later, to resolve its process' Main future.
type Mainer interface {
	Main(args []string, exit func(code int))
}

type Resumer interface{ Resume() }

type Suspender interface{ Suspend() }

type KeyHandler interface{ KeyDown(ev KeyEvent) }

type PointerDownHandler interface{ PointerDown(ev PointerEvent) }

type PointerUpHandler interface{ PointerUp(ev PointerEvent) }

// Updater is driven at UpdateHz while its process is current.
type Updater interface{ Update() }

// Drawer paints the screen region of raster memory.
type Drawer interface{ Draw() }

// TTY programs act as their own stdin, stdout and stderr. ReadLine delivers the
// next line the user enters, without its terminator.
type TTY interface {
	io.Writer
	ReadLine(done func(line string))
}

// KeyCode identifies keys that do not produce text.
type KeyCode uint8

const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyBackspace
	KeyEscape
	KeyTab
	KeyDelete
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
)

// KeyEvent is a key press. For KeyRune, Rune is the character typed, or the
// unshifted key character when a Ctrl chord suppressed text input.
type KeyEvent struct {
	Code  KeyCode
	Rune  rune
	Shift bool
	Ctrl  bool
	Alt   bool
}

// PointerEvent carries a position in virtual display coordinates.
type PointerEvent struct {
	X, Y int
	Down bool
}

// Event is a KeyEvent or a PointerEvent.
type Event interface{ event() }

func (KeyEvent) event()     {}
func (PointerEvent) event() {}
