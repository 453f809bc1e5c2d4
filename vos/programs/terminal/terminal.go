// Package terminal is the machine's text console. It renders output with
// tinyterm into an off-screen plane and turns key presses into lines for
// processes reading from it.
package terminal

import (
	"bytes"
	"fmt"

	"phosphor/vos/fonts/font6x8"
	"phosphor/vos/kernel"
	"phosphor/vos/raster"

	"tinygo.org/x/tinyterm"
)

const esc = 0x1b

// xterm 256-color indexes that quantize onto the named palette colors.
const (
	xtermBlack = 16
	xtermGreen = 82
	xtermRed   = 196
	xtermAmber = 208
	xtermWhite = 231
)

// styles maps the console's color escapes (ESC followed by a capital letter) to
// a foreground and background pair.
var styles = map[byte][2]int{
	'A': {xtermWhite, xtermBlack},
	'B': {xtermGreen, xtermBlack},
	'C': {xtermAmber, xtermBlack},
	'D': {xtermRed, xtermBlack},
	'E': {xtermBlack, xtermGreen},
	'F': {xtermBlack, xtermAmber},
}

type Terminal struct {
	ctx   *kernel.Context
	plane *raster.Plane
	t     *tinyterm.Terminal

	// inEsc is set when the last written byte was an unfinished escape.
	inEsc bool
	line  *pendingLine
}

// pendingLine is the line being typed for an outstanding ReadLine.
type pendingLine struct {
	buf  []byte
	pos  int
	done func(string)
}

// New is the kernel factory for the terminal program.
func New(ctx *kernel.Context) kernel.Program {
	t := &Terminal{ctx: ctx, plane: raster.NewPlane()}
	t.reset()
	return t
}

func (t *Terminal) reset() {
	t.plane.Fill(raster.Black)
	t.t = tinyterm.NewTerminal(t.plane)
	t.t.Configure(&tinyterm.Config{
		Font:              font6x8.Font,
		FontHeight:        font6x8.Height,
		FontOffset:        font6x8.Height - 1,
		UseSoftwareScroll: true,
	})
}

// Main spawns the login shell when started with the login argument.
func (t *Terminal) Main(args []string, _ func(int)) {
	if len(args) > 1 && args[1] == "login" {
		if _, err := t.ctx.Spawn("shell", "login"); err != nil {
			fmt.Fprintf(t, "\x1bD%s\x1bA\n", err)
		}
	}
}

// Write renders text. Printable ASCII, newline and backspace are drawn; the
// escapes ESC A to ESC F select colors and ESC Z clears the console. Every
// other byte is dropped.
func (t *Terminal) Write(p []byte) (int, error) {
	var out bytes.Buffer
	for _, b := range p {
		if t.inEsc {
			t.inEsc = false
			if b == 'Z' {
				_, _ = t.t.Write(out.Bytes())
				out.Reset()
				t.reset()
				continue
			}
			if st, ok := styles[b]; ok {
				fmt.Fprintf(&out, "\x1b[38;5;%dm\x1b[48;5;%dm", st[0], st[1])
			}
			continue
		}
		switch {
		case b == esc:
			t.inEsc = true
		case b == '\n':
			out.WriteByte('\n')
		case b == '\b':
			out.WriteString("\x1b[D \x1b[D")
		case b >= ' ' && b <= '~':
			out.WriteByte(b)
		}
	}
	_, _ = t.t.Write(out.Bytes())
	return len(p), nil
}

// ReadLine starts collecting a line from the keyboard. A second call before the
// line is entered replaces the first.
func (t *Terminal) ReadLine(done func(string)) {
	t.line = &pendingLine{done: done}
}

func (t *Terminal) KeyDown(ev kernel.KeyEvent) {
	switch ev.Code {
	case kernel.KeyRune:
		if ev.Ctrl || ev.Alt || ev.Rune < ' ' || ev.Rune > '~' {
			return
		}
		t.insert(byte(ev.Rune))
	case kernel.KeyBackspace:
		t.backspace()
	case kernel.KeyLeft:
		if t.line != nil {
			if t.line.pos == 0 {
				return
			}
			t.line.pos--
		}
		_, _ = t.t.Write([]byte("\x1b[D"))
	case kernel.KeyRight:
		if t.line != nil {
			if t.line.pos == len(t.line.buf) {
				return
			}
			t.line.pos++
		}
		_, _ = t.t.Write([]byte("\x1b[C"))
	case kernel.KeyEnter:
		t.enter()
	}
}

func (t *Terminal) insert(c byte) {
	l := t.line
	if l == nil {
		_, _ = t.t.Write([]byte{c})
		return
	}
	tail := l.buf[l.pos:]
	var out bytes.Buffer
	out.WriteByte(c)
	out.Write(tail)
	back(&out, len(tail))
	_, _ = t.t.Write(out.Bytes())

	l.buf = append(l.buf[:l.pos], append([]byte{c}, tail...)...)
	l.pos++
}

func (t *Terminal) backspace() {
	l := t.line
	if l == nil {
		_, _ = t.Write([]byte{'\b'})
		return
	}
	if l.pos == 0 {
		return
	}
	tail := l.buf[l.pos:]
	var out bytes.Buffer
	back(&out, 1)
	out.Write(tail)
	out.WriteByte(' ')
	back(&out, len(tail)+1)
	_, _ = t.t.Write(out.Bytes())

	l.buf = append(l.buf[:l.pos-1], tail...)
	l.pos--
}

func (t *Terminal) enter() {
	l := t.line
	if l == nil {
		_, _ = t.t.Write([]byte{'\n'})
		return
	}
	_, _ = t.t.Write([]byte{'\n'})
	// done may start the next read right away.
	t.line = nil
	l.done(string(l.buf))
}

func back(out *bytes.Buffer, n int) {
	for range n {
		out.WriteString("\x1b[D")
	}
}

// Draw copies the console onto the screen and marks the cursor cell.
func (t *Terminal) Draw() {
	t.ctx.Blit(t.plane)
	x, y := t.t.Cursor()
	if int(x) >= raster.Width {
		return
	}
	t.ctx.Box(int(x), int(y)+font6x8.Height-1, font6x8.Width, 1, raster.Green)
}
