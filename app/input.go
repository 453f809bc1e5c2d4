package app

import (
	"phosphor/hal"
	"phosphor/vos/kernel"
	"phosphor/vos/raster"
)

var keyCodes = map[hal.KeyCode]kernel.KeyCode{
	hal.KeyRune:      kernel.KeyRune,
	hal.KeyEnter:     kernel.KeyEnter,
	hal.KeyBackspace: kernel.KeyBackspace,
	hal.KeyEscape:    kernel.KeyEscape,
	hal.KeyTab:       kernel.KeyTab,
	hal.KeyDelete:    kernel.KeyDelete,
	hal.KeyLeft:      kernel.KeyLeft,
	hal.KeyRight:     kernel.KeyRight,
	hal.KeyUp:        kernel.KeyUp,
	hal.KeyDown:      kernel.KeyDown,
	hal.KeyHome:      kernel.KeyHome,
	hal.KeyEnd:       kernel.KeyEnd,
}

// keyEvent translates a host key press. Releases and unknown keys are dropped.
func keyEvent(ev hal.KeyEvent) (kernel.KeyEvent, bool) {
	code, ok := keyCodes[ev.Code]
	if !ok || !ev.Press {
		return kernel.KeyEvent{}, false
	}
	return kernel.KeyEvent{Code: code, Rune: ev.Rune, Shift: ev.Shift, Ctrl: ev.Ctrl, Alt: ev.Alt}, true
}

// pointerEvent maps framebuffer pixels onto the 240x160 screen.
func pointerEvent(ev hal.PointerEvent, fbW, fbH int) kernel.PointerEvent {
	x, y := ev.X, ev.Y
	if fbW > 0 && fbH > 0 {
		x = x * raster.Width / fbW
		y = y * raster.Height / fbH
	}
	return kernel.PointerEvent{X: x, Y: y, Down: ev.Press}
}

func (s *System) pollInput() {
	in := s.h.Input()
	if in == nil {
		return
	}
	if kbd := in.Keyboard(); kbd != nil {
	keys:
		for {
			select {
			case ev := <-kbd.Events():
				if kev, ok := keyEvent(ev); ok {
					s.k.Input(kev)
				}
			default:
				break keys
			}
		}
	}
	if ptr := in.Pointer(); ptr != nil {
		w, h := 0, 0
		if s.fb != nil {
			w, h = s.fb.Width(), s.fb.Height()
		}
		for {
			select {
			case ev := <-ptr.Events():
				s.k.Input(pointerEvent(ev, w, h))
			default:
				return
			}
		}
	}
}
