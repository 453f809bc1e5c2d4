// Package around is a small demo: a box orbiting the middle of the screen,
// changing color as it goes. Space restarts the orbit.
package around

import (
	"math"

	"phosphor/vos/kernel"
	"phosphor/vos/raster"
)

const (
	size   = 16
	radius = 64
)

type Around struct {
	ctx *kernel.Context
	t   int
}

func New(ctx *kernel.Context) kernel.Program {
	return &Around{ctx: ctx}
}

// Update advances the orbit by one degree.
func (a *Around) Update() { a.t = (a.t + 1) % 360 }

func (a *Around) KeyDown(ev kernel.KeyEvent) {
	if ev.Code == kernel.KeyRune && ev.Rune == ' ' {
		a.t = 0
	}
}

func (a *Around) Draw() {
	x, y := a.position()
	a.ctx.Clear(raster.Black)
	a.ctx.Box(x, y, size, size, a.t%60)
}

func (a *Around) position() (x, y int) {
	rad := float64(a.t) * math.Pi / 180
	cx := float64(raster.Width/2 - size/2)
	cy := float64(raster.Height/2 - size/2)
	return int(math.Floor(cx + radius*math.Cos(rad))), int(math.Floor(cy + radius*math.Sin(rad)))
}
