package around

import (
	"testing"
	"time"

	"phosphor/vos/kernel"
	"phosphor/vos/raster"
	"phosphor/vos/store"
	"phosphor/vos/vfs"
)

func newAround(t *testing.T) (*kernel.Kernel, *Around) {
	t.Helper()
	fs, err := vfs.New(store.NewMemory(), nil)
	if err != nil {
		t.Fatal(err)
	}
	k, err := kernel.New(kernel.Options{FS: fs, Memory: raster.New(), Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	k.Register("around", New)
	p, err := k.System().Spawn("around")
	if err != nil {
		t.Fatal(err)
	}
	return k, p.Program().(*Around)
}

func TestPosition(t *testing.T) {
	_, a := newAround(t)
	tests := []struct {
		t    int
		x, y int
	}{
		{0, 176, 72},
		{90, 112, 136},
		{180, 48, 72},
		{45, 157, 117},
	}
	for _, tc := range tests {
		a.t = tc.t
		if x, y := a.position(); x != tc.x || y != tc.y {
			t.Fatalf("position at %d = %d,%d; want %d,%d", tc.t, x, y, tc.x, tc.y)
		}
	}
}

func TestUpdateWrapsAndSpaceResets(t *testing.T) {
	_, a := newAround(t)
	a.t = 359
	a.Update()
	if a.t != 0 {
		t.Fatalf("t after 359 = %d, want 0", a.t)
	}
	a.t = 42
	a.KeyDown(kernel.KeyEvent{Code: kernel.KeyRune, Rune: 'x'})
	if a.t != 42 {
		t.Fatal("only space resets the orbit")
	}
	a.KeyDown(kernel.KeyEvent{Code: kernel.KeyRune, Rune: ' '})
	if a.t != 0 {
		t.Fatalf("t after space = %d, want 0", a.t)
	}
}

func TestDraw(t *testing.T) {
	k, a := newAround(t)
	mem := k.Memory()
	mem.Clear(raster.White)
	a.t = 61
	a.Draw()

	x, y := a.position()
	if got := mem.Peek(y*raster.Width + x); got != 1 {
		t.Fatalf("box color = %d, want 1", got)
	}
	if got := mem.Peek((y+size-1)*raster.Width + x + size - 1); got != 1 {
		t.Fatalf("box corner color = %d, want 1", got)
	}
	if got := mem.Peek(0); got != raster.Black {
		t.Fatalf("background = %d, want black", got)
	}
}

func TestDrivenByConsole(t *testing.T) {
	fs, _ := vfs.New(store.NewMemory(), nil)
	k, _ := kernel.New(kernel.Options{FS: fs, Memory: raster.New(), Seed: 1})
	var a *Around
	k.Register("around", func(ctx *kernel.Context) kernel.Program {
		a = New(ctx).(*Around)
		return a
	})
	if err := k.SwitchTo(4); err != nil {
		t.Fatalf("SwitchTo(4) error = %v", err)
	}
	start := time.Unix(0, 0)
	for i := 0; i < 3; i++ {
		k.Step(start.Add(time.Duration(i) * time.Second / kernel.UpdateHz))
	}
	if a.t != 3 {
		t.Fatalf("t after three ticks = %d, want 3", a.t)
	}
}
