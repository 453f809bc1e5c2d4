package palette

import (
	"testing"

	"phosphor/vos/kernel"
	"phosphor/vos/raster"
	"phosphor/vos/store"
	"phosphor/vos/vfs"
)

func newPalette(t *testing.T) (*raster.Memory, *Palette) {
	t.Helper()
	st := store.NewMemory()
	fs, err := vfs.New(st, nil)
	if err != nil {
		t.Fatal(err)
	}
	mem := raster.New()
	if err := mem.LoadCharset(st, nil); err != nil {
		t.Fatal(err)
	}
	k, err := kernel.New(kernel.Options{FS: fs, Memory: mem, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	k.Register("palette", New)
	p, err := k.System().Spawn("palette")
	if err != nil {
		t.Fatal(err)
	}
	return mem, p.Program().(*Palette)
}

func TestDrawSwatches(t *testing.T) {
	mem, p := newPalette(t)
	p.Draw()
	for c := 0; c < 64; c++ {
		// Bottom right corner of each cell lies outside the label and the selection frame.
		x := (c%cols)*cellW + cellW - 2
		y := (c/cols)*cellH + cellH - 2
		if got := mem.Peek(y*raster.Width + x); int(got) != c {
			t.Fatalf("swatch %d at %d,%d has color %d", c, x, y, got)
		}
	}
}

func TestSelectionFrame(t *testing.T) {
	mem, p := newPalette(t)
	p.PointerDown(kernel.PointerEvent{X: 3*cellW + 5, Y: 2*cellH + 5, Down: true})
	if p.selected != 19 {
		t.Fatalf("selected = %d, want 19", p.selected)
	}
	p.Draw()
	if got := mem.Peek(2*cellH*raster.Width + 3*cellW); got != raster.White {
		t.Fatalf("frame corner = %d, want white", got)
	}

	p.PointerDown(kernel.PointerEvent{X: 10, Y: barY + 4, Down: true})
	if p.selected != 19 {
		t.Fatal("click on the info bar changed the selection")
	}
}

func TestArrowKeysWrap(t *testing.T) {
	_, p := newPalette(t)
	p.selected = 0
	p.KeyDown(kernel.KeyEvent{Code: kernel.KeyLeft})
	if p.selected != 63 {
		t.Fatalf("left from 0 = %d, want 63", p.selected)
	}
	p.KeyDown(kernel.KeyEvent{Code: kernel.KeyDown})
	if p.selected != 7 {
		t.Fatalf("down from 63 = %d, want 7", p.selected)
	}
	p.KeyDown(kernel.KeyEvent{Code: kernel.KeyUp})
	if p.selected != 63 {
		t.Fatalf("up from 7 = %d, want 63", p.selected)
	}
}

func TestInfoBarText(t *testing.T) {
	mem, p := newPalette(t)
	p.Draw()
	lit := 0
	for y := barY; y < raster.Height; y++ {
		for x := 0; x < raster.Width; x++ {
			if mem.Peek(y*raster.Width+x) == raster.DefaultFG {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatal("info bar has no text")
	}
}
