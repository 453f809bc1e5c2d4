package kernel

import (
	"context"
	"testing"
	"time"

	"phosphor/vos/raster"
	"phosphor/vos/vfs"
)

type fakeDisplay struct {
	buf      []byte
	presents int
}

func (d *fakeDisplay) Width() int       { return raster.Width }
func (d *fakeDisplay) Height() int      { return raster.Height }
func (d *fakeDisplay) StrideBytes() int { return raster.Width * 2 }
func (d *fakeDisplay) Buffer() []byte   { return d.buf }
func (d *fakeDisplay) Present() error   { d.presents++; return nil }

type painter struct {
	ctx   *Context
	draws int
}

func (p *painter) Draw()           { p.draws++; p.ctx.Clear(raster.Green) }
func (p *painter) KeyDown(KeyEvent) {}

func TestUpdatesRunAtFixedRate(t *testing.T) {
	k, journal, _ := newConsoleKernel(t)
	var tk *ticking
	k.Register("around", func(*Context) Program {
		tk = &ticking{hooked: hooked{name: "around", journal: journal}}
		return tk
	})
	_ = k.SwitchTo(4)

	start := time.Unix(100, 0)
	k.Step(start)
	if tk.updates != 1 {
		t.Fatalf("updates after first step = %d, want 1", tk.updates)
	}
	k.Step(start.Add(updateInterval / 2))
	if tk.updates != 1 {
		t.Fatalf("updates before interval = %d, want 1", tk.updates)
	}
	k.Step(start.Add(updateInterval))
	if tk.updates != 2 {
		t.Fatalf("updates after interval = %d, want 2", tk.updates)
	}

	// A long stall is caught up only partially.
	k.Step(start.Add(time.Second))
	if tk.updates != 2+maxCatchUp {
		t.Fatalf("updates after stall = %d, want %d", tk.updates, 2+maxCatchUp)
	}

	_ = k.SwitchTo(3)
	n := tk.updates
	k.Step(start.Add(2 * time.Second))
	if tk.updates != n {
		t.Fatal("suspended process kept updating")
	}
}

// switcher changes console from inside its own Update.
type switcher struct {
	k       *Kernel
	to      int
	updates int
}

func (s *switcher) Update() {
	s.updates++
	_ = s.k.SwitchTo(s.to)
}

func TestSwitchDuringUpdateStopsOutgoingProcess(t *testing.T) {
	k, journal, _ := newConsoleKernel(t)
	var sw *switcher
	var in *ticking
	k.Register("around", func(*Context) Program { sw = &switcher{k: k, to: 3}; return sw })
	k.Register("palette", func(*Context) Program {
		in = &ticking{hooked: hooked{name: "palette", journal: journal}}
		return in
	})
	_ = k.SwitchTo(4)

	// A stalled clock would otherwise run the outgoing Update maxCatchUp times.
	start := time.Unix(100, 0)
	k.sched.nextUpdate = start.Add(-time.Second)
	k.Step(start)
	if sw.updates != 1 {
		t.Fatalf("outgoing updates = %d, want 1", sw.updates)
	}
	if in == nil || in.updates != 0 {
		t.Fatal("incoming process updated in the step that switched to it")
	}

	k.Step(start.Add(time.Second))
	if sw.updates != 1 || in.updates != 1 {
		t.Fatalf("updates after switch: outgoing %d, incoming %d; want 1, 1", sw.updates, in.updates)
	}
}

func TestDrawFallsBackToNoise(t *testing.T) {
	k := newTestKernel(t)
	d := &fakeDisplay{buf: make([]byte, raster.Width*raster.Height*2)}
	k.display = d
	registerIdle(k, "terminal")

	_ = k.Boot()
	k.Step(time.Unix(0, 0))
	if d.presents != 1 {
		t.Fatalf("presents = %d, want 1", d.presents)
	}
	nonzero := 0
	for _, b := range k.mem.Screen() {
		if b != 0 {
			nonzero++
		}
	}
	if nonzero == 0 {
		t.Fatal("idle screen was not filled with noise")
	}

	k.Step(time.Unix(0, 1))
	if d.presents != 1 {
		t.Fatal("redrew without a request")
	}
}

func TestInputTriggersRedraw(t *testing.T) {
	k := newTestKernel(t)
	d := &fakeDisplay{buf: make([]byte, raster.Width*raster.Height*2)}
	k.display = d
	var p *painter
	k.Register("terminal", func(ctx *Context) Program { p = &painter{ctx: ctx}; return p })

	_ = k.Boot()
	k.Step(time.Unix(0, 0))
	k.Input(KeyEvent{Code: KeyRune, Rune: 'a'})
	k.Step(time.Unix(0, 1))

	if p.draws != 2 || d.presents != 2 {
		t.Fatalf("draws = %d presents = %d, want 2 and 2", p.draws, d.presents)
	}
	if k.mem.Peek(0) != raster.Green {
		t.Fatal("draw hook did not paint the screen")
	}
}

// blocker reads from its terminal on every key and records delivery order.
type blocker struct {
	ctx  *Context
	seen []rune
}

func (b *blocker) KeyDown(e KeyEvent) {
	b.seen = append(b.seen, e.Rune)
	if e.Rune == 'r' {
		b.ctx.Read(0, vfs.FormatLine, func(vfs.Value, error) {})
	}
}

func TestBlockedProcessGetsBacklogInOrder(t *testing.T) {
	k := newTestKernel(t)
	var tty *fakeTTY
	k.Register("tty", func(*Context) Program { tty = &fakeTTY{}; return tty })
	var b *blocker
	k.Register("blocker", func(ctx *Context) Program { b = &blocker{ctx: ctx}; return b })

	term, _ := k.System().Spawn("tty")
	proc, _ := term.Context().Spawn("blocker")
	k.current = proc

	now := time.Unix(0, 0)
	for _, r := range "rxy" {
		k.Input(KeyEvent{Code: KeyRune, Rune: r})
	}
	k.Step(now)
	if string(b.seen) != "r" {
		t.Fatalf("delivered while blocked: %q", string(b.seen))
	}
	if !k.Processes()[proc.PID()].Blocked {
		t.Fatal("process table should show the read as blocked")
	}

	tty.enter("done")
	k.Input(KeyEvent{Code: KeyRune, Rune: 'z'})
	k.Step(now)
	if string(b.seen) != "rxyz" {
		t.Fatalf("delivery order = %q, want rxyz", string(b.seen))
	}
}

func TestCallRunsOnDispatcher(t *testing.T) {
	k := newTestKernel(t)
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				k.Step(time.Now())
				time.Sleep(time.Millisecond)
			}
		}
	}()
	defer close(stop)

	var got int
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := k.Call(ctx, func() { got = len(k.Processes()) }); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if got != 1 {
		t.Fatalf("process count = %d, want 1", got)
	}
}

func TestCallTimesOutWithoutDispatcher(t *testing.T) {
	k := newTestKernel(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := k.Call(ctx, func() {}); err == nil {
		t.Fatal("Call() should fail when nothing runs the dispatcher")
	}
}
