package kernel

import (
	"context"
	"log/slog"
	"time"

	"phosphor/internal/logging"
)

const (
	// UpdateHz is the rate of Update calls for the current process.
	UpdateHz = 58

	updateInterval = time.Second / UpdateHz
	maxCatchUp     = 4
	jobQueue       = 64
)

type scheduler struct {
	jobs   chan func()
	events []Event

	updating   bool
	updateGen  uint64 // bumped by every startUpdates
	nextUpdate time.Time
	redraw     bool

	frames, updates     int
	framesAt, updatesAt time.Time
}

func newScheduler() scheduler {
	return scheduler{jobs: make(chan func(), jobQueue)}
}

func (s *scheduler) startUpdates() {
	s.updating = true
	s.updateGen++
	s.nextUpdate = time.Time{}
}

func (s *scheduler) stopUpdates() { s.updating = false }

func (k *Kernel) requestRedraw() { k.sched.redraw = true }

// Do queues fn to run on the dispatcher during the next Step. It may be called
// from any goroutine and blocks while the queue is full.
func (k *Kernel) Do(fn func()) {
	k.sched.jobs <- fn
}

// Call runs fn on the dispatcher and waits for it to finish.
func (k *Kernel) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case k.sched.jobs <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Input queues an input event for the next Step. Dispatcher only.
func (k *Kernel) Input(ev Event) {
	k.sched.events = append(k.sched.events, ev)
}

// Step runs one dispatcher iteration: queued jobs, then input events in delivery
// order, then due updates, then a redraw if anything asked for one.
func (k *Kernel) Step(now time.Time) {
	k.runJobs()

	events := k.sched.events
	k.sched.events = nil
	k.drainBacklog()
	for _, ev := range events {
		k.dispatch(ev)
		k.drainBacklog()
	}

	k.runUpdates(now)
	if k.sched.redraw {
		k.sched.redraw = false
		k.draw(now)
	}
}

func (k *Kernel) runJobs() {
	for {
		select {
		case fn := <-k.sched.jobs:
			fn()
		default:
			return
		}
	}
}

func (k *Kernel) dispatch(ev Event) {
	if key, ok := ev.(KeyEvent); ok {
		if key.Code == KeyEscape {
			k.toggle()
			return
		}
		if key.Ctrl {
			if key.Alt {
				if slot, ok := chordSlot(key.Rune); ok {
					_ = k.SwitchTo(slot)
				}
			}
			return
		}
	}

	p := k.current
	if p == nil {
		return
	}
	if p.blocked || len(p.backlog) > 0 {
		p.backlog = append(p.backlog, ev)
		return
	}
	k.deliver(p, ev)
}

// drainBacklog hands queued input to the current process once it is no longer
// blocked, stopping again if a handler blocks it.
func (k *Kernel) drainBacklog() {
	p := k.current
	for p != nil && !p.blocked && len(p.backlog) > 0 {
		ev := p.backlog[0]
		p.backlog = p.backlog[1:]
		k.deliver(p, ev)
	}
}

func (k *Kernel) deliver(p *Process, ev Event) {
	switch e := ev.(type) {
	case KeyEvent:
		if h, ok := p.prog.(KeyHandler); ok {
			h.KeyDown(e)
			k.requestRedraw()
		}
	case PointerEvent:
		if e.Down {
			if h, ok := p.prog.(PointerDownHandler); ok {
				h.PointerDown(e)
				k.requestRedraw()
			}
		} else if h, ok := p.prog.(PointerUpHandler); ok {
			h.PointerUp(e)
			k.requestRedraw()
		}
	}
}

func chordSlot(r rune) (int, bool) {
	switch {
	case r == '`':
		return 0, true
	case r >= '1' && r <= '6':
		return int(r - '0'), true
	case r == '0':
		return 10, true
	}
	return 0, false
}

func (k *Kernel) runUpdates(now time.Time) {
	s := &k.sched
	if !s.updating || k.current == nil {
		return
	}
	p, gen := k.current, s.updateGen
	u, ok := p.prog.(Updater)
	if !ok {
		return
	}
	if s.nextUpdate.IsZero() {
		s.nextUpdate = now
	}

	for i := 0; i < maxCatchUp && !now.Before(s.nextUpdate); i++ {
		u.Update()
		s.nextUpdate = s.nextUpdate.Add(updateInterval)
		s.redraw = true
		k.count(&s.updates, &s.updatesAt, now, "ups")
		// An Update that switched consoles must not be called again.
		if !s.updating || s.updateGen != gen || k.current != p {
			return
		}
	}
	if !now.Before(s.nextUpdate) {
		s.nextUpdate = now.Add(updateInterval)
	}
}

func (k *Kernel) draw(now time.Time) {
	if p := k.current; p != nil {
		if d, ok := p.prog.(Drawer); ok {
			d.Draw()
		} else {
			k.mem.Noise(k.rng)
		}
	} else {
		k.mem.Noise(k.rng)
	}

	if k.display != nil {
		k.mem.Upload(k.display)
		if err := k.display.Present(); err != nil {
			k.log.Error("present failed", logging.Err(err))
		}
	}
	k.count(&k.sched.frames, &k.sched.framesAt, now, "fps")
}

func (k *Kernel) count(n *int, since *time.Time, now time.Time, what string) {
	*n++
	if since.IsZero() {
		*since = now
		return
	}
	if now.Sub(*since) >= time.Second {
		k.log.Debug(what, slog.Int(what, *n))
		*n = 0
		*since = now
	}
}
