package kernel

import (
	"log/slog"
	"slices"
)

// LoginSlot is the console the machine boots into.
const LoginSlot = 0

// Slot assigns a program to a console number.
type Slot struct {
	ID      int
	Program string
	Args    []string
}

// DefaultSlots is the stock console table.
func DefaultSlots() []Slot {
	return []Slot{
		{ID: 0, Program: "terminal", Args: []string{"login"}},
		{ID: 1, Program: "code-editor"},
		{ID: 2, Program: "sprite-editor"},
		{ID: 3, Program: "palette"},
		{ID: 4, Program: "around"},
		{ID: 5, Program: "prog-sideways"},
		{ID: 6, Program: "char-editor"},
		{ID: 10, Program: "terminal"},
	}
}

type consoles struct {
	slots  map[int]Slot
	procs  map[int]*Process
	active int
	quick  int
}

func newConsoles(slots []Slot) consoles {
	vc := consoles{
		slots:  make(map[int]Slot, len(slots)),
		procs:  make(map[int]*Process),
		active: -1,
		quick:  1,
	}
	for _, s := range slots {
		vc.slots[s.ID] = s
	}
	return vc
}

// ConsoleInfo describes one console slot.
type ConsoleInfo struct {
	Slot    int    `json:"slot"`
	Program string `json:"program"`
	PID     PID    `json:"pid"`
	Running bool   `json:"running"`
	Active  bool   `json:"active"`
	Quick   bool   `json:"quick_switch"`
}

// Consoles lists the slot table in slot order.
func (k *Kernel) Consoles() []ConsoleInfo {
	ids := make([]int, 0, len(k.vc.slots))
	for id := range k.vc.slots {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]ConsoleInfo, 0, len(ids))
	for _, id := range ids {
		ci := ConsoleInfo{
			Slot:    id,
			Program: k.vc.slots[id].Program,
			Active:  id == k.vc.active,
			Quick:   id == k.vc.quick,
		}
		if p := k.vc.procs[id]; p != nil {
			ci.PID = p.pid
			ci.Running = true
		}
		out = append(out, ci)
	}
	return out
}

// ActiveConsole returns the current slot, or -1 before the first switch.
func (k *Kernel) ActiveConsole() int { return k.vc.active }

// QuickSwitch returns the slot Escape toggles to from the login console.
func (k *Kernel) QuickSwitch() int { return k.vc.quick }

// SwitchTo makes slot the active console, spawning its program on first use.
//
// A slot that is not in the table, or whose program is not registered, is rejected
// before anything changes.
func (k *Kernel) SwitchTo(slot int) error {
	s, ok := k.vc.slots[slot]
	if !ok {
		k.log.Warn("switch to unknown console", slog.Int("slot", slot))
		return ErrNoSuchConsole
	}
	if _, ok := k.vc.procs[slot]; !ok {
		if _, ok := k.programs[s.Program]; !ok {
			k.log.Warn("console program not available",
				slog.Int("slot", slot), slog.String("program", s.Program))
			return ErrNoSuchProgram
		}
	}
	k.log.Debug("switch console", slog.Int("from", k.vc.active), slog.Int("to", slot))

	k.sched.stopUpdates()
	if out := k.current; out != nil {
		if h, ok := out.prog.(Suspender); ok {
			h.Suspend()
		}
	}

	p := k.vc.procs[slot]
	if p == nil {
		var err error
		p, err = k.spawn(k.system, s.Program, s.Args)
		if err != nil {
			return err
		}
		k.vc.procs[slot] = p
	}

	k.current = p
	k.vc.active = slot
	if slot != LoginSlot {
		k.vc.quick = slot
	}

	if h, ok := p.prog.(Resumer); ok {
		h.Resume()
	}
	if _, ok := p.prog.(Updater); ok {
		k.sched.startUpdates()
	} else {
		k.requestRedraw()
	}
	return nil
}

// toggle switches between the login console and the quick-switch console.
func (k *Kernel) toggle() {
	login := k.vc.procs[LoginSlot]
	target := LoginSlot
	if k.current != nil && k.current == login {
		target = k.vc.quick
	}
	_ = k.SwitchTo(target)
}

// Boot switches to the login console.
func (k *Kernel) Boot() error {
	return k.SwitchTo(LoginSlot)
}
