package kernel

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// hooked logs every lifecycle call into a shared journal.
type hooked struct {
	name    string
	journal *[]string
	keys    []KeyEvent
}

func (h *hooked) Suspend()           { *h.journal = append(*h.journal, "suspend "+h.name) }
func (h *hooked) Resume()            { *h.journal = append(*h.journal, "resume "+h.name) }
func (h *hooked) KeyDown(e KeyEvent) { h.keys = append(h.keys, e) }

type ticking struct {
	hooked
	updates int
}

func (t *ticking) Update() { t.updates++ }

func newConsoleKernel(t *testing.T) (*Kernel, *[]string, map[string]*hooked) {
	t.Helper()
	k := newTestKernel(t)
	journal := &[]string{}
	progs := map[string]*hooked{}
	for _, name := range []string{"terminal", "palette", "around"} {
		k.Register(name, func(*Context) Program {
			h := &hooked{name: name, journal: journal}
			progs[name] = h
			return h
		})
	}
	return k, journal, progs
}

func TestSwitchSuspendsBeforeResume(t *testing.T) {
	k, journal, _ := newConsoleKernel(t)

	steps := []int{0, 3, 0, 3, 3}
	for _, s := range steps {
		if err := k.SwitchTo(s); err != nil {
			t.Fatalf("SwitchTo(%d) error = %v", s, err)
		}
	}

	want := []string{
		"resume terminal",
		"suspend terminal", "resume palette",
		"suspend palette", "resume terminal",
		"suspend terminal", "resume palette",
		"suspend palette", "resume palette",
	}
	if strings.Join(*journal, ",") != strings.Join(want, ",") {
		t.Fatalf("journal = %v\nwant      %v", *journal, want)
	}
}

func TestSwitchSpawnsOncePerSlot(t *testing.T) {
	k, _, _ := newConsoleKernel(t)
	_ = k.SwitchTo(0)
	_ = k.SwitchTo(3)
	_ = k.SwitchTo(0)
	_ = k.SwitchTo(3)

	if n := len(k.Processes()); n != 3 {
		t.Fatalf("process count = %d, want 3 (system + two consoles)", n)
	}
	for _, ci := range k.Consoles() {
		if ci.Slot == 3 && (!ci.Running || !ci.Active || ci.PID != 2) {
			t.Fatalf("slot 3 = %+v", ci)
		}
	}
	if k.Current().PPID() != 0 {
		t.Fatal("console programs are children of the system process")
	}
}

func TestSwitchToUnavailableSlotIsNoop(t *testing.T) {
	k, journal, _ := newConsoleKernel(t)
	_ = k.SwitchTo(0)
	before := len(*journal)
	cur := k.Current()

	if err := k.SwitchTo(7); !errors.Is(err, ErrNoSuchConsole) {
		t.Fatalf("SwitchTo(7) = %v, want ErrNoSuchConsole", err)
	}
	if err := k.SwitchTo(1); !errors.Is(err, ErrNoSuchProgram) {
		t.Fatalf("SwitchTo(1) = %v, want ErrNoSuchProgram", err)
	}
	if len(*journal) != before || k.Current() != cur || k.ActiveConsole() != 0 {
		t.Fatalf("no-op switch changed state: journal %v", *journal)
	}
	if k.QuickSwitch() != 1 {
		t.Fatalf("quick switch = %d, want 1", k.QuickSwitch())
	}
}

func TestEscapeTogglesLoginAndQuickSwitch(t *testing.T) {
	k, _, _ := newConsoleKernel(t)
	_ = k.Boot()
	_ = k.SwitchTo(4)
	_ = k.SwitchTo(0)

	now := time.Unix(0, 0)
	k.Input(KeyEvent{Code: KeyEscape})
	k.Step(now)
	if k.ActiveConsole() != 4 {
		t.Fatalf("after escape from login active = %d, want 4", k.ActiveConsole())
	}
	k.Input(KeyEvent{Code: KeyEscape})
	k.Step(now)
	if k.ActiveConsole() != 0 {
		t.Fatalf("after second escape active = %d, want 0", k.ActiveConsole())
	}
}

func TestCtrlChords(t *testing.T) {
	k, _, progs := newConsoleKernel(t)
	_ = k.Boot()
	now := time.Unix(0, 0)

	cases := []struct {
		r    rune
		want int
	}{
		{'3', 3}, {'`', 0}, {'4', 4}, {'9', 4},
	}
	for _, c := range cases {
		k.Input(KeyEvent{Code: KeyRune, Rune: c.r, Ctrl: true, Alt: true})
		k.Step(now)
		if k.ActiveConsole() != c.want {
			t.Fatalf("ctrl+alt+%c -> %d, want %d", c.r, k.ActiveConsole(), c.want)
		}
	}

	k.Input(KeyEvent{Code: KeyRune, Rune: 'c', Ctrl: true})
	k.Input(KeyEvent{Code: KeyRune, Rune: 'x'})
	k.Step(now)
	keys := progs["around"].keys
	if len(keys) != 1 || keys[0].Rune != 'x' {
		t.Fatalf("around received %v, want only 'x'", keys)
	}
}

func TestCustomSlotTable(t *testing.T) {
	fsk := newTestKernel(t)
	k, err := New(Options{FS: fsk.fs, Memory: fsk.mem, Slots: []Slot{{ID: 0, Program: "x", Args: []string{"a"}}}})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	k.Register("x", func(*Context) Program { return &exiter{} })
	_ = k.Boot()
	for _, p := range k.Processes() {
		got = append(got, fmt.Sprintf("%d:%s:%v", p.PID, p.Program, p.Args))
	}
	if strings.Join(got, " ") != "0:system:[] 1:x:[a]" {
		t.Fatalf("processes = %v", got)
	}
}
