package kernel

import (
	"log/slog"
	"slices"
)

// PID identifies a process. 0 is the system process.
type PID int

// Process is one running program instance.
type Process struct {
	pid  PID
	ppid PID
	name string
	args []string
	prog Program
	fds  []Handle
	ctx  *Context
	main *Future

	// blocked is set while a read issued by the process is outstanding. Input for a
	// blocked process waits in backlog.
	blocked bool
	backlog []Event
}

func (p *Process) PID() PID          { return p.pid }
func (p *Process) PPID() PID         { return p.ppid }
func (p *Process) Name() string      { return p.name }
func (p *Process) Program() Program  { return p.prog }
func (p *Process) Context() *Context { return p.ctx }

// Main resolves with the program's exit code.
func (p *Process) Main() *Future { return p.main }

// ProcessInfo is a snapshot of one process table entry.
type ProcessInfo struct {
	PID      PID      `json:"pid"`
	PPID     PID      `json:"ppid"`
	Program  string   `json:"program"`
	Args     []string `json:"args"`
	FDs      int      `json:"fds"`
	Blocked  bool     `json:"blocked"`
	Current  bool     `json:"current"`
	MainDone bool     `json:"main_done"`
	Code     int      `json:"code"`
}

// Future is a value that becomes available later on the dispatcher.
type Future struct {
	done    bool
	code    int
	waiters []func(int)
}

func resolved(code int) *Future { return &Future{done: true, code: code} }

// Result returns the code and whether the future has resolved.
func (f *Future) Result() (int, bool) { return f.code, f.done }

// Then calls fn with the code once resolved; immediately if it already is.
func (f *Future) Then(fn func(code int)) {
	if f.done {
		fn(f.code)
		return
	}
	f.waiters = append(f.waiters, fn)
}

func (f *Future) resolve(code int) {
	if f.done {
		return
	}
	f.done = true
	f.code = code
	ws := f.waiters
	f.waiters = nil
	for _, w := range ws {
		w(code)
	}
}

func (k *Kernel) spawn(parent *Process, name string, args []string) (*Process, error) {
	factory, ok := k.programs[name]
	if !ok {
		return nil, ErrNoSuchProgram
	}

	p := &Process{
		pid:  k.nextPID,
		ppid: parent.pid,
		name: name,
		args: append([]string{name}, args...),
	}
	k.nextPID++
	p.ctx = &Context{k: k, p: p}
	k.procs = append(k.procs, p)

	p.prog = factory(p.ctx)
	if tty, ok := p.prog.(TTY); ok {
		h := ttyHandle{k: k, tty: tty}
		p.fds = []Handle{h, h, h}
	} else {
		p.fds = slices.Clone(parent.fds)
	}

	k.log.Debug("spawn",
		slog.Int("pid", int(p.pid)),
		slog.Int("ppid", int(p.ppid)),
		slog.String("program", name),
		slog.Any("args", args),
	)

	if m, ok := p.prog.(Mainer); ok {
		p.main = &Future{}
		fut := p.main
		m.Main(slices.Clone(p.args), fut.resolve)
	} else {
		p.main = resolved(0)
	}
	return p, nil
}

func (k *Kernel) lookup(pid PID) *Process {
	for _, p := range k.procs {
		if p.pid == pid {
			return p
		}
	}
	return nil
}

// Processes lists the process table in pid order.
func (k *Kernel) Processes() []ProcessInfo {
	out := make([]ProcessInfo, 0, len(k.procs))
	for _, p := range k.procs {
		n := 0
		for _, h := range p.fds {
			if h != nil {
				n++
			}
		}
		code, done := p.main.Result()
		out = append(out, ProcessInfo{
			PID:      p.pid,
			PPID:     p.ppid,
			Program:  p.name,
			Args:     slices.Clone(p.args[1:]),
			FDs:      n,
			Blocked:  p.blocked,
			Current:  p == k.current,
			MainDone: done,
			Code:     code,
		})
	}
	return out
}
