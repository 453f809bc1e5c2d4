// Package kernel runs the machine's programs: the process table, the syscall
// surface each program sees through its Context, the virtual consoles and the
// single dispatcher that drives input, updates and drawing.
//
// Nothing in this package is safe for concurrent use. Other goroutines reach
// the kernel through Do and Call, which run work on the dispatcher.
package kernel

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"phosphor/internal/logging"
	"phosphor/vos/raster"
	"phosphor/vos/vfs"
)

var (
	ErrNoSuchProgram = errors.New("no such program")
	ErrBadFD         = errors.New("bad file descriptor")
	ErrNoSuchConsole = errors.New("no such console")
)

// Display receives the screen after every redraw.
type Display interface {
	raster.Framebuffer
	Present() error
}

// Options configures a Kernel. FS and Memory are required.
type Options struct {
	FS      *vfs.FS
	Memory  *raster.Memory
	Display Display
	Log     *slog.Logger
	Slots   []Slot
	Seed    uint64
}

// Kernel owns every piece of machine-wide state.
type Kernel struct {
	log     *slog.Logger
	fs      *vfs.FS
	mem     *raster.Memory
	display Display
	rng     *rand.Rand

	programs map[string]Factory
	procs    []*Process
	nextPID  PID
	system   *Process
	current  *Process

	vc consoles

	// loaded is the currently selected file name, or "" when none is selected.
	loaded string
	errMsg string

	sched scheduler
}

// New builds a kernel with only the system process.
func New(opts Options) (*Kernel, error) {
	if opts.FS == nil || opts.Memory == nil {
		return nil, fmt.Errorf("kernel: filesystem and memory are required")
	}
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	k := &Kernel{
		log:      log.With(slog.String("component", "kernel")),
		fs:       opts.FS,
		mem:      opts.Memory,
		display:  opts.Display,
		rng:      rand.New(rand.NewPCG(seed, seed>>32|1)),
		programs: make(map[string]Factory),
		nextPID:  1,
	}
	k.system = &Process{pid: 0, ppid: 0, name: "system", args: []string{"system"}, main: resolved(0)}
	k.system.ctx = &Context{k: k, p: k.system}
	k.procs = []*Process{k.system}

	slots := opts.Slots
	if len(slots) == 0 {
		slots = DefaultSlots()
	}
	k.vc = newConsoles(slots)
	k.sched = newScheduler()
	return k, nil
}

// Register makes a program available to Spawn under name.
func (k *Kernel) Register(name string, f Factory) {
	k.programs[name] = f
}

// Programs lists registered program names.
func (k *Kernel) Programs() []string {
	names := make([]string, 0, len(k.programs))
	for n := range k.programs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// System returns the context of pid 0.
func (k *Kernel) System() *Context { return k.system.ctx }

// Current returns the process on the active console, or nil during startup.
func (k *Kernel) Current() *Process { return k.current }

func (k *Kernel) FS() *vfs.FS { return k.fs }

func (k *Kernel) Memory() *raster.Memory { return k.mem }

// setError stores the message of err in the error register.
func (k *Kernel) setError(err error) {
	var ve *vfs.Error
	if errors.As(err, &ve) {
		k.errMsg = ve.Msg
		return
	}
	k.errMsg = err.Error()
}

// Loaded returns the selected file name, selecting a fresh untitled name when
// nothing is selected.
func (k *Kernel) Loaded() string {
	if k.loaded != "" {
		return k.loaded
	}
	for i := 0; ; i++ {
		name := "untitled"
		if i > 0 {
			name = fmt.Sprintf("untitled-%d", i)
		}
		if !k.fs.Exists(name) {
			k.loaded = name
			return name
		}
	}
}

// Load selects an existing file.
func (k *Kernel) Load(name string) error {
	if !k.fs.Exists(name) {
		return vfs.ErrNotFound
	}
	k.loaded = name
	return nil
}

// Unload clears the selection and returns the fresh untitled name that replaces it.
func (k *Kernel) Unload() string {
	k.loaded = ""
	return k.Loaded()
}
