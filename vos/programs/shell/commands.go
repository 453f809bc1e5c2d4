package shell

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"phosphor/vos/kernel"
)

func builtins() []command {
	return []command{
		{Name: "help", Run: cmdHelp, Usage: []usage{
			{Desc: "show list of commands"},
			{Arg: "cmd", Desc: "show help for command"},
		}},
		{Name: "clear", Run: cmdClear, Usage: []usage{{Desc: "clear terminal"}}},
		{Name: "list", Aliases: []string{"ls", "dir"}, Run: cmdList, Usage: []usage{{Desc: "list files"}}},
		{Name: "load", Run: cmdLoad, Usage: []usage{{Arg: "name", Desc: "load named file"}}},
		{Name: "run", Run: cmdRun, Usage: []usage{{Desc: "run loaded file"}}},
		{Name: "rename", Run: cmdRename, Usage: []usage{{Arg: "name", Desc: "rename loaded file"}}},
		{Name: "copy", Run: cmdCopy, Usage: []usage{{Arg: "name", Desc: "copy loaded file"}}},
		{Name: "new", Run: cmdNew, Usage: []usage{
			{Desc: "create new untitled file"},
			{Arg: "name", Desc: "create new named file"},
		}},
		{Name: "info", Run: cmdInfo, Usage: []usage{
			{Desc: "show loaded file info"},
			{Arg: "name", Desc: "show named file info"},
		}},
		{Name: "show", Aliases: []string{"cat"}, Run: cmdShow, Usage: []usage{
			{Desc: "show loaded file contents"},
			{Arg: "name", Desc: "show named file contents"},
		}},
		{Name: "delete", Aliases: []string{"del", "rm", "remove"}, Run: cmdDelete, Usage: []usage{
			{Desc: "delete loaded file"},
			{Arg: "name", Desc: "delete named file"},
		}},
		{Name: "ps", Run: cmdPS, Usage: []usage{{Desc: "list processes"}}},
		{Name: "lua", Run: cmdLua},
	}
}

// oneName checks for exactly one name argument.
func (s *Shell) oneName(args []string) (string, bool) {
	switch len(args) {
	case 0:
		s.warn("no name specified")
		return "", false
	case 1:
		return args[0], true
	default:
		s.warn("too many names specified")
		return "", false
	}
}

// optName checks for at most one name argument, defaulting to the loaded file.
func (s *Shell) optName(args []string) (name string, named, ok bool) {
	switch len(args) {
	case 0:
		return s.ctx.Loaded(), false, true
	case 1:
		return args[0], true, true
	default:
		s.warn("too many names specified")
		return "", false, false
	}
}

func cmdHelp(s *Shell, args []string, next func()) {
	defer next()
	if len(args) == 0 {
		for _, c := range s.reg.commands() {
			s.print(c.help())
		}
		return
	}
	for _, name := range args {
		c, ok := s.reg.resolve(name)
		if !ok || len(c.Usage) == 0 {
			s.warn(name + ": no help")
			continue
		}
		s.print(c.help())
	}
}

func cmdClear(s *Shell, args []string, next func()) {
	defer next()
	if len(args) != 0 {
		s.warn("too many args specified")
		return
	}
	s.print("\x1bZ")
}

func cmdList(s *Shell, args []string, next func()) {
	defer next()
	if len(args) != 0 {
		s.warn("too many args specified")
		return
	}
	for _, name := range s.ctx.List() {
		s.print(name, "\n")
	}
}

func cmdLoad(s *Shell, args []string, next func()) {
	defer next()
	name, ok := s.oneName(args)
	if !ok {
		return
	}
	if r, _ := s.ctx.Load(name); r != 0 {
		s.warn(name + " not found")
		return
	}
	s.ok(name + " loaded")
}

func cmdNew(s *Shell, args []string, next func()) {
	defer next()
	if len(args) > 1 {
		s.warn("too many names specified")
		return
	}
	if len(args) == 0 {
		s.ok(s.ctx.Unload() + " created")
		return
	}
	name := args[0]
	if !s.create(name, "", "problem creating file") {
		return
	}
	_, _ = s.ctx.Load(name)
	s.ok(name + " created")
}

func cmdCopy(s *Shell, args []string, next func()) {
	defer next()
	name, ok := s.oneName(args)
	if !ok {
		return
	}
	contents, _ := s.slurp(s.ctx.Loaded())
	if !s.create(name, contents, "problem copying file") {
		return
	}
	_, _ = s.ctx.Load(name)
	s.ok(name + " created")
}

func cmdRename(s *Shell, args []string, next func()) {
	defer next()
	name, ok := s.oneName(args)
	if !ok {
		return
	}
	old := s.ctx.Loaded()
	contents, _ := s.slurp(old)
	if !s.create(name, contents, "problem renaming file") {
		return
	}
	s.ok(old + " renamed to " + name)
	_, _ = s.ctx.Delete(old)
	_, _ = s.ctx.Load(name)
}

func cmdShow(s *Shell, args []string, next func()) {
	defer next()
	name, named, ok := s.optName(args)
	if !ok {
		return
	}
	contents, found := s.slurp(name)
	if !found {
		if named {
			s.warn("no such file")
		}
		return
	}
	if !strings.HasSuffix(contents, "\n") {
		s.print(contents, "\n")
		return
	}
	s.print(contents)
}

func cmdDelete(s *Shell, args []string, next func()) {
	name, named, ok := s.optName(args)
	if !ok {
		next()
		return
	}
	loaded := !named || name == s.ctx.Loaded()
	s.confirm(fmt.Sprintf("delete %s: are you sure?", name), func(yes bool) {
		defer next()
		if !yes {
			return
		}
		r, _ := s.ctx.Delete(name)
		if loaded {
			s.ctx.Unload()
			s.ok(name + " deleted")
			return
		}
		if r != 0 {
			s.warn("no such file")
			return
		}
		s.ok(name + " deleted")
	})
}

func cmdInfo(s *Shell, args []string, next func()) {
	defer next()
	name, named, ok := s.optName(args)
	if !ok {
		return
	}
	info, err := s.ctx.Stat(name)
	if err != nil {
		if named {
			s.warn("no such file")
			return
		}
		s.print("\x1bBname     \x1bA", name, "\n")
		s.print("\x1bBstatus   \x1bAnot saved\n")
		return
	}
	contents, _ := s.slurp(name)
	sum := blake2b.Sum256([]byte(contents))
	s.print(fmt.Sprintf("\x1bBname     \x1bA%s\n", info.Name))
	s.print(fmt.Sprintf("\x1bBinode    \x1bA%d\n", info.Ino))
	s.print(fmt.Sprintf("\x1bBsize     \x1bA%d bytes\n", info.Size))
	s.print(fmt.Sprintf("\x1bBblake2b  \x1bA%x\n", sum[:8]))
}

func cmdPS(s *Shell, args []string, next func()) {
	defer next()
	if len(args) != 0 {
		s.warn("too many args specified")
		return
	}
	s.print("\x1bB  PID  PPID   PROGRAM\x1bA\n")
	for _, p := range s.ctx.Processes() {
		state := ' '
		switch {
		case p.Current:
			state = '*'
		case p.Blocked:
			state = 'w'
		}
		cmdline := strings.Join(append([]string{p.Program}, p.Args...), " ")
		s.print(fmt.Sprintf("%5d %5d %c %s\n", p.PID, p.PPID, state, cmdline))
	}
}

func cmdRun(s *Shell, args []string, next func()) {
	s.spawnAndWait("lua", append([]string{s.ctx.Loaded()}, args...), next)
}

func cmdLua(s *Shell, args []string, next func()) {
	if len(args) == 0 {
		s.warn("no script specified")
		next()
		return
	}
	s.spawnAndWait("lua", args, next)
}

// spawnAndWait runs a program as a child and continues once its entry finishes.
func (s *Shell) spawnAndWait(program string, args []string, next func()) {
	p, err := s.ctx.Spawn(program, args...)
	if err != nil {
		s.warn(s.ctx.Error())
		next()
		return
	}
	p.Main().Then(func(int) { next() })
}

var _ kernel.Mainer = (*Shell)(nil)
