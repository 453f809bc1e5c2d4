// Package shell is the command interpreter attached to the login terminal.
package shell

import (
	"strings"

	"github.com/google/shlex"

	"phosphor/vos/kernel"
	"phosphor/vos/vfs"
)

const (
	prompt = "\x1bB>\x1bA "
	banner = "\x1bBphosphor\x1bA            \x1bCtype 'help' for help\x1bA\n\n"
)

type Shell struct {
	ctx  *kernel.Context
	reg  *registry
	exit func(int)
}

// New is the kernel factory for the shell program.
func New(ctx *kernel.Context) kernel.Program {
	s := &Shell{ctx: ctx, reg: newRegistry()}
	for _, cmd := range builtins() {
		if err := s.reg.register(cmd); err != nil {
			panic(err)
		}
	}
	return s
}

// Main prints the banner for login shells and starts the read loop on stdin.
// The shell exits when stdin runs out.
func (s *Shell) Main(args []string, exit func(int)) {
	s.exit = exit
	if len(args) > 1 && args[1] == "login" {
		s.print(banner)
	}
	s.loop()
}

func (s *Shell) loop() {
	s.print(prompt)
	s.ctx.Read(0, vfs.FormatLine, func(v vfs.Value, err error) {
		if err != nil || v.Kind != vfs.String {
			s.exit(0)
			return
		}
		s.execute(v.Str, s.loop)
	})
}

func (s *Shell) execute(line string, next func()) {
	args, err := shlex.Split(line)
	if err != nil {
		s.warn("unbalanced quotes")
		next()
		return
	}
	if len(args) == 0 {
		next()
		return
	}
	cmd, ok := s.reg.resolve(args[0])
	if !ok {
		s.warn("command not found")
		next()
		return
	}
	cmd.Run(s, args[1:], next)
}

func (s *Shell) print(chunks ...string) {
	_, _ = s.ctx.Write(1, chunks...)
}

// warn prints msg in amber on its own line.
func (s *Shell) warn(msg string) { s.print("\x1bC", msg, "\x1bA\n") }

// ok prints msg in green on its own line.
func (s *Shell) ok(msg string) { s.print("\x1bB", msg, "\x1bA\n") }

// confirm asks a yes/no question on the terminal and calls then with the answer.
func (s *Shell) confirm(question string, then func(bool)) {
	s.print("\x1bC", question, "\x1bA ")
	s.ctx.Read(0, vfs.FormatLine, func(v vfs.Value, err error) {
		if err != nil || v.Kind != vfs.String {
			then(false)
			return
		}
		switch strings.ToLower(strings.TrimSpace(v.Str)) {
		case "y", "yes":
			then(true)
		default:
			then(false)
		}
	})
}

// slurp returns the contents of a file. File reads complete before Read
// returns, so the callback has run by the time this function looks at out.
func (s *Shell) slurp(name string) (string, bool) {
	fd, err := s.ctx.Open(name, "r")
	if err != nil {
		return "", false
	}
	defer s.ctx.Close(fd)

	var out string
	s.ctx.Read(fd, vfs.FormatAll, func(v vfs.Value, _ error) { out = v.Str })
	return out, true
}

// create writes contents to a new file. It reports false when name already
// exists or cannot be opened for writing.
func (s *Shell) create(name, contents, problem string) bool {
	if _, err := s.ctx.Stat(name); err == nil {
		s.warn(name + " already exists")
		return false
	}
	fd, err := s.ctx.Open(name, "w")
	if err != nil {
		s.warn(problem)
		return false
	}
	if contents != "" {
		_, _ = s.ctx.Write(fd, contents)
	}
	s.ctx.Close(fd)
	return true
}
