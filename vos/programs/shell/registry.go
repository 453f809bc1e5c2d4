package shell

import (
	"fmt"
	"strings"
)

// cmdFunc runs a builtin. args excludes the command name. The builtin must
// call next exactly once when it has finished, which may be after a read.
type cmdFunc func(s *Shell, args []string, next func())

// usage is one line of help output: the command, an optional argument and a
// description.
type usage struct {
	Arg  string
	Desc string
}

type command struct {
	Name    string
	Aliases []string
	Usage   []usage
	Run     cmdFunc
}

type registry struct {
	primary map[string]command
	lookup  map[string]string
	order   []string
}

func newRegistry() *registry {
	return &registry{
		primary: make(map[string]command),
		lookup:  make(map[string]string),
	}
}

func (r *registry) register(cmd command) error {
	cmd.Name = strings.TrimSpace(cmd.Name)
	if cmd.Name == "" {
		return fmt.Errorf("shell registry: empty command name")
	}
	if cmd.Run == nil {
		return fmt.Errorf("shell registry: %q has no handler", cmd.Name)
	}
	if _, ok := r.lookup[cmd.Name]; ok {
		return fmt.Errorf("shell registry: duplicate command %q", cmd.Name)
	}

	r.primary[cmd.Name] = cmd
	r.lookup[cmd.Name] = cmd.Name
	r.order = append(r.order, cmd.Name)

	for _, alias := range cmd.Aliases {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			continue
		}
		if _, ok := r.lookup[alias]; ok {
			return fmt.Errorf("shell registry: duplicate alias %q", alias)
		}
		r.lookup[alias] = cmd.Name
	}
	return nil
}

func (r *registry) resolve(name string) (command, bool) {
	if primary, ok := r.lookup[name]; ok {
		cmd, ok := r.primary[primary]
		return cmd, ok
	}
	return command{}, false
}

// commands returns the registered commands in registration order.
func (r *registry) commands() []command {
	out := make([]command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.primary[name])
	}
	return out
}

const helpColumn = 13

func (c command) help() string {
	var b strings.Builder
	for _, u := range c.Usage {
		b.WriteString("\x1bB")
		b.WriteString(c.Name)
		width := len(c.Name)
		if u.Arg != "" {
			b.WriteString(" \x1bC")
			b.WriteString(u.Arg)
			width += 1 + len(u.Arg)
		}
		b.WriteString(strings.Repeat(" ", max(helpColumn-width, 1)))
		b.WriteString("\x1bA")
		b.WriteString(u.Desc)
		b.WriteByte('\n')
	}
	return b.String()
}
