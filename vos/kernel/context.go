package kernel

import (
	"phosphor/vos/raster"
	"phosphor/vos/vfs"
)

// Context is the syscall surface handed to one process. Descriptor arguments
// always resolve against that process' own table.
//
// Calls that fail return a sentinel (-1, or a Nil/Undefined value) together with
// the error, and overwrite the kernel's error register, which Error reads back.
// A successful call leaves the register alone.
type Context struct {
	k *Kernel
	p *Process
}

func (c *Context) PID() PID  { return c.p.pid }
func (c *Context) PPID() PID { return c.p.ppid }

// Error returns the last error message recorded by any process.
func (c *Context) Error() string { return c.k.errMsg }

func (c *Context) fail(err error) error {
	c.k.setError(err)
	return err
}

func (c *Context) handle(fd int) (Handle, error) {
	if fd < 0 || fd >= len(c.p.fds) || c.p.fds[fd] == nil {
		return nil, ErrBadFD
	}
	return c.p.fds[fd], nil
}

// Open opens a file and returns the new descriptor, always appended to the table.
func (c *Context) Open(name, mode string) (int, error) {
	f, err := c.k.fs.Open(name, mode)
	if err != nil {
		return -1, c.fail(err)
	}
	c.p.fds = append(c.p.fds, fileHandle{f: f})
	return len(c.p.fds) - 1, nil
}

// Close releases a descriptor. Closing a descriptor that is not open does nothing.
func (c *Context) Close(fd int) {
	h, err := c.handle(fd)
	if err != nil {
		return
	}
	_ = h.Close()
	c.p.fds[fd] = nil
}

// Read reads one value in format fm and passes it to then, which may run later if
// the descriptor is a terminal waiting for input. Until then runs the process is
// blocked and receives no input events.
func (c *Context) Read(fd int, fm vfs.Format, then func(vfs.Value, error)) {
	h, err := c.handle(fd)
	if err != nil {
		err = c.fail(err)
		if then != nil {
			then(vfs.Value{}, err)
		}
		return
	}

	p := c.p
	p.blocked = true
	h.Read(fm, func(v vfs.Value, err error) {
		p.blocked = false
		if err != nil {
			c.k.setError(err)
		}
		if then != nil {
			then(v, err)
		}
	})
}

// Write writes the concatenated chunks and returns the byte count.
func (c *Context) Write(fd int, chunks ...string) (int, error) {
	h, err := c.handle(fd)
	if err != nil {
		return -1, c.fail(err)
	}
	bs := make([][]byte, len(chunks))
	for i, s := range chunks {
		bs[i] = []byte(s)
	}
	n, err := h.Write(bs...)
	if err != nil {
		return -1, c.fail(err)
	}
	return n, nil
}

// Seek repositions a descriptor and returns the new offset.
func (c *Context) Seek(fd int, offset int64, whence vfs.Whence) (int64, error) {
	h, err := c.handle(fd)
	if err != nil {
		return -1, c.fail(err)
	}
	off, err := h.Seek(offset, whence)
	if err != nil {
		return -1, c.fail(err)
	}
	return off, nil
}

// Delete removes a file by name and returns 0, or -1 when it does not exist.
func (c *Context) Delete(name string) (int, error) {
	if err := c.k.fs.Delete(name); err != nil {
		return -1, c.fail(err)
	}
	return 0, nil
}

// List returns all file names.
func (c *Context) List() []string { return c.k.fs.List() }

// Stat describes a file by name.
func (c *Context) Stat(name string) (vfs.Info, error) {
	info, err := c.k.fs.Stat(name)
	if err != nil {
		return vfs.Info{}, c.fail(err)
	}
	return info, nil
}

// Load selects name as the open document and returns 0, or -1 when it does not exist.
func (c *Context) Load(name string) (int, error) {
	if err := c.k.Load(name); err != nil {
		return -1, c.fail(err)
	}
	return 0, nil
}

// Loaded returns the open document's name, synthesizing an untitled one if needed.
func (c *Context) Loaded() string { return c.k.Loaded() }

// Unload clears the open document and returns its untitled replacement.
func (c *Context) Unload() string { return c.k.Unload() }

// Spawn starts a program as a child of the calling process.
func (c *Context) Spawn(name string, args ...string) (*Process, error) {
	p, err := c.k.spawn(c.p, name, args)
	if err != nil {
		return nil, c.fail(err)
	}
	return p, nil
}

// Processes lists the process table.
func (c *Context) Processes() []ProcessInfo { return c.k.Processes() }

// Programs lists the programs Spawn accepts.
func (c *Context) Programs() []string { return c.k.Programs() }

// Raster primitives. Colors are palette indexes; Char and Text take raster.DefaultFG
// and raster.DefaultBG when the caller has no preference.

func (c *Context) Clear(color int)                   { c.k.mem.Clear(color) }
func (c *Context) Box(x, y, w, h, color int)         { c.k.mem.Box(x, y, w, h, color) }
func (c *Context) Char(ch byte, x, y, c1, c2 int)    { c.k.mem.Char(ch, x, y, c1, c2) }
func (c *Context) Text(s string, x, y, c1, c2 int)   { c.k.mem.Text(s, x, y, c1, c2) }
func (c *Context) Rect(x, y, w, h, fill, border int) { c.k.mem.Rect(x, y, w, h, fill, border) }
func (c *Context) Peek(addr int) byte                { return c.k.mem.Peek(addr) }
func (c *Context) Poke(addr, v int)                  { c.k.mem.Poke(addr, v) }
func (c *Context) Blit(p *raster.Plane)              { c.k.mem.Blit(p) }

// RequestRedraw schedules a redraw on the next dispatcher step.
func (c *Context) RequestRedraw() { c.k.requestRedraw() }
