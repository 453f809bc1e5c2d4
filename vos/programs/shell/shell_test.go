package shell

import (
	"fmt"
	"strings"
	"testing"

	"golang.org/x/crypto/blake2b"

	"phosphor/vos/kernel"
	"phosphor/vos/raster"
	"phosphor/vos/store"
	"phosphor/vos/vfs"
)

// console stands in for the terminal program.
type console struct {
	out     strings.Builder
	pending func(string)
}

func (c *console) Write(p []byte) (int, error) { return c.out.Write(p) }
func (c *console) ReadLine(done func(string))  { c.pending = done }

func (c *console) take() string {
	s := c.out.String()
	c.out.Reset()
	return s
}

// run enters a line and returns everything the shell printed in response.
func (c *console) run(t *testing.T, line string) string {
	t.Helper()
	if c.pending == nil {
		t.Fatalf("shell is not reading when %q is entered", line)
	}
	done := c.pending
	c.pending = nil
	done(line)
	return c.take()
}

func newKernel(t *testing.T) *kernel.Kernel {
	t.Helper()
	fs, err := vfs.New(store.NewMemory(), nil)
	if err != nil {
		t.Fatalf("vfs.New() error = %v", err)
	}
	k, err := kernel.New(kernel.Options{FS: fs, Memory: raster.New(), Seed: 1})
	if err != nil {
		t.Fatalf("kernel.New() error = %v", err)
	}
	k.Register("shell", New)
	return k
}

func startShell(t *testing.T, k *kernel.Kernel, args ...string) *console {
	t.Helper()
	var c *console
	k.Register("tty", func(*kernel.Context) kernel.Program { c = &console{}; return c })
	term, err := k.System().Spawn("tty")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := term.Context().Spawn("shell", args...); err != nil {
		t.Fatal(err)
	}
	return c
}

func newShell(t *testing.T) (*kernel.Kernel, *console) {
	k := newKernel(t)
	c := startShell(t, k)
	c.take()
	return k, c
}

func warn(s string) string { return "\x1bC" + s + "\x1bA\n" + prompt }
func ok(s string) string   { return "\x1bB" + s + "\x1bA\n" + prompt }

func TestLoginBanner(t *testing.T) {
	c := startShell(t, newKernel(t), "login")
	if got := c.take(); got != banner+prompt {
		t.Fatalf("login output = %q", got)
	}
	c2 := startShell(t, newKernel(t))
	if got := c2.take(); got != prompt {
		t.Fatalf("non-login output = %q", got)
	}
}

func TestHelp(t *testing.T) {
	_, c := newShell(t)
	want := "\x1bBhelp         \x1bAshow list of commands\n" +
		"\x1bBhelp \x1bCcmd     \x1bAshow help for command\n" +
		"\x1bBclear        \x1bAclear terminal\n" +
		"\x1bBlist         \x1bAlist files\n" +
		"\x1bBload \x1bCname    \x1bAload named file\n" +
		"\x1bBrun          \x1bArun loaded file\n" +
		"\x1bBrename \x1bCname  \x1bArename loaded file\n" +
		"\x1bBcopy \x1bCname    \x1bAcopy loaded file\n" +
		"\x1bBnew          \x1bAcreate new untitled file\n" +
		"\x1bBnew \x1bCname     \x1bAcreate new named file\n" +
		"\x1bBinfo         \x1bAshow loaded file info\n" +
		"\x1bBinfo \x1bCname    \x1bAshow named file info\n" +
		"\x1bBshow         \x1bAshow loaded file contents\n" +
		"\x1bBshow \x1bCname    \x1bAshow named file contents\n" +
		"\x1bBdelete       \x1bAdelete loaded file\n" +
		"\x1bBdelete \x1bCname  \x1bAdelete named file\n" +
		"\x1bBps           \x1bAlist processes\n"
	if got := c.run(t, "help"); got != want+prompt {
		t.Fatalf("help =\n%q\nwant\n%q", got, want+prompt)
	}
	if got := c.run(t, "help cat"); !strings.HasPrefix(got, "\x1bBshow         \x1bA") {
		t.Fatalf("help cat = %q", got)
	}
}

func TestDispatch(t *testing.T) {
	_, c := newShell(t)
	tests := []struct {
		line string
		want string
	}{
		{"", prompt},
		{"   ", prompt},
		{"frobnicate", warn("command not found")},
		{"clear", "\x1bZ" + prompt},
		{"clear now", warn("too many args specified")},
		{"ls -l", warn("too many args specified")},
		{"load", warn("no name specified")},
		{"load a b", warn("too many names specified")},
		{"load nope", warn("nope not found")},
		{"load dream", ok("dream loaded")},
		{`load "dream"`, ok("dream loaded")},
		{`load "dre`, warn("unbalanced quotes")},
		{"copy", warn("no name specified")},
		{"rename a b", warn("too many names specified")},
		{"new a b", warn("too many names specified")},
		{"show a b", warn("too many names specified")},
		{"cat missing", warn("no such file")},
		{"info missing", warn("no such file")},
		{"lua", warn("no script specified")},
		{"run", warn("no such program")},
		{"lua script", warn("no such program")},
	}
	for _, tc := range tests {
		if got := c.run(t, tc.line); got != tc.want {
			t.Fatalf("%q -> %q, want %q", tc.line, got, tc.want)
		}
	}
}

func TestList(t *testing.T) {
	k, c := newShell(t)
	var want strings.Builder
	for _, name := range k.FS().List() {
		want.WriteString(name + "\n")
	}
	want.WriteString(prompt)
	for _, alias := range []string{"list", "ls", "dir"} {
		if got := c.run(t, alias); got != want.String() {
			t.Fatalf("%s = %q, want %q", alias, got, want.String())
		}
	}
}

func TestNew(t *testing.T) {
	k, c := newShell(t)
	if got := c.run(t, "new"); got != ok("untitled created") {
		t.Fatalf("new = %q", got)
	}
	if got := c.run(t, "new notes"); got != ok("notes created") {
		t.Fatalf("new notes = %q", got)
	}
	if !k.FS().Exists("notes") || k.Loaded() != "notes" {
		t.Fatalf("notes exists = %v, loaded = %q", k.FS().Exists("notes"), k.Loaded())
	}
	if got := c.run(t, "new notes"); got != warn("notes already exists") {
		t.Fatalf("second new notes = %q", got)
	}
	if got := c.run(t, "new bad/name"); got != warn("problem creating file") {
		t.Fatalf("new bad/name = %q", got)
	}
}

func TestCopyAndRename(t *testing.T) {
	k, c := newShell(t)
	c.run(t, "load hello")

	if got := c.run(t, "copy hi"); got != ok("hi created") {
		t.Fatalf("copy hi = %q", got)
	}
	if got := c.run(t, "show"); got != "print 'Hello world'\n"+prompt {
		t.Fatalf("show after copy = %q", got)
	}
	if k.Loaded() != "hi" {
		t.Fatalf("loaded after copy = %q", k.Loaded())
	}
	if got := c.run(t, "copy hello"); got != warn("hello already exists") {
		t.Fatalf("copy onto existing = %q", got)
	}

	if got := c.run(t, "rename hey"); got != ok("hi renamed to hey") {
		t.Fatalf("rename hey = %q", got)
	}
	if k.FS().Exists("hi") || !k.FS().Exists("hey") || k.Loaded() != "hey" {
		t.Fatal("rename did not move the loaded file")
	}
	if got := c.run(t, "cat hey"); got != "print 'Hello world'\n"+prompt {
		t.Fatalf("cat hey = %q", got)
	}
}

func TestShowUnsavedLoadedFileIsSilent(t *testing.T) {
	_, c := newShell(t)
	if got := c.run(t, "show"); got != prompt {
		t.Fatalf("show = %q", got)
	}
}

func TestDeleteAsksFirst(t *testing.T) {
	k, c := newShell(t)

	if got := c.run(t, "rm hello"); got != "\x1bCdelete hello: are you sure?\x1bA " {
		t.Fatalf("confirmation = %q", got)
	}
	if got := c.run(t, "no"); got != prompt || !k.FS().Exists("hello") {
		t.Fatalf("declined delete = %q, exists = %v", got, k.FS().Exists("hello"))
	}

	c.run(t, "remove hello")
	if got := c.run(t, " YES "); got != ok("hello deleted") || k.FS().Exists("hello") {
		t.Fatalf("confirmed delete = %q", got)
	}

	c.run(t, "del hello")
	if got := c.run(t, "y"); got != warn("no such file") {
		t.Fatalf("delete missing = %q", got)
	}
}

func TestDeleteLoadedFile(t *testing.T) {
	k, c := newShell(t)
	c.run(t, "load dream")
	if got := c.run(t, "delete"); got != "\x1bCdelete dream: are you sure?\x1bA " {
		t.Fatalf("confirmation = %q", got)
	}
	if got := c.run(t, "y"); got != ok("dream deleted") {
		t.Fatalf("delete = %q", got)
	}
	if k.FS().Exists("dream") || k.Loaded() != "untitled" {
		t.Fatalf("after delete exists = %v, loaded = %q", k.FS().Exists("dream"), k.Loaded())
	}
}

func TestInfo(t *testing.T) {
	_, c := newShell(t)
	sum := blake2b.Sum256([]byte("print 'Hello world'"))
	want := "\x1bBname     \x1bAhello\n" +
		"\x1bBinode    \x1bA3\n" +
		"\x1bBsize     \x1bA19 bytes\n" +
		fmt.Sprintf("\x1bBblake2b  \x1bA%x\n", sum[:8]) + prompt
	if got := c.run(t, "info hello"); got != want {
		t.Fatalf("info hello = %q\nwant %q", got, want)
	}
	if got := c.run(t, "info"); !strings.Contains(got, "untitled") || !strings.Contains(got, "not saved") {
		t.Fatalf("info on unsaved file = %q", got)
	}
}

func TestPS(t *testing.T) {
	_, c := newShell(t)
	got := c.run(t, "ps")
	for _, row := range []string{"    0     0   system\n", "    1     0   tty\n", "    2     1   shell\n"} {
		if !strings.Contains(got, row) {
			t.Fatalf("ps = %q, missing %q", got, row)
		}
	}
}

type script struct {
	args []string
	exit func(int)
}

func (s *script) Main(args []string, exit func(int)) { s.args, s.exit = args, exit }

func TestRunWaitsForChild(t *testing.T) {
	k, c := newShell(t)
	var sc *script
	k.Register("lua", func(*kernel.Context) kernel.Program { sc = &script{}; return sc })

	c.run(t, "load dream")
	if got := c.run(t, "run fast"); got != "" {
		t.Fatalf("output while child runs = %q", got)
	}
	if strings.Join(sc.args, " ") != "lua dream fast" {
		t.Fatalf("child args = %q", sc.args)
	}
	if c.pending != nil {
		t.Fatal("shell read stdin while its child was running")
	}
	sc.exit(0)
	if got := c.take(); got != prompt {
		t.Fatalf("after child exit = %q", got)
	}
}

func TestShellExitsAtEndOfInput(t *testing.T) {
	k := newKernel(t)
	sys := k.System()
	if _, err := sys.Open("hello", "r"); err != nil {
		t.Fatal(err)
	}
	p, err := sys.Spawn("shell")
	if err != nil {
		t.Fatal(err)
	}
	if code, done := p.Main().Result(); !done || code != 0 {
		t.Fatalf("main = %d, %v; want 0, true", code, done)
	}
}
