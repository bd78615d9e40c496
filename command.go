package preflight

import (
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/midbel/rw"
)

// StopDelay is the time a cancelled command is given to exit after it
// received an interrupt before being killed.
var StopDelay = 5 * time.Second

type Command interface {
	Command() string
	Args() []string

	SetIn(r io.Reader)
	SetOut(w io.Writer)
	SetErr(w io.Writer)
	SetEnv(env []string)

	Run() error
	Exit() (int, int)
}

type command struct {
	*exec.Cmd
	name string
}

func StandardContext(ctx context.Context, name, cwd string, args []string) Command {
	c := exec.CommandContext(ctx, name, args...)
	c.Dir = cwd
	c.Cancel = func() error {
		return c.Process.Signal(os.Interrupt)
	}
	c.WaitDelay = StopDelay
	return &command{
		Cmd:  c,
		name: name,
	}
}

func (c *command) Command() string {
	return c.name
}

func (c *command) Args() []string {
	if len(c.Cmd.Args) <= 1 {
		return nil
	}
	return c.Cmd.Args[1:]
}

func (c *command) SetIn(r io.Reader) {
	if r, ok := unwrapFileFromReader(r); ok {
		c.Stdin = r
		return
	}
	c.Stdin = r
}

func (c *command) SetOut(w io.Writer) {
	if w, ok := unwrapFileFromWriter(w); ok {
		c.Stdout = w
		return
	}
	c.Stdout = w
}

func (c *command) SetErr(w io.Writer) {
	if w, ok := unwrapFileFromWriter(w); ok {
		c.Stderr = w
		return
	}
	c.Stderr = w
}

func (c *command) SetEnv(env []string) {
	c.Cmd.Env = append([]string{}, env...)
}

func (c *command) Exit() (int, int) {
	if c == nil || c.Cmd == nil || c.Cmd.ProcessState == nil {
		return 0, 255
	}
	var (
		pid  = c.ProcessState.Pid()
		code = c.ProcessState.ExitCode()
	)
	return pid, code
}

func unwrapFileFromReader(r io.Reader) (*os.File, bool) {
	u, ok := r.(rw.UnwrapReader)
	if !ok {
		return nil, ok
	}
	f, ok := u.Unwrap().(*os.File)
	return f, ok
}

func unwrapFileFromWriter(w io.Writer) (*os.File, bool) {
	u, ok := w.(rw.UnwrapWriter)
	if !ok {
		return nil, ok
	}
	f, ok := u.Unwrap().(*os.File)
	return f, ok
}
