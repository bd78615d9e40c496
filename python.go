package preflight

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/midbel/shlex"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// tool is an executable resolved on the search path together with the
// arguments that always precede the ones given at call time.
type tool struct {
	name string
	path string
	args []string

	env    []string
	logger *zap.Logger
}

func splitCommand(str string) ([]string, error) {
	words, err := shlex.Split(strings.NewReader(str))
	if err != nil {
		return nil, errors.Wrapf(err, "%s: invalid command line", str)
	}
	if len(words) == 0 {
		return nil, errors.New("empty command line")
	}
	return words, nil
}

func resolveTool(find Finder, str string) (tool, error) {
	words, err := splitCommand(str)
	if err != nil {
		return tool{}, err
	}
	path, err := find.LookPath(words[0])
	if err != nil {
		return tool{}, err
	}
	return tool{
		name: words[0],
		path: path,
		args: words[1:],
	}, nil
}

func (t tool) String() string {
	return strings.Join(append([]string{t.name}, t.args...), " ")
}

func (t tool) command(ctx context.Context, cwd string, args ...string) Command {
	list := append(append([]string{}, t.args...), args...)
	cmd := StandardContext(ctx, t.path, cwd, list)
	cmd.SetEnv(t.env)
	t.logger.Debug("exec", zap.String("cmd", t.path), zap.Strings("args", list), zap.String("dir", cwd))
	return cmd
}

func (t tool) run(cmd Command) error {
	err := cmd.Run()
	pid, code := cmd.Exit()
	t.logger.Debug("done", zap.String("cmd", cmd.Command()), zap.Int("pid", pid), zap.Int("code", code), zap.Error(err))
	return err
}

type interpreter struct {
	tool
}

func (i interpreter) Version(ctx context.Context) (string, error) {
	var (
		buf bytes.Buffer
		cmd = i.command(ctx, "", "--version")
	)
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	if err := i.run(cmd); err != nil {
		return "", errors.Wrapf(err, "%s: version", i.name)
	}
	return strings.TrimSpace(buf.String()), nil
}

// CanImport reports whether module can be imported. A non zero status of the
// interpreter means that it can not; any other failure is returned.
func (i interpreter) CanImport(ctx context.Context, module string) (bool, error) {
	cmd := i.command(ctx, "", "-c", "import "+module)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := i.run(cmd)
	if err == nil {
		return true, nil
	}
	var exit *exec.ExitError
	if errors.As(err, &exit) && ctx.Err() == nil {
		return false, nil
	}
	return false, errors.Wrapf(err, "%s: import %s", i.name, module)
}

// Probe checks every library concurrently. The result is indexed like list.
func (i interpreter) Probe(ctx context.Context, list []Library) ([]bool, error) {
	var (
		found     = make([]bool, len(list))
		grp, gctx = errgroup.WithContext(ctx)
	)
	for j := range list {
		j := j
		grp.Go(func() error {
			ok, err := i.CanImport(gctx, list[j].Module)
			found[j] = ok
			return err
		})
	}
	return found, grp.Wait()
}

type installer struct {
	tool
	stdout io.Writer
	stderr io.Writer
}

func (i installer) Install(ctx context.Context, lib Library) error {
	cmd := i.command(ctx, "", "install", lib.Package)
	cmd.SetOut(i.stdout)
	cmd.SetErr(i.stderr)
	if err := i.run(cmd); err != nil {
		return errors.Wrapf(err, "%s install %s", i.name, lib.Package)
	}
	return nil
}
