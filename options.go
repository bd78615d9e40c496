package preflight

import (
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/midbel/preflight/internal/browser"
)

type RunnerOption func(*Runner) error

func WithFinder(find Finder) RunnerOption {
	return func(r *Runner) error {
		r.find = find
		return nil
	}
}

func WithDirs(dirs ...string) RunnerOption {
	return func(r *Runner) error {
		r.dirs = append(r.dirs, dirs...)
		return nil
	}
}

func WithStdin(in io.Reader) RunnerOption {
	return func(r *Runner) error {
		r.Stdin = in
		return nil
	}
}

func WithStdout(w io.Writer) RunnerOption {
	return func(r *Runner) error {
		r.Stdout = w
		return nil
	}
}

func WithStderr(w io.Writer) RunnerOption {
	return func(r *Runner) error {
		r.Stderr = w
		return nil
	}
}

func WithEnv(e Environment) RunnerOption {
	return func(r *Runner) error {
		r.env = EnclosedEnv(e)
		return nil
	}
}

func WithVar(ident string, values ...string) RunnerOption {
	return func(r *Runner) error {
		return r.env.Define(ident, values)
	}
}

func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) error {
		r.logger = logger
		return nil
	}
}

func WithRequirements(req Requirements) RunnerOption {
	return func(r *Runner) error {
		r.req = req
		return nil
	}
}

func WithInterpreter(cmdline string) RunnerOption {
	return func(r *Runner) error {
		r.req.Interpreter = cmdline
		return nil
	}
}

func WithInstaller(cmdline string) RunnerOption {
	return func(r *Runner) error {
		r.req.Installer = cmdline
		return nil
	}
}

func WithScript(script string, args ...string) RunnerOption {
	return func(r *Runner) error {
		r.req.Script = script
		if len(args) > 0 {
			r.req.Args = append(r.req.Args[:0], args...)
		}
		return nil
	}
}

func WithCwd(dir string) RunnerOption {
	return func(r *Runner) error {
		r.cwd = dir
		return nil
	}
}

func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) error {
		r.timeout = d
		return nil
	}
}

func WithoutInstall() RunnerOption {
	return func(r *Runner) error {
		r.install = false
		return nil
	}
}

func WithStrict() RunnerOption {
	return func(r *Runner) error {
		r.strict = true
		return nil
	}
}

func WithBrowser(look browser.LookFunc) RunnerOption {
	return func(r *Runner) error {
		r.look = look
		return nil
	}
}
