package preflight

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/midbel/preflight/internal/browser"
)

// Runner checks that the Python toolchain required by a browser automation
// script is available, installs the missing libraries and runs the script.
type Runner struct {
	env    Environment
	find   Finder
	dirs   []string
	logger *zap.Logger
	report *Report
	look   browser.LookFunc

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	req     Requirements
	cwd     string
	install bool
	strict  bool
	timeout time.Duration
}

func New(options ...RunnerOption) (*Runner, error) {
	r := Runner{
		env:     EnclosedEnv(ProcessEnv()),
		logger:  zap.NewNop(),
		look:    browser.LookPath,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		req:     DefaultRequirements(),
		install: true,
	}
	if cwd, err := os.Getwd(); err == nil {
		r.cwd = cwd
	}
	for _, o := range options {
		if err := o(&r); err != nil {
			return nil, err
		}
	}
	if r.find == nil {
		f := NewFinder(r.env)
		f.SetDirs(r.dirs)
		r.find = f
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	r.report = NewReport(r.Stdout, r.Stderr)
	r.req = r.req.Expand(r.env)
	return &r, nil
}

// Run performs every check in order then runs the script. The error returned
// has already been reported to the user. A failing script gives an
// *ExitError.
func (r *Runner) Run(ctx context.Context) error {
	python, err := r.checkInterpreter(ctx)
	if err != nil {
		return err
	}
	pip, err := r.checkInstaller()
	if err != nil {
		return err
	}
	if err := r.checkLibraries(ctx, python, pip); err != nil {
		return err
	}
	if err := r.interrupted(ctx); err != nil {
		return err
	}
	r.checkBrowser()
	if err := r.interrupted(ctx); err != nil {
		return err
	}
	return r.runScript(ctx, python)
}

func (r *Runner) interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		r.report.Fail("interrupted")
		return errors.Wrap(err, "preflight")
	}
	return nil
}

func (r *Runner) checkInterpreter(ctx context.Context) (interpreter, error) {
	t, err := r.resolve(r.req.Interpreter)
	if err != nil {
		r.report.Fail("%s not found. Please install Python 3", r.req.Interpreter)
		return interpreter{}, errors.WithMessage(ErrInterpreter, err.Error())
	}
	python := interpreter{tool: t}
	version, err := python.Version(ctx)
	if err != nil {
		r.logger.Warn("interpreter version unavailable", zap.String("cmd", python.path), zap.Error(err))
		version = python.path
	}
	r.report.Ok("Python found: %s", version)
	return python, nil
}

func (r *Runner) checkInstaller() (installer, error) {
	t, err := r.resolve(r.req.Installer)
	if err != nil {
		r.report.Fail("%s not found. Please install pip", r.req.Installer)
		return installer{}, errors.WithMessage(ErrInstaller, err.Error())
	}
	r.report.Ok("pip found: %s", t.path)
	return installer{
		tool:   t,
		stdout: r.Stdout,
		stderr: r.Stderr,
	}, nil
}

func (r *Runner) checkLibraries(ctx context.Context, python interpreter, pip installer) error {
	libs := r.req.Libraries
	if len(libs) == 0 {
		return nil
	}
	r.report.Info("Checking dependencies...")
	found, err := python.Probe(ctx, libs)
	if err := r.interrupted(ctx); err != nil {
		return err
	}
	if err != nil {
		r.report.Fail("fail to check dependencies: %s", err)
		return err
	}
	var missing []Library
	for i, ok := range found {
		if ok {
			r.report.Ok("%s is installed", libs[i])
			continue
		}
		missing = append(missing, libs[i])
	}
	if len(missing) == 0 {
		return nil
	}
	if !r.install {
		for _, lib := range missing {
			r.report.Warn("%s is not installed (install skipped)", lib)
		}
		return nil
	}
	for _, lib := range missing {
		if err := r.installLibrary(ctx, python, pip, lib); err != nil {
			return err
		}
	}
	return nil
}

// installLibrary invokes the package manager once for lib. Unless the runner
// is strict, a failure is only reported and the run goes on.
func (r *Runner) installLibrary(ctx context.Context, python interpreter, pip installer, lib Library) error {
	r.report.Info("Installing %s...", lib)
	err := pip.Install(ctx, lib)
	if err == nil {
		var ok bool
		if ok, err = python.CanImport(ctx, lib.Module); err == nil && !ok {
			err = errors.Errorf("%s still can not be imported", lib.Module)
		}
	}
	if err == nil {
		r.report.Ok("%s installed", lib)
		return nil
	}
	if ctx.Err() != nil {
		r.report.Fail("install of %s interrupted", lib)
		return errors.Wrapf(ctx.Err(), "install %s", lib.Package)
	}
	r.logger.Warn("install failed", zap.String("package", lib.Package), zap.Error(err))
	if r.strict {
		r.report.Fail("fail to install %s: %s", lib, err)
		return errors.WithMessage(ErrInstall, lib.Package)
	}
	r.report.Warn("fail to install %s: %s", lib, err)
	return nil
}

func (r *Runner) checkBrowser() {
	platform := Platform(r.env)
	if IsDarwin(platform) {
		if browser.HasBundle(r.req.Bundle) {
			r.report.Ok("Chrome found: %s", r.req.Bundle)
			return
		}
		r.report.Warn("Chrome not found in %s", filepath.Dir(r.req.Bundle))
		r.report.Warn("Please install Google Chrome from https://www.google.com/chrome/")
		return
	}
	if r.look == nil {
		return
	}
	if path, ok := r.look(); ok {
		r.report.Ok("Chrome found: %s", path)
		return
	}
	r.report.Warn("no Chrome or Chromium binary found on %s", platform)
}

func (r *Runner) runScript(ctx context.Context, python interpreter) error {
	script := r.req.Script
	if !filepath.IsAbs(script) {
		script = filepath.Join(r.cwd, script)
	}
	if i, err := os.Stat(script); err != nil || i.IsDir() {
		r.report.Fail("%s not found", r.req.Script)
		return errors.WithMessage(ErrScript, script)
	}
	dir := filepath.Dir(script)
	for _, a := range r.req.Assets {
		file := a
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, a)
		}
		if _, err := os.Stat(file); err != nil {
			r.report.Fail("%s not found", file)
			return errors.WithMessage(ErrAsset, file)
		}
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	args := append([]string{script}, r.req.Args...)
	r.report.Run("Running %s %s", python, strings.Join(args, " "))

	cmd := python.command(ctx, dir, args...)
	cmd.SetIn(r.Stdin)
	cmd.SetOut(r.Stdout)
	cmd.SetErr(r.Stderr)

	err := python.run(cmd)
	if err == nil {
		r.report.Ok("%s completed", filepath.Base(script))
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		r.report.Fail("%s did not complete within %s", filepath.Base(script), r.timeout)
		return errors.WithMessage(ErrTimeout, script)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		r.report.Fail("%s interrupted", filepath.Base(script))
		return errors.Wrap(ctx.Err(), "run script")
	}
	var exit *exec.ExitError
	if !errors.As(err, &exit) {
		r.report.Fail("fail to run %s: %s", filepath.Base(script), err)
		return errors.Wrap(err, "run script")
	}
	code := exit.ExitCode()
	if code <= 0 {
		code = 1
	}
	r.report.Fail("%s failed with exit status %d", filepath.Base(script), code)
	return &ExitError{
		Script: script,
		Code:   code,
	}
}

func (r *Runner) resolve(cmdline string) (tool, error) {
	t, err := resolveTool(r.find, cmdline)
	if err != nil {
		return t, err
	}
	t.logger = r.logger
	t.env = environList(r.env)
	return t, nil
}
