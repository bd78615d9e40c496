// preflight makes sure that the Python toolchain needed by a browser
// automation script is installed, then runs the script and exits with its
// status.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/midbel/preflight"
)

const version = "0.1.0"

type arguments struct {
	target    string
	config    string
	python    string
	pip       string
	script    string
	dirs      []string
	noInstall bool
	strict    bool
	verbose   bool
	timeout   time.Duration
	args      []string
}

func (a *arguments) requirements() (preflight.Requirements, error) {
	req, err := preflight.Preset(a.target)
	if err != nil || a.config == "" {
		return req, err
	}
	f, err := os.Open(a.config)
	if err != nil {
		return req, err
	}
	defer f.Close()
	return preflight.LoadRequirements(f, req)
}

func (a *arguments) options(logger *zap.Logger) ([]preflight.RunnerOption, error) {
	req, err := a.requirements()
	if err != nil {
		return nil, err
	}
	options := []preflight.RunnerOption{
		preflight.WithRequirements(req),
		preflight.WithLogger(logger),
		preflight.WithDirs(a.dirs...),
		preflight.WithTimeout(a.timeout),
	}
	if a.python != "" {
		options = append(options, preflight.WithInterpreter(a.python))
	}
	if a.pip != "" {
		options = append(options, preflight.WithInstaller(a.pip))
	}
	if a.script != "" || len(a.args) > 0 {
		script := a.script
		if script == "" {
			script = req.Script
		}
		options = append(options, preflight.WithScript(script, a.args...))
	}
	if a.noInstall {
		options = append(options, preflight.WithoutInstall())
	}
	if a.strict {
		options = append(options, preflight.WithStrict())
	}
	return options, nil
}

func (a *arguments) execute(ctx context.Context) error {
	logger := zap.NewNop()
	if a.verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			kingpin.Errorf("%s", err)
			return err
		}
	}
	defer logger.Sync()

	options, err := a.options(logger)
	if err != nil {
		kingpin.Errorf("%s", err)
		return err
	}
	r, err := preflight.New(options...)
	if err != nil {
		kingpin.Errorf("%s", err)
		return err
	}
	return r.Run(ctx)
}

func parseArgs(args []string) (*arguments, error) {
	app := kingpin.New("preflight", "Check the Python toolchain of a browser automation script and run it.")
	app.Version(version)

	target := app.Flag("target", "Script preset to check and run.").Default(preflight.DefaultPreset).Envar("PREFLIGHT_TARGET").Enum(preflight.Presets()...)
	config := app.Flag("config", "YAML file overriding the requirements of the preset.").Envar("PREFLIGHT_CONFIG").String()
	python := app.Flag("python", "Python interpreter command line.").Envar("PREFLIGHT_PYTHON").String()
	pip := app.Flag("pip", "Package manager command line.").Envar("PREFLIGHT_PIP").String()
	script := app.Flag("script", "Script to run instead of the one of the preset.").Envar("PREFLIGHT_SCRIPT").String()
	dirs := app.Flag("dir", "Additional directory searched for executables, may be repeated.").Strings()
	noInstall := app.Flag("no-install", "Report missing libraries without installing them.").Bool()
	strict := app.Flag("strict", "Stop when a library can not be installed.").Bool()
	timeout := app.Flag("timeout", "Maximum run time of the script (0 for none).").Default("0s").Envar("PREFLIGHT_TIMEOUT").Duration()
	verbose := app.Flag("verbose", "Trace every command executed.").Short('v').Bool()
	rest := app.Arg("args", "Arguments given to the script.").Strings()

	if _, err := app.Parse(args); err != nil {
		return nil, err
	}
	if *timeout < 0 {
		return nil, errors.Errorf("--timeout can not be negative")
	}
	return &arguments{
		target:    *target,
		config:    *config,
		python:    *python,
		pip:       *pip,
		script:    *script,
		dirs:      *dirs,
		noInstall: *noInstall,
		strict:    *strict,
		verbose:   *verbose,
		timeout:   *timeout,
		args:      *rest,
	}, nil
}

func main() {
	args, err := parseArgs(os.Args[1:])
	if err != nil {
		kingpin.Fatalf("%s, try --help", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = args.execute(ctx)
	stop()
	os.Exit(preflight.ExitCode(err))
}
